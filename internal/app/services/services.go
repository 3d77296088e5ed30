package services

// Services defined in this package:
// - AuthService: registration, login and token lifecycle
// - UserService: profile updates and admin user management
// - MaterialService: uploads, moderation, bookmarks and downloads
// - PersonalFileService: the private folder/file area
// - ChatService: topics, messages, reactions and the general room
