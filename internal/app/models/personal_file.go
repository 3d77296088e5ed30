package models

import "time"

// PersonalFolder is a node in a user's private folder hierarchy.
// ParentID is nil for root-level folders.
type PersonalFolder struct {
	ID        int64     `json:"id" db:"id"`
	OwnerID   int64     `json:"ownerId" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	ParentID  *int64    `json:"parentId,omitempty" db:"parent_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// PersonalFile is a private, unmoderated file visible only to its owner.
type PersonalFile struct {
	ID        int64     `json:"id" db:"id"`
	OwnerID   int64     `json:"ownerId" db:"owner_id"`
	FolderID  *int64    `json:"folderId,omitempty" db:"folder_id"`
	FileName  string    `json:"fileName" db:"file_name"`
	FileType  string    `json:"fileType" db:"file_type"` // MIME type
	FileSize  int64     `json:"fileSize" db:"file_size"`
	FilePath  string    `json:"-" db:"file_path"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// BreadcrumbEntry is one ancestor step on the path to a folder.
type BreadcrumbEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BuildBreadcrumb walks parent links from folderID to the root and returns
// the chain ordered root-first. Folders not present in the map are treated
// as missing ancestors and terminate the walk.
func BuildBreadcrumb(folders map[int64]*PersonalFolder, folderID int64) []BreadcrumbEntry {
	var reversed []BreadcrumbEntry
	seen := make(map[int64]bool)

	id := folderID
	for {
		folder, ok := folders[id]
		if !ok || seen[id] {
			break
		}
		seen[id] = true
		reversed = append(reversed, BreadcrumbEntry{ID: folder.ID, Name: folder.Name})
		if folder.ParentID == nil {
			break
		}
		id = *folder.ParentID
	}

	crumbs := make([]BreadcrumbEntry, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		crumbs = append(crumbs, reversed[i])
	}
	return crumbs
}
