package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	TokenRepository        *TokenRepository
	MaterialRepository     *MaterialRepository
	BookmarkRepository     *BookmarkRepository
	PersonalFileRepository *PersonalFileRepository
	ChatRepository         *ChatRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		TokenRepository:        NewTokenRepository(db),
		MaterialRepository:     NewMaterialRepository(db),
		BookmarkRepository:     NewBookmarkRepository(db),
		PersonalFileRepository: NewPersonalFileRepository(db),
		ChatRepository:         NewChatRepository(db),
	}
}
