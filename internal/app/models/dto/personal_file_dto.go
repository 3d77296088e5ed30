package dto

import (
	"time"

	"github.com/studyshare/backend/internal/app/models"
)

// CreateFolderRequest creates a folder, optionally nested under a parent.
type CreateFolderRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	ParentID *int64 `json:"parentId"`
}

// PersonalFileResponse is the API view of a private file.
type PersonalFileResponse struct {
	ID        int64     `json:"id"`
	FolderID  *int64    `json:"folderId,omitempty"`
	FileName  string    `json:"fileName"`
	FileType  string    `json:"fileType"`
	FileSize  int64     `json:"fileSize"`
	CreatedAt time.Time `json:"createdAt"`
}

// FolderResponse is the API view of a folder.
type FolderResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// FolderContentsResponse lists a folder's children with its ancestry chain.
type FolderContentsResponse struct {
	Folder     *FolderResponse          `json:"folder,omitempty"` // nil at root level
	Breadcrumb []models.BreadcrumbEntry `json:"breadcrumb"`
	Folders    []FolderResponse         `json:"folders"`
	Files      []PersonalFileResponse   `json:"files"`
}

// ToPersonalFileResponse maps a personal file model to its API view.
func ToPersonalFileResponse(f *models.PersonalFile) PersonalFileResponse {
	return PersonalFileResponse{
		ID:        f.ID,
		FolderID:  f.FolderID,
		FileName:  f.FileName,
		FileType:  f.FileType,
		FileSize:  f.FileSize,
		CreatedAt: f.CreatedAt,
	}
}

// ToFolderResponse maps a folder model to its API view.
func ToFolderResponse(f *models.PersonalFolder) FolderResponse {
	return FolderResponse{
		ID:        f.ID,
		Name:      f.Name,
		ParentID:  f.ParentID,
		CreatedAt: f.CreatedAt,
	}
}

// FileDownloadResponse carries base64-encoded file content.
type FileDownloadResponse struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Content  string `json:"content"`
}
