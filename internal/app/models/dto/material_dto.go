package dto

import (
	"time"

	"github.com/studyshare/backend/internal/app/models"
)

// --- Request DTOs ---

// CreateMaterialRequest is the multipart form accompanying a material upload.
// Type is free-form on the wire; unknown values are coerced to NOTES.
type CreateMaterialRequest struct {
	Title       string `form:"title" binding:"required,max=200"`
	Description string `form:"description" binding:"max=2000"`
	Branch      string `form:"branch" binding:"required,max=80"`
	Year        int    `form:"year" binding:"required,min=1,max=6"`
	Subject     string `form:"subject" binding:"required,max=120"`
	Type        string `form:"type"`
}

// MaterialFilterRequest holds listing filters bound from query parameters.
type MaterialFilterRequest struct {
	Branch  *string `form:"branch"`
	Year    *int    `form:"year"`
	Subject *string `form:"subject"`
	Type    *string `form:"type"`
	Page    int     `form:"page,default=1" binding:"min=1"`
	Size    int     `form:"size,default=20" binding:"min=1,max=100"`
}

// UpdateMaterialStatusRequest carries a moderation decision.
type UpdateMaterialStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

// --- Response DTOs ---

// MaterialResponse is the API view of a material.
type MaterialResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Branch       string    `json:"branch"`
	Year         int       `json:"year"`
	Subject      string    `json:"subject"`
	Type         string    `json:"type"`
	FileName     string    `json:"fileName"`
	FileType     string    `json:"fileType"`
	FileSize     int64     `json:"fileSize"`
	Status       string    `json:"status"`
	UploaderID   int64     `json:"uploaderId"`
	UploaderName string    `json:"uploaderName,omitempty"`
	Bookmarked   bool      `json:"bookmarked,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MaterialListResponse is a paginated material listing.
type MaterialListResponse struct {
	Materials  []MaterialResponse `json:"materials"`
	Pagination PaginationInfo     `json:"pagination"`
}

// MaterialDownloadResponse embeds file content as base64 for client-side
// Blob decoding.
type MaterialDownloadResponse struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Content  string `json:"content"` // base64
}

// BookmarkToggleResponse reports the membership state after a toggle.
type BookmarkToggleResponse struct {
	MaterialID int64 `json:"materialId"`
	Bookmarked bool  `json:"bookmarked"`
}

// ToMaterialResponse maps a material model to its API view.
func ToMaterialResponse(m *models.Material) MaterialResponse {
	resp := MaterialResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Branch:      m.Branch,
		Year:        m.Year,
		Subject:     m.Subject,
		Type:        string(m.Type),
		FileName:    m.FileName,
		FileType:    m.FileType,
		FileSize:    m.FileSize,
		Status:      string(m.Status),
		UploaderID:  m.UploaderID,
		CreatedAt:   m.CreatedAt,
	}
	if m.Uploader != nil {
		resp.UploaderName = m.Uploader.Username
	}
	return resp
}
