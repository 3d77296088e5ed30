package models

import "time"

// Material represents a user-submitted study document going through the
// moderation workflow. It unifies the old File and StudyMaterial entities
// into a single submission type.
type Material struct {
	ID          int64          `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Branch      string         `json:"branch" db:"branch"`
	Year        int            `json:"year" db:"year"`
	Subject     string         `json:"subject" db:"subject"`
	Type        MaterialType   `json:"type" db:"type"`
	FileName    string         `json:"fileName" db:"file_name"`
	FileType    string         `json:"fileType" db:"file_type"` // MIME type
	FileSize    int64          `json:"fileSize" db:"file_size"`
	FilePath    string         `json:"-" db:"file_path"` // server-side storage path
	UploaderID  int64          `json:"uploaderId" db:"uploader_id"`
	Status      MaterialStatus `json:"status" db:"status"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`

	// Relation, populated by joined queries
	Uploader *User `json:"uploader,omitempty"`
}

// Bookmark is the join row between a user and a material.
type Bookmark struct {
	UserID     int64     `json:"userId" db:"user_id"`
	MaterialID int64     `json:"materialId" db:"material_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
