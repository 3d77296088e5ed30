// Package upload validates incoming file uploads before anything touches
// disk or the database.
package upload

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/studyshare/backend/internal/pkg/apperrors"
)

// Size limits per storage area.
const (
	MaxMaterialSize     = 10 << 20 // 10 MiB
	MaxPersonalFileSize = 25 << 20 // 25 MiB
	MaxChatAttachment   = 10 << 20 // 10 MiB
)

// allowedExtensions is the upload allow-list. Keys are lowercase
// extensions without the dot.
var allowedExtensions = map[string]bool{
	"pdf":  true,
	"doc":  true,
	"docx": true,
	"ppt":  true,
	"pptx": true,
	"txt":  true,
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
	"zip":  true,
	"rar":  true,
	"7z":   true,
}

// Validator checks uploads against the allow-list and a size limit.
type Validator struct {
	maxSize int64
}

// NewValidator creates a Validator with the given size limit in bytes.
func NewValidator(maxSize int64) *Validator {
	return &Validator{maxSize: maxSize}
}

// MaxSize returns the configured size limit in bytes.
func (v *Validator) MaxSize() int64 {
	return v.maxSize
}

// CheckName validates the file name's extension against the allow-list.
func (v *Validator) CheckName(fileName string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" || !allowedExtensions[ext] {
		return fmt.Errorf("%w: .%s", apperrors.ErrFileTypeNotAllowed, ext)
	}
	return nil
}

// CheckSize validates a size in bytes against the limit.
func (v *Validator) CheckSize(size int64) error {
	if size <= 0 {
		return apperrors.ErrFileMissing
	}
	if size > v.maxSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", apperrors.ErrFileTooLarge, size, v.maxSize)
	}
	return nil
}

// Check validates a multipart upload header: extension, size, and sniffed
// content type. It returns the detected MIME type on success. Nothing is
// persisted before this passes.
func (v *Validator) Check(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", apperrors.ErrFileMissing
	}

	if err := v.CheckName(fileHeader.Filename); err != nil {
		return "", err
	}
	if err := v.CheckSize(fileHeader.Size); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to detect content type: %w", err)
	}

	return mtype.String(), nil
}
