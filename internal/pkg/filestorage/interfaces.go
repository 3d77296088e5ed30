package filestorage

import (
	"mime/multipart"
)

// FileStorage defines the interface for stored-file operations.
type FileStorage interface {
	// SaveFile stores an upload under the given subdirectory and returns
	// the path relative to the storage root.
	SaveFile(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// ReadFile returns the raw bytes of a stored file.
	ReadFile(relPath string) ([]byte, error)

	// DeleteFile removes a file from storage. Deleting a missing file is
	// not an error.
	DeleteFile(relPath string) error
}
