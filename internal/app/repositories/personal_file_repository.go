package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/pkg/apperrors"
	"github.com/studyshare/backend/internal/pkg/dberrors"
)

// PersonalFileRepository handles the private file area: folders and files,
// always scoped to an owner.
type PersonalFileRepository struct {
	db *pgxpool.Pool
}

// NewPersonalFileRepository creates a new PersonalFileRepository.
func NewPersonalFileRepository(db *pgxpool.Pool) *PersonalFileRepository {
	return &PersonalFileRepository{db: db}
}

// CreateFolder inserts a folder and sets its generated fields.
func (r *PersonalFileRepository) CreateFolder(ctx context.Context, folder *models.PersonalFolder) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO personal_folders (owner_id, name, parent_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		folder.OwnerID, folder.Name, folder.ParentID).
		Scan(&folder.ID, &folder.CreatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrFolderNotFound
		}
		return fmt.Errorf("error creating folder: %w", err)
	}
	return nil
}

// GetFolder retrieves a folder owned by the given user.
func (r *PersonalFileRepository) GetFolder(ctx context.Context, ownerID, folderID int64) (*models.PersonalFolder, error) {
	folder := &models.PersonalFolder{}
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_id, name, parent_id, created_at
		FROM personal_folders WHERE id = $1 AND owner_id = $2`,
		folderID, ownerID).
		Scan(&folder.ID, &folder.OwnerID, &folder.Name, &folder.ParentID, &folder.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFolderNotFound
		}
		return nil, fmt.Errorf("error retrieving folder: %w", err)
	}
	return folder, nil
}

// ListAllFolders returns every folder owned by the user, keyed by ID.
// The full set is small enough to load for breadcrumb assembly.
func (r *PersonalFileRepository) ListAllFolders(ctx context.Context, ownerID int64) (map[int64]*models.PersonalFolder, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, name, parent_id, created_at
		FROM personal_folders WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing folders: %w", err)
	}
	defer rows.Close()

	folders := make(map[int64]*models.PersonalFolder)
	for rows.Next() {
		folder := &models.PersonalFolder{}
		if err := rows.Scan(&folder.ID, &folder.OwnerID, &folder.Name, &folder.ParentID, &folder.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning folder: %w", err)
		}
		folders[folder.ID] = folder
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error: %w", err)
	}
	return folders, nil
}

// ListChildFolders returns folders directly under parentID (nil for root),
// sorted by name.
func (r *PersonalFileRepository) ListChildFolders(ctx context.Context, ownerID int64, parentID *int64) ([]*models.PersonalFolder, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, name, parent_id, created_at
		FROM personal_folders
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2
		ORDER BY name`, ownerID, parentID)
	if err != nil {
		return nil, fmt.Errorf("error listing child folders: %w", err)
	}
	defer rows.Close()

	folders := make([]*models.PersonalFolder, 0)
	for rows.Next() {
		folder := &models.PersonalFolder{}
		if err := rows.Scan(&folder.ID, &folder.OwnerID, &folder.Name, &folder.ParentID, &folder.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning folder: %w", err)
		}
		folders = append(folders, folder)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error: %w", err)
	}
	return folders, nil
}

// FolderIsEmpty reports whether the folder holds no subfolders and no files.
func (r *PersonalFileRepository) FolderIsEmpty(ctx context.Context, folderID int64) (bool, error) {
	var occupied bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM personal_folders WHERE parent_id = $1)
		    OR EXISTS(SELECT 1 FROM personal_files WHERE folder_id = $1)`,
		folderID).Scan(&occupied)
	if err != nil {
		return false, fmt.Errorf("error checking folder contents: %w", err)
	}
	return !occupied, nil
}

// DeleteFolder removes an owned folder.
func (r *PersonalFileRepository) DeleteFolder(ctx context.Context, ownerID, folderID int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		DELETE FROM personal_folders WHERE id = $1 AND owner_id = $2`,
		folderID, ownerID)
	if err != nil {
		return fmt.Errorf("error deleting folder: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrFolderNotFound
	}
	return nil
}

// CreateFile inserts a personal file row and sets its generated fields.
func (r *PersonalFileRepository) CreateFile(ctx context.Context, file *models.PersonalFile) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO personal_files (owner_id, folder_id, file_name, file_type, file_size, file_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		file.OwnerID, file.FolderID, file.FileName, file.FileType, file.FileSize, file.FilePath).
		Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrFolderNotFound
		}
		return fmt.Errorf("error creating personal file: %w", err)
	}
	return nil
}

// GetFile retrieves a file owned by the given user.
func (r *PersonalFileRepository) GetFile(ctx context.Context, ownerID, fileID int64) (*models.PersonalFile, error) {
	file := &models.PersonalFile{}
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_id, folder_id, file_name, file_type, file_size, file_path, created_at
		FROM personal_files WHERE id = $1 AND owner_id = $2`,
		fileID, ownerID).
		Scan(&file.ID, &file.OwnerID, &file.FolderID, &file.FileName,
			&file.FileType, &file.FileSize, &file.FilePath, &file.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPersonalFileNotFound
		}
		return nil, fmt.Errorf("error retrieving personal file: %w", err)
	}
	return file, nil
}

// ListFiles returns files directly under folderID (nil for root), newest first.
func (r *PersonalFileRepository) ListFiles(ctx context.Context, ownerID int64, folderID *int64) ([]*models.PersonalFile, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, folder_id, file_name, file_type, file_size, file_path, created_at
		FROM personal_files
		WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2
		ORDER BY created_at DESC, id DESC`, ownerID, folderID)
	if err != nil {
		return nil, fmt.Errorf("error listing personal files: %w", err)
	}
	defer rows.Close()

	files := make([]*models.PersonalFile, 0)
	for rows.Next() {
		file := &models.PersonalFile{}
		if err := rows.Scan(&file.ID, &file.OwnerID, &file.FolderID, &file.FileName,
			&file.FileType, &file.FileSize, &file.FilePath, &file.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning personal file: %w", err)
		}
		files = append(files, file)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error: %w", err)
	}
	return files, nil
}

// DeleteFile removes an owned file row.
func (r *PersonalFileRepository) DeleteFile(ctx context.Context, ownerID, fileID int64) error {
	cmdTag, err := r.db.Exec(ctx, `
		DELETE FROM personal_files WHERE id = $1 AND owner_id = $2`,
		fileID, ownerID)
	if err != nil {
		return fmt.Errorf("error deleting personal file: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPersonalFileNotFound
	}
	return nil
}
