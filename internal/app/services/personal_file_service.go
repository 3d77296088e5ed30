package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"path"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/pkg/apperrors"
	"github.com/studyshare/backend/internal/pkg/filestorage"
	"github.com/studyshare/backend/internal/pkg/upload"
)

// PersonalFileService defines the interface for the private file area
type PersonalFileService interface {
	CreateFolder(ctx context.Context, ownerID int64, req *dto.CreateFolderRequest) (*models.PersonalFolder, error)
	GetFolderContents(ctx context.Context, ownerID int64, folderID *int64) (*dto.FolderContentsResponse, error)
	DeleteFolder(ctx context.Context, ownerID, folderID int64) error
	UploadFile(ctx context.Context, ownerID int64, folderID *int64, file *multipart.FileHeader) (*models.PersonalFile, error)
	DownloadFile(ctx context.Context, ownerID, fileID int64) (*dto.FileDownloadResponse, error)
	DeleteFile(ctx context.Context, ownerID, fileID int64) error
}

// personalFileRepository is the slice of PersonalFileRepository the
// service needs.
type personalFileRepository interface {
	CreateFolder(ctx context.Context, folder *models.PersonalFolder) error
	GetFolder(ctx context.Context, ownerID, folderID int64) (*models.PersonalFolder, error)
	ListAllFolders(ctx context.Context, ownerID int64) (map[int64]*models.PersonalFolder, error)
	ListChildFolders(ctx context.Context, ownerID int64, parentID *int64) ([]*models.PersonalFolder, error)
	FolderIsEmpty(ctx context.Context, folderID int64) (bool, error)
	DeleteFolder(ctx context.Context, ownerID, folderID int64) error
	CreateFile(ctx context.Context, file *models.PersonalFile) error
	GetFile(ctx context.Context, ownerID, fileID int64) (*models.PersonalFile, error)
	ListFiles(ctx context.Context, ownerID int64, folderID *int64) ([]*models.PersonalFile, error)
	DeleteFile(ctx context.Context, ownerID, fileID int64) error
}

// personalFileServiceImpl implements the PersonalFileService interface
type personalFileServiceImpl struct {
	repo      personalFileRepository
	storage   filestorage.FileStorage
	validator *upload.Validator
	logger    zerolog.Logger
}

// NewPersonalFileService creates a new PersonalFileService.
func NewPersonalFileService(repo personalFileRepository, storage filestorage.FileStorage, logger zerolog.Logger) PersonalFileService {
	return &personalFileServiceImpl{
		repo:      repo,
		storage:   storage,
		validator: upload.NewValidator(upload.MaxPersonalFileSize),
		logger:    logger,
	}
}

// CreateFolder creates a folder, optionally under an existing parent owned
// by the same user.
func (s *personalFileServiceImpl) CreateFolder(ctx context.Context, ownerID int64, req *dto.CreateFolderRequest) (*models.PersonalFolder, error) {
	if req.ParentID != nil {
		if _, err := s.repo.GetFolder(ctx, ownerID, *req.ParentID); err != nil {
			return nil, err
		}
	}

	folder := &models.PersonalFolder{
		OwnerID:  ownerID,
		Name:     req.Name,
		ParentID: req.ParentID,
	}
	if err := s.repo.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// GetFolderContents returns one folder level: the folder itself (nil at
// root), its breadcrumb chain, subfolders and files.
func (s *personalFileServiceImpl) GetFolderContents(ctx context.Context, ownerID int64, folderID *int64) (*dto.FolderContentsResponse, error) {
	resp := &dto.FolderContentsResponse{
		Breadcrumb: []models.BreadcrumbEntry{},
	}

	if folderID != nil {
		folder, err := s.repo.GetFolder(ctx, ownerID, *folderID)
		if err != nil {
			return nil, err
		}
		folderResp := dto.ToFolderResponse(folder)
		resp.Folder = &folderResp

		all, err := s.repo.ListAllFolders(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		resp.Breadcrumb = models.BuildBreadcrumb(all, *folderID)
	}

	folders, err := s.repo.ListChildFolders(ctx, ownerID, folderID)
	if err != nil {
		return nil, err
	}
	files, err := s.repo.ListFiles(ctx, ownerID, folderID)
	if err != nil {
		return nil, err
	}

	resp.Folders = make([]dto.FolderResponse, 0, len(folders))
	for _, f := range folders {
		resp.Folders = append(resp.Folders, dto.ToFolderResponse(f))
	}
	resp.Files = make([]dto.PersonalFileResponse, 0, len(files))
	for _, f := range files {
		resp.Files = append(resp.Files, dto.ToPersonalFileResponse(f))
	}

	return resp, nil
}

// DeleteFolder removes an empty folder.
func (s *personalFileServiceImpl) DeleteFolder(ctx context.Context, ownerID, folderID int64) error {
	if _, err := s.repo.GetFolder(ctx, ownerID, folderID); err != nil {
		return err
	}

	empty, err := s.repo.FolderIsEmpty(ctx, folderID)
	if err != nil {
		return err
	}
	if !empty {
		return apperrors.ErrFolderNotEmpty
	}

	return s.repo.DeleteFolder(ctx, ownerID, folderID)
}

// UploadFile validates and stores a private file.
func (s *personalFileServiceImpl) UploadFile(ctx context.Context, ownerID int64, folderID *int64, file *multipart.FileHeader) (*models.PersonalFile, error) {
	if file == nil {
		return nil, apperrors.ErrFileMissing
	}

	if folderID != nil {
		if _, err := s.repo.GetFolder(ctx, ownerID, *folderID); err != nil {
			return nil, err
		}
	}

	mimeType, err := s.validator.Check(file)
	if err != nil {
		return nil, err
	}

	subPath := path.Join("personal-files", strconv.FormatInt(ownerID, 10))
	storedPath, err := s.storage.SaveFile(file, subPath)
	if err != nil {
		s.logger.Error().Err(err).Int64("ownerID", ownerID).Msg("Failed to store personal file")
		return nil, fmt.Errorf("error storing file: %w", err)
	}

	personalFile := &models.PersonalFile{
		OwnerID:  ownerID,
		FolderID: folderID,
		FileName: file.Filename,
		FileType: mimeType,
		FileSize: file.Size,
		FilePath: storedPath,
	}
	if err := s.repo.CreateFile(ctx, personalFile); err != nil {
		if cleanupErr := s.storage.DeleteFile(storedPath); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("path", storedPath).Msg("Failed to remove orphaned file")
		}
		return nil, err
	}

	return personalFile, nil
}

// DownloadFile returns base64-encoded content of an owned file.
func (s *personalFileServiceImpl) DownloadFile(ctx context.Context, ownerID, fileID int64) (*dto.FileDownloadResponse, error) {
	file, err := s.repo.GetFile(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	content, err := s.storage.ReadFile(file.FilePath)
	if err != nil {
		s.logger.Error().Err(err).Str("path", file.FilePath).Msg("Failed to read stored personal file")
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return &dto.FileDownloadResponse{
		FileName: file.FileName,
		FileType: file.FileType,
		Content:  base64.StdEncoding.EncodeToString(content),
	}, nil
}

// DeleteFile removes an owned file and its stored content.
func (s *personalFileServiceImpl) DeleteFile(ctx context.Context, ownerID, fileID int64) error {
	file, err := s.repo.GetFile(ctx, ownerID, fileID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteFile(ctx, ownerID, fileID); err != nil {
		return err
	}
	if err := s.storage.DeleteFile(file.FilePath); err != nil {
		s.logger.Warn().Err(err).Str("path", file.FilePath).Msg("Failed to remove stored file")
	}
	return nil
}
