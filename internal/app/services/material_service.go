package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"path"
	"strconv"

	"github.com/rs/zerolog"

	appAuth "github.com/studyshare/backend/internal/app/auth"
	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/app/repositories"
	"github.com/studyshare/backend/internal/pkg/apperrors"
	"github.com/studyshare/backend/internal/pkg/filestorage"
	"github.com/studyshare/backend/internal/pkg/upload"
)

// MaterialService defines the interface for study material operations
type MaterialService interface {
	Upload(ctx context.Context, uploaderID int64, req *dto.CreateMaterialRequest, file *multipart.FileHeader) (*models.Material, error)
	GetByID(ctx context.Context, id int64) (*models.Material, error)
	ListApproved(ctx context.Context, req *dto.MaterialFilterRequest, viewerID int64) ([]*models.Material, map[int64]bool, dto.PaginationInfo, error)
	ListMine(ctx context.Context, ownerID int64, page, size int) ([]*models.Material, dto.PaginationInfo, error)
	ListPending(ctx context.Context, page, size int) ([]*models.Material, dto.PaginationInfo, error)
	UpdateStatus(ctx context.Context, id int64, status models.MaterialStatus) (*models.Material, error)
	Delete(ctx context.Context, id, actorID int64, actorRole models.Role) error
	Download(ctx context.Context, id, viewerID int64, viewerRole models.Role) (*dto.MaterialDownloadResponse, error)
	ToggleBookmark(ctx context.Context, userID, materialID int64) (bool, error)
	ListBookmarks(ctx context.Context, userID int64, page, size int) ([]*models.Material, dto.PaginationInfo, error)
}

// materialRepository is the slice of MaterialRepository the service needs.
type materialRepository interface {
	Create(ctx context.Context, m *models.Material) error
	GetByID(ctx context.Context, id int64) (*models.Material, error)
	List(ctx context.Context, filter repositories.MaterialFilter, page, size int) ([]*models.Material, dto.PaginationInfo, error)
	UpdateStatus(ctx context.Context, id int64, status models.MaterialStatus) error
	Delete(ctx context.Context, id int64) error
}

type bookmarkRepository interface {
	Exists(ctx context.Context, userID, materialID int64) (bool, error)
	Add(ctx context.Context, userID, materialID int64) error
	Remove(ctx context.Context, userID, materialID int64) error
	ListMaterialIDs(ctx context.Context, userID int64, materialIDs []int64) (map[int64]bool, error)
	ListForUser(ctx context.Context, userID int64, page, size int) ([]*models.Material, dto.PaginationInfo, error)
}

// materialServiceImpl implements the MaterialService interface
type materialServiceImpl struct {
	materialRepo materialRepository
	bookmarkRepo bookmarkRepository
	storage      filestorage.FileStorage
	validator    *upload.Validator
	authz        *appAuth.AuthorizationService
	logger       zerolog.Logger
}

// NewMaterialService creates a new MaterialService.
func NewMaterialService(
	materialRepo materialRepository,
	bookmarkRepo bookmarkRepository,
	storage filestorage.FileStorage,
	authz *appAuth.AuthorizationService,
	logger zerolog.Logger,
) MaterialService {
	return &materialServiceImpl{
		materialRepo: materialRepo,
		bookmarkRepo: bookmarkRepo,
		storage:      storage,
		validator:    upload.NewValidator(upload.MaxMaterialSize),
		authz:        authz,
		logger:       logger,
	}
}

// Upload validates the file before anything touches disk or the database,
// then stores it and records the material as PENDING.
func (s *materialServiceImpl) Upload(ctx context.Context, uploaderID int64, req *dto.CreateMaterialRequest, file *multipart.FileHeader) (*models.Material, error) {
	if file == nil {
		return nil, apperrors.ErrFileMissing
	}

	mimeType, err := s.validator.Check(file)
	if err != nil {
		return nil, err
	}

	subPath := path.Join("materials", strconv.FormatInt(uploaderID, 10))
	storedPath, err := s.storage.SaveFile(file, subPath)
	if err != nil {
		s.logger.Error().Err(err).Int64("uploaderID", uploaderID).Msg("Failed to store material file")
		return nil, fmt.Errorf("error storing file: %w", err)
	}

	material := &models.Material{
		Title:       req.Title,
		Description: req.Description,
		Branch:      req.Branch,
		Year:        req.Year,
		Subject:     req.Subject,
		Type:        models.NormalizeMaterialType(req.Type),
		FileName:    file.Filename,
		FileType:    mimeType,
		FileSize:    file.Size,
		FilePath:    storedPath,
		UploaderID:  uploaderID,
		Status:      models.MaterialStatusPending,
	}

	if err := s.materialRepo.Create(ctx, material); err != nil {
		// Roll back the stored file so a failed insert leaves no artifact.
		if cleanupErr := s.storage.DeleteFile(storedPath); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("path", storedPath).Msg("Failed to remove orphaned file")
		}
		return nil, err
	}

	s.logger.Info().Int64("materialID", material.ID).Int64("uploaderID", uploaderID).Msg("Material uploaded, awaiting review")
	return material, nil
}

func (s *materialServiceImpl) GetByID(ctx context.Context, id int64) (*models.Material, error) {
	return s.materialRepo.GetByID(ctx, id)
}

// ListApproved returns the public listing with the viewer's bookmark flags.
func (s *materialServiceImpl) ListApproved(ctx context.Context, req *dto.MaterialFilterRequest, viewerID int64) ([]*models.Material, map[int64]bool, dto.PaginationInfo, error) {
	status := models.MaterialStatusApproved
	filter := repositories.MaterialFilter{
		Status:  &status,
		Branch:  req.Branch,
		Year:    req.Year,
		Subject: req.Subject,
	}
	if req.Type != nil {
		materialType := models.NormalizeMaterialType(*req.Type)
		filter.Type = &materialType
	}

	materials, pagination, err := s.materialRepo.List(ctx, filter, req.Page, req.Size)
	if err != nil {
		return nil, nil, dto.PaginationInfo{}, err
	}

	ids := make([]int64, len(materials))
	for i, m := range materials {
		ids[i] = m.ID
	}
	bookmarked, err := s.bookmarkRepo.ListMaterialIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, nil, dto.PaginationInfo{}, err
	}

	return materials, bookmarked, pagination, nil
}

// ListMine returns all of the owner's uploads regardless of status.
func (s *materialServiceImpl) ListMine(ctx context.Context, ownerID int64, page, size int) ([]*models.Material, dto.PaginationInfo, error) {
	filter := repositories.MaterialFilter{UploaderID: &ownerID}
	return s.materialRepo.List(ctx, filter, page, size)
}

// ListPending returns the moderation queue.
func (s *materialServiceImpl) ListPending(ctx context.Context, page, size int) ([]*models.Material, dto.PaginationInfo, error) {
	status := models.MaterialStatusPending
	filter := repositories.MaterialFilter{Status: &status}
	return s.materialRepo.List(ctx, filter, page, size)
}

// UpdateStatus applies a moderation decision. Decisions are terminal:
// re-deciding yields ErrMaterialDecided.
func (s *materialServiceImpl) UpdateStatus(ctx context.Context, id int64, status models.MaterialStatus) (*models.Material, error) {
	if !status.Decided() {
		return nil, fmt.Errorf("%w: status must be APPROVED or REJECTED", apperrors.ErrValidationFailed)
	}

	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !material.Status.CanTransitionTo(status) {
		return nil, apperrors.ErrMaterialDecided
	}

	// The repository re-checks the PENDING state in the UPDATE itself, so
	// a concurrent decision still loses.
	if err := s.materialRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("materialID", id).Str("status", string(status)).Msg("Material moderated")
	return s.materialRepo.GetByID(ctx, id)
}

// Delete removes a material and its stored file. Owners may delete only
// while the material is PENDING; admins may delete anything.
func (s *materialServiceImpl) Delete(ctx context.Context, id, actorID int64, actorRole models.Role) error {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authz.ValidateMaterialDelete(material, actorID, actorRole); err != nil {
		return err
	}

	if err := s.materialRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeleteFile(material.FilePath); err != nil {
		s.logger.Warn().Err(err).Str("path", material.FilePath).Msg("Failed to remove stored file")
	}

	s.logger.Info().Int64("materialID", id).Int64("actorID", actorID).Msg("Material deleted")
	return nil
}

// Download returns the file content base64-encoded. Only approved
// materials are downloadable, except by their owner or an admin.
func (s *materialServiceImpl) Download(ctx context.Context, id, viewerID int64, viewerRole models.Role) (*dto.MaterialDownloadResponse, error) {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.authz.CanViewMaterial(material, viewerID, viewerRole) {
		return nil, apperrors.ErrMaterialNotFound
	}

	content, err := s.storage.ReadFile(material.FilePath)
	if err != nil {
		s.logger.Error().Err(err).Str("path", material.FilePath).Msg("Failed to read stored material")
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return &dto.MaterialDownloadResponse{
		FileName: material.FileName,
		FileType: material.FileType,
		Content:  base64.StdEncoding.EncodeToString(content),
	}, nil
}

// ToggleBookmark flips bookmark membership and returns the resulting state.
func (s *materialServiceImpl) ToggleBookmark(ctx context.Context, userID, materialID int64) (bool, error) {
	material, err := s.materialRepo.GetByID(ctx, materialID)
	if err != nil {
		return false, err
	}
	if material.Status != models.MaterialStatusApproved {
		return false, apperrors.ErrMaterialNotFound
	}

	exists, err := s.bookmarkRepo.Exists(ctx, userID, materialID)
	if err != nil {
		return false, err
	}

	if exists {
		if err := s.bookmarkRepo.Remove(ctx, userID, materialID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.bookmarkRepo.Add(ctx, userID, materialID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *materialServiceImpl) ListBookmarks(ctx context.Context, userID int64, page, size int) ([]*models.Material, dto.PaginationInfo, error) {
	return s.bookmarkRepo.ListForUser(ctx, userID, page, size)
}
