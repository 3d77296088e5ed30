package services

import (
	"context"
	"encoding/base64"
	"mime/multipart"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appAuth "github.com/studyshare/backend/internal/app/auth"
	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/app/repositories"
	"github.com/studyshare/backend/internal/pkg/apperrors"
)

type stubMaterialRepo struct {
	materials map[int64]*models.Material

	updateStatusErr error
	updatedStatus   models.MaterialStatus
	deletedID       int64
}

func (r *stubMaterialRepo) Create(ctx context.Context, m *models.Material) error {
	m.ID = int64(len(r.materials) + 1)
	r.materials[m.ID] = m
	return nil
}

func (r *stubMaterialRepo) GetByID(ctx context.Context, id int64) (*models.Material, error) {
	m, ok := r.materials[id]
	if !ok {
		return nil, apperrors.ErrMaterialNotFound
	}
	return m, nil
}

func (r *stubMaterialRepo) List(ctx context.Context, filter repositories.MaterialFilter, page, size int) ([]*models.Material, dto.PaginationInfo, error) {
	var out []*models.Material
	for _, m := range r.materials {
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		if filter.UploaderID != nil && m.UploaderID != *filter.UploaderID {
			continue
		}
		out = append(out, m)
	}
	return out, dto.PaginationInfo{TotalItems: int64(len(out))}, nil
}

func (r *stubMaterialRepo) UpdateStatus(ctx context.Context, id int64, status models.MaterialStatus) error {
	if r.updateStatusErr != nil {
		return r.updateStatusErr
	}
	m, ok := r.materials[id]
	if !ok {
		return apperrors.ErrMaterialNotFound
	}
	if m.Status != models.MaterialStatusPending {
		return apperrors.ErrMaterialDecided
	}
	m.Status = status
	r.updatedStatus = status
	return nil
}

func (r *stubMaterialRepo) Delete(ctx context.Context, id int64) error {
	delete(r.materials, id)
	r.deletedID = id
	return nil
}

type stubBookmarkRepo struct {
	bookmarks map[int64]map[int64]bool // userID -> materialID
}

func newStubBookmarkRepo() *stubBookmarkRepo {
	return &stubBookmarkRepo{bookmarks: make(map[int64]map[int64]bool)}
}

func (r *stubBookmarkRepo) Exists(ctx context.Context, userID, materialID int64) (bool, error) {
	return r.bookmarks[userID][materialID], nil
}

func (r *stubBookmarkRepo) Add(ctx context.Context, userID, materialID int64) error {
	if r.bookmarks[userID] == nil {
		r.bookmarks[userID] = make(map[int64]bool)
	}
	r.bookmarks[userID][materialID] = true
	return nil
}

func (r *stubBookmarkRepo) Remove(ctx context.Context, userID, materialID int64) error {
	delete(r.bookmarks[userID], materialID)
	return nil
}

func (r *stubBookmarkRepo) ListMaterialIDs(ctx context.Context, userID int64, materialIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	for _, id := range materialIDs {
		if r.bookmarks[userID][id] {
			out[id] = true
		}
	}
	return out, nil
}

func (r *stubBookmarkRepo) ListForUser(ctx context.Context, userID int64, page, size int) ([]*models.Material, dto.PaginationInfo, error) {
	return nil, dto.PaginationInfo{}, nil
}

type stubStorage struct {
	files map[string][]byte
}

func newStubStorage() *stubStorage {
	return &stubStorage{files: make(map[string][]byte)}
}

func (s *stubStorage) SaveFile(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	path := subPath + "/" + fileHeader.Filename
	s.files[path] = []byte("stored")
	return path, nil
}

func (s *stubStorage) ReadFile(relPath string) ([]byte, error) {
	data, ok := s.files[relPath]
	if !ok {
		return nil, apperrors.ErrResourceNotFound
	}
	return data, nil
}

func (s *stubStorage) DeleteFile(relPath string) error {
	delete(s.files, relPath)
	return nil
}

func newMaterialServiceForTest(repo *stubMaterialRepo, bookmarks *stubBookmarkRepo, storage *stubStorage) MaterialService {
	return NewMaterialService(repo, bookmarks, storage, appAuth.NewAuthorizationService(), zerolog.Nop())
}

func TestUpdateStatusRequiresDecision(t *testing.T) {
	repo := &stubMaterialRepo{materials: map[int64]*models.Material{
		1: {ID: 1, Status: models.MaterialStatusPending},
	}}
	svc := newMaterialServiceForTest(repo, newStubBookmarkRepo(), newStubStorage())

	_, err := svc.UpdateStatus(context.Background(), 1, models.MaterialStatusPending)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	m, err := svc.UpdateStatus(context.Background(), 1, models.MaterialStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.MaterialStatusApproved, m.Status)
}

func TestUpdateStatusIsTerminal(t *testing.T) {
	repo := &stubMaterialRepo{materials: map[int64]*models.Material{
		1: {ID: 1, Status: models.MaterialStatusApproved},
	}}
	svc := newMaterialServiceForTest(repo, newStubBookmarkRepo(), newStubStorage())

	_, err := svc.UpdateStatus(context.Background(), 1, models.MaterialStatusRejected)
	assert.ErrorIs(t, err, apperrors.ErrMaterialDecided)
	assert.Empty(t, repo.updatedStatus, "transition guard must reject before the write")

	_, err = svc.UpdateStatus(context.Background(), 99, models.MaterialStatusApproved)
	assert.ErrorIs(t, err, apperrors.ErrMaterialNotFound)
}

func TestDeletePermissions(t *testing.T) {
	newRepo := func(status models.MaterialStatus) *stubMaterialRepo {
		return &stubMaterialRepo{materials: map[int64]*models.Material{
			1: {ID: 1, UploaderID: 10, Status: status, FilePath: "materials/10/f.pdf"},
		}}
	}

	t.Run("owner deletes pending upload", func(t *testing.T) {
		repo := newRepo(models.MaterialStatusPending)
		svc := newMaterialServiceForTest(repo, newStubBookmarkRepo(), newStubStorage())
		require.NoError(t, svc.Delete(context.Background(), 1, 10, models.RoleUser))
		assert.Equal(t, int64(1), repo.deletedID)
	})

	t.Run("owner cannot delete decided upload", func(t *testing.T) {
		repo := newRepo(models.MaterialStatusApproved)
		svc := newMaterialServiceForTest(repo, newStubBookmarkRepo(), newStubStorage())
		err := svc.Delete(context.Background(), 1, 10, models.RoleUser)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("stranger sees not found", func(t *testing.T) {
		repo := newRepo(models.MaterialStatusPending)
		svc := newMaterialServiceForTest(repo, newStubBookmarkRepo(), newStubStorage())
		err := svc.Delete(context.Background(), 1, 99, models.RoleUser)
		assert.ErrorIs(t, err, apperrors.ErrMaterialNotFound)
	})

	t.Run("admin deletes anything", func(t *testing.T) {
		repo := newRepo(models.MaterialStatusApproved)
		svc := newMaterialServiceForTest(repo, newStubBookmarkRepo(), newStubStorage())
		assert.NoError(t, svc.Delete(context.Background(), 1, 99, models.RoleAdmin))
	})
}

func TestDownload(t *testing.T) {
	storage := newStubStorage()
	storage.files["materials/10/f.pdf"] = []byte("pdf-bytes")

	repo := &stubMaterialRepo{materials: map[int64]*models.Material{
		1: {ID: 1, UploaderID: 10, Status: models.MaterialStatusApproved, FileName: "f.pdf", FileType: "application/pdf", FilePath: "materials/10/f.pdf"},
		2: {ID: 2, UploaderID: 10, Status: models.MaterialStatusPending, FileName: "g.pdf", FileType: "application/pdf", FilePath: "materials/10/f.pdf"},
	}}
	svc := newMaterialServiceForTest(repo, newStubBookmarkRepo(), storage)

	t.Run("approved material is downloadable", func(t *testing.T) {
		resp, err := svc.Download(context.Background(), 1, 99, models.RoleUser)
		require.NoError(t, err)
		assert.Equal(t, "f.pdf", resp.FileName)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("pdf-bytes")), resp.Content)
	})

	t.Run("pending hidden from strangers", func(t *testing.T) {
		_, err := svc.Download(context.Background(), 2, 99, models.RoleUser)
		assert.ErrorIs(t, err, apperrors.ErrMaterialNotFound)
	})

	t.Run("pending visible to owner", func(t *testing.T) {
		_, err := svc.Download(context.Background(), 2, 10, models.RoleUser)
		assert.NoError(t, err)
	})
}

func TestToggleBookmark(t *testing.T) {
	repo := &stubMaterialRepo{materials: map[int64]*models.Material{
		1: {ID: 1, Status: models.MaterialStatusApproved},
		2: {ID: 2, Status: models.MaterialStatusPending},
	}}
	svc := newMaterialServiceForTest(repo, newStubBookmarkRepo(), newStubStorage())

	bookmarked, err := svc.ToggleBookmark(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.True(t, bookmarked, "first toggle adds")

	bookmarked, err = svc.ToggleBookmark(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.False(t, bookmarked, "second toggle removes")

	_, err = svc.ToggleBookmark(context.Background(), 5, 2)
	assert.ErrorIs(t, err, apperrors.ErrMaterialNotFound, "pending material cannot be bookmarked")
}
