package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/pkg/apperrors"
)

type stubAdminUserRepo struct {
	*stubUserRepo
}

func (r *stubAdminUserRepo) GetAll(ctx context.Context, page, size int) ([]*models.User, dto.PaginationInfo, error) {
	var out []*models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, dto.PaginationInfo{TotalItems: int64(len(out))}, nil
}

func (r *stubAdminUserRepo) UpdateProfile(ctx context.Context, userID int64, fullName, branch string, year int) error {
	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.FullName = fullName
	u.Branch = branch
	u.Year = year
	return nil
}

func (r *stubAdminUserRepo) UpdateRole(ctx context.Context, userID int64, role models.Role) error {
	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *stubAdminUserRepo) UpdateStatus(ctx context.Context, userID int64, status models.UserStatus) error {
	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (r *stubAdminUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func tokenExpiry() time.Time { return time.Now().Add(time.Hour) }

func newUserServiceForTest(t *testing.T) (UserService, *stubAdminUserRepo, *stubTokenRepo) {
	t.Helper()
	users := &stubAdminUserRepo{stubUserRepo: newStubUserRepo()}
	tokens := newStubTokenRepo()
	return NewUserService(users, tokens, zerolog.Nop()), users, tokens
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _ := newUserServiceForTest(t)
	require.NoError(t, users.Create(context.Background(), &models.User{Username: "jdoe", FullName: "John Doe", Year: 2}))

	updated, err := svc.UpdateProfile(context.Background(), 1, &dto.UpdateProfileRequest{FullName: "John Q. Doe", Branch: "Mathematics", Year: 3})
	require.NoError(t, err)
	assert.Equal(t, "John Q. Doe", updated.FullName)
	assert.Equal(t, "Mathematics", updated.Branch)
	assert.Equal(t, 3, updated.Year)
}

func TestAdminSelfTargetingRejected(t *testing.T) {
	svc, users, _ := newUserServiceForTest(t)
	require.NoError(t, users.Create(context.Background(), &models.User{Username: "admin", Role: models.RoleAdmin}))

	_, err := svc.UpdateRole(context.Background(), 1, 1, models.RoleUser)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.UpdateStatus(context.Background(), 1, 1, models.UserStatusSuspended)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	err = svc.DeleteUser(context.Background(), 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestSuspensionRevokesTokens(t *testing.T) {
	svc, users, tokens := newUserServiceForTest(t)
	require.NoError(t, users.Create(context.Background(), &models.User{Username: "admin", Role: models.RoleAdmin}))
	require.NoError(t, users.Create(context.Background(), &models.User{Username: "target", Status: models.UserStatusActive}))
	require.NoError(t, tokens.CreateToken(context.Background(), "t1", 2, tokenExpiry()))

	updated, err := svc.UpdateStatus(context.Background(), 1, 2, models.UserStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, updated.Status)
	assert.True(t, tokens.tokens["t1"].revoked)

	t.Run("reactivation leaves tokens revoked", func(t *testing.T) {
		updated, err := svc.UpdateStatus(context.Background(), 1, 2, models.UserStatusActive)
		require.NoError(t, err)
		assert.Equal(t, models.UserStatusActive, updated.Status)
		assert.True(t, tokens.tokens["t1"].revoked)
	})
}

func TestDeleteUser(t *testing.T) {
	svc, users, _ := newUserServiceForTest(t)
	require.NoError(t, users.Create(context.Background(), &models.User{Username: "admin", Role: models.RoleAdmin}))
	require.NoError(t, users.Create(context.Background(), &models.User{Username: "target"}))

	require.NoError(t, svc.DeleteUser(context.Background(), 1, 2))
	_, err := svc.GetByID(context.Background(), 2)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
