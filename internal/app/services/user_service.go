package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/pkg/apperrors"
)

// UserService defines the interface for user operations
type UserService interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error)
	ListUsers(ctx context.Context, page, size int) ([]*models.User, dto.PaginationInfo, error)
	UpdateRole(ctx context.Context, actorID, userID int64, role models.Role) (*models.User, error)
	UpdateStatus(ctx context.Context, actorID, userID int64, status models.UserStatus) (*models.User, error)
	DeleteUser(ctx context.Context, actorID, userID int64) error
}

// adminUserRepository is the slice of UserRepository the service needs.
type adminUserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetAll(ctx context.Context, page, size int) ([]*models.User, dto.PaginationInfo, error)
	UpdateProfile(ctx context.Context, userID int64, fullName, branch string, year int) error
	UpdateRole(ctx context.Context, userID int64, role models.Role) error
	UpdateStatus(ctx context.Context, userID int64, status models.UserStatus) error
	Delete(ctx context.Context, id int64) error
}

type userTokenRevoker interface {
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	userRepo  adminUserRepository
	tokenRepo userTokenRevoker
	logger    zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo adminUserRepository, tokenRepo userTokenRevoker, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		logger:    logger,
	}
}

func (s *userServiceImpl) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile changes the caller's own profile fields.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error) {
	if err := s.userRepo.UpdateProfile(ctx, userID, req.FullName, req.Branch, req.Year); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userServiceImpl) ListUsers(ctx context.Context, page, size int) ([]*models.User, dto.PaginationInfo, error) {
	return s.userRepo.GetAll(ctx, page, size)
}

// UpdateRole promotes or demotes a user. Admins cannot change their own role.
func (s *userServiceImpl) UpdateRole(ctx context.Context, actorID, userID int64, role models.Role) (*models.User, error) {
	if actorID == userID {
		return nil, apperrors.ErrPermissionDenied
	}
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", userID).Str("role", string(role)).Int64("actorID", actorID).Msg("User role changed")
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateStatus suspends or reactivates an account. Suspension also revokes
// outstanding refresh tokens so the account cannot mint new access tokens.
func (s *userServiceImpl) UpdateStatus(ctx context.Context, actorID, userID int64, status models.UserStatus) (*models.User, error) {
	if actorID == userID {
		return nil, apperrors.ErrPermissionDenied
	}
	if err := s.userRepo.UpdateStatus(ctx, userID, status); err != nil {
		return nil, err
	}

	if status == models.UserStatusSuspended {
		if err := s.tokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke tokens of suspended user")
		}
	}

	s.logger.Info().Int64("userID", userID).Str("status", string(status)).Int64("actorID", actorID).Msg("User status changed")
	return s.userRepo.GetByID(ctx, userID)
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (s *userServiceImpl) DeleteUser(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return apperrors.ErrPermissionDenied
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", userID).Int64("actorID", actorID).Msg("User deleted")
	return nil
}
