package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/studyshare/backend/internal/app/models"
	appRepos "github.com/studyshare/backend/internal/app/repositories"
	"github.com/studyshare/backend/internal/pkg/apperrors"
	"github.com/studyshare/backend/internal/pkg/auth"
)

// Credentials for the bootstrap admin account. The password must be changed
// after first login on any real deployment.
const (
	defaultAdminEmail    = "admin@studyshare.app"
	defaultAdminUsername = "admin"
	defaultAdminPassword = "Admin123!"
)

// CreateDefaultData creates the default admin account if no account with the
// admin email exists yet. Errors are collected rather than aborting startup.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	var finalErr error

	exists, err := userRepo.EmailExists(ctx, defaultAdminEmail)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}
	if exists {
		return nil
	}

	lgr.Info().Msg("Creating default admin user...")

	hashedPassword, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	adminUser := &appModels.User{
		Username: defaultAdminUsername,
		Email:    defaultAdminEmail,
		Password: hashedPassword,
		FullName: "Administrator",
		Branch:   "Administration",
		Year:     1,
		Role:     appModels.RoleAdmin,
		Status:   appModels.UserStatusActive,
	}

	if err := userRepo.Create(ctx, adminUser); err != nil {
		// A concurrent boot may have won the race; that is fine.
		if !errors.Is(err, apperrors.ErrEmailAlreadyExists) && !errors.Is(err, apperrors.ErrUsernameAlreadyExists) {
			lgr.Error().Err(err).Msg("Error creating default admin user")
			finalErr = errors.Join(finalErr, err)
		}
	} else {
		lgr.Info().Str("email", defaultAdminEmail).Msg("Default admin user created")
	}

	return finalErr
}
