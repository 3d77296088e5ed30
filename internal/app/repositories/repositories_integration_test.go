//go:build integration

package repositories

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/studyshare/backend/internal/app/migrations"
	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/pkg/apperrors"
)

// These tests run the repositories against a real Postgres started via
// testcontainers, with the production migrations applied. They validate
// the SQL itself: column names, constraint names, and the moderation
// guard in the UPDATE's WHERE clause.
//
// Usage:
//   go test -tags integration -run TestRepositories ./internal/app/repositories/...

func skipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := exec.CommandContext(ctx, "docker", "info").Run(); err != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// startTestDatabase starts a throwaway Postgres container and applies the
// migrations from the repository root.
func startTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "studyshare_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/studyshare_test?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	// The container logs readiness slightly before connections are accepted.
	deadline := time.Now().Add(30 * time.Second)
	for {
		if err = pool.Ping(ctx); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("postgres never became reachable: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	migrator := migrations.NewMigrator(pool)
	require.NoError(t, migrator.MigrateFromDirectory(filepath.Join("..", "..", "..", "migrations")))

	return pool
}

func createTestUser(t *testing.T, pool *pgxpool.Pool, username, email string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    email,
		Password: "$2a$10$not.a.real.hash.but.long.enough.for.the.column",
		FullName: "Integration Tester",
		Branch:   "Computer Science",
		Year:     2,
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, NewUserRepository(pool).Create(context.Background(), user))
	require.NotZero(t, user.ID)
	return user
}

func TestRepositoriesTokenLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	skipIfNoDocker(t)

	pool := startTestDatabase(t)
	ctx := context.Background()
	user := createTestUser(t, pool, "tokenuser", "tokenuser@college.edu")
	repo := NewTokenRepository(pool)

	require.NoError(t, repo.CreateToken(ctx, "tok-1", user.ID, time.Now().Add(time.Hour)))

	t.Run("stored token round-trips", func(t *testing.T) {
		ownerID, expiry, revoked, err := repo.GetTokenByValue(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, user.ID, ownerID)
		assert.False(t, revoked)
		assert.True(t, expiry.After(time.Now()))
	})

	t.Run("duplicate token rejected via constraint", func(t *testing.T) {
		err := repo.CreateToken(ctx, "tok-1", user.ID, time.Now().Add(time.Hour))
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("revoke single token", func(t *testing.T) {
		require.NoError(t, repo.RevokeToken(ctx, "tok-1"))
		_, _, revoked, err := repo.GetTokenByValue(ctx, "tok-1")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("revoke unknown token", func(t *testing.T) {
		assert.ErrorIs(t, repo.RevokeToken(ctx, "no-such-token"), apperrors.ErrTokenNotFound)
	})

	t.Run("revoke all user tokens", func(t *testing.T) {
		require.NoError(t, repo.CreateToken(ctx, "tok-2", user.ID, time.Now().Add(time.Hour)))
		require.NoError(t, repo.CreateToken(ctx, "tok-3", user.ID, time.Now().Add(time.Hour)))
		require.NoError(t, repo.RevokeAllUserTokens(ctx, user.ID))

		for _, token := range []string{"tok-2", "tok-3"} {
			_, _, revoked, err := repo.GetTokenByValue(ctx, token)
			require.NoError(t, err)
			assert.True(t, revoked, "token %s should be revoked", token)
		}
	})
}

func TestRepositoriesMaterialModeration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	skipIfNoDocker(t)

	pool := startTestDatabase(t)
	ctx := context.Background()
	user := createTestUser(t, pool, "uploader", "uploader@college.edu")
	repo := NewMaterialRepository(pool)

	material := &models.Material{
		Title:      "Graph Theory Notes",
		Branch:     "Computer Science",
		Year:       2,
		Subject:    "Discrete Mathematics",
		Type:       models.MaterialTypeNotes,
		FileName:   "graphs.pdf",
		FileType:   "application/pdf",
		FileSize:   1024,
		FilePath:   "materials/1/graphs.pdf",
		UploaderID: user.ID,
		Status:     models.MaterialStatusPending,
	}
	require.NoError(t, repo.Create(ctx, material))
	require.NotZero(t, material.ID)

	t.Run("pending hidden from approved listing", func(t *testing.T) {
		status := models.MaterialStatusApproved
		listed, _, err := repo.List(ctx, MaterialFilter{Status: &status}, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})

	t.Run("decision applies once", func(t *testing.T) {
		require.NoError(t, repo.UpdateStatus(ctx, material.ID, models.MaterialStatusApproved))

		got, err := repo.GetByID(ctx, material.ID)
		require.NoError(t, err)
		assert.Equal(t, models.MaterialStatusApproved, got.Status)

		err = repo.UpdateStatus(ctx, material.ID, models.MaterialStatusRejected)
		assert.ErrorIs(t, err, apperrors.ErrMaterialDecided)
	})

	t.Run("decision on unknown material", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, material.ID+999, models.MaterialStatusApproved)
		assert.ErrorIs(t, err, apperrors.ErrMaterialNotFound)
	})

	t.Run("approved material appears in listing", func(t *testing.T) {
		status := models.MaterialStatusApproved
		listed, pagination, err := repo.List(ctx, MaterialFilter{Status: &status}, 1, 10)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, material.ID, listed[0].ID)
		assert.Equal(t, int64(1), pagination.TotalItems)
	})
}
