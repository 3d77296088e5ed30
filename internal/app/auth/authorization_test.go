package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/pkg/apperrors"
)

func TestCanViewMaterial(t *testing.T) {
	authz := NewAuthorizationService()

	approved := &models.Material{UploaderID: 1, Status: models.MaterialStatusApproved}
	pending := &models.Material{UploaderID: 1, Status: models.MaterialStatusPending}
	rejected := &models.Material{UploaderID: 1, Status: models.MaterialStatusRejected}

	assert.True(t, authz.CanViewMaterial(approved, 2, models.RoleUser))
	assert.True(t, authz.CanViewMaterial(pending, 1, models.RoleUser))
	assert.True(t, authz.CanViewMaterial(pending, 2, models.RoleAdmin))
	assert.False(t, authz.CanViewMaterial(pending, 2, models.RoleUser))
	assert.False(t, authz.CanViewMaterial(rejected, 2, models.RoleUser))
}

func TestValidateMaterialDelete(t *testing.T) {
	authz := NewAuthorizationService()

	pending := &models.Material{UploaderID: 1, Status: models.MaterialStatusPending}
	approved := &models.Material{UploaderID: 1, Status: models.MaterialStatusApproved}

	t.Run("admin may delete anything", func(t *testing.T) {
		assert.NoError(t, authz.ValidateMaterialDelete(approved, 99, models.RoleAdmin))
	})

	t.Run("owner may delete while pending", func(t *testing.T) {
		assert.NoError(t, authz.ValidateMaterialDelete(pending, 1, models.RoleUser))
	})

	t.Run("owner cannot delete after decision", func(t *testing.T) {
		assert.ErrorIs(t, authz.ValidateMaterialDelete(approved, 1, models.RoleUser), apperrors.ErrPermissionDenied)
	})

	t.Run("stranger sees not found", func(t *testing.T) {
		assert.ErrorIs(t, authz.ValidateMaterialDelete(pending, 2, models.RoleUser), apperrors.ErrMaterialNotFound)
	})
}
