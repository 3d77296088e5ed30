package auth

import (
	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/pkg/apperrors"
)

// AuthorizationService centralizes material access decisions so the rules
// live in one place instead of inline in every service method.
type AuthorizationService struct{}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// CanViewMaterial reports whether the viewer may see a material. Approved
// materials are visible to everyone; pending and rejected ones only to
// their uploader and admins.
func (s *AuthorizationService) CanViewMaterial(material *models.Material, viewerID int64, viewerRole models.Role) bool {
	if material.Status == models.MaterialStatusApproved {
		return true
	}
	return material.UploaderID == viewerID || viewerRole == models.RoleAdmin
}

// ValidateMaterialDelete checks whether the actor may delete a material.
// Admins may delete anything. Uploaders may delete their own material only
// while it is still PENDING; a foreign material reads as not found so the
// check does not leak its existence.
func (s *AuthorizationService) ValidateMaterialDelete(material *models.Material, actorID int64, actorRole models.Role) error {
	if actorRole == models.RoleAdmin {
		return nil
	}
	if material.UploaderID != actorID {
		return apperrors.ErrMaterialNotFound
	}
	if material.Status != models.MaterialStatusPending {
		return apperrors.ErrPermissionDenied
	}
	return nil
}
