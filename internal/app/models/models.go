package models

// Role defines the user role type
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// UserStatus defines the account status
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// MaterialType enumerates the kinds of study material that can be shared.
type MaterialType string

const (
	MaterialTypeNotes         MaterialType = "NOTES"
	MaterialTypeQuestionPaper MaterialType = "QUESTION_PAPER"
	MaterialTypeLabManual     MaterialType = "LAB_MANUAL"
	MaterialTypeProject       MaterialType = "PROJECT"
)

// NormalizeMaterialType coerces unknown type values to NOTES. The old
// clients duplicated this policy in every upload form; the server is now
// the single place that applies it.
func NormalizeMaterialType(t string) MaterialType {
	switch MaterialType(t) {
	case MaterialTypeNotes, MaterialTypeQuestionPaper, MaterialTypeLabManual, MaterialTypeProject:
		return MaterialType(t)
	default:
		return MaterialTypeNotes
	}
}

// MaterialStatus defines the moderation state of a material.
type MaterialStatus string

const (
	MaterialStatusPending  MaterialStatus = "PENDING"
	MaterialStatusApproved MaterialStatus = "APPROVED"
	MaterialStatusRejected MaterialStatus = "REJECTED"
)

// Valid reports whether s is one of the known moderation states.
func (s MaterialStatus) Valid() bool {
	switch s {
	case MaterialStatusPending, MaterialStatusApproved, MaterialStatusRejected:
		return true
	}
	return false
}

// Decided reports whether s is a terminal moderation state.
func (s MaterialStatus) Decided() bool {
	return s == MaterialStatusApproved || s == MaterialStatusRejected
}

// CanTransitionTo reports whether a moderation transition from s to target
// is legal. APPROVED and REJECTED are terminal; the only legal moves are
// PENDING -> APPROVED and PENDING -> REJECTED.
func (s MaterialStatus) CanTransitionTo(target MaterialStatus) bool {
	if s != MaterialStatusPending {
		return false
	}
	return target == MaterialStatusApproved || target == MaterialStatusRejected
}
