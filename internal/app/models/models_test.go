package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMaterialType(t *testing.T) {
	tests := []struct {
		in   string
		want MaterialType
	}{
		{"NOTES", MaterialTypeNotes},
		{"QUESTION_PAPER", MaterialTypeQuestionPaper},
		{"LAB_MANUAL", MaterialTypeLabManual},
		{"PROJECT", MaterialTypeProject},
		{"", MaterialTypeNotes},
		{"notes", MaterialTypeNotes},
		{"SOMETHING_ELSE", MaterialTypeNotes},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMaterialType(tt.in))
		})
	}
}

func TestMaterialStatusValid(t *testing.T) {
	assert.True(t, MaterialStatusPending.Valid())
	assert.True(t, MaterialStatusApproved.Valid())
	assert.True(t, MaterialStatusRejected.Valid())
	assert.False(t, MaterialStatus("DRAFT").Valid())
	assert.False(t, MaterialStatus("").Valid())
}

func TestMaterialStatusDecided(t *testing.T) {
	assert.False(t, MaterialStatusPending.Decided())
	assert.True(t, MaterialStatusApproved.Decided())
	assert.True(t, MaterialStatusRejected.Decided())
}

func TestMaterialStatusTransitions(t *testing.T) {
	// Only PENDING may move, and only to a decided state.
	assert.True(t, MaterialStatusPending.CanTransitionTo(MaterialStatusApproved))
	assert.True(t, MaterialStatusPending.CanTransitionTo(MaterialStatusRejected))
	assert.False(t, MaterialStatusPending.CanTransitionTo(MaterialStatusPending))
	assert.False(t, MaterialStatusApproved.CanTransitionTo(MaterialStatusRejected))
	assert.False(t, MaterialStatusRejected.CanTransitionTo(MaterialStatusApproved))
	assert.False(t, MaterialStatusApproved.CanTransitionTo(MaterialStatusPending))
}

func TestUserIsActive(t *testing.T) {
	assert.True(t, (&User{Status: UserStatusActive}).IsActive())
	assert.False(t, (&User{Status: UserStatusSuspended}).IsActive())
}
