package upload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studyshare/backend/internal/pkg/apperrors"
)

func TestCheckName(t *testing.T) {
	v := NewValidator(MaxMaterialSize)

	tests := []struct {
		name     string
		fileName string
		wantErr  bool
	}{
		{"pdf allowed", "notes.pdf", false},
		{"docx allowed", "assignment.DOCX", false},
		{"image allowed", "diagram.png", false},
		{"archive allowed", "project.zip", false},
		{"executable rejected", "malware.exe", true},
		{"script rejected", "run.sh", true},
		{"no extension rejected", "README", true},
		{"dotfile rejected", ".env", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.CheckName(tt.fileName)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrFileTypeNotAllowed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckSize(t *testing.T) {
	v := NewValidator(1 << 20)

	assert.NoError(t, v.CheckSize(1))
	assert.NoError(t, v.CheckSize(1<<20))

	err := v.CheckSize(1<<20 + 1)
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)

	assert.ErrorIs(t, v.CheckSize(0), apperrors.ErrFileMissing)
	assert.ErrorIs(t, v.CheckSize(-5), apperrors.ErrFileMissing)
}

func TestCheckNilHeader(t *testing.T) {
	v := NewValidator(MaxMaterialSize)

	_, err := v.Check(nil)
	assert.True(t, errors.Is(err, apperrors.ErrFileMissing))
}

func TestMaxSize(t *testing.T) {
	assert.Equal(t, int64(MaxPersonalFileSize), NewValidator(MaxPersonalFileSize).MaxSize())
}
