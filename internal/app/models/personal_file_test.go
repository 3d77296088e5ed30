package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestBuildBreadcrumb(t *testing.T) {
	folders := map[int64]*PersonalFolder{
		1: {ID: 1, Name: "root"},
		2: {ID: 2, Name: "semester-1", ParentID: ptr(1)},
		3: {ID: 3, Name: "physics", ParentID: ptr(2)},
	}

	t.Run("nested folder", func(t *testing.T) {
		crumbs := BuildBreadcrumb(folders, 3)
		assert.Equal(t, []BreadcrumbEntry{
			{ID: 1, Name: "root"},
			{ID: 2, Name: "semester-1"},
			{ID: 3, Name: "physics"},
		}, crumbs)
	})

	t.Run("root folder", func(t *testing.T) {
		crumbs := BuildBreadcrumb(folders, 1)
		assert.Equal(t, []BreadcrumbEntry{{ID: 1, Name: "root"}}, crumbs)
	})

	t.Run("unknown folder", func(t *testing.T) {
		assert.Empty(t, BuildBreadcrumb(folders, 99))
	})

	t.Run("missing ancestor terminates walk", func(t *testing.T) {
		orphaned := map[int64]*PersonalFolder{
			5: {ID: 5, Name: "leaf", ParentID: ptr(4)},
		}
		crumbs := BuildBreadcrumb(orphaned, 5)
		assert.Equal(t, []BreadcrumbEntry{{ID: 5, Name: "leaf"}}, crumbs)
	})

	t.Run("cycle does not loop forever", func(t *testing.T) {
		cyclic := map[int64]*PersonalFolder{
			7: {ID: 7, Name: "a", ParentID: ptr(8)},
			8: {ID: 8, Name: "b", ParentID: ptr(7)},
		}
		crumbs := BuildBreadcrumb(cyclic, 7)
		assert.Len(t, crumbs, 2)
	})
}
