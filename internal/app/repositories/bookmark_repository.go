package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/pkg/apperrors"
	"github.com/studyshare/backend/internal/pkg/dberrors"
	"github.com/studyshare/backend/internal/pkg/helpers"
)

// BookmarkRepository handles material bookmark operations.
type BookmarkRepository struct {
	db *pgxpool.Pool
}

// NewBookmarkRepository creates a new BookmarkRepository.
func NewBookmarkRepository(db *pgxpool.Pool) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// Exists reports whether the user has bookmarked the material.
func (r *BookmarkRepository) Exists(ctx context.Context, userID, materialID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM bookmarks WHERE user_id = $1 AND material_id = $2)`,
		userID, materialID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking bookmark: %w", err)
	}
	return exists, nil
}

// Add creates a bookmark. Adding twice is a no-op.
func (r *BookmarkRepository) Add(ctx context.Context, userID, materialID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bookmarks (user_id, material_id) VALUES ($1, $2)
		ON CONFLICT (user_id, material_id) DO NOTHING`,
		userID, materialID)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrMaterialNotFound
		}
		return fmt.Errorf("error adding bookmark: %w", err)
	}
	return nil
}

// Remove deletes a bookmark. Removing a missing bookmark is a no-op.
func (r *BookmarkRepository) Remove(ctx context.Context, userID, materialID int64) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM bookmarks WHERE user_id = $1 AND material_id = $2`,
		userID, materialID)
	if err != nil {
		return fmt.Errorf("error removing bookmark: %w", err)
	}
	return nil
}

// ListMaterialIDs returns the set of bookmarked material IDs among the given
// candidates, for flagging listings.
func (r *BookmarkRepository) ListMaterialIDs(ctx context.Context, userID int64, materialIDs []int64) (map[int64]bool, error) {
	bookmarked := make(map[int64]bool, len(materialIDs))
	if len(materialIDs) == 0 {
		return bookmarked, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT material_id FROM bookmarks WHERE user_id = $1 AND material_id = ANY($2)`,
		userID, materialIDs)
	if err != nil {
		return nil, fmt.Errorf("error listing bookmarks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning bookmark: %w", err)
		}
		bookmarked[id] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error: %w", err)
	}

	return bookmarked, nil
}

// ListForUser retrieves the user's bookmarked materials that are still
// approved, most recently bookmarked first.
func (r *BookmarkRepository) ListForUser(ctx context.Context, userID int64, page, size int) ([]*models.Material, dto.PaginationInfo, error) {
	var totalItems int64
	err := r.db.QueryRow(ctx, `
		SELECT count(*)
		FROM bookmarks b
		JOIN materials m ON m.id = b.material_id
		WHERE b.user_id = $1 AND m.status = $2`,
		userID, models.MaterialStatusApproved).Scan(&totalItems)
	if err != nil {
		return nil, dto.PaginationInfo{}, fmt.Errorf("error counting bookmarks: %w", err)
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	if totalItems == 0 {
		return []*models.Material{}, pagination, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)

	rows, err := r.db.Query(ctx, `
		SELECT `+materialColumns+`
		FROM bookmarks b
		JOIN materials m ON m.id = b.material_id
		JOIN users u ON u.id = m.uploader_id
		WHERE b.user_id = $1 AND m.status = $2
		ORDER BY b.created_at DESC
		LIMIT $3 OFFSET $4`,
		userID, models.MaterialStatusApproved, limit, offset)
	if err != nil {
		return nil, dto.PaginationInfo{}, fmt.Errorf("error listing bookmarked materials: %w", err)
	}
	defer rows.Close()

	materials := make([]*models.Material, 0)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, dto.PaginationInfo{}, err
		}
		materials = append(materials, m)
	}
	if err = rows.Err(); err != nil {
		return nil, dto.PaginationInfo{}, fmt.Errorf("database iteration error: %w", err)
	}

	return materials, pagination, nil
}
