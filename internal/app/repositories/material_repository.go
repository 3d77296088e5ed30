package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/pkg/apperrors"
	"github.com/studyshare/backend/internal/pkg/dberrors"
	"github.com/studyshare/backend/internal/pkg/helpers"
	"github.com/studyshare/backend/internal/pkg/logger"
)

// MaterialRepository handles study material database operations.
type MaterialRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMaterialRepository creates a new MaterialRepository.
func NewMaterialRepository(db *pgxpool.Pool) *MaterialRepository {
	return &MaterialRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const materialColumns = `m.id, m.title, m.description, m.branch, m.year, m.subject, m.type,
	m.file_name, m.file_type, m.file_size, m.file_path, m.uploader_id, m.status,
	m.created_at, m.updated_at, u.username`

func scanMaterial(row pgx.Row) (*models.Material, error) {
	m := &models.Material{Uploader: &models.User{}}
	err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.Branch, &m.Year, &m.Subject, &m.Type,
		&m.FileName, &m.FileType, &m.FileSize, &m.FilePath, &m.UploaderID, &m.Status,
		&m.CreatedAt, &m.UpdatedAt, &m.Uploader.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMaterialNotFound
		}
		return nil, fmt.Errorf("error scanning material: %w", err)
	}
	m.Uploader.ID = m.UploaderID
	return m, nil
}

// Create inserts a new material row and sets its generated fields.
func (r *MaterialRepository) Create(ctx context.Context, m *models.Material) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO materials (title, description, branch, year, subject, type,
			file_name, file_type, file_size, file_path, uploader_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		m.Title, m.Description, m.Branch, m.Year, m.Subject, m.Type,
		m.FileName, m.FileType, m.FileSize, m.FilePath, m.UploaderID, m.Status).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("uploaderID", m.UploaderID).Msg("Error creating material")
		return fmt.Errorf("error creating material: %w", err)
	}
	return nil
}

// GetByID retrieves a material with its uploader's username.
func (r *MaterialRepository) GetByID(ctx context.Context, id int64) (*models.Material, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+materialColumns+`
		FROM materials m
		JOIN users u ON u.id = m.uploader_id
		WHERE m.id = $1`, id)
	return scanMaterial(row)
}

// MaterialFilter narrows a listing query. Nil fields are ignored.
type MaterialFilter struct {
	Status     *models.MaterialStatus
	Branch     *string
	Year       *int
	Subject    *string
	Type       *models.MaterialType
	UploaderID *int64
}

func (f MaterialFilter) apply(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	if f.Status != nil {
		q = q.Where(squirrel.Eq{"m.status": *f.Status})
	}
	if f.Branch != nil {
		q = q.Where(squirrel.Eq{"m.branch": *f.Branch})
	}
	if f.Year != nil {
		q = q.Where(squirrel.Eq{"m.year": *f.Year})
	}
	if f.Subject != nil {
		q = q.Where(squirrel.Eq{"m.subject": *f.Subject})
	}
	if f.Type != nil {
		q = q.Where(squirrel.Eq{"m.type": *f.Type})
	}
	if f.UploaderID != nil {
		q = q.Where(squirrel.Eq{"m.uploader_id": *f.UploaderID})
	}
	return q
}

// List retrieves materials matching the filter, newest first, paginated.
func (r *MaterialRepository) List(ctx context.Context, filter MaterialFilter, page, size int) ([]*models.Material, dto.PaginationInfo, error) {
	countQuery := filter.apply(r.sb.Select("count(*)").From("materials m"))
	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		return nil, dto.PaginationInfo{}, fmt.Errorf("failed to build material count query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		logger.Error().Err(err).Msg("Error counting materials")
		return nil, dto.PaginationInfo{}, fmt.Errorf("error counting materials: %w", err)
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	if totalItems == 0 {
		return []*models.Material{}, pagination, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)

	query := filter.apply(r.sb.Select(materialColumns).
		From("materials m").
		Join("users u ON u.id = m.uploader_id")).
		OrderBy("m.created_at DESC", "m.id DESC").
		Limit(uint64(limit)).
		Offset(offset)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, dto.PaginationInfo{}, fmt.Errorf("failed to build material list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing material list query")
		return nil, dto.PaginationInfo{}, err
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

// UpdateStatus moves a PENDING material to a decided status. The status
// guard lives in the WHERE clause so two concurrent moderators cannot
// both win.
func (r *MaterialRepository) UpdateStatus(ctx context.Context, id int64, status models.MaterialStatus) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE materials SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3`,
		status, id, models.MaterialStatusPending)
	if err != nil {
		return fmt.Errorf("error updating material status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Distinguish missing from already decided.
		var exists bool
		if scanErr := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM materials WHERE id = $1)`, id).Scan(&exists); scanErr != nil {
			return fmt.Errorf("error checking material existence: %w", scanErr)
		}
		if !exists {
			return apperrors.ErrMaterialNotFound
		}
		return apperrors.ErrMaterialDecided
	}
	return nil
}

// Delete removes a material row.
func (r *MaterialRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting material: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrMaterialNotFound
	}
	return nil
}
