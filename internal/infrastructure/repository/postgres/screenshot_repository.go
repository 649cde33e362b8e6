package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mcarruthers/shotsort/internal/core/domain"
)

type ScreenshotRepository struct {
	db *sql.DB
}

func NewScreenshotRepository(db *sql.DB) *ScreenshotRepository {
	return &ScreenshotRepository{db: db}
}

// Create inserts a pending row. The partial unique index on asset_identifier
// turns a concurrent duplicate import into ON CONFLICT DO NOTHING, surfaced
// as domain.ErrDuplicateAsset.
func (r *ScreenshotRepository) Create(ctx context.Context, shot *domain.Screenshot) error {
	result, err := r.db.ExecContext(ctx, `
INSERT INTO screenshots (id, asset_identifier, ocr_text, category_id, status, thumbnail, image_path, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT DO NOTHING
`,
		shot.ID, shot.AssetIdentifier, shot.OCRText, nullString(shot.CategoryID),
		string(shot.Status), shot.Thumbnail, shot.ImagePath, shot.CreatedAt, shot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert screenshot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert screenshot rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrDuplicateAsset, "insert screenshot",
			fmt.Errorf("asset_identifier=%s", shot.AssetIdentifier))
	}
	return nil
}

func (r *ScreenshotRepository) GetByID(ctx context.Context, id string) (*domain.Screenshot, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, asset_identifier, ocr_text, category_id, status, thumbnail, image_path, created_at, updated_at
FROM screenshots
WHERE id = $1
`, id)
	return scanScreenshot(row, "id="+id)
}

func (r *ScreenshotRepository) GetByAssetIdentifier(ctx context.Context, assetIdentifier string) (*domain.Screenshot, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, asset_identifier, ocr_text, category_id, status, thumbnail, image_path, created_at, updated_at
FROM screenshots
WHERE asset_identifier = $1 AND asset_identifier <> ''
`, assetIdentifier)
	return scanScreenshot(row, "asset_identifier="+assetIdentifier)
}

func (r *ScreenshotRepository) UpdateArtifacts(ctx context.Context, id string, thumbnail []byte, imagePath string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE screenshots
SET thumbnail = $2, image_path = $3, updated_at = $4
WHERE id = $1
`, id, thumbnail, imagePath, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update artifacts: %w", err)
	}
	return requireRow(result, "update artifacts", id)
}

// CompleteClassification is the single atomic done-transition: text, category
// and status change in one statement, and only for a still-pending row.
func (r *ScreenshotRepository) CompleteClassification(ctx context.Context, id string, cls domain.Classification) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE screenshots
SET ocr_text = $2, category_id = $3, status = $4, updated_at = $5
WHERE id = $1 AND status = $6
`, id, cls.OCRText, nullString(cls.CategoryID), string(domain.StatusDone),
		time.Now().UTC(), string(domain.StatusPending))
	if err != nil {
		return fmt.Errorf("complete classification: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete classification rows affected: %w", err)
	}
	if rows == 0 {
		// Either missing or already done; disambiguate for the caller.
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		if existing.Status == domain.StatusDone {
			return nil
		}
		return domain.WrapError(domain.ErrScreenshotNotFound, "complete classification",
			fmt.Errorf("id=%s", id))
	}
	return nil
}

func (r *ScreenshotRepository) CountPending(ctx context.Context, olderThan time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM screenshots WHERE status = $1 AND updated_at < $2
`, string(domain.StatusPending), olderThan).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending screenshots: %w", err)
	}
	return count, nil
}

func scanScreenshot(row *sql.Row, ref string) (*domain.Screenshot, error) {
	var shot domain.Screenshot
	var categoryID sql.NullString
	var status string

	err := row.Scan(
		&shot.ID, &shot.AssetIdentifier, &shot.OCRText, &categoryID,
		&status, &shot.Thumbnail, &shot.ImagePath, &shot.CreatedAt, &shot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrScreenshotNotFound, "query screenshot",
				fmt.Errorf("%s", ref))
		}
		return nil, fmt.Errorf("scan screenshot: %w", err)
	}
	shot.CategoryID = categoryID.String
	shot.Status = domain.ScreenshotStatus(status)
	return &shot, nil
}

func requireRow(result sql.Result, operation, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrScreenshotNotFound, operation, fmt.Errorf("id=%s", id))
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
