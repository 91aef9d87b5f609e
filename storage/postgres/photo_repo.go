package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketbot/pkg/apperr"
	"marketbot/pkg/logger"
	"marketbot/pkg/models"
	"marketbot/storage"
)

type photoRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewPhotoRepo(db *pgxpool.Pool, log logger.ILogger) storage.IPhotoStorage {
	return &photoRepo{db: db, log: log}
}

// Add computes max(display_order)+1 under the listing row lock so that
// concurrent uploads cannot claim the same slot.
func (r *photoRepo) Add(ctx context.Context, listingID int64, filename string) (*models.ListingPhoto, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("failed to begin photo transaction", logger.Error(err))
		return nil, err
	}
	defer tx.Rollback(ctx)

	var exists int64
	err = tx.QueryRow(ctx, `SELECT id FROM listings WHERE id = $1 FOR UPDATE`, listingID).Scan(&exists)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.ErrNotFound
		}
		r.log.Error("failed to lock listing for photo", logger.Int64("listing_id", listingID), logger.Error(err))
		return nil, err
	}

	photo := models.ListingPhoto{
		Filename:  filename,
		ListingID: listingID,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO listing_photos (filename, display_order, listing_id)
		SELECT $1, COALESCE(MAX(display_order), 0) + 1, $2
		FROM listing_photos WHERE listing_id = $2
		RETURNING id, display_order
	`, filename, listingID).Scan(&photo.ID, &photo.DisplayOrder)
	if err != nil {
		r.log.Error("failed to insert photo", logger.Int64("listing_id", listingID), logger.Error(err))
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("failed to commit photo", logger.Int64("listing_id", listingID), logger.Error(err))
		return nil, err
	}

	return &photo, nil
}

func (r *photoRepo) ListForListing(ctx context.Context, listingID int64) ([]*models.ListingPhoto, error) {
	query := `
		SELECT id, filename, display_order, listing_id
		FROM listing_photos
		WHERE listing_id = $1
		ORDER BY display_order ASC
	`
	rows, err := r.db.Query(ctx, query, listingID)
	if err != nil {
		r.log.Error("failed to list photos", logger.Int64("listing_id", listingID), logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var photos []*models.ListingPhoto
	for rows.Next() {
		var p models.ListingPhoto
		if err := rows.Scan(&p.ID, &p.Filename, &p.DisplayOrder, &p.ListingID); err != nil {
			return nil, err
		}
		photos = append(photos, &p)
	}
	return photos, rows.Err()
}
