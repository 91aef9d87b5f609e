package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketbot/pkg/logger"
	"marketbot/pkg/models"
	"marketbot/storage"
)

type listingRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewListingRepo(db *pgxpool.Pool, log logger.ILogger) storage.IListingStorage {
	return &listingRepo{db: db, log: log}
}

const listingColumns = `
	l.id, l.title, l.description, l.category, l.condition,
	l.sale_mode, l.fixed_price, l.start_price, l.min_price, l.current_price, l.bid_step,
	l.is_negotiable, l.allow_queue, l.private_offers,
	l.status, l.created_at, l.published_at, l.end_time, l.closed_at,
	l.seller_id, l.winner_id`

func scanListing(row pgx.Row, l *models.Listing) error {
	return row.Scan(
		&l.ID, &l.Title, &l.Description, &l.Category, &l.Condition,
		&l.SaleMode, &l.FixedPrice, &l.StartPrice, &l.MinPrice, &l.CurrentPrice, &l.BidStep,
		&l.IsNegotiable, &l.AllowQueue, &l.PrivateOffers,
		&l.Status, &l.CreatedAt, &l.PublishedAt, &l.EndTime, &l.ClosedAt,
		&l.SellerID, &l.WinnerID,
	)
}

func (r *listingRepo) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	query := `
		INSERT INTO listings (
			title, description, category, condition,
			sale_mode, fixed_price, start_price, min_price, current_price, bid_step,
			is_negotiable, allow_queue, private_offers,
			status, end_time, seller_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		listing.Title,
		listing.Description,
		listing.Category,
		listing.Condition,
		listing.SaleMode,
		listing.FixedPrice,
		listing.StartPrice,
		listing.MinPrice,
		listing.CurrentPrice,
		listing.BidStep,
		listing.IsNegotiable,
		listing.AllowQueue,
		listing.PrivateOffers,
		listing.Status,
		listing.EndTime,
		listing.SellerID,
	).Scan(&listing.ID, &listing.CreatedAt)

	if err != nil {
		r.log.Error("failed to create listing", logger.Error(err))
		return nil, err
	}

	return listing, nil
}

func (r *listingRepo) GetByID(ctx context.Context, id int64) (*models.Listing, error) {
	var listing models.Listing
	query := `
		SELECT` + listingColumns + `,
		       COALESCE(u.first_name, u.username, 'Anonymous') AS seller_name
		FROM listings l
		JOIN users u ON l.seller_id = u.id
		WHERE l.id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&listing.ID, &listing.Title, &listing.Description, &listing.Category, &listing.Condition,
		&listing.SaleMode, &listing.FixedPrice, &listing.StartPrice, &listing.MinPrice, &listing.CurrentPrice, &listing.BidStep,
		&listing.IsNegotiable, &listing.AllowQueue, &listing.PrivateOffers,
		&listing.Status, &listing.CreatedAt, &listing.PublishedAt, &listing.EndTime, &listing.ClosedAt,
		&listing.SellerID, &listing.WinnerID,
		&listing.SellerName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.log.Error("failed to get listing by id", logger.Int64("id", id), logger.Error(err))
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepo) GetBySeller(ctx context.Context, sellerID int64, statuses []models.ListingStatus) ([]*models.Listing, error) {
	query := `
		SELECT` + listingColumns + `
		FROM listings l
		WHERE l.seller_id = $1
	`
	args := []interface{}{sellerID}
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		query += ` AND l.status = ANY($2)`
		args = append(args, values)
	}
	query += ` ORDER BY l.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to get seller listings", logger.Int64("seller_id", sellerID), logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		var l models.Listing
		if err := scanListing(rows, &l); err != nil {
			return nil, err
		}
		listings = append(listings, &l)
	}
	return listings, rows.Err()
}

func (r *listingRepo) MarkPublished(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE listings SET status = 'active', published_at = NOW() WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		r.log.Error("failed to publish listing", logger.Int64("id", id), logger.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *listingRepo) MarkClosed(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE listings SET status = 'closed', closed_at = NOW() WHERE id = $1 AND status IN ('draft', 'active')`, id)
	if err != nil {
		r.log.Error("failed to close listing", logger.Int64("id", id), logger.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// FinalizeExpiredAuction settles an expired auction under the listing row
// lock so it cannot race a concurrent bid. A listing that turns out not to
// be an expired active auction under the lock is left untouched.
func (r *listingRepo) FinalizeExpiredAuction(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status models.ListingStatus
	var saleMode models.SaleMode
	err = tx.QueryRow(ctx,
		`SELECT status, sale_mode FROM listings
		 WHERE id = $1 AND end_time IS NOT NULL AND end_time <= NOW()
		 FOR UPDATE`, id).Scan(&status, &saleMode)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		r.log.Error("failed to lock listing for expiry", logger.Int64("id", id), logger.Error(err))
		return err
	}
	if status != models.StatusActive || saleMode != models.SaleModeAuction {
		return nil
	}

	var winnerID *int64
	err = tx.QueryRow(ctx,
		`SELECT bidder_id FROM bids WHERE listing_id = $1 ORDER BY amount DESC, created_at DESC LIMIT 1`,
		id).Scan(&winnerID)
	if err != nil && err != pgx.ErrNoRows {
		r.log.Error("failed to find top bidder", logger.Int64("id", id), logger.Error(err))
		return err
	}

	if winnerID != nil {
		_, err = tx.Exec(ctx, `UPDATE listings SET status = 'sold', winner_id = $2 WHERE id = $1`, id, *winnerID)
	} else {
		_, err = tx.Exec(ctx, `UPDATE listings SET status = 'ended' WHERE id = $1`, id)
	}
	if err != nil {
		r.log.Error("failed to finalize expired auction", logger.Int64("id", id), logger.Error(err))
		return err
	}

	return tx.Commit(ctx)
}

func (r *listingRepo) Delete(ctx context.Context, id int64) error {
	// Bids and photos go with the listing via FK cascade.
	_, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete listing", logger.Int64("id", id), logger.Error(err))
	}
	return err
}
