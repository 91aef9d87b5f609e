package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"marketbot/pkg/apperr"
	"marketbot/pkg/auction"
	"marketbot/pkg/logger"
	"marketbot/pkg/models"
	"marketbot/storage"
)

type bidRepo struct {
	db     *pgxpool.Pool
	engine *auction.Engine
	log    logger.ILogger
}

func NewBidRepo(db *pgxpool.Pool, engine *auction.Engine, log logger.ILogger) storage.IBidStorage {
	return &bidRepo{db: db, engine: engine, log: log}
}

// Place runs the whole validate + insert + price-update step in a single
// transaction. The listing row is locked FOR UPDATE before validation so
// concurrent bidders linearize: whoever loses the lock race re-validates
// against the committed current_price, not a stale snapshot.
func (r *bidRepo) Place(ctx context.Context, listingID, bidderID int64, amount decimal.Decimal, message string) (*models.Bid, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("failed to begin bid transaction", logger.Error(err))
		return nil, err
	}
	defer tx.Rollback(ctx)

	var listing models.Listing
	query := `
		SELECT` + listingColumns + `
		FROM listings l
		WHERE l.id = $1
		FOR UPDATE
	`
	if err := scanListing(tx.QueryRow(ctx, query, listingID), &listing); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.ErrNotFound
		}
		r.log.Error("failed to lock listing for bid", logger.Int64("listing_id", listingID), logger.Error(err))
		return nil, err
	}

	if err := r.engine.ValidateBid(&listing, bidderID, amount); err != nil {
		return nil, err
	}

	bid := models.Bid{
		Amount:    amount,
		Message:   message,
		IsPrivate: r.engine.IsPrivate(&listing),
		ListingID: listingID,
		BidderID:  bidderID,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO bids (amount, message, is_private, listing_id, bidder_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, bid.Amount, bid.Message, bid.IsPrivate, bid.ListingID, bid.BidderID).Scan(&bid.ID, &bid.CreatedAt)
	if err != nil {
		r.log.Error("failed to insert bid", logger.Int64("listing_id", listingID), logger.Error(err))
		return nil, err
	}

	if listing.SaleMode == models.SaleModeAuction {
		_, err = tx.Exec(ctx, `UPDATE listings SET current_price = $2 WHERE id = $1`, listingID, amount)
		if err != nil {
			r.log.Error("failed to update current price", logger.Int64("listing_id", listingID), logger.Error(err))
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("failed to commit bid", logger.Int64("listing_id", listingID), logger.Error(err))
		return nil, err
	}

	return &bid, nil
}

func (r *bidRepo) ListForListing(ctx context.Context, listingID int64, includePrivate bool) ([]*models.Bid, error) {
	query := `
		SELECT b.id, b.amount, b.message, b.created_at, b.is_private, b.listing_id, b.bidder_id,
		       COALESCE(u.first_name, u.username, 'Anonymous') AS bidder_name
		FROM bids b
		JOIN users u ON b.bidder_id = u.id
		WHERE b.listing_id = $1
	`
	if !includePrivate {
		query += ` AND b.is_private = FALSE`
	}
	query += ` ORDER BY b.created_at DESC`

	rows, err := r.db.Query(ctx, query, listingID)
	if err != nil {
		r.log.Error("failed to list bids", logger.Int64("listing_id", listingID), logger.Error(err))
		return nil, err
	}
	defer rows.Close()

	var bids []*models.Bid
	for rows.Next() {
		var b models.Bid
		err := rows.Scan(
			&b.ID, &b.Amount, &b.Message, &b.CreatedAt, &b.IsPrivate, &b.ListingID, &b.BidderID,
			&b.BidderName,
		)
		if err != nil {
			return nil, err
		}
		bids = append(bids, &b)
	}
	return bids, rows.Err()
}
