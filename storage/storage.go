package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"marketbot/pkg/models"
)

type IStorage interface {
	User() IUserStorage
	Listing() IListingStorage
	Bid() IBidStorage
	Photo() IPhotoStorage
	Close()
	GetPool() *pgxpool.Pool
}

type IUserStorage interface {
	// GetOrCreate resolves a user by telegram id, creating the record on
	// first sight and refreshing display fields on every hit.
	GetOrCreate(ctx context.Context, telegramID int64, username, firstName, lastName *string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
}

type IListingStorage interface {
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	GetByID(ctx context.Context, id int64) (*models.Listing, error)
	GetBySeller(ctx context.Context, sellerID int64, statuses []models.ListingStatus) ([]*models.Listing, error)
	// MarkPublished flips draft -> active; reports whether a row changed.
	MarkPublished(ctx context.Context, id int64) (bool, error)
	// MarkClosed flips any non-terminal state -> closed.
	MarkClosed(ctx context.Context, id int64) (bool, error)
	// FinalizeExpiredAuction settles an active auction whose end time has
	// passed: sold with the top bidder as winner, or ended without bids.
	FinalizeExpiredAuction(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type IBidStorage interface {
	// Place validates and records a bid in one transaction against the
	// locked listing row, updating current_price for auctions.
	Place(ctx context.Context, listingID, bidderID int64, amount decimal.Decimal, message string) (*models.Bid, error)
	ListForListing(ctx context.Context, listingID int64, includePrivate bool) ([]*models.Bid, error)
}

type IPhotoStorage interface {
	// Add appends a photo at max(display order)+1, serialized per listing.
	Add(ctx context.Context, listingID int64, filename string) (*models.ListingPhoto, error)
	ListForListing(ctx context.Context, listingID int64) ([]*models.ListingPhoto, error)
}
