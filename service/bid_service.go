package service

import (
	"context"

	"github.com/shopspring/decimal"

	"marketbot/pkg/logger"
	"marketbot/pkg/models"
	"marketbot/storage"
)

type BidService interface {
	// Place records a bid. Validation and the current-price update run
	// atomically in the storage layer against the locked listing row.
	Place(ctx context.Context, listingID, bidderID int64, amount decimal.Decimal, message string) (*models.Bid, error)
	ListForListing(ctx context.Context, listingID, viewerID, sellerID int64) ([]*models.Bid, error)
}

type bidService struct {
	stg storage.IBidStorage
	log logger.ILogger
}

func NewBidService(stg storage.IStorage, log logger.ILogger) BidService {
	return &bidService{
		stg: stg.Bid(),
		log: log,
	}
}

func (s *bidService) Place(ctx context.Context, listingID, bidderID int64, amount decimal.Decimal, message string) (*models.Bid, error) {
	bid, err := s.stg.Place(ctx, listingID, bidderID, amount, message)
	if err != nil {
		return nil, err
	}
	s.log.Info("bid placed",
		logger.Int64("bid_id", bid.ID),
		logger.Int64("listing_id", listingID),
		logger.String("amount", amount.StringFixed(2)))
	return bid, nil
}

func (s *bidService) ListForListing(ctx context.Context, listingID, viewerID, sellerID int64) ([]*models.Bid, error) {
	includePrivate := viewerID != 0 && viewerID == sellerID
	return s.stg.ListForListing(ctx, listingID, includePrivate)
}
