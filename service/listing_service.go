package service

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"marketbot/pkg/apperr"
	"marketbot/pkg/auction"
	"marketbot/pkg/imaging"
	"marketbot/pkg/logger"
	"marketbot/pkg/models"
	"marketbot/storage"
)

type CreateListingInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    *string `json:"category"`
	Condition   *string `json:"condition"`

	SaleMode   models.SaleMode     `json:"sale_mode"`
	FixedPrice decimal.NullDecimal `json:"fixed_price"`
	StartPrice decimal.NullDecimal `json:"start_price"`
	MinPrice   decimal.NullDecimal `json:"min_price"`
	BidStep    decimal.NullDecimal `json:"bid_step"`

	IsNegotiable  bool `json:"is_negotiable"`
	AllowQueue    bool `json:"allow_queue"`
	PrivateOffers bool `json:"private_offers"`

	// EndTime is an ISO-8601 timestamp, auction mode only.
	EndTime string `json:"end_time"`
}

// Upload is one incoming photo file.
type Upload struct {
	Name   string
	Reader io.Reader
}

// ListingDetail is the read projection returned to viewers: bids already
// filtered by visibility, countdown computed, ownership resolved.
type ListingDetail struct {
	Listing       *models.Listing        `json:"listing"`
	Photos        []*models.ListingPhoto `json:"photos"`
	Bids          []*models.Bid          `json:"bids"`
	TimeRemaining *auction.Countdown     `json:"time_remaining,omitempty"`
	DisplayPrice  string                 `json:"display_price"`
	IsOwner       bool                   `json:"is_owner"`
}

type ListingService interface {
	Create(ctx context.Context, sellerID int64, input CreateListingInput) (*models.Listing, error)
	Get(ctx context.Context, id, viewerID int64) (*ListingDetail, error)
	MyListings(ctx context.Context, sellerID int64, statusFilter string) ([]*models.Listing, error)
	Publish(ctx context.Context, id, actorID int64) error
	Close(ctx context.Context, id, actorID int64) error
	AddPhotos(ctx context.Context, id, actorID int64, uploads []Upload) ([]*models.ListingPhoto, error)
	Delete(ctx context.Context, id, actorID int64) error
}

type listingService struct {
	listings  storage.IListingStorage
	bids      storage.IBidStorage
	photos    storage.IPhotoStorage
	engine    *auction.Engine
	processor imaging.Processor
	log       logger.ILogger
}

func NewListingService(stg storage.IStorage, engine *auction.Engine, processor imaging.Processor, log logger.ILogger) ListingService {
	return &listingService{
		listings:  stg.Listing(),
		bids:      stg.Bid(),
		photos:    stg.Photo(),
		engine:    engine,
		processor: processor,
		log:       log,
	}
}

func (s *listingService) Create(ctx context.Context, sellerID int64, input CreateListingInput) (*models.Listing, error) {
	if input.Title == "" {
		return nil, &apperr.MissingFieldError{Field: "title"}
	}
	if !input.SaleMode.Valid() {
		return nil, &apperr.MissingFieldError{Field: "sale_mode"}
	}

	listing := &models.Listing{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Condition:   input.Condition,
		SaleMode:    input.SaleMode,
		AllowQueue:  input.AllowQueue,
		Status:      models.StatusDraft,
		SellerID:    sellerID,
	}

	switch input.SaleMode {
	case models.SaleModeFixedPrice:
		if !input.FixedPrice.Valid {
			return nil, &apperr.MissingFieldError{Field: "fixed_price"}
		}
		listing.FixedPrice = input.FixedPrice
		listing.CurrentPrice = input.FixedPrice
		listing.IsNegotiable = input.IsNegotiable

	case models.SaleModeFree:
		// No price fields.

	case models.SaleModeNameYourPrice:
		if !input.MinPrice.Valid {
			return nil, &apperr.MissingFieldError{Field: "min_price"}
		}
		listing.MinPrice = input.MinPrice
		listing.PrivateOffers = input.PrivateOffers

	case models.SaleModeAuction:
		if !input.StartPrice.Valid {
			return nil, &apperr.MissingFieldError{Field: "start_price"}
		}
		listing.StartPrice = input.StartPrice
		listing.CurrentPrice = input.StartPrice
		if input.BidStep.Valid {
			listing.BidStep = input.BidStep
		} else {
			listing.BidStep = decimal.NewNullDecimal(s.engine.BidStep(listing))
		}
		if input.EndTime != "" {
			endTime, err := time.Parse(time.RFC3339, input.EndTime)
			if err != nil {
				return nil, apperr.ErrInvalidEndTime
			}
			utc := endTime.UTC()
			listing.EndTime = &utc
		}
	}

	created, err := s.listings.Create(ctx, listing)
	if err != nil {
		return nil, err
	}

	s.log.Info("listing created",
		logger.Int64("listing_id", created.ID),
		logger.Int64("seller_id", sellerID),
		logger.String("sale_mode", string(created.SaleMode)))
	return created, nil
}

func (s *listingService) Get(ctx context.Context, id, viewerID int64) (*ListingDetail, error) {
	listing, err := s.getListing(ctx, id)
	if err != nil {
		return nil, err
	}

	// Lazy expiry: settle an active auction past its end time before
	// building the projection, then read the settled row back.
	now := time.Now().UTC()
	if listing.SaleMode == models.SaleModeAuction &&
		listing.Status == models.StatusActive &&
		listing.EndTime != nil && !listing.EndTime.After(now) {
		if err := s.listings.FinalizeExpiredAuction(ctx, id); err != nil {
			return nil, err
		}
		if listing, err = s.getListing(ctx, id); err != nil {
			return nil, err
		}
	}

	isOwner := viewerID != 0 && viewerID == listing.SellerID

	photos, err := s.photos.ListForListing(ctx, id)
	if err != nil {
		return nil, err
	}

	bids, err := s.bids.ListForListing(ctx, id, isOwner)
	if err != nil {
		return nil, err
	}

	return &ListingDetail{
		Listing:       listing,
		Photos:        photos,
		Bids:          bids,
		TimeRemaining: s.engine.TimeRemaining(listing, now),
		DisplayPrice:  s.engine.FormatPrice(listing.CurrentPrice),
		IsOwner:       isOwner,
	}, nil
}

func (s *listingService) MyListings(ctx context.Context, sellerID int64, statusFilter string) ([]*models.Listing, error) {
	var statuses []models.ListingStatus
	switch statusFilter {
	case "active":
		statuses = []models.ListingStatus{models.StatusActive}
	case "ended":
		statuses = []models.ListingStatus{models.StatusEnded, models.StatusSold, models.StatusClosed}
	case "draft":
		statuses = []models.ListingStatus{models.StatusDraft}
	}
	return s.listings.GetBySeller(ctx, sellerID, statuses)
}

func (s *listingService) Publish(ctx context.Context, id, actorID int64) error {
	listing, err := s.getOwned(ctx, id, actorID)
	if err != nil {
		return err
	}
	if listing.Status != models.StatusDraft {
		return apperr.ErrInvalidStateTransition
	}

	published, err := s.listings.MarkPublished(ctx, id)
	if err != nil {
		return err
	}
	if !published {
		// Lost a race with another publish/close since the read above.
		return apperr.ErrInvalidStateTransition
	}

	s.log.Info("listing published", logger.Int64("listing_id", id))
	return nil
}

func (s *listingService) Close(ctx context.Context, id, actorID int64) error {
	listing, err := s.getOwned(ctx, id, actorID)
	if err != nil {
		return err
	}
	if listing.Status.Terminal() {
		return apperr.ErrInvalidStateTransition
	}

	closed, err := s.listings.MarkClosed(ctx, id)
	if err != nil {
		return err
	}
	if !closed {
		return apperr.ErrInvalidStateTransition
	}

	s.log.Info("listing closed", logger.Int64("listing_id", id))
	return nil
}

func (s *listingService) AddPhotos(ctx context.Context, id, actorID int64, uploads []Upload) ([]*models.ListingPhoto, error) {
	if _, err := s.getOwned(ctx, id, actorID); err != nil {
		return nil, err
	}

	var stored []*models.ListingPhoto
	for _, upload := range uploads {
		filename, err := s.processor.Process(ctx, upload.Name, upload.Reader)
		if err != nil {
			// Mirror the upload flow of the mini app: a bad file is
			// skipped, the rest of the batch still lands.
			s.log.Warning("skipping photo upload",
				logger.Int64("listing_id", id),
				logger.String("file", upload.Name),
				logger.Error(err))
			continue
		}
		photo, err := s.photos.Add(ctx, id, filename)
		if err != nil {
			return nil, err
		}
		stored = append(stored, photo)
	}
	return stored, nil
}

func (s *listingService) Delete(ctx context.Context, id, actorID int64) error {
	if _, err := s.getOwned(ctx, id, actorID); err != nil {
		return err
	}
	return s.listings.Delete(ctx, id)
}

func (s *listingService) getListing(ctx context.Context, id int64) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, apperr.ErrNotFound
	}
	return listing, nil
}

func (s *listingService) getOwned(ctx context.Context, id, actorID int64) (*models.Listing, error) {
	listing, err := s.getListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != actorID {
		return nil, apperr.ErrNotOwner
	}
	return listing, nil
}
