package service

import (
	"context"

	"marketbot/config"
	"marketbot/pkg/auction"
	"marketbot/pkg/imaging"
	"marketbot/pkg/logger"
	"marketbot/storage"
)

// Sessions associates opaque tokens with resolved user ids. Implemented by
// the Redis store; faked in tests.
type Sessions interface {
	Create(ctx context.Context, userID int64) (string, error)
	Resolve(ctx context.Context, token string) (int64, error)
}

type IServiceManager interface {
	User() UserService
	Listing() ListingService
	Bid() BidService
}

type service struct {
	userService    UserService
	listingService ListingService
	bidService     BidService
}

func New(stg storage.IStorage, sessions Sessions, engine *auction.Engine, processor imaging.Processor, cfg config.Config, log logger.ILogger) IServiceManager {
	return &service{
		userService:    NewUserService(stg, sessions, cfg.TelegramBotToken, log),
		listingService: NewListingService(stg, engine, processor, log),
		bidService:     NewBidService(stg, log),
	}
}

func (s *service) User() UserService {
	return s.userService
}

func (s *service) Listing() ListingService {
	return s.listingService
}

func (s *service) Bid() BidService {
	return s.bidService
}
