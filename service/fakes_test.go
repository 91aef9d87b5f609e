package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"marketbot/pkg/logger"
	"marketbot/pkg/models"
	"marketbot/storage"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, fields ...logger.Field)    {}
func (nopLogger) Error(msg string, fields ...logger.Field)   {}
func (nopLogger) Warning(msg string, fields ...logger.Field) {}
func (nopLogger) Debug(msg string, fields ...logger.Field)   {}

type fakeStorage struct {
	users    *fakeUserRepo
	listings *fakeListingRepo
	bids     *fakeBidRepo
	photos   *fakePhotoRepo
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		users:    &fakeUserRepo{byTelegramID: map[int64]*models.User{}},
		listings: &fakeListingRepo{byID: map[int64]*models.Listing{}, markResult: true},
		bids:     &fakeBidRepo{},
		photos:   &fakePhotoRepo{},
	}
}

func (f *fakeStorage) User() storage.IUserStorage       { return f.users }
func (f *fakeStorage) Listing() storage.IListingStorage { return f.listings }
func (f *fakeStorage) Bid() storage.IBidStorage         { return f.bids }
func (f *fakeStorage) Photo() storage.IPhotoStorage     { return f.photos }
func (f *fakeStorage) Close()                           {}
func (f *fakeStorage) GetPool() *pgxpool.Pool           { return nil }

type fakeUserRepo struct {
	byTelegramID map[int64]*models.User
	nextID       int64
	lastCreate   *models.User
}

func (f *fakeUserRepo) GetOrCreate(ctx context.Context, telegramID int64, username, firstName, lastName *string) (*models.User, error) {
	if user, ok := f.byTelegramID[telegramID]; ok {
		user.Username, user.FirstName, user.LastName = username, firstName, lastName
		f.lastCreate = user
		return user, nil
	}
	f.nextID++
	user := &models.User{ID: f.nextID, TelegramID: telegramID, Username: username, FirstName: firstName, LastName: lastName}
	f.byTelegramID[telegramID] = user
	f.lastCreate = user
	return user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, user := range f.byTelegramID {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	return f.byTelegramID[telegramID], nil
}

type fakeListingRepo struct {
	byID       map[int64]*models.Listing
	nextID     int64
	markResult bool

	lastStatuses []models.ListingStatus
	published    []int64
	closed       []int64
	finalized    []int64
	deleted      []int64
}

func (f *fakeListingRepo) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	f.nextID++
	listing.ID = f.nextID
	f.byID[listing.ID] = listing
	return listing, nil
}

func (f *fakeListingRepo) GetByID(ctx context.Context, id int64) (*models.Listing, error) {
	return f.byID[id], nil
}

func (f *fakeListingRepo) GetBySeller(ctx context.Context, sellerID int64, statuses []models.ListingStatus) ([]*models.Listing, error) {
	f.lastStatuses = statuses
	var out []*models.Listing
	for _, l := range f.byID {
		if l.SellerID == sellerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeListingRepo) MarkPublished(ctx context.Context, id int64) (bool, error) {
	f.published = append(f.published, id)
	if f.markResult {
		f.byID[id].Status = models.StatusActive
	}
	return f.markResult, nil
}

func (f *fakeListingRepo) MarkClosed(ctx context.Context, id int64) (bool, error) {
	f.closed = append(f.closed, id)
	if f.markResult {
		f.byID[id].Status = models.StatusClosed
	}
	return f.markResult, nil
}

func (f *fakeListingRepo) FinalizeExpiredAuction(ctx context.Context, id int64) error {
	f.finalized = append(f.finalized, id)
	f.byID[id].Status = models.StatusEnded
	return nil
}

func (f *fakeListingRepo) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

type fakeBidRepo struct {
	bids       []*models.Bid
	placeErr   error
	placeCalls int

	lastIncludePrivate bool
}

func (f *fakeBidRepo) Place(ctx context.Context, listingID, bidderID int64, amount decimal.Decimal, message string) (*models.Bid, error) {
	f.placeCalls++
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	bid := &models.Bid{ID: int64(len(f.bids) + 1), ListingID: listingID, BidderID: bidderID, Amount: amount, Message: message}
	f.bids = append(f.bids, bid)
	return bid, nil
}

func (f *fakeBidRepo) ListForListing(ctx context.Context, listingID int64, includePrivate bool) ([]*models.Bid, error) {
	f.lastIncludePrivate = includePrivate
	var out []*models.Bid
	for _, b := range f.bids {
		if b.ListingID != listingID {
			continue
		}
		if b.IsPrivate && !includePrivate {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

type fakePhotoRepo struct {
	photos []*models.ListingPhoto
}

func (f *fakePhotoRepo) Add(ctx context.Context, listingID int64, filename string) (*models.ListingPhoto, error) {
	photo := &models.ListingPhoto{
		ID:           int64(len(f.photos) + 1),
		Filename:     filename,
		DisplayOrder: len(f.photos) + 1,
		ListingID:    listingID,
	}
	f.photos = append(f.photos, photo)
	return photo, nil
}

func (f *fakePhotoRepo) ListForListing(ctx context.Context, listingID int64) ([]*models.ListingPhoto, error) {
	var out []*models.ListingPhoto
	for _, p := range f.photos {
		if p.ListingID == listingID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeSessions struct {
	tokens  map[string]int64
	nextTok int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: map[string]int64{}}
}

func (f *fakeSessions) Create(ctx context.Context, userID int64) (string, error) {
	f.nextTok++
	token := fmt.Sprintf("tok-%d", f.nextTok)
	f.tokens[token] = userID
	return token, nil
}

func (f *fakeSessions) Resolve(ctx context.Context, token string) (int64, error) {
	if id, ok := f.tokens[token]; ok {
		return id, nil
	}
	return 0, errors.New("no session")
}

type fakeProcessor struct {
	failFor string
}

func (f *fakeProcessor) Process(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if originalName == f.failFor {
		return "", errors.New("unsupported file")
	}
	return "stored-" + originalName, nil
}
