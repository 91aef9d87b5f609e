package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"marketbot/pkg/apperr"
	"marketbot/pkg/auction"
	"marketbot/pkg/models"
)

func newListingService(stg *fakeStorage) ListingService {
	engine := auction.New(decimal.RequireFromString("1.00"), "₪")
	return NewListingService(stg, engine, &fakeProcessor{}, nopLogger{})
}

func d(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestCreate_fixedPrice(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	svc := newListingService(stg)

	listing, err := svc.Create(context.Background(), 7, CreateListingInput{
		Title:        "Chair",
		SaleMode:     models.SaleModeFixedPrice,
		FixedPrice:   d("120.00"),
		IsNegotiable: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if listing.Status != models.StatusDraft {
		t.Errorf("status %s, want draft", listing.Status)
	}
	if !listing.CurrentPrice.Decimal.Equal(decimal.RequireFromString("120.00")) {
		t.Errorf("current price %s, want 120.00", listing.CurrentPrice.Decimal)
	}
	if !listing.IsNegotiable {
		t.Error("negotiable flag not carried through")
	}
}

func TestCreate_missingRequiredFields(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	svc := newListingService(stg)

	cases := []struct {
		name  string
		input CreateListingInput
		field string
	}{
		{"no title", CreateListingInput{SaleMode: models.SaleModeFree}, "title"},
		{"bad mode", CreateListingInput{Title: "x", SaleMode: "barter"}, "sale_mode"},
		{"fixed without price", CreateListingInput{Title: "x", SaleMode: models.SaleModeFixedPrice}, "fixed_price"},
		{"nyp without min", CreateListingInput{Title: "x", SaleMode: models.SaleModeNameYourPrice}, "min_price"},
		{"auction without start", CreateListingInput{Title: "x", SaleMode: models.SaleModeAuction}, "start_price"},
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), 7, tc.input)
		var missing *apperr.MissingFieldError
		if !errors.As(err, &missing) {
			t.Errorf("%s: got %v, want MissingFieldError", tc.name, err)
			continue
		}
		if missing.Field != tc.field {
			t.Errorf("%s: field %q, want %q", tc.name, missing.Field, tc.field)
		}
	}
}

func TestCreate_free(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	svc := newListingService(stg)

	listing, err := svc.Create(context.Background(), 7, CreateListingInput{
		Title:      "Old books",
		SaleMode:   models.SaleModeFree,
		AllowQueue: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listing.CurrentPrice.Valid {
		t.Error("free listing must not carry a current price")
	}
	if !listing.AllowQueue {
		t.Error("allow_queue flag not carried through")
	}
}

func TestCreate_auctionDefaults(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	svc := newListingService(stg)

	listing, err := svc.Create(context.Background(), 7, CreateListingInput{
		Title:      "Lamp",
		SaleMode:   models.SaleModeAuction,
		StartPrice: d("50.00"),
		EndTime:    "2025-06-10T15:00:00+03:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !listing.CurrentPrice.Decimal.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("current price %s, want start price", listing.CurrentPrice.Decimal)
	}
	if !listing.BidStep.Valid || !listing.BidStep.Decimal.Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("bid step %v, want default 1.00", listing.BidStep)
	}
	want := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	if listing.EndTime == nil || !listing.EndTime.Equal(want) {
		t.Errorf("end time %v, want %v UTC-normalized", listing.EndTime, want)
	}
}

func TestCreate_auctionBadEndTime(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	svc := newListingService(stg)

	_, err := svc.Create(context.Background(), 7, CreateListingInput{
		Title:      "Lamp",
		SaleMode:   models.SaleModeAuction,
		StartPrice: d("50.00"),
		EndTime:    "tomorrow evening",
	})
	if !errors.Is(err, apperr.ErrInvalidEndTime) {
		t.Errorf("got %v, want ErrInvalidEndTime", err)
	}
}

func TestGet_visibility(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	svc := newListingService(stg)

	stg.listings.byID[1] = &models.Listing{
		ID: 1, SellerID: 7, SaleMode: models.SaleModeNameYourPrice,
		Status: models.StatusActive, PrivateOffers: true,
	}
	stg.bids.bids = []*models.Bid{
		{ID: 1, ListingID: 1, BidderID: 20, Amount: decimal.RequireFromString("50.00"), IsPrivate: true},
	}

	asStranger, err := svc.Get(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(asStranger.Bids) != 0 {
		t.Errorf("stranger sees %d bids, want 0", len(asStranger.Bids))
	}
	if asStranger.IsOwner {
		t.Error("stranger flagged as owner")
	}

	asOwner, err := svc.Get(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(asOwner.Bids) != 1 {
		t.Errorf("owner sees %d bids, want 1", len(asOwner.Bids))
	}
	if !asOwner.IsOwner {
		t.Error("owner not flagged as owner")
	}
}

func TestGet_lazyExpiry(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	svc := newListingService(stg)

	past := time.Now().UTC().Add(-time.Hour)
	stg.listings.byID[1] = &models.Listing{
		ID: 1, SellerID: 7, SaleMode: models.SaleModeAuction,
		Status: models.StatusActive, EndTime: &past,
		CurrentPrice: d("100.00"), BidStep: d("5.00"),
	}

	detail, err := svc.Get(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(stg.listings.finalized, []int64{1}) {
		t.Errorf("finalized %v, want [1]", stg.listings.finalized)
	}
	if detail.Listing.Status != models.StatusEnded {
		t.Errorf("status %s, want ended after lazy expiry", detail.Listing.Status)
	}
	if detail.TimeRemaining == nil || !detail.TimeRemaining.Expired {
		t.Errorf("time remaining %+v, want expired marker", detail.TimeRemaining)
	}
}

func TestGet_notFound(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	svc := newListingService(stg)

	_, err := svc.Get(context.Background(), 99, 0)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestPublish(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	svc := newListingService(stg)

	stg.listings.byID[1] = &models.Listing{ID: 1, SellerID: 7, Status: models.StatusDraft}

	if err := svc.Publish(context.Background(), 1, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(stg.listings.published, []int64{1}) {
		t.Errorf("published %v, want [1]", stg.listings.published)
	}

	// Publishing an already active listing is rejected, not silently accepted.
	if err := svc.Publish(context.Background(), 1, 7); !errors.Is(err, apperr.ErrInvalidStateTransition) {
		t.Errorf("got %v, want ErrInvalidStateTransition", err)
	}
}

func TestPublish_authz(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	svc := newListingService(stg)

	stg.listings.byID[1] = &models.Listing{ID: 1, SellerID: 7, Status: models.StatusDraft}

	if err := svc.Publish(context.Background(), 1, 8); !errors.Is(err, apperr.ErrNotOwner) {
		t.Errorf("got %v, want ErrNotOwner", err)
	}
	if err := svc.Publish(context.Background(), 99, 7); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestPublish_raceLost(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	svc := newListingService(stg)

	stg.listings.byID[1] = &models.Listing{ID: 1, SellerID: 7, Status: models.StatusDraft}
	stg.listings.markResult = false

	if err := svc.Publish(context.Background(), 1, 7); !errors.Is(err, apperr.ErrInvalidStateTransition) {
		t.Errorf("got %v, want ErrInvalidStateTransition", err)
	}
}

func TestClose(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	svc := newListingService(stg)

	stg.listings.byID[1] = &models.Listing{ID: 1, SellerID: 7, Status: models.StatusActive}

	if err := svc.Close(context.Background(), 1, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Closed is terminal; no resurrecting.
	if err := svc.Close(context.Background(), 1, 7); !errors.Is(err, apperr.ErrInvalidStateTransition) {
		t.Errorf("got %v, want ErrInvalidStateTransition", err)
	}
}

func TestMyListings_filters(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	svc := newListingService(stg)

	cases := []struct {
		filter string
		want   []models.ListingStatus
	}{
		{"all", nil},
		{"", nil},
		{"active", []models.ListingStatus{models.StatusActive}},
		{"draft", []models.ListingStatus{models.StatusDraft}},
		{"ended", []models.ListingStatus{models.StatusEnded, models.StatusSold, models.StatusClosed}},
	}
	for _, tc := range cases {
		if _, err := svc.MyListings(context.Background(), 7, tc.filter); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.filter, err)
		}
		if !reflect.DeepEqual(stg.listings.lastStatuses, tc.want) {
			t.Errorf("%s: statuses %v, want %v", tc.filter, stg.listings.lastStatuses, tc.want)
		}
	}
}

func TestAddPhotos(t *testing.T) {
	t.Parallel()

	stg := newFakeStorage()
	engine := auction.New(decimal.RequireFromString("1.00"), "₪")
	svc := NewListingService(stg, engine, &fakeProcessor{failFor: "bad.exe"}, nopLogger{})

	stg.listings.byID[1] = &models.Listing{ID: 1, SellerID: 7, Status: models.StatusDraft}

	photos, err := svc.AddPhotos(context.Background(), 1, 7, []Upload{
		{Name: "a.jpg"},
		{Name: "bad.exe"},
		{Name: "b.png"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(photos) != 2 {
		t.Fatalf("stored %d photos, want 2 (bad file skipped)", len(photos))
	}
	if photos[0].DisplayOrder != 1 || photos[1].DisplayOrder != 2 {
		t.Errorf("orders %d,%d want 1,2", photos[0].DisplayOrder, photos[1].DisplayOrder)
	}

	if _, err := svc.AddPhotos(context.Background(), 1, 8, nil); !errors.Is(err, apperr.ErrNotOwner) {
		t.Errorf("got %v, want ErrNotOwner", err)
	}
}
