// Package auction holds the pricing rules for listings: minimum acceptable
// bids, bid legality, offer privacy and auction countdowns. Everything here
// is pure; persistence calls these checks inside its own transactions.
package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"marketbot/pkg/apperr"
	"marketbot/pkg/models"
)

type Engine struct {
	defaultBidStep decimal.Decimal
	currencySymbol string
}

func New(defaultBidStep decimal.Decimal, currencySymbol string) *Engine {
	return &Engine{
		defaultBidStep: defaultBidStep,
		currencySymbol: currencySymbol,
	}
}

// BidStep returns the listing's step, or the configured default when the
// listing carries none.
func (e *Engine) BidStep(l *models.Listing) decimal.Decimal {
	if l.BidStep.Valid {
		return l.BidStep.Decimal
	}
	return e.defaultBidStep
}

// MinimumAcceptableBid is current_price + bid_step. Only meaningful for
// auction listings; callers must not reach here for other sale modes.
func (e *Engine) MinimumAcceptableBid(l *models.Listing) decimal.Decimal {
	return l.CurrentPrice.Decimal.Add(e.BidStep(l))
}

// ValidateBid enforces bid legality against the given listing snapshot.
// The self-bid check runs first so a seller is always told SelfBidNotAllowed
// whatever the amount or listing state.
func (e *Engine) ValidateBid(l *models.Listing, bidderID int64, amount decimal.Decimal) error {
	if bidderID == l.SellerID {
		return apperr.ErrSelfBidNotAllowed
	}
	if l.Status != models.StatusActive {
		return apperr.ErrListingNotActive
	}
	if !amount.IsPositive() {
		return apperr.ErrInvalidAmount
	}
	if l.SaleMode == models.SaleModeAuction {
		if min := e.MinimumAcceptableBid(l); amount.LessThan(min) {
			return &apperr.BidTooLowError{Minimum: min}
		}
	}
	return nil
}

// IsPrivate reports whether a bid on this listing is visible to the seller
// only. True only for name-your-price listings with private offers enabled;
// any caller-supplied flag is ignored.
func (e *Engine) IsPrivate(l *models.Listing) bool {
	return l.SaleMode == models.SaleModeNameYourPrice && l.PrivateOffers
}

// FormatPrice renders an amount for display: "Free" when absent, otherwise
// the currency symbol and the truncated integer part.
func (e *Engine) FormatPrice(p decimal.NullDecimal) string {
	if !p.Valid {
		return "Free"
	}
	return e.currencySymbol + p.Decimal.Truncate(0).String()
}

// TimeRemaining returns the countdown for an auction with an end time, nil
// otherwise. Pure: it never touches listing state.
func (e *Engine) TimeRemaining(l *models.Listing, now time.Time) *Countdown {
	if l.SaleMode != models.SaleModeAuction || l.EndTime == nil {
		return nil
	}
	c := Remaining(*l.EndTime, now)
	return &c
}
