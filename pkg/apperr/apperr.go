// Package apperr declares the error taxonomy shared by the storage,
// service and api layers. Handlers map these to HTTP status codes; anything
// not listed here is treated as a persistence failure and surfaced as a
// generic internal error.
package apperr

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotOwner         = errors.New("only the seller may perform this action")
	ErrNotFound         = errors.New("not found")

	ErrInvalidEndTime = errors.New("end_time must be an ISO-8601 timestamp")

	ErrListingNotActive       = errors.New("listing is not active")
	ErrSelfBidNotAllowed      = errors.New("cannot bid on your own listing")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidStateTransition = errors.New("invalid listing state transition")
)

// MissingFieldError reports a required field absent for the chosen sale mode.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// BidTooLowError carries the minimum acceptable bid for display.
type BidTooLowError struct {
	Minimum decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid must be at least %s", e.Minimum.StringFixed(2))
}
