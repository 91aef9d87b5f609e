package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Bid struct {
	ID        int64           `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Message   string          `json:"message"`
	CreatedAt time.Time       `json:"created_at"`
	IsPrivate bool            `json:"is_private"`

	ListingID int64 `json:"listing_id"`
	BidderID  int64 `json:"bidder_id"`

	// BidderName is populated by queries joining the users table.
	BidderName string `json:"bidder_name,omitempty"`
}
