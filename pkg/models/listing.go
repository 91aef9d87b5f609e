package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleMode string

const (
	SaleModeFixedPrice    SaleMode = "fixed_price"
	SaleModeFree          SaleMode = "free"
	SaleModeNameYourPrice SaleMode = "name_your_price"
	SaleModeAuction       SaleMode = "auction"
)

func (m SaleMode) Valid() bool {
	switch m {
	case SaleModeFixedPrice, SaleModeFree, SaleModeNameYourPrice, SaleModeAuction:
		return true
	}
	return false
}

type ListingStatus string

const (
	StatusDraft  ListingStatus = "draft"
	StatusActive ListingStatus = "active"
	StatusSold   ListingStatus = "sold"
	StatusClosed ListingStatus = "closed"
	StatusEnded  ListingStatus = "ended"
)

// Terminal reports whether a listing can never go back to active.
func (s ListingStatus) Terminal() bool {
	return s == StatusSold || s == StatusClosed || s == StatusEnded
}

type Listing struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    *string `json:"category"`
	Condition   *string `json:"condition"`

	SaleMode     SaleMode            `json:"sale_mode"`
	FixedPrice   decimal.NullDecimal `json:"fixed_price"`
	StartPrice   decimal.NullDecimal `json:"start_price"`
	MinPrice     decimal.NullDecimal `json:"min_price"`
	CurrentPrice decimal.NullDecimal `json:"current_price"`
	BidStep      decimal.NullDecimal `json:"bid_step"`

	IsNegotiable  bool `json:"is_negotiable"`
	AllowQueue    bool `json:"allow_queue"`
	PrivateOffers bool `json:"private_offers"`

	Status      ListingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	PublishedAt *time.Time    `json:"published_at"`
	EndTime     *time.Time    `json:"end_time"`
	ClosedAt    *time.Time    `json:"closed_at"`

	SellerID int64  `json:"seller_id"`
	WinnerID *int64 `json:"winner_id"`

	// SellerName is populated by queries joining the users table.
	SellerName string `json:"seller_name,omitempty"`
}
