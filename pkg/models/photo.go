package models

type ListingPhoto struct {
	ID           int64  `json:"id"`
	Filename     string `json:"filename"`
	DisplayOrder int    `json:"order"`
	ListingID    int64  `json:"listing_id"`
}
