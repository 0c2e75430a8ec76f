package domain

import "time"

// ListingRepository defines how security reference data is stored
type ListingRepository interface {
	UpsertListing(listing *SecurityListing) error
	GetListing(symbol string) (*SecurityListing, error)
	AllListings() ([]SecurityListing, error)
}

// Clock returns the current time. Trades are stamped with it on submission.
type Clock func() time.Time
