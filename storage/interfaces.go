package storage

import "github.com/landomo-com/landomo-norway-finn/models"

// ListingWriter is the interface any storage backend must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}

// RawBagWriter is the interface for persisting unprocessed scraped data.
type RawBagWriter interface {
	WriteRaw(bags []models.FieldBag) error
	Close() error
}

// ListingFilter narrows a listing query. Zero values mean "no filter".
type ListingFilter struct {
	PropertyType    string
	City            string
	TransactionType string
	Limit           int
}

// ListingReader serves stored listings back out, used by the HTTP API.
type ListingReader interface {
	Fetch(filter ListingFilter) ([]*models.Listing, error)
	FetchByID(id string) (*models.Listing, error)
}
