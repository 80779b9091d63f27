package models

import "time"

// TransactionType tells the normalizer which FINN market a raw item came
// from. It is supplied by the caller, never inferred from the data.
type TransactionType string

const (
	TransactionSale TransactionType = "sale"
	TransactionRent TransactionType = "rent"
)

// PriceUnit distinguishes a one-time total from a recurring monthly price.
type PriceUnit string

const (
	PriceUnitTotal   PriceUnit = "total"
	PriceUnitMonthly PriceUnit = "monthly"
)

// PropertyType is the classified dwelling category of a listing.
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeStudio    PropertyType = "studio"
	PropertyTypeRoom      PropertyType = "room"
	PropertyTypeTownhouse PropertyType = "townhouse"
	PropertyTypeLand      PropertyType = "land"
	// PropertyTypeGeneric is the fallback when no keyword group matches.
	PropertyTypeGeneric PropertyType = "property"
)

// FieldBag holds the raw, untyped fragments probed out of one listing
// container on a search-results page. Any field may be empty; the normalizer
// decides what survives. A bag is owned by the extractor that built it until
// it is handed to the normalizer.
type FieldBag struct {
	ID       string
	Title    string
	Address  string
	City     string
	RawPrice string
	RawSize  string
	RawRooms string
	Link     string
	Image    string
}

// Location describes where a listing is. City falls back to the country name
// when the source carries no locality; coordinates only exist on the API path.
type Location struct {
	Address    string   `json:"address,omitempty"`
	City       string   `json:"city"`
	County     string   `json:"county,omitempty"`
	Country    string   `json:"country"`
	PostalCode string   `json:"postalCode,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// Details holds the numeric facts extracted from free text. A nil field means
// the source never stated it.
type Details struct {
	Sqm       *int `json:"sqm,omitempty"`
	Rooms     *int `json:"rooms,omitempty"`
	Bedrooms  *int `json:"bedrooms,omitempty"`
	Bathrooms *int `json:"bathrooms,omitempty"`
	YearBuilt *int `json:"yearBuilt,omitempty"`
}

// Listing is the validated, immutable record produced by normalization.
// Prices are in NOK. ScrapedAt is the normalization instant, not the
// original publication time.
type Listing struct {
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	URL             string          `json:"url"`
	Title           string          `json:"title"`
	Price           *int            `json:"price,omitempty"`
	PriceUnit       PriceUnit       `json:"priceUnit"`
	PropertyType    PropertyType    `json:"propertyType"`
	TransactionType TransactionType `json:"transactionType"`
	Location        Location        `json:"location"`
	Details         Details         `json:"details"`
	Features        []string        `json:"features"`
	Images          []string        `json:"images"`
	ScrapedAt       time.Time       `json:"scrapedAt"`
}

// ScrapeReport holds the aggregate statistics computed over a finished run.
type ScrapeReport struct {
	TotalListings  int
	WithPrice      int
	AveragePrice   float64
	MinPrice       int
	MaxPrice       int
	AverageSqm     float64
	MostExpensive  *Listing
	ByPropertyType map[PropertyType]int
	ByCity         map[string]int
}
