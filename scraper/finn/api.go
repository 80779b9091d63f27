package finn

import (
	"encoding/json"
	"fmt"
)

// SearchResponse is the shape of a FINN search API payload. Either the
// metadata or the pagination block may be present; both may be absent on
// degraded responses.
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	Metadata   *Metadata      `json:"metadata"`
	Pagination *Pagination    `json:"pagination"`
}

// Metadata is the primary paging block returned by the search API.
type Metadata struct {
	Total       int `json:"total"`
	Pages       int `json:"pages"`
	CurrentPage int `json:"current_page"`
}

// Pagination is the alternate paging block seen on some endpoints.
type Pagination struct {
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
	Total   int `json:"total"`
}

// SearchResult is one listing item in a search response. Every field is
// optional; the normalizer owns all fallback behavior.
type SearchResult struct {
	ID                json.Number     `json:"id"`
	Heading           string          `json:"heading"`
	Address           string          `json:"address"`
	Location          *ResultLocation `json:"location"`
	Price             *int            `json:"price"`
	PropertyType      string          `json:"property_type"`
	LivingArea        *float64        `json:"living_area"`
	NumberOfRooms     *int            `json:"number_of_rooms"`
	NumberOfBedrooms  *int            `json:"number_of_bedrooms"`
	NumberOfBathrooms *int            `json:"number_of_bathrooms"`
	YearBuilt         *int            `json:"year_built"`
	Description       string          `json:"description"`
	Image             *ResultImage    `json:"image"`
	Images            []ResultImage   `json:"images"`
	URL               string          `json:"url"`
}

// ResultLocation is the nested location block of a search result.
type ResultLocation struct {
	Address      string             `json:"address"`
	PostalCode   string             `json:"postal_code"`
	Municipality string             `json:"municipality"`
	County       string             `json:"county"`
	Coordinates  *ResultCoordinates `json:"coordinates"`
}

// ResultCoordinates holds a listing's position.
type ResultCoordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ResultImage is one image entry of a search result.
type ResultImage struct {
	URL string `json:"url"`
}

// ParseSearchResponse decodes a raw search payload. Only a malformed
// top-level document is an error; a well-formed document with no results is
// a valid, empty response.
func ParseSearchResponse(raw []byte) (*SearchResponse, error) {
	var resp SearchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("finn: decode search response: %w", err)
	}
	return &resp, nil
}

// Items returns the result array for the normalizer to consume. An absent
// results field yields an empty slice, never an error.
func (r *SearchResponse) Items() []SearchResult {
	if r == nil || r.Results == nil {
		return []SearchResult{}
	}
	return r.Results
}

// HasNextPage reports whether the pager should request another page, based
// on whichever paging block the response carried. With neither block present
// there is no continuation signal and paging stops.
func (r *SearchResponse) HasNextPage() bool {
	if r == nil {
		return false
	}
	if m := r.Metadata; m != nil {
		return m.CurrentPage < m.Pages
	}
	if p := r.Pagination; p != nil {
		if p.PerPage <= 0 {
			return false
		}
		return p.Page*p.PerPage < p.Total
	}
	return false
}
