package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/landomo-com/landomo-norway-finn/models"
	"github.com/landomo-com/landomo-norway-finn/storage"
	"github.com/landomo-com/landomo-norway-finn/utils"
)

type stubReader struct {
	listings   []*models.Listing
	lastFilter storage.ListingFilter
}

func (s *stubReader) Fetch(filter storage.ListingFilter) ([]*models.Listing, error) {
	s.lastFilter = filter
	return s.listings, nil
}

func (s *stubReader) FetchByID(id string) (*models.Listing, error) {
	for _, l := range s.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func newTestServer(listings []*models.Listing) (*Server, *stubReader) {
	reader := &stubReader{listings: listings}
	return New(reader, utils.NewLogger(false)), reader
}

func TestListListings(t *testing.T) {
	srv, reader := newTestServer([]*models.Listing{
		{ID: "1", Title: "Leilighet", PropertyType: models.PropertyTypeApartment},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/listings?property_type=apartment&city=Oslo&limit=10", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	if reader.lastFilter.PropertyType != "apartment" || reader.lastFilter.City != "Oslo" || reader.lastFilter.Limit != 10 {
		t.Errorf("filter = %+v; query params not applied", reader.lastFilter)
	}

	var body struct {
		Count    int               `json:"count"`
		Listings []*models.Listing `json:"listings"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Count != 1 || len(body.Listings) != 1 {
		t.Errorf("body = %+v; want one listing", body)
	}
}

func TestGetListing(t *testing.T) {
	srv, _ := newTestServer([]*models.Listing{{ID: "448603189", Title: "Enebolig"}})

	req := httptest.NewRequest(http.MethodGet, "/api/listings/448603189", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var got models.Listing
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Title != "Enebolig" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestGetListingNotFound(t *testing.T) {
	srv, _ := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/listings/999", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", rec.Code)
	}
}
