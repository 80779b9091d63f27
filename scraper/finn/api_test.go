package finn

import "testing"

func TestParseSearchResponseAbsentResults(t *testing.T) {
	resp, err := ParseSearchResponse([]byte(`{}`))
	if err != nil {
		t.Fatalf("ParseSearchResponse: %v", err)
	}

	items := resp.Items()
	if items == nil {
		t.Fatal("Items() must return an empty slice, never nil")
	}
	if len(items) != 0 {
		t.Errorf("items = %d; want 0", len(items))
	}
	if resp.HasNextPage() {
		t.Error("no paging block should mean no continuation")
	}
}

func TestParseSearchResponseMalformed(t *testing.T) {
	if _, err := ParseSearchResponse([]byte(`{"results": "nope"`)); err == nil {
		t.Error("malformed top-level payload should error")
	}
}

func TestParseSearchResponseFields(t *testing.T) {
	payload := `{
		"results": [
			{
				"id": 448603189,
				"heading": "Moderne 2-roms leilighet",
				"price": 12500,
				"property_type": "apartment",
				"living_area": 45.5,
				"number_of_rooms": 2,
				"number_of_bedrooms": 1,
				"location": {
					"address": "Karl Johans gate 1",
					"postal_code": "0154",
					"municipality": "Oslo",
					"coordinates": {"lat": 59.9133, "lon": 10.7389}
				},
				"images": [{"url": "https://images.finncdn.no/item/1.jpg"}],
				"url": "/realestate/lettings/ad.html?finnkode=448603189"
			}
		],
		"metadata": {"total": 102, "pages": 2, "current_page": 1}
	}`

	resp, err := ParseSearchResponse([]byte(payload))
	if err != nil {
		t.Fatalf("ParseSearchResponse: %v", err)
	}

	items := resp.Items()
	if len(items) != 1 {
		t.Fatalf("items = %d; want 1", len(items))
	}

	item := items[0]
	if item.ID.String() != "448603189" {
		t.Errorf("id = %q", item.ID.String())
	}
	if item.Heading != "Moderne 2-roms leilighet" {
		t.Errorf("heading = %q", item.Heading)
	}
	if item.Price == nil || *item.Price != 12500 {
		t.Errorf("price = %v", item.Price)
	}
	if item.LivingArea == nil || *item.LivingArea != 45.5 {
		t.Errorf("livingArea = %v", item.LivingArea)
	}
	if item.Location == nil || item.Location.Municipality != "Oslo" {
		t.Fatalf("location = %+v", item.Location)
	}
	if item.Location.Coordinates == nil || item.Location.Coordinates.Lat != 59.9133 {
		t.Errorf("coordinates = %+v", item.Location.Coordinates)
	}
	if len(item.Images) != 1 {
		t.Errorf("images = %v", item.Images)
	}

	if !resp.HasNextPage() {
		t.Error("page 1 of 2 should have a next page")
	}
}

func TestHasNextPage(t *testing.T) {
	tests := []struct {
		name string
		resp SearchResponse
		want bool
	}{
		{"metadata mid", SearchResponse{Metadata: &Metadata{Total: 102, Pages: 2, CurrentPage: 1}}, true},
		{"metadata last", SearchResponse{Metadata: &Metadata{Total: 102, Pages: 2, CurrentPage: 2}}, false},
		{"pagination mid", SearchResponse{Pagination: &Pagination{PerPage: 51, Page: 1, Total: 102}}, true},
		{"pagination last", SearchResponse{Pagination: &Pagination{PerPage: 51, Page: 2, Total: 102}}, false},
		{"pagination zero per_page", SearchResponse{Pagination: &Pagination{Page: 1, Total: 102}}, false},
		{"no blocks", SearchResponse{}, false},
	}

	for _, tt := range tests {
		if got := tt.resp.HasNextPage(); got != tt.want {
			t.Errorf("%s: HasNextPage = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestSearchURL(t *testing.T) {
	u := SearchURL("rent", 1, SearchFilters{Location: "oslo"})
	if u != "https://www.finn.no/realestate/lettings/search.html?location=0.20061" {
		t.Errorf("SearchURL = %q", u)
	}

	u = SearchURL("sale", 3, SearchFilters{Location: "0.20003", PriceFrom: 2000000})
	want := "https://www.finn.no/realestate/homes/search.html?location=0.20003&page=3&price_from=2000000"
	if u != want {
		t.Errorf("SearchURL = %q; want %q", u, want)
	}
}

func TestAdURL(t *testing.T) {
	if got := AdURL("448603189", "rent"); got != "https://www.finn.no/realestate/lettings/ad.html?finnkode=448603189" {
		t.Errorf("AdURL = %q", got)
	}
	if got := AdURL("1", "sale"); got != "https://www.finn.no/realestate/homes/ad.html?finnkode=1" {
		t.Errorf("AdURL = %q", got)
	}
}
