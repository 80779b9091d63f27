package services

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/landomo-com/landomo-norway-finn/models"
	"github.com/landomo-com/landomo-norway-finn/scraper/finn"
	"github.com/landomo-com/landomo-norway-finn/utils"
)

const (
	country = "Norge"
	// fallbackTitle is used when neither heading nor address survived.
	fallbackTitle = "Bolig i Norge"
)

var (
	// digitRunRegexp captures the first contiguous digit run in free text.
	digitRunRegexp = regexp.MustCompile(`\d+`)
	// areaRegexp captures a digit run only when an area unit follows it.
	areaRegexp = regexp.MustCompile(`(?i)(\d+)\s*(?:m²|m2|kvm)`)
)

// monthlyMarkers are the textual cues for a recurring monthly price, matched
// case-insensitively against the raw price text.
var monthlyMarkers = []string{"mnd", "måned", "pr. md", "per month"}

// propertyTypeKeywords is the fixed-priority classification list. Groups are
// tested in order over lowercased URL+title and the first match wins, so a
// title hitting both apartment and house terms classifies as apartment. Bare
// "hus" is deliberately absent from the house group: it substring-matches
// "rekkehus" and would shadow the townhouse group.
var propertyTypeKeywords = []struct {
	propertyType models.PropertyType
	terms        []string
}{
	{models.PropertyTypeApartment, []string{"leilighet", "apartment", "-roms"}},
	{models.PropertyTypeHouse, []string{"enebolig", "tomannsbolig", "villa", "house"}},
	{models.PropertyTypeStudio, []string{"studio"}},
	{models.PropertyTypeRoom, []string{"hybel", "rom til leie", "room"}},
	{models.PropertyTypeTownhouse, []string{"rekkehus", "townhouse"}},
	{models.PropertyTypeLand, []string{"tomt", "plot", "land"}},
}

// apiPropertyTypes maps the search API's property_type values onto the
// record's categories. Unknown values fall back to keyword classification.
var apiPropertyTypes = map[string]models.PropertyType{
	"apartment":    models.PropertyTypeApartment,
	"leilighet":    models.PropertyTypeApartment,
	"house":        models.PropertyTypeHouse,
	"detached":     models.PropertyTypeHouse,
	"enebolig":     models.PropertyTypeHouse,
	"tomannsbolig": models.PropertyTypeHouse,
	"villa":        models.PropertyTypeHouse,
	"studio":       models.PropertyTypeStudio,
	"room":         models.PropertyTypeRoom,
	"hybel":        models.PropertyTypeRoom,
	"townhouse":    models.PropertyTypeTownhouse,
	"rekkehus":     models.PropertyTypeTownhouse,
	"land":         models.PropertyTypeLand,
	"plot":         models.PropertyTypeLand,
	"tomt":         models.PropertyTypeLand,
}

// Normalizer turns raw field bags and API result items into validated
// listing records. It holds no mutable state beyond the logger and is safe
// to invoke concurrently on independent inputs.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts one DOM-path field bag into a listing record. It
// returns nil only when both title and price are absent in the bag — every
// other malformed field degrades to a default instead of rejecting the item.
func (n *Normalizer) Normalize(bag models.FieldBag, tx models.TransactionType) *models.Listing {
	if bag.Title == "" && bag.Address == "" && bag.RawPrice == "" {
		n.logger.Debug("[normalizer] Dropping bag without title and price")
		return nil
	}

	title := collapseText(bag.Title)
	if title == "" {
		title = collapseText(bag.Address)
	}
	if title == "" {
		title = fallbackTitle
	}

	id := bag.ID
	if id == "" {
		id = fallbackID()
	}

	// Cards occasionally render without an anchor; the ad URL is still
	// derivable from the finnkode, so the record never ships a relative or
	// empty url.
	pageURL := absolutizeURL(bag.Link)
	if pageURL == "" {
		pageURL = finn.AdURL(id, tx)
	}

	city := collapseText(bag.City)
	if city == "" {
		city = country
	}

	listing := &models.Listing{
		ID:              id,
		Source:          finn.Source,
		URL:             pageURL,
		Title:           title,
		Price:           parsePrice(bag.RawPrice),
		PriceUnit:       detectPriceUnit(bag.RawPrice),
		PropertyType:    classifyPropertyType(pageURL, title),
		TransactionType: tx,
		Location: models.Location{
			Address: collapseText(bag.Address),
			City:    city,
			Country: country,
		},
		Details: models.Details{
			Sqm:   extractArea(bag.RawSize),
			Rooms: extractNumber(bag.RawRooms),
		},
		Features:  []string{},
		Images:    []string{},
		ScrapedAt: time.Now(),
	}

	if bag.Image != "" {
		listing.Images = append(listing.Images, absolutizeURL(bag.Image))
	}

	return listing
}

// NormalizeAPIResult converts one search API result item into a listing
// record, flattening the nested location/image/room fields inline. The same
// admission rule applies: no heading and no price means no record.
func (n *Normalizer) NormalizeAPIResult(item finn.SearchResult, tx models.TransactionType) *models.Listing {
	if item.Heading == "" && item.Price == nil {
		n.logger.Debug("[normalizer] Dropping API item without heading and price")
		return nil
	}

	address := collapseText(item.Address)
	if address == "" && item.Location != nil {
		address = collapseText(item.Location.Address)
	}

	title := collapseText(item.Heading)
	if title == "" {
		title = address
	}
	if title == "" {
		title = fallbackTitle
	}

	id := item.ID.String()
	if id == "" {
		id = fallbackID()
	}

	pageURL := absolutizeURL(item.URL)
	if pageURL == "" {
		pageURL = finn.AdURL(id, tx)
	}

	unit := models.PriceUnitTotal
	if tx == models.TransactionRent {
		unit = models.PriceUnitMonthly
	}

	propertyType, trusted := apiPropertyTypes[strings.ToLower(strings.TrimSpace(item.PropertyType))]
	if !trusted {
		propertyType = classifyPropertyType(pageURL, title)
	}

	location := models.Location{
		Address: address,
		City:    country,
		Country: country,
	}
	if item.Location != nil {
		if city := collapseText(item.Location.Municipality); city != "" {
			location.City = city
		}
		location.County = collapseText(item.Location.County)
		location.PostalCode = item.Location.PostalCode
		if c := item.Location.Coordinates; c != nil {
			lat, lon := c.Lat, c.Lon
			location.Latitude = &lat
			location.Longitude = &lon
		}
	}

	listing := &models.Listing{
		ID:              id,
		Source:          finn.Source,
		URL:             pageURL,
		Title:           title,
		Price:           item.Price,
		PriceUnit:       unit,
		PropertyType:    propertyType,
		TransactionType: tx,
		Location:        location,
		Details: models.Details{
			Sqm:       floatToInt(item.LivingArea),
			Rooms:     item.NumberOfRooms,
			Bedrooms:  item.NumberOfBedrooms,
			Bathrooms: item.NumberOfBathrooms,
			YearBuilt: item.YearBuilt,
		},
		Features:  []string{},
		Images:    []string{},
		ScrapedAt: time.Now(),
	}

	if item.Image != nil && item.Image.URL != "" {
		listing.Images = append(listing.Images, absolutizeURL(item.Image.URL))
	}
	for _, img := range item.Images {
		if img.URL != "" {
			listing.Images = append(listing.Images, absolutizeURL(img.URL))
		}
	}

	return listing
}

// NormalizeAll runs Normalize over a batch of bags, keeping input order.
func (n *Normalizer) NormalizeAll(bags []models.FieldBag, tx models.TransactionType) []*models.Listing {
	listings := make([]*models.Listing, 0, len(bags))
	for _, bag := range bags {
		if l := n.Normalize(bag, tx); l != nil {
			listings = append(listings, l)
		}
	}
	n.logger.Info("[normalizer] Normalized %d → %d listings (discarded %d)",
		len(bags), len(listings), len(bags)-len(listings))
	return listings
}

// NormalizeAllParallel is NormalizeAll spread over the worker pool. Bags are
// independent and the normalizer holds no shared state, so they can be
// processed concurrently; input order is preserved in the output.
func (n *Normalizer) NormalizeAllParallel(bags []models.FieldBag, tx models.TransactionType, pool *utils.WorkerPool) []*models.Listing {
	results := make([]*models.Listing, len(bags))
	for i := range bags {
		i := i
		pool.Submit(func() {
			results[i] = n.Normalize(bags[i], tx)
		})
	}
	pool.Wait()

	listings := make([]*models.Listing, 0, len(bags))
	for _, l := range results {
		if l != nil {
			listings = append(listings, l)
		}
	}
	n.logger.Info("[normalizer] Normalized %d → %d listings (discarded %d)",
		len(bags), len(listings), len(bags)-len(listings))
	return listings
}

// NormalizeAPIResults runs NormalizeAPIResult over a batch of result items.
func (n *Normalizer) NormalizeAPIResults(items []finn.SearchResult, tx models.TransactionType) []*models.Listing {
	listings := make([]*models.Listing, 0, len(items))
	for _, item := range items {
		if l := n.NormalizeAPIResult(item, tx); l != nil {
			listings = append(listings, l)
		}
	}
	n.logger.Info("[normalizer] Normalized %d → %d API items (discarded %d)",
		len(items), len(listings), len(items)-len(listings))
	return listings
}

// parsePrice strips every non-digit character from the raw text and parses
// the remaining digit run, so "kr 12 500" becomes 12500. No digits, or a
// run too large for an int, yields an absent price — never an error.
func parsePrice(raw string) *int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return nil
	}

	price, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &price
}

// detectPriceUnit scans the original price text for a recurring-period
// marker. Presence means monthly, absence means a one-time total.
func detectPriceUnit(rawPrice string) models.PriceUnit {
	lower := strings.ToLower(rawPrice)
	for _, marker := range monthlyMarkers {
		if strings.Contains(lower, marker) {
			return models.PriceUnitMonthly
		}
	}
	return models.PriceUnitTotal
}

// extractNumber takes the first contiguous digit run found anywhere in the
// text; no digit run means the field is absent.
func extractNumber(raw string) *int {
	match := digitRunRegexp.FindString(raw)
	if match == "" {
		return nil
	}
	num, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &num
}

// extractArea is stricter than extractNumber: the digit run must be followed
// by an area-unit token, so a bare "85" never counts as square meters.
func extractArea(raw string) *int {
	match := areaRegexp.FindStringSubmatch(raw)
	if len(match) < 2 {
		return nil
	}
	area, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	return &area
}

// classifyPropertyType matches the fixed-priority keyword groups against the
// lowercased URL and title combined.
func classifyPropertyType(pageURL, title string) models.PropertyType {
	haystack := strings.ToLower(pageURL + " " + title)
	for _, group := range propertyTypeKeywords {
		for _, term := range group.terms {
			if strings.Contains(haystack, term) {
				return group.propertyType
			}
		}
	}
	return models.PropertyTypeGeneric
}

// absolutizeURL prefixes the FINN origin when the raw link has no scheme.
func absolutizeURL(link string) string {
	if link == "" {
		return ""
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return finn.BaseURL + link
}

// fallbackID synthesizes an identifier for the rare listing without a source
// id. It is not stable across runs and must never be used as a
// deduplication key between separate invocations.
func fallbackID() string {
	return fmt.Sprintf("finn-%d-%04d", time.Now().UnixNano(), rand.Intn(10000))
}

func floatToInt(f *float64) *int {
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

// collapseText strips leading/trailing whitespace and collapses internal
// whitespace runs.
func collapseText(s string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
