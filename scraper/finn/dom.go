package finn

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/landomo-com/landomo-norway-finn/models"
)

// ExtractListings walks a loaded search-results document and produces one
// FieldBag per detected listing container, in document order. A container is
// emitted only if at least a title or a price was found in it. A failure
// while probing an individual container skips that container; a whole page
// is never failed for one bad card.
func ExtractListings(doc *goquery.Document) []models.FieldBag {
	bags := make([]models.FieldBag, 0)

	containers := findContainers(doc)
	if containers == nil {
		return bags
	}

	containers.Each(func(_ int, card *goquery.Selection) {
		bag, ok := probeContainer(card)
		if ok {
			bags = append(bags, bag)
		}
	})

	return bags
}

// findContainers tries each container strategy in order and adopts the first
// one that matches anything on the page.
func findContainers(doc *goquery.Document) *goquery.Selection {
	for _, strategy := range containerStrategies {
		if sel := doc.Find(strategy); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

func probeContainer(card *goquery.Selection) (bag models.FieldBag, ok bool) {
	defer func() {
		// A malformed card must not take the page down with it.
		if r := recover(); r != nil {
			ok = false
		}
	}()

	bag = probeFields(card)

	if bag.Title == "" && bag.RawPrice == "" {
		return bag, false
	}
	return bag, true
}

// probeFields runs every field probe over one card. It is a variable so the
// panic-isolation path in probeContainer can be exercised with an injected
// failure.
var probeFields = func(card *goquery.Selection) models.FieldBag {
	var bag models.FieldBag
	bag.RawPrice = probeText(card, priceSelectors)
	bag.Title = probeText(card, titleSelectors)
	bag.Address = probeText(card, addressSelectors)
	bag.City = probeText(card, citySelectors)
	bag.RawSize = probeText(card, sizeSelectors)
	bag.RawRooms = probeText(card, roomsSelectors)
	bag.Link = probeAttr(card, "href", linkSelectors)
	bag.Image = probeImage(card)
	bag.ID = extractFinnkode(card, bag.Link)
	return bag
}

// probeText returns the collapsed text of the first matching descendant.
func probeText(card *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		el := card.Find(s).First()
		if el.Length() == 0 {
			continue
		}
		if text := collapseWhitespace(el.Text()); text != "" {
			return text
		}
	}
	return ""
}

// probeAttr returns the named attribute of the first matching descendant
// that actually carries it.
func probeAttr(card *goquery.Selection, attr string, selectors []string) string {
	for _, s := range selectors {
		if val, exists := card.Find(s).First().Attr(attr); exists && val != "" {
			return val
		}
	}
	return ""
}

func probeImage(card *goquery.Selection) string {
	for _, s := range imageSelectors {
		el := card.Find(s).First()
		if el.Length() == 0 {
			continue
		}
		if val, exists := el.Attr("data-src"); exists && val != "" {
			return val
		}
		if val, exists := el.Attr("src"); exists && val != "" {
			return val
		}
	}
	return ""
}

// extractFinnkode recovers the listing id from the ad link's element id or
// its finnkode query parameter.
func extractFinnkode(card *goquery.Selection, link string) string {
	if id, exists := card.Find(`a[id^="search-ad-"]`).First().Attr("id"); exists {
		return strings.TrimPrefix(id, "search-ad-")
	}
	if i := strings.Index(link, "finnkode="); i >= 0 {
		code := link[i+len("finnkode="):]
		if j := strings.IndexAny(code, "&#"); j >= 0 {
			code = code[:j]
		}
		return code
	}
	return ""
}

// NextPageURL returns the href of the pagination link to the next results
// page, or "" when the page has none.
func NextPageURL(doc *goquery.Document) string {
	for _, s := range nextPageSelectors {
		if href, exists := doc.Find(s).First().Attr("href"); exists && href != "" {
			return href
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
