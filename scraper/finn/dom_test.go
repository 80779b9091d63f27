package finn

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/landomo-com/landomo-norway-finn/models"
)

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

const resultsPage = `
<html><body>
<section class="results">
  <article data-testid="search-result-item">
    <a id="search-ad-448603189" href="/realestate/lettings/ad.html?finnkode=448603189">
      <h2 class="ads__unit__content__title">Flott 3-roms</h2>
    </a>
    <span class="ads__unit__content__price">15 000 kr per måned</span>
    <div class="ads__unit__content__location">Oslo</div>
    <span class="ads__unit__content__area">75 m²</span>
    <img data-src="/dynamic/default/item/448603189/1.jpg" />
  </article>
  <article data-testid="search-result-item">
    <a href="/realestate/lettings/ad.html?finnkode=448603190">
      <h2>Lys hybel</h2>
    </a>
    <span class="price">8 500 kr/mnd</span>
    <div class="location">Bergen</div>
  </article>
  <article data-testid="search-result-item">
    <div class="location">Trondheim</div>
  </article>
</section>
<nav><a rel="next" href="/realestate/lettings/search.html?page=2">Neste</a></nav>
</body></html>`

func TestExtractListings(t *testing.T) {
	doc := mustParse(t, resultsPage)
	bags := ExtractListings(doc)

	// The third container has neither title nor price and is skipped.
	if len(bags) != 2 {
		t.Fatalf("extracted %d bags; want 2", len(bags))
	}

	first := bags[0]
	if first.Title != "Flott 3-roms" {
		t.Errorf("title = %q", first.Title)
	}
	if first.RawPrice != "15 000 kr per måned" {
		t.Errorf("rawPrice = %q", first.RawPrice)
	}
	if first.City != "Oslo" {
		t.Errorf("city = %q", first.City)
	}
	if first.RawSize != "75 m²" {
		t.Errorf("rawSize = %q", first.RawSize)
	}
	if first.ID != "448603189" {
		t.Errorf("id = %q; want finnkode from element id", first.ID)
	}
	if first.Link != "/realestate/lettings/ad.html?finnkode=448603189" {
		t.Errorf("link = %q", first.Link)
	}
	if first.Image != "/dynamic/default/item/448603189/1.jpg" {
		t.Errorf("image = %q", first.Image)
	}

	// Document order is preserved; id recovered from the finnkode query param.
	second := bags[1]
	if second.Title != "Lys hybel" {
		t.Errorf("second title = %q", second.Title)
	}
	if second.ID != "448603190" {
		t.Errorf("second id = %q; want finnkode from href", second.ID)
	}
}

func TestExtractListingsStrategyFallback(t *testing.T) {
	// No data-testid markup at all — a later class-based strategy must win.
	legacyPage := `
<html><body>
  <div class="ads__unit">
    <h2 class="ads__unit__content__title">Enebolig med hage</h2>
    <span class="ads__unit__price">4 500 000 kr</span>
  </div>
  <div class="ads__unit">
    <h2 class="ads__unit__content__title">Moderne rekkehus</h2>
    <span class="ads__unit__price">3 200 000 kr</span>
  </div>
</body></html>`

	bags := ExtractListings(mustParse(t, legacyPage))
	if len(bags) != 2 {
		t.Fatalf("extracted %d bags; want 2", len(bags))
	}
	if bags[0].Title != "Enebolig med hage" || bags[1].Title != "Moderne rekkehus" {
		t.Errorf("titles = %q, %q; want document order", bags[0].Title, bags[1].Title)
	}
}

func TestExtractListingsFirstStrategyWinsPageWide(t *testing.T) {
	// Both a data-testid container and a legacy container exist. Only the
	// first matching strategy's containers may be used.
	mixedPage := `
<html><body>
  <article data-testid="search-result-item">
    <h2>Fra første strategi</h2>
    <span class="price">10 000 kr</span>
  </article>
  <div class="ads__unit">
    <h2>Fra senere strategi</h2>
    <span class="price">20 000 kr</span>
  </div>
</body></html>`

	bags := ExtractListings(mustParse(t, mixedPage))
	if len(bags) != 1 {
		t.Fatalf("extracted %d bags; want 1", len(bags))
	}
	if bags[0].Title != "Fra første strategi" {
		t.Errorf("title = %q; strategies must not be mixed within a page", bags[0].Title)
	}
}

func TestExtractListingsSkipsPanickingContainer(t *testing.T) {
	orig := probeFields
	defer func() { probeFields = orig }()

	calls := 0
	probeFields = func(card *goquery.Selection) models.FieldBag {
		calls++
		if calls == 1 {
			panic("selector engine blew up")
		}
		return orig(card)
	}

	doc := mustParse(t, resultsPage)
	bags := ExtractListings(doc)

	// First card dies mid-probe; the remaining cards on the page survive.
	if len(bags) != 1 {
		t.Fatalf("extracted %d bags; want 1", len(bags))
	}
	if bags[0].Title == "Flott 3-roms" {
		t.Errorf("the failed card leaked into the results: %+v", bags[0])
	}
}

func TestExtractListingsEmptyPage(t *testing.T) {
	bags := ExtractListings(mustParse(t, `<html><body><p>Ingen treff</p></body></html>`))
	if len(bags) != 0 {
		t.Errorf("extracted %d bags from empty page; want 0", len(bags))
	}
	if bags == nil {
		t.Error("want empty slice, not nil")
	}
}

func TestNextPageURL(t *testing.T) {
	doc := mustParse(t, resultsPage)
	if got := NextPageURL(doc); got != "/realestate/lettings/search.html?page=2" {
		t.Errorf("NextPageURL = %q", got)
	}

	last := mustParse(t, `<html><body><nav></nav></body></html>`)
	if got := NextPageURL(last); got != "" {
		t.Errorf("NextPageURL on last page = %q; want empty", got)
	}
}
