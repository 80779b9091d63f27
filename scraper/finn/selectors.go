package finn

// CSS selectors used across the scraper. Centralising them makes updates
// after a FINN markup change trivial.

// containerStrategies is the ordered list of strategies for locating listing
// containers on a search-results page, from most to least specific. They are
// tried in order and the first one matching at least one element is adopted
// for the entire page — strategies are never mixed within one page.
var containerStrategies = []string{
	`article[data-testid="search-result-item"]`,
	`div[data-testid="search-result-item"]`,
	`[data-testid="result-item"]`,
	`article.sf-search-ad`,
	`div.ads__unit`,
	`article[class*="ads__unit"]`,
	`div[class*="search-ad"]`,
	`section[class*="results"] article`,
}

// Per-field probe selectors, tried in order within a single container. The
// first matching descendant wins.
var (
	priceSelectors = []string{
		`[data-testid="price"]`,
		`[class*="price"]`,
		`span[class*="amount"]`,
	}
	titleSelectors = []string{
		`[data-testid="heading"]`,
		`h2 a`,
		`h2`,
		`h3`,
		`[class*="heading"]`,
		`[class*="title"]`,
	}
	addressSelectors = []string{
		`[data-testid="address"]`,
		`[class*="address"]`,
	}
	citySelectors = []string{
		`[data-testid="location"]`,
		`[class*="location"]`,
		`[class*="municipality"]`,
	}
	sizeSelectors = []string{
		`[data-testid="area"]`,
		`[class*="area"]`,
		`[class*="size"]`,
		`[class*="sqm"]`,
	}
	roomsSelectors = []string{
		`[data-testid="rooms"]`,
		`[class*="rooms"]`,
		`[class*="bedroom"]`,
	}
	linkSelectors = []string{
		`a[id^="search-ad-"]`,
		`h2 a[href]`,
		`a[href*="finnkode"]`,
		`a[href]`,
	}
	imageSelectors = []string{
		`img[data-src]`,
		`img[src]`,
	}
)

// nextPageSelectors locate the pagination link to the following results page.
var nextPageSelectors = []string{
	`a[rel="next"]`,
	`[data-testid="pagination-next"]`,
	`a[aria-label="Neste side"]`,
	`nav a[href*="page="]`,
}
