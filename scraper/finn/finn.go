package finn

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/landomo-com/landomo-norway-finn/config"
	"github.com/landomo-com/landomo-norway-finn/models"
	"github.com/landomo-com/landomo-norway-finn/utils"
)

const (
	// BaseURL is the fixed origin every relative link is resolved against.
	BaseURL = "https://www.finn.no"
	// Source identifies where every record of this scraper came from.
	Source = "finn.no"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var searchPaths = map[models.TransactionType]string{
	models.TransactionRent: "/realestate/lettings/search.html",
	models.TransactionSale: "/realestate/homes/search.html",
}

var adSegments = map[models.TransactionType]string{
	models.TransactionRent: "lettings",
	models.TransactionSale: "homes",
}

// LocationCodes maps common Norwegian place names to FINN's location
// taxonomy codes.
var LocationCodes = map[string]string{
	"oslo":         "0.20061",
	"bergen":       "0.20003",
	"trondheim":    "0.20016",
	"stavanger":    "0.20012",
	"kristiansand": "0.20011",
	"tromso":       "0.20019",
	"drammen":      "0.20006",
	"fredrikstad":  "0.20001",
	"asker":        "0.20002",
	"bodo":         "0.20018",
	"aalesund":     "0.20015",
	// Counties
	"viken":     "0.20030",
	"vestland":  "0.20046",
	"rogaland":  "0.20011",
	"trondelag": "0.20050",
	"nordland":  "0.20018",
	"innlandet": "0.20034",
	"agder":     "0.20042",
}

// ResolveLocation turns a place name into a taxonomy code. Values that are
// not known names are passed through unchanged, so raw codes keep working.
func ResolveLocation(name string) string {
	if code, ok := LocationCodes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return code
	}
	return name
}

// SearchFilters carries the caller-supplied search parameters. Zero values
// mean "no filter".
type SearchFilters struct {
	Location     string
	PriceFrom    int
	PriceTo      int
	AreaFrom     int
	BedroomsFrom int
	Sort         string
}

// SearchURL builds a search-results URL for the given market and page.
func SearchURL(tx models.TransactionType, page int, f SearchFilters) string {
	path, ok := searchPaths[tx]
	if !ok {
		path = searchPaths[models.TransactionRent]
	}

	params := url.Values{}
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	if f.Location != "" {
		params.Set("location", ResolveLocation(f.Location))
	}
	if f.PriceFrom > 0 {
		params.Set("price_from", strconv.Itoa(f.PriceFrom))
	}
	if f.PriceTo > 0 {
		params.Set("price_to", strconv.Itoa(f.PriceTo))
	}
	if f.AreaFrom > 0 {
		params.Set("area_from", strconv.Itoa(f.AreaFrom))
	}
	if f.BedroomsFrom > 0 {
		params.Set("no_of_bedrooms_from", strconv.Itoa(f.BedroomsFrom))
	}
	if f.Sort != "" {
		params.Set("sort", f.Sort)
	}

	u := BaseURL + path
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// AdURL builds the canonical ad page URL for a listing id.
func AdURL(id string, tx models.TransactionType) string {
	seg, ok := adSegments[tx]
	if !ok {
		seg = adSegments[models.TransactionRent]
	}
	return BaseURL + "/realestate/" + seg + "/ad.html?finnkode=" + id
}

// Scraper drives the browser through FINN search-results pages and collects
// raw field bags for the normalizer.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	seen   *utils.IDSet
	retry  *utils.RetryConfig

	mu   sync.Mutex
	bags []models.FieldBag
}

// New creates a ready-to-use FINN page scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		seen:   utils.NewIDSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		bags: make([]models.FieldBag, 0),
	}
}

// Filters builds the search filters from the loaded configuration.
func (s *Scraper) Filters() SearchFilters {
	return SearchFilters{
		Location:     s.cfg.Location,
		PriceFrom:    s.cfg.PriceFrom,
		PriceTo:      s.cfg.PriceTo,
		AreaFrom:     s.cfg.AreaFrom,
		BedroomsFrom: s.cfg.BedroomsFrom,
		Sort:         s.cfg.SortOrder,
	}
}

// Scrape is the entry point that drives pagination across search pages and
// returns the collected raw field bags.
func (s *Scraper) Scrape() ([]models.FieldBag, error) {
	tx := models.TransactionType(s.cfg.TransactionType)

	s.logger.Info("[finn] Starting scrape — market: %s, location: %s, target: %d pages",
		tx, s.cfg.Location, s.cfg.PagesToScrape)

	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[finn] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()
	allocCtx = silentCtx

	currentURL := SearchURL(tx, 1, s.Filters())

	for page := 1; page <= s.cfg.PagesToScrape; page++ {
		s.logger.Info("[finn] Scraping page %d — URL: %s", page, currentURL)

		pageBags, nextURL, err := s.scrapePage(allocCtx, currentURL, page)
		if err != nil {
			s.logger.Error("[finn] Page %d failed: %v", page, err)
			break
		}

		if len(pageBags) == 0 {
			s.logger.Warn("[finn] Page %d returned 0 listings — stopping", page)
			break
		}

		fresh := 0
		s.mu.Lock()
		for _, bag := range pageBags {
			if bag.ID != "" && !s.seen.Add(bag.ID) {
				continue
			}
			s.bags = append(s.bags, bag)
			fresh++
		}
		s.mu.Unlock()

		s.logger.Info("[finn] Page %d done — %d new listings, %d total", page, fresh, len(s.bags))

		if nextURL == "" || page >= s.cfg.PagesToScrape {
			break
		}

		currentURL = nextURL
		time.Sleep(time.Duration(s.cfg.RateLimitMs) * time.Millisecond)
	}

	s.logger.Info("[finn] Scrape complete — total raw listings: %d", len(s.bags))
	return s.bags, nil
}

// scrapePage loads one search-results page, hands the rendered document to
// the extractor, and probes for the next-page link.
func (s *Scraper) scrapePage(allocCtx context.Context, pageURL string, pageNum int) ([]models.FieldBag, string, error) {
	var bags []models.FieldBag
	var nextURL string

	err := s.retry.Do(fmt.Sprintf("scrape-page-%d", pageNum), func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		var html string
		err := chromedp.Run(ctx,
			chromedp.Navigate(pageURL),
			chromedp.Sleep(3*time.Second),
			chromedp.OuterHTML("html", &html),
		)
		if err != nil {
			return fmt.Errorf("chromedp page load: %w", err)
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return fmt.Errorf("parse rendered page: %w", err)
		}

		bags = ExtractListings(doc)
		s.logger.Debug("[finn] Page %d — extracted %d containers", pageNum, len(bags))

		nextURL = NextPageURL(doc)
		if nextURL != "" && !strings.HasPrefix(nextURL, "http") {
			nextURL = BaseURL + nextURL
		}
		return nil
	})

	return bags, nextURL, err
}

// findChromeBinary locates the Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(preferred string) string {
	if preferred != "" {
		return preferred
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
