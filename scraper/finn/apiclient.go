package finn

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/landomo-com/landomo-norway-finn/config"
	"github.com/landomo-com/landomo-norway-finn/models"
	"github.com/landomo-com/landomo-norway-finn/utils"
)

const searchAPIPath = "/api/search-qf"

var apiSearchKeys = map[models.TransactionType]string{
	models.TransactionRent: "SEARCH_ID_REALESTATE_LETTINGS",
	models.TransactionSale: "SEARCH_ID_REALESTATE_HOMES",
}

// APIClient fetches structured search results from FINN's JSON search API.
// It owns pagination and politeness delays; the decoded responses go through
// the same mapper/normalizer contract as the DOM path.
type APIClient struct {
	client  *http.Client
	base    string
	filters SearchFilters
	delay   time.Duration
	logger  *utils.Logger
	retry   *utils.RetryConfig
}

// NewAPIClient creates an API client from the loaded configuration.
func NewAPIClient(cfg *config.Config, logger *utils.Logger) *APIClient {
	return &APIClient{
		client: &http.Client{Timeout: 30 * time.Second},
		base:   BaseURL,
		filters: SearchFilters{
			Location:     cfg.Location,
			PriceFrom:    cfg.PriceFrom,
			PriceTo:      cfg.PriceTo,
			AreaFrom:     cfg.AreaFrom,
			BedroomsFrom: cfg.BedroomsFrom,
			Sort:         cfg.SortOrder,
		},
		delay:  time.Duration(cfg.RateLimitMs) * time.Millisecond,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

func (c *APIClient) searchURL(tx models.TransactionType, page int) string {
	key, ok := apiSearchKeys[tx]
	if !ok {
		key = apiSearchKeys[models.TransactionRent]
	}

	params := url.Values{}
	params.Set("searchkey", key)
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	if c.filters.Location != "" {
		params.Set("location", ResolveLocation(c.filters.Location))
	}
	if c.filters.PriceFrom > 0 {
		params.Set("price_from", strconv.Itoa(c.filters.PriceFrom))
	}
	if c.filters.PriceTo > 0 {
		params.Set("price_to", strconv.Itoa(c.filters.PriceTo))
	}
	if c.filters.AreaFrom > 0 {
		params.Set("area_from", strconv.Itoa(c.filters.AreaFrom))
	}
	if c.filters.BedroomsFrom > 0 {
		params.Set("no_of_bedrooms_from", strconv.Itoa(c.filters.BedroomsFrom))
	}
	if c.filters.Sort != "" {
		params.Set("sort", c.filters.Sort)
	}

	return c.base + searchAPIPath + "?" + params.Encode()
}

// SearchPage fetches and decodes one page of search results.
func (c *APIClient) SearchPage(tx models.TransactionType, page int) (*SearchResponse, error) {
	var resp *SearchResponse

	err := c.retry.Do(fmt.Sprintf("search-api-page-%d", page), func() error {
		reqURL := c.searchURL(tx, page)
		c.logger.Debug("[finn-api] GET %s", reqURL)

		req, err := http.NewRequest(http.MethodGet, reqURL, nil)
		if err != nil {
			return utils.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Language", "nb-NO,nb;q=0.9,no;q=0.8,en;q=0.7")

		res, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("search request: %w", err)
		}
		defer res.Body.Close()

		// Only throttling and server errors are worth another attempt;
		// any other non-200 will keep answering the same way.
		if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
			return fmt.Errorf("search status %d", res.StatusCode)
		}
		if res.StatusCode != http.StatusOK {
			return utils.Permanent(fmt.Errorf("search status %d", res.StatusCode))
		}

		body, err := io.ReadAll(res.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}

		resp, err = ParseSearchResponse(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SearchAll walks result pages until the response signals no continuation or
// maxPages is reached, and returns every result item collected.
func (c *APIClient) SearchAll(tx models.TransactionType, maxPages int) ([]SearchResult, error) {
	var items []SearchResult

	for page := 1; ; page++ {
		resp, err := c.SearchPage(tx, page)
		if err != nil {
			// Keep what earlier pages already yielded.
			if len(items) > 0 {
				c.logger.Warn("[finn-api] page %d failed, returning %d items collected so far: %v",
					page, len(items), err)
				return items, nil
			}
			return nil, err
		}

		pageItems := resp.Items()
		items = append(items, pageItems...)
		c.logger.Info("[finn-api] Page %d — %d items, %d total", page, len(pageItems), len(items))

		if !resp.HasNextPage() || (maxPages > 0 && page >= maxPages) {
			break
		}
		time.Sleep(c.delay)
	}

	return items, nil
}
