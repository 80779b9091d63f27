package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/landomo-com/landomo-norway-finn/models"
	"github.com/landomo-com/landomo-norway-finn/utils"
)

// InsightService computes aggregate statistics over a finished run.
type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate builds a report over the normalized listings.
func (s *InsightService) Generate(listings []*models.Listing) *models.ScrapeReport {
	report := &models.ScrapeReport{
		ByPropertyType: make(map[models.PropertyType]int),
		ByCity:         make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var priceTotal int
	var sqmTotal, sqmCount int

	for _, l := range listings {
		report.ByPropertyType[l.PropertyType]++
		if l.Location.City != "" {
			report.ByCity[l.Location.City]++
		}
		if l.Details.Sqm != nil {
			sqmTotal += *l.Details.Sqm
			sqmCount++
		}

		if l.Price == nil {
			continue
		}
		price := *l.Price
		priceTotal += price
		if report.WithPrice == 0 {
			report.MinPrice = price
			report.MaxPrice = price
			report.MostExpensive = l
		}
		report.WithPrice++
		if price < report.MinPrice {
			report.MinPrice = price
		}
		if price > report.MaxPrice {
			report.MaxPrice = price
			report.MostExpensive = l
		}
	}

	if report.WithPrice > 0 {
		report.AveragePrice = round2(float64(priceTotal) / float64(report.WithPrice))
	}
	if sqmCount > 0 {
		report.AverageSqm = round2(float64(sqmTotal) / float64(sqmCount))
	}

	return report
}

// Print writes a human-readable report to stdout.
func (s *InsightService) Print(r *models.ScrapeReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n%s\n  FINN.NO SCRAPE REPORT\n%s\n\n", sep, sep)

	fmt.Printf("  Overview\n  %s\n", thin)
	fmt.Printf("  Total listings    : %d\n", r.TotalListings)
	fmt.Printf("  With price        : %d\n\n", r.WithPrice)

	fmt.Printf("  Price statistics (NOK)\n  %s\n", thin)
	if r.WithPrice > 0 {
		fmt.Printf("  Average : %.0f\n", r.AveragePrice)
		fmt.Printf("  Minimum : %d\n", r.MinPrice)
		fmt.Printf("  Maximum : %d\n", r.MaxPrice)
	} else {
		fmt.Printf("  No price data available\n")
	}
	if r.AverageSqm > 0 {
		fmt.Printf("  Average size : %.1f m²\n", r.AverageSqm)
	}
	fmt.Println()

	if r.MostExpensive != nil {
		fmt.Printf("  Most expensive\n  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.Title, 50))
		fmt.Printf("  %s — %d kr\n\n", r.MostExpensive.Location.City, *r.MostExpensive.Price)
	}

	fmt.Printf("  By property type\n  %s\n", thin)
	printCounts(toStringCounts(r.ByPropertyType))

	fmt.Printf("\n  By city\n  %s\n", thin)
	printCounts(r.ByCity)

	fmt.Printf("\n%s\n\n", sep)
}

func toStringCounts(m map[models.PropertyType]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func printCounts(m map[string]int) {
	if len(m) == 0 {
		fmt.Printf("  No data\n")
		return
	}

	type entry struct {
		key   string
		count int
	}
	entries := make([]entry, 0, len(m))
	for k, v := range m {
		entries = append(entries, entry{k, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})

	for _, e := range entries {
		fmt.Printf("  %-30s %s (%d)\n", truncate(e.key, 28), strings.Repeat("█", e.count), e.count)
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// truncate shortens s to max runes. Titles here are Norwegian, so slicing
// must happen on runes rather than bytes to keep ø/å/² intact.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
