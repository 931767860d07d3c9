package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

// dateLayouts covers the formats scraped articles and uploads carry.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDocDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(strings.Replace(value, "Z", "+00:00", 1))
	if t, err := time.Parse("2006-01-02T15:04:05-07:00", value); err == nil {
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func cutoffFor(timeRange string, now time.Time) time.Time {
	switch timeRange {
	case "last_24h":
		return now.Add(-24 * time.Hour)
	case "7d":
		return now.AddDate(0, 0, -7)
	case "30d":
		return now.AddDate(0, 0, -30)
	}
	return time.Time{}
}

// Filter applies the parsed query as an AND-chain: source, time range,
// CVE membership, then keyword containment (OR across keywords).
// Documents whose date cannot be parsed pass the time filter rather
// than being excluded.
func Filter(items []domain.Document, parsed ParsedQuery) []domain.Document {
	results := items

	if parsed.Source != "" {
		var filtered []domain.Document
		for _, item := range results {
			if strings.EqualFold(item.Source, parsed.Source) {
				filtered = append(filtered, item)
			}
		}
		results = filtered
	}

	if parsed.TimeRange != "" {
		cutoff := cutoffFor(parsed.TimeRange, time.Now().UTC())
		var filtered []domain.Document
		for _, item := range results {
			if item.Date == "" {
				filtered = append(filtered, item)
				continue
			}
			t, ok := parseDocDate(item.Date)
			if !ok || !t.Before(cutoff) {
				// Fail open on unparseable dates.
				filtered = append(filtered, item)
			}
		}
		results = filtered
	}

	if parsed.CVEID != "" {
		want := strings.ToUpper(parsed.CVEID)
		var filtered []domain.Document
		for _, item := range results {
			for _, cve := range item.Extracted.CVEs {
				if strings.ToUpper(cve) == want {
					filtered = append(filtered, item)
					break
				}
			}
		}
		results = filtered
	}

	if len(parsed.Keywords) > 0 {
		var filtered []domain.Document
		for _, item := range results {
			haystack := strings.ToLower(strings.Join([]string{
				item.Title,
				item.Content,
				item.Description,
				strings.Join(item.Extracted.Threats, " "),
				strings.Join(item.Extracted.Tags, " "),
			}, " "))

			for _, kw := range parsed.Keywords {
				if strings.Contains(haystack, strings.ToLower(kw)) {
					filtered = append(filtered, item)
					break
				}
			}
		}
		results = filtered
	}

	return results
}

var timeRangeDescriptions = map[string]string{
	"last_24h": "last 24 hours",
	"7d":       "last 7 days",
	"30d":      "last 30 days",
}

// Summarize renders a one-sentence natural-language report of the
// result set: count, the active constraint, time range, and trailing
// entity counts.
func Summarize(results []domain.Document, parsed ParsedQuery) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for '%s'", parsed.RawQuery)
	}

	count := len(results)
	itemWord := "items"
	if count == 1 {
		itemWord = "item"
	}

	cveSet := make(map[string]struct{})
	threatSet := make(map[string]struct{})
	totalIOCs := 0
	for _, item := range results {
		for _, cve := range item.Extracted.CVEs {
			cveSet[cve] = struct{}{}
		}
		for _, threat := range item.Extracted.Threats {
			threatSet[threat] = struct{}{}
		}
		totalIOCs += item.Extracted.IOCCount()
	}

	parts := []string{fmt.Sprintf("Found %d %s", count, itemWord)}
	if parsed.CVEID != "" {
		parts = append(parts, fmt.Sprintf("related to %s", parsed.CVEID))
	} else if len(parsed.Keywords) > 0 {
		parts = append(parts, fmt.Sprintf("mentioning '%s'", strings.Join(parsed.Keywords, ", ")))
	}
	if parsed.TimeRange != "" {
		desc, ok := timeRangeDescriptions[parsed.TimeRange]
		if !ok {
			desc = parsed.TimeRange
		}
		parts = append(parts, fmt.Sprintf("from %s", desc))
	}

	summary := strings.Join(parts, " ") + "."

	var extras []string
	if n := len(cveSet); n > 0 {
		extras = append(extras, fmt.Sprintf("%d CVE%s", n, plural(n)))
	}
	if totalIOCs > 0 {
		extras = append(extras, fmt.Sprintf("%d IoC%s", totalIOCs, plural(totalIOCs)))
	}
	if n := len(threatSet); n > 0 {
		extras = append(extras, fmt.Sprintf("%d threat%s", n, plural(n)))
	}
	if len(extras) > 0 {
		summary += fmt.Sprintf(" Contains %s.", strings.Join(extras, ", "))
	}

	return summary
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
