package feed

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

type urlhausEntry struct {
	URL         string   `json:"url"`
	URLStatus   string   `json:"url_status"`
	Threat      string   `json:"threat"`
	DateAdded   string   `json:"dateadded"`
	LastOnline  string   `json:"last_online"`
	Reporter    string   `json:"reporter"`
	URLhausLink string   `json:"urlhaus_link"`
	Tags        []string `json:"tags"`
}

// Architecture markers appear as URLhaus tags but never name a family.
var urlhausArchTags = map[string]bool{
	"32-bit": true,
	"64-bit": true,
	"elf":    true,
	"exe":    true,
	"mips":   true,
	"arm":    true,
	"x86":    true,
}

// URLhausParser normalizes the URLhaus recent-URLs JSON feed. The
// payload is a map keyed by URL ID where each value is usually a
// single-element array, though bare objects appear too.
type URLhausParser struct{}

func (URLhausParser) Name() string { return "urlhaus" }

func (p URLhausParser) Parse(payload []byte, limit int) ([]domain.IndicatorRecord, error) {
	var data map[string]json.RawMessage
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to decode urlhaus payload: %w", err)
	}

	// Map iteration order is random; sort IDs so a capped parse is
	// deterministic across runs.
	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var items []domain.IndicatorRecord
	for _, id := range ids {
		if limit > 0 && len(items) >= limit {
			break
		}

		entry, ok := decodeURLhausEntry(data[id])
		if !ok || entry.URL == "" {
			continue
		}

		tags := append([]string(nil), entry.Tags...)
		if entry.Threat != "" {
			tags = append(tags, entry.Threat)
		}

		family := ""
		for _, tag := range tags {
			if tag != "" && !urlhausArchTags[tag] {
				family = tag
				break
			}
		}

		threatType := entry.Threat
		if threatType == "" {
			threatType = "malware_download"
		}

		items = append(items, domain.IndicatorRecord{
			ID:            id,
			Type:          domain.URL,
			Value:         entry.URL,
			ThreatType:    threatType,
			MalwareFamily: family,
			FirstSeen:     entry.DateAdded,
			LastSeen:      entry.LastOnline,
			Source:        p.Name(),
			Tags:          tags,
			Reference:     entry.URLhausLink,
			Raw: &domain.RawAttrs{
				Status:   entry.URLStatus,
				Reporter: entry.Reporter,
			},
		})
	}

	return items, nil
}

func decodeURLhausEntry(raw json.RawMessage) (urlhausEntry, bool) {
	var list []urlhausEntry
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return urlhausEntry{}, false
		}
		return list[0], true
	}
	var single urlhausEntry
	if err := json.Unmarshal(raw, &single); err == nil {
		return single, true
	}
	return urlhausEntry{}, false
}
