package feed

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

type feodoEntry struct {
	IPAddress  string `json:"ip_address"`
	Port       int    `json:"port"`
	Status     string `json:"status"`
	ASNumber   int    `json:"as_number"`
	ASName     string `json:"as_name"`
	Country    string `json:"country"`
	FirstSeen  string `json:"first_seen"`
	LastOnline string `json:"last_online"`
	Malware    string `json:"malware"`
}

// FeodoTrackerParser normalizes the Feodo Tracker botnet C2 JSON feed.
type FeodoTrackerParser struct{}

func (FeodoTrackerParser) Name() string { return "feodotracker" }

func (p FeodoTrackerParser) Parse(payload []byte, limit int) ([]domain.IndicatorRecord, error) {
	var entries []feodoEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode feodotracker payload: %w", err)
	}

	var items []domain.IndicatorRecord
	for _, e := range entries {
		if limit > 0 && len(items) >= limit {
			break
		}
		if e.IPAddress == "" {
			continue
		}

		tags := []string{"c2", "botnet"}
		if e.Malware != "" {
			tags = append([]string{e.Malware}, tags...)
		}

		items = append(items, domain.IndicatorRecord{
			ID:            "feodo-" + e.IPAddress,
			Type:          domain.IPAddress,
			Value:         e.IPAddress,
			ThreatType:    "botnet",
			MalwareFamily: e.Malware,
			FirstSeen:     e.FirstSeen,
			LastSeen:      e.LastOnline,
			Source:        p.Name(),
			Tags:          tags,
			Raw: &domain.RawAttrs{
				Port:     strconv.Itoa(e.Port),
				Status:   e.Status,
				ASNumber: strconv.Itoa(e.ASNumber),
				ASName:   e.ASName,
				Country:  e.Country,
			},
		})
	}

	return items, nil
}
