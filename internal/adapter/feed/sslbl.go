package feed

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

type sslblEntry struct {
	IPAddress       string `json:"ip_address"`
	Port            int    `json:"port"`
	SHA1Fingerprint string `json:"sha1_fingerprint"`
	FirstSeen       string `json:"first_seen"`
	Malware         string `json:"malware"`
}

// SSLBLParser normalizes the SSL Blacklist botnet C2 JSON feed, which
// reports IPs serving certificates known to belong to malware C2.
type SSLBLParser struct{}

func (SSLBLParser) Name() string { return "sslbl" }

func (p SSLBLParser) Parse(payload []byte, limit int) ([]domain.IndicatorRecord, error) {
	var entries []sslblEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode sslbl payload: %w", err)
	}

	var items []domain.IndicatorRecord
	for _, e := range entries {
		if limit > 0 && len(items) >= limit {
			break
		}
		if e.IPAddress == "" {
			continue
		}

		tags := []string{"ssl", "c2"}
		if e.Malware != "" {
			tags = append([]string{e.Malware}, tags...)
		}

		items = append(items, domain.IndicatorRecord{
			ID:            "ssl-" + e.IPAddress,
			Type:          domain.IPAddress,
			Value:         e.IPAddress,
			ThreatType:    "c2",
			MalwareFamily: e.Malware,
			FirstSeen:     e.FirstSeen,
			Source:        p.Name(),
			Tags:          tags,
			Raw: &domain.RawAttrs{
				Port:            strconv.Itoa(e.Port),
				SHA1Fingerprint: e.SHA1Fingerprint,
			},
		})
	}

	return items, nil
}
