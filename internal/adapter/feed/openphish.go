package feed

import (
	"bufio"
	"bytes"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

// OpenPhishParser normalizes the OpenPhish community feed, one phishing
// URL per line.
type OpenPhishParser struct{}

func (OpenPhishParser) Name() string { return "openphish" }

func (p OpenPhishParser) Parse(payload []byte, limit int) ([]domain.IndicatorRecord, error) {
	var items []domain.IndicatorRecord
	scanner := bufio.NewScanner(bytes.NewReader(payload))
	for scanner.Scan() {
		if limit > 0 && len(items) >= limit {
			break
		}

		url := strings.TrimSpace(scanner.Text())
		if url == "" || !strings.HasPrefix(url, "http") {
			continue
		}

		items = append(items, domain.IndicatorRecord{
			ID:         fmt.Sprintf("phish-%06x", urlDigest(url)),
			Type:       domain.URL,
			Value:      url,
			ThreatType: "phishing",
			Source:     p.Name(),
			Tags:       []string{"phishing", "credential-theft"},
		})
	}

	return items, nil
}

// urlDigest derives a short stable ID from the URL itself so re-syncs
// assign the same ID to the same URL.
func urlDigest(url string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(url))
	return h.Sum32() & 0xFFFFFF
}
