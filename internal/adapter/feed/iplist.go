package feed

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

// IPListParser normalizes a plain-text feed of one IP per line, with
// blank lines and '#' comments ignored. Several reputation feeds share
// this shape, so the parser is configured per source.
type IPListParser struct {
	SourceName string
	IDPrefix   string
	ThreatType string
	FeedTags   []string
	MaxItems   int
}

// NewEmergingThreatsParser returns the parser for the Emerging Threats
// compromised-IP list, capped at 1000 entries.
func NewEmergingThreatsParser() IPListParser {
	return IPListParser{
		SourceName: "emergingthreats",
		IDPrefix:   "et-",
		ThreatType: "compromised",
		FeedTags:   []string{"compromised", "reputation"},
		MaxItems:   1000,
	}
}

func (p IPListParser) Name() string { return p.SourceName }

func (p IPListParser) Parse(payload []byte, limit int) ([]domain.IndicatorRecord, error) {
	max := p.MaxItems
	if limit > 0 && (max == 0 || limit < max) {
		max = limit
	}

	var items []domain.IndicatorRecord
	scanner := bufio.NewScanner(bytes.NewReader(payload))
	for scanner.Scan() {
		if max > 0 && len(items) >= max {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !looksLikeIPv4(line) {
			continue
		}

		items = append(items, domain.IndicatorRecord{
			ID:         p.IDPrefix + line,
			Type:       domain.IPAddress,
			Value:      line,
			ThreatType: p.ThreatType,
			Source:     p.SourceName,
			Tags:       append([]string(nil), p.FeedTags...),
		})
	}

	return items, nil
}

// looksLikeIPv4 accepts dotted quads without validating octet ranges;
// reputation lists occasionally carry CIDR or annotated lines that a
// stricter check would also need to handle, but four dot-separated
// parts covers what these feeds publish.
func looksLikeIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	return true
}
