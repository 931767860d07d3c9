package feed

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

// ThreatFoxParser normalizes the ThreatFox recent-IOC CSV export.
// Columns are fixed positionally (no header row):
// 0: first_seen_utc, 1: ioc_id, 2: ioc_value, 3: ioc_type,
// 4: threat_type, 5: fk_malware, 6: malware_alias, 7: malware_printable,
// 8: last_seen_utc, 9: confidence_level, 10: is_compromised,
// 11: reference, 12: tags, 13: anonymous, 14: reporter
type ThreatFoxParser struct{}

func (ThreatFoxParser) Name() string { return "threatfox" }

func (p ThreatFoxParser) Parse(payload []byte, limit int) ([]domain.IndicatorRecord, error) {
	reader := csv.NewReader(bytes.NewReader(payload))
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	var items []domain.IndicatorRecord

	for {
		if limit > 0 && len(items) >= limit {
			break
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: skip, never abort the batch.
			continue
		}
		if len(record) < 15 {
			continue
		}

		value := cleanField(record[2])
		if value == "" {
			continue
		}

		malware := cleanField(record[7])
		if malware == "Unknown malware" || malware == "None" {
			malware = ""
		}

		var confidence *int
		if c, err := strconv.Atoi(cleanField(record[9])); err == nil {
			confidence = &c
		}

		threatType := cleanField(record[4])
		if threatType == "" {
			threatType = "botnet_cc"
		}

		items = append(items, domain.IndicatorRecord{
			ID:            cleanField(record[1]),
			Type:          classifyIOCType(cleanField(record[3])),
			Value:         value,
			ThreatType:    threatType,
			MalwareFamily: malware,
			Confidence:    confidence,
			FirstSeen:     cleanField(record[0]),
			LastSeen:      cleanField(record[8]),
			Source:        p.Name(),
			Tags:          splitTags(cleanField(record[12])),
			Reference:     cleanField(record[11]),
		})
	}

	return items, nil
}

// classifyIOCType maps a freeform source type field by substring. The
// default is "ip" because ThreatFox primarily reports ip:port pairs.
func classifyIOCType(raw string) domain.IOCType {
	raw = strings.ToLower(raw)
	switch {
	case strings.Contains(raw, "ip"):
		return domain.IPAddress
	case strings.Contains(raw, "domain"):
		return domain.Domain
	case strings.Contains(raw, "url"):
		return domain.URL
	case strings.Contains(raw, "md5"), strings.Contains(raw, "sha"):
		return domain.FileHash
	default:
		return domain.IPAddress
	}
}

func cleanField(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
