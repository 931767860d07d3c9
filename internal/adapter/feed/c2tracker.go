package feed

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

// C2TrackerParser normalizes the community C2 tracker CSV. Unlike the
// abuse.ch exports this file carries a header row, so columns are
// resolved by name rather than position.
type C2TrackerParser struct{}

func (C2TrackerParser) Name() string { return "c2_tracker" }

func (p C2TrackerParser) Parse(payload []byte, limit int) ([]domain.IndicatorRecord, error) {
	reader := csv.NewReader(bytes.NewReader(payload))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[cleanField(name)] = i
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return cleanField(record[i])
	}

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
			continue
		}

		ip := field(record, "ip")
		if ip == "" {
			continue
		}

		family := field(record, "family")
		tags := []string{"c2"}
		if family != "" {
			tags = append(tags, family)
		}

		var raw *domain.RawAttrs
		if port := field(record, "port"); port != "" || field(record, "url") != "" {
			raw = &domain.RawAttrs{
				Port: port,
				URL:  field(record, "url"),
			}
		}

		items = append(items, domain.IndicatorRecord{
			ID:            "c2t-" + ip,
			Type:          domain.IPAddress,
			Value:         ip,
			ThreatType:    "c2",
			MalwareFamily: family,
			FirstSeen:     field(record, "first_seen"),
			LastSeen:      field(record, "last_seen"),
			Source:        p.Name(),
			Tags:          tags,
			Raw:           raw,
		})
	}

	return items, nil
}
