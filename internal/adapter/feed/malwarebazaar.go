package feed

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

// MalwareBazaarParser normalizes the MalwareBazaar recent-samples CSV.
// Columns are fixed positionally (no header row):
// 0: first_seen_utc, 1: sha256_hash, 2: md5_hash, 3: sha1_hash,
// 4: reporter, 5: file_name, 6: file_type_guess, 7: mime_type,
// 8: signature, 9: clamav, 10: vtpercent, 11: imphash, 12: ssdeep,
// 13: tlsh
type MalwareBazaarParser struct{}

func (MalwareBazaarParser) Name() string { return "malwarebazaar" }

func (p MalwareBazaarParser) Parse(payload []byte, limit int) ([]domain.IndicatorRecord, error) {
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
			continue
		}
		if len(record) < 9 {
			continue
		}

		// A row is a valid sample only when the primary hash field is
		// exactly 64 hex characters; garbled values are dropped, not
		// guessed at.
		sha256 := cleanField(record[1])
		if !isHexString(sha256, 64) {
			continue
		}

		signature := cleanField(record[8])
		fileType := cleanField(record[6])

		var tags []string
		if signature != "" && signature != "n/a" {
			tags = append(tags, signature)
		}
		if fileType != "" && fileType != "n/a" {
			tags = append(tags, fileType)
		}

		family := ""
		if signature != "" && signature != "n/a" {
			family = signature
		}

		items = append(items, domain.IndicatorRecord{
			ID:            sha256[:12],
			Type:          domain.FileHash,
			Value:         sha256,
			ThreatType:    "malware",
			MalwareFamily: family,
			FirstSeen:     cleanField(record[0]),
			Source:        p.Name(),
			Tags:          tags,
			Reference:     fmt.Sprintf("https://bazaar.abuse.ch/sample/%s/", sha256),
			Raw: &domain.RawAttrs{
				MD5:      cleanField(record[2]),
				SHA1:     cleanField(record[3]),
				Reporter: cleanField(record[4]),
				FileName: cleanField(record[5]),
				FileType: fileType,
				MimeType: cleanField(record[7]),
			},
		})
	}

	return items, nil
}

func isHexString(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
