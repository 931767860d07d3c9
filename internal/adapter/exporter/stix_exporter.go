package exporter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/umbra-security/threatlens/internal/core/domain"
	"github.com/umbra-security/threatlens/internal/core/ports"
)

const exportLimit = 10000

// STIXExporter exports aggregated feed IOCs in STIX 2.1 format for
// SIEM ingestion.
type STIXExporter struct {
	repo ports.FeedRepository
}

func NewSTIXExporter(repo ports.FeedRepository) *STIXExporter {
	return &STIXExporter{repo: repo}
}

// Export generates a STIX 2.1 bundle from the current feed snapshots.
func (e *STIXExporter) Export() (string, error) {
	iocs := e.repo.FeedIOCs(ports.FeedIOCFilter{Limit: exportLimit})

	bundle := STIXBundle{
		Type:        "bundle",
		ID:          fmt.Sprintf("bundle--%s", uuid.New().String()),
		SpecVersion: "2.1",
		Objects:     []STIXObject{},
	}

	for _, ioc := range iocs {
		bundle.Objects = append(bundle.Objects, e.convertToSTIX(ioc))
	}

	jsonData, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal STIX bundle: %w", err)
	}

	return string(jsonData), nil
}

func (e *STIXExporter) convertToSTIX(ioc domain.IndicatorRecord) STIXObject {
	now := time.Now().UTC().Format(time.RFC3339)

	validFrom := now
	if t, ok := parseFeedTime(ioc.FirstSeen); ok {
		validFrom = t.UTC().Format(time.RFC3339)
	}

	return STIXObject{
		Type:           "indicator",
		SpecVersion:    "2.1",
		ID:             fmt.Sprintf("indicator--%s", uuid.New().String()),
		Created:        now,
		Modified:       now,
		Name:           fmt.Sprintf("%s Indicator", strings.ToUpper(string(ioc.Type))),
		Pattern:        buildPattern(ioc),
		PatternType:    "stix",
		ValidFrom:      validFrom,
		IndicatorTypes: mapIndicatorTypes(ioc.ThreatType),
		Confidence:     confidenceFor(ioc),
		Labels:         ioc.Tags,
		ExternalReferences: []ExternalReference{
			{SourceName: ioc.Source, URL: ioc.Reference},
		},
	}
}

func buildPattern(ioc domain.IndicatorRecord) string {
	switch ioc.Type {
	case domain.IPAddress:
		return fmt.Sprintf("[ipv4-addr:value = '%s']", ioc.Value)
	case domain.Domain:
		return fmt.Sprintf("[domain-name:value = '%s']", ioc.Value)
	case domain.URL:
		return fmt.Sprintf("[url:value = '%s']", ioc.Value)
	case domain.FileHash:
		return fmt.Sprintf("[file:hashes.'%s' = '%s']", detectHashType(ioc.Value), ioc.Value)
	default:
		return fmt.Sprintf("[x-custom:value = '%s']", ioc.Value)
	}
}

func mapIndicatorTypes(threatType string) []string {
	mapping := map[string][]string{
		"c2":               {"malicious-activity", "command-and-control"},
		"botnet":           {"malicious-activity", "botnet"},
		"botnet_cc":        {"malicious-activity", "command-and-control"},
		"malware":          {"malicious-activity"},
		"malware_download": {"malicious-activity", "malware-download"},
		"phishing":         {"malicious-activity", "phishing"},
		"compromised":      {"anomalous-activity"},
	}

	if types, ok := mapping[threatType]; ok {
		return types
	}
	return []string{"malicious-activity"}
}

func detectHashType(hash string) string {
	switch len(hash) {
	case 32:
		return "MD5"
	case 40:
		return "SHA-1"
	default:
		return "SHA-256"
	}
}

// STIX 2.1 data structures

type STIXBundle struct {
	Type        string       `json:"type"`
	ID          string       `json:"id"`
	SpecVersion string       `json:"spec_version"`
	Objects     []STIXObject `json:"objects"`
}

type STIXObject struct {
	Type               string              `json:"type"`
	SpecVersion        string              `json:"spec_version"`
	ID                 string              `json:"id"`
	Created            string              `json:"created"`
	Modified           string              `json:"modified"`
	Name               string              `json:"name"`
	Pattern            string              `json:"pattern"`
	PatternType        string              `json:"pattern_type"`
	ValidFrom          string              `json:"valid_from"`
	IndicatorTypes     []string            `json:"indicator_types"`
	Confidence         int                 `json:"confidence"`
	Labels             []string            `json:"labels,omitempty"`
	ExternalReferences []ExternalReference `json:"external_references,omitempty"`
}

type ExternalReference struct {
	SourceName string `json:"source_name"`
	URL        string `json:"url,omitempty"`
}

// confidenceFor uses the source-reported confidence when present and a
// small heuristic otherwise.
func confidenceFor(ioc domain.IndicatorRecord) int {
	if ioc.Confidence != nil {
		return *ioc.Confidence
	}

	confidence := 70
	if ioc.ThreatType == "c2" || ioc.ThreatType == "botnet" {
		confidence += 10
	}
	if len(ioc.Tags) > 3 {
		confidence += 5
	}
	if confidence > 100 {
		confidence = 100
	}
	return confidence
}

var feedTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func parseFeedTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
