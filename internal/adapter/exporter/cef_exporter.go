package exporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/umbra-security/threatlens/internal/core/domain"
	"github.com/umbra-security/threatlens/internal/core/ports"
)

// CEFExporter exports aggregated feed IOCs in Common Event Format for
// SIEM ingestion.
type CEFExporter struct {
	repo ports.FeedRepository
}

func NewCEFExporter(repo ports.FeedRepository) *CEFExporter {
	return &CEFExporter{repo: repo}
}

// Export generates a CEF-formatted IOC feed, one event per line.
// Format: CEF:Version|Device Vendor|Device Product|Device Version|Signature ID|Name|Severity|Extension
func (e *CEFExporter) Export() (string, error) {
	iocs := e.repo.FeedIOCs(ports.FeedIOCFilter{Limit: exportLimit})

	var output strings.Builder
	for _, ioc := range iocs {
		output.WriteString(formatCEF(ioc))
		output.WriteString("\n")
	}
	return output.String(), nil
}

func formatCEF(ioc domain.IndicatorRecord) string {
	vendor := "ThreatLens"
	product := "ThreatIntel"
	version := "1.0"
	signatureID := string(ioc.Type)
	name := fmt.Sprintf("%s IOC Detected", strings.ToUpper(string(ioc.Type)))
	confidence := confidenceFor(ioc)
	severity := calculateSeverity(confidence)

	firstSeen := time.Now()
	if t, ok := parseFeedTime(ioc.FirstSeen); ok {
		firstSeen = t
	}

	extensions := []string{
		fmt.Sprintf("src=%s", escapeField(ioc.Value)),
		"cn1Label=ConfidenceScore",
		fmt.Sprintf("cn1=%d", confidence),
		"cs1Label=ThreatType",
		fmt.Sprintf("cs1=%s", escapeField(ioc.ThreatType)),
		"cs2Label=Source",
		fmt.Sprintf("cs2=%s", escapeField(ioc.Source)),
		"cs3Label=Tags",
		fmt.Sprintf("cs3=%s", escapeField(strings.Join(ioc.Tags, ","))),
		fmt.Sprintf("rt=%d", firstSeen.Unix()*1000), // milliseconds
	}

	return fmt.Sprintf("CEF:0|%s|%s|%s|%s|%s|%d|%s",
		vendor, product, version, signatureID, name, severity,
		strings.Join(extensions, " "))
}

func calculateSeverity(confidence int) int {
	// Map confidence (0-100) to CEF severity (0-10)
	switch {
	case confidence >= 90:
		return 10 // Critical
	case confidence >= 80:
		return 8 // High
	case confidence >= 70:
		return 6 // Medium
	case confidence >= 60:
		return 4 // Low
	}
	return 2 // Info
}

func escapeField(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "=", "\\=")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
