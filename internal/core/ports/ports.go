package ports

import (
	"context"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

// PayloadFetcher retrieves one raw feed payload. The core performs no
// network I/O itself; this is the seam the HTTP adapter plugs into.
type PayloadFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// IndicatorParser normalizes one source format into canonical
// indicator records. A malformed row is skipped, never surfaced; the
// returned error covers only payloads that cannot be decoded at all.
type IndicatorParser interface {
	Name() string
	Parse(payload []byte, limit int) ([]domain.IndicatorRecord, error)
}

// VulnerabilityParser normalizes one CVE catalog format.
type VulnerabilityParser interface {
	Name() string
	Parse(payload []byte, limit int) ([]domain.VulnerabilityRecord, error)
}

// FeedIOCFilter narrows a feed indicator read. Zero values mean no
// constraint.
type FeedIOCFilter struct {
	Source     string
	Type       domain.IOCType
	ThreatType string
	Limit      int
}

// FeedCVEFilter narrows a feed vulnerability read.
type FeedCVEFilter struct {
	Source         string
	RansomwareOnly bool
	Limit          int
}

// FeedRepository is the slice of the store the feed registry and the
// exporters touch.
type FeedRepository interface {
	UpdateFeedIOCs(source string, items []domain.IndicatorRecord) int
	UpdateFeedCVEs(source string, items []domain.VulnerabilityRecord) int
	FeedIOCs(filter FeedIOCFilter) []domain.IndicatorRecord
	FeedCVEs(filter FeedCVEFilter) []domain.VulnerabilityRecord
}
