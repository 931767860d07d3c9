package domain

// ItemRef is a backlink from a rolled-up entity to the document it was
// extracted from.
type ItemRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source,omitempty"`
}

// EntityCount pairs an entity name with its occurrence count.
type EntityCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// IOCBreakdown counts unique indicators per kind across all documents.
type IOCBreakdown struct {
	IPs     int `json:"ips"`
	Domains int `json:"domains"`
	Hashes  int `json:"hashes"`
	URLs    int `json:"urls"`
}

// StoreStats is the dashboard roll-up, recomputed on every call.
type StoreStats struct {
	TotalItems      int            `json:"total_items"`
	TotalCVEs       int            `json:"total_cves"`
	TotalIOCs       int            `json:"total_iocs"`
	TotalThreats    int            `json:"total_threats"`
	IOCBreakdown    IOCBreakdown   `json:"ioc_breakdown"`
	TopCVEs         []EntityCount  `json:"top_cves"`
	TopThreats      []EntityCount  `json:"top_threats"`
	AllCVEs         []string       `json:"all_cves"`
	AllThreats      []string       `json:"all_threats"`
	AllMalware      []string       `json:"all_malware"`
	AllActors       []string       `json:"all_actors"`
	TagCounts       map[string]int `json:"tag_counts"`
	ProductCounts   map[string]int `json:"product_counts"`
	GeographyCounts map[string]int `json:"geography_counts"`
	SectorCounts    map[string]int `json:"sector_counts"`
	Sources         map[string]int `json:"sources"`
}

// CVERollup aggregates one CVE's occurrences across documents.
type CVERollup struct {
	ID      string    `json:"id"`
	Count   int       `json:"count"`
	Sources []string  `json:"sources"`
	Items   []ItemRef `json:"items"`
}

// ThreatRollup aggregates one threat name across documents.
type ThreatRollup struct {
	Name  string    `json:"name"`
	Type  string    `json:"type"` // malware or actor
	Count int       `json:"count"`
	Items []ItemRef `json:"items"`
}

// IOCEntry is one deduplicated indicator value with a backlink to the
// first document that mentioned it.
type IOCEntry struct {
	Value      string  `json:"value"`
	HashType   string  `json:"type,omitempty"`
	SourceItem ItemRef `json:"source_item"`
}

// IOCGroups holds all document-extracted indicators grouped by kind.
type IOCGroups struct {
	IPs     []IOCEntry `json:"ips"`
	Domains []IOCEntry `json:"domains"`
	URLs    []IOCEntry `json:"urls"`
	Hashes  []IOCEntry `json:"hashes"`
}

// FeedStats aggregates the current feed snapshots. Counts are taken
// per source without cross-source dedup: each source's view of an IOC
// is an independent record.
type FeedStats struct {
	TotalIOCs       int               `json:"total_feed_iocs"`
	TotalCVEs       int               `json:"total_feed_cves"`
	BySource        map[string]int    `json:"by_source"`
	ByIOCType       map[string]int    `json:"by_ioc_type"`
	ByThreatType    map[string]int    `json:"by_threat_type"`
	MalwareFamilies map[string]int    `json:"malware_families"`
	TopMalware      []EntityCount     `json:"top_malware"`
	RansomwareCVEs  int               `json:"ransomware_cves"`
	LastUpdated     map[string]string `json:"last_updated"`
}

// FeedSearchResult groups substring-search hits across feed snapshots.
type FeedSearchResult struct {
	IOCs []IndicatorRecord     `json:"iocs"`
	CVEs []VulnerabilityRecord `json:"cves"`
}
