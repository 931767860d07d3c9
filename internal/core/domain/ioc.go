package domain

type IOCType string

const (
	IPAddress IOCType = "ip"
	Domain    IOCType = "domain"
	URL       IOCType = "url"
	FileHash  IOCType = "hash"
)

// FileHashRef is one extracted hash with its inferred algorithm.
type FileHashRef struct {
	Type  string `json:"type"` // md5, sha1, sha256
	Value string `json:"value"`
}

// ExtractedEntities holds everything the extraction engine found in one
// text blob. Immutable once attached to a Document.
type ExtractedEntities struct {
	CVEs      []string      `json:"cves"`
	IPs       []string      `json:"ips"`
	Domains   []string      `json:"domains"`
	URLs      []string      `json:"urls"`
	Hashes    []FileHashRef `json:"hashes"`
	Threats   []string      `json:"threats"` // malware + actors, set semantics
	Malware   []string      `json:"malware"`
	Actors    []string      `json:"actors"`
	Tags      []string      `json:"tags"` // TTP categories
	Products  []string      `json:"products"`
	Geography []string      `json:"geography"`
	Sectors   []string      `json:"sectors"`
}

// IOCCount is the total number of indicators across all IOC kinds.
func (e ExtractedEntities) IOCCount() int {
	return len(e.IPs) + len(e.Domains) + len(e.URLs) + len(e.Hashes)
}

// RawAttrs carries source-specific extras a feed reports alongside an
// indicator. Explicit fields, not an open map, so the canonical schema
// stays enforceable.
type RawAttrs struct {
	Port            string `json:"port,omitempty"`
	Status          string `json:"status,omitempty"`
	Reporter        string `json:"reporter,omitempty"`
	Country         string `json:"country,omitempty"`
	ASNumber        string `json:"as_number,omitempty"`
	ASName          string `json:"as_name,omitempty"`
	SHA1Fingerprint string `json:"sha1_fingerprint,omitempty"`
	MD5             string `json:"md5,omitempty"`
	SHA1            string `json:"sha1,omitempty"`
	FileName        string `json:"file_name,omitempty"`
	FileType        string `json:"file_type,omitempty"`
	MimeType        string `json:"mime_type,omitempty"`
	URL             string `json:"url,omitempty"`
}

// IndicatorRecord is the canonical record every IOC feed normalizes
// into. Identity for dedup purposes is (Source, ID); the same IOC value
// reported by two sources stays as two records, since confidence and
// tags differ per source.
type IndicatorRecord struct {
	ID            string    `json:"id"`
	Type          IOCType   `json:"ioc_type"`
	Value         string    `json:"ioc_value"`
	ThreatType    string    `json:"threat_type"`
	MalwareFamily string    `json:"malware_family,omitempty"`
	Confidence    *int      `json:"confidence,omitempty"` // 0-100, nil when the source did not report one
	FirstSeen     string    `json:"first_seen,omitempty"`
	LastSeen      string    `json:"last_seen,omitempty"`
	Source        string    `json:"source"`
	Tags          []string  `json:"tags"`
	Reference     string    `json:"reference,omitempty"`
	Raw           *RawAttrs `json:"raw_data,omitempty"`
}

// VulnerabilityRecord is the canonical record for CVE catalog feeds.
type VulnerabilityRecord struct {
	CVEID           string `json:"cve_id"`
	Vendor          string `json:"vendor"`
	Product         string `json:"product"`
	Name            string `json:"vulnerability_name"`
	DateAdded       string `json:"date_added"`
	DueDate         string `json:"due_date,omitempty"`
	KnownRansomware bool   `json:"known_ransomware"`
	Notes           string `json:"notes"`
	Source          string `json:"source"`
}

// Document is one ingested text item (scraped article, uploaded report)
// together with its extraction result. Created once; never mutated.
type Document struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Source      string            `json:"source"`
	URL         string            `json:"url,omitempty"`
	Date        string            `json:"date,omitempty"`
	Description string            `json:"description,omitempty"`
	Content     string            `json:"content,omitempty"`
	Extracted   ExtractedEntities `json:"extracted"`
	AddedAt     string            `json:"added_at"`
}
