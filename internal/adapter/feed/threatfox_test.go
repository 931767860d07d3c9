package feed

import (
	"testing"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

const threatfoxSample = `# ThreatFox recent IOCs
# first_seen_utc,ioc_id,ioc_value,ioc_type,threat_type,...
"2026-08-01 10:00:00", "1001", "203.0.113.50:4443", "ip:port", "botnet_cc", "815", "", "Cobalt Strike", "2026-08-02 10:00:00", "75", "0", "https://threatfox.abuse.ch/ioc/1001/", "CobaltStrike,c2", "0", "abuse_ch"
"2026-08-01 11:00:00", "1002", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", "sha256_hash", "payload", "0", "", "Unknown malware", "", "n/a", "0", "", "", "0", "anonymous"
"2026-08-01 12:00:00", "1003"
"2026-08-01 13:00:00", "1004", "", "domain", "botnet_cc", "0", "", "None", "", "50", "0", "", "", "0", "x"
`

func TestThreatFoxParse(t *testing.T) {
	items, err := ThreatFoxParser{}.Parse([]byte(threatfoxSample), 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (short and empty-value rows dropped)", len(items))
	}

	first := items[0]
	if first.ID != "1001" {
		t.Errorf("ID = %q, want 1001", first.ID)
	}
	if first.Type != domain.IPAddress {
		t.Errorf("Type = %q, want ip for ip:port", first.Type)
	}
	if first.MalwareFamily != "Cobalt Strike" {
		t.Errorf("MalwareFamily = %q, want Cobalt Strike", first.MalwareFamily)
	}
	if first.Confidence == nil || *first.Confidence != 75 {
		t.Errorf("Confidence = %v, want 75", first.Confidence)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "CobaltStrike" {
		t.Errorf("Tags = %v, want [CobaltStrike c2]", first.Tags)
	}
	if first.Source != "threatfox" {
		t.Errorf("Source = %q, want threatfox", first.Source)
	}

	second := items[1]
	if second.Type != domain.FileHash {
		t.Errorf("Type = %q, want hash for sha256_hash", second.Type)
	}
	if second.MalwareFamily != "" {
		t.Errorf("MalwareFamily = %q, want empty for 'Unknown malware'", second.MalwareFamily)
	}
	if second.Confidence != nil {
		t.Errorf("Confidence = %v, want nil for unparseable value", second.Confidence)
	}
}

func TestThreatFoxParseLimit(t *testing.T) {
	items, err := ThreatFoxParser{}.Parse([]byte(threatfoxSample), 1)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("got %d items, want 1 with limit 1", len(items))
	}
}

func TestClassifyIOCType(t *testing.T) {
	tests := []struct {
		raw      string
		expected domain.IOCType
	}{
		{"ip:port", domain.IPAddress},
		{"domain", domain.Domain},
		{"url", domain.URL},
		{"md5_hash", domain.FileHash},
		{"sha256_hash", domain.FileHash},
		{"something_else", domain.IPAddress},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := classifyIOCType(tt.raw); got != tt.expected {
				t.Errorf("classifyIOCType(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}
