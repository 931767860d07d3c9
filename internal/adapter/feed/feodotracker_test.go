package feed

import (
	"testing"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

const feodoSample = `[
  {
    "ip_address": "198.51.100.44",
    "port": 443,
    "status": "online",
    "as_number": 64500,
    "as_name": "EXAMPLE-AS",
    "country": "DE",
    "first_seen": "2026-07-30 12:00:00",
    "last_online": "2026-08-01",
    "malware": "QakBot"
  },
  {
    "ip_address": "",
    "port": 80,
    "malware": "Emotet"
  }
]`

func TestFeodoTrackerParse(t *testing.T) {
	items, err := FeodoTrackerParser{}.Parse([]byte(feodoSample), 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (missing ip dropped)", len(items))
	}

	item := items[0]
	if item.ID != "feodo-198.51.100.44" {
		t.Errorf("ID = %q", item.ID)
	}
	if item.Type != domain.IPAddress || item.ThreatType != "botnet" {
		t.Errorf("got %s/%s, want ip/botnet", item.Type, item.ThreatType)
	}
	if item.MalwareFamily != "QakBot" {
		t.Errorf("MalwareFamily = %q", item.MalwareFamily)
	}
	if len(item.Tags) != 3 || item.Tags[0] != "QakBot" {
		t.Errorf("Tags = %v, want the family leading [c2 botnet]", item.Tags)
	}
	if item.Raw == nil || item.Raw.Port != "443" || item.Raw.Country != "DE" {
		t.Errorf("Raw = %+v", item.Raw)
	}
	if item.Raw.ASNumber != "64500" || item.Raw.ASName != "EXAMPLE-AS" {
		t.Errorf("Raw AS fields = %+v", item.Raw)
	}
}

const sslblSample = `[
  {
    "ip_address": "203.0.113.200",
    "port": 8443,
    "sha1_fingerprint": "5ff465afaab12e2f2b9b1f4d3bf9a8c2c9a52b42",
    "first_seen": "2026-08-01 06:00:00",
    "malware": "Dridex"
  }
]`

func TestSSLBLParse(t *testing.T) {
	items, err := SSLBLParser{}.Parse([]byte(sslblSample), 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	item := items[0]
	if item.ID != "ssl-203.0.113.200" || item.ThreatType != "c2" {
		t.Errorf("got %q/%q, want ssl- prefix and c2", item.ID, item.ThreatType)
	}
	if item.Raw == nil || item.Raw.SHA1Fingerprint != "5ff465afaab12e2f2b9b1f4d3bf9a8c2c9a52b42" {
		t.Errorf("Raw = %+v, want the certificate fingerprint", item.Raw)
	}
	if len(item.Tags) != 3 || item.Tags[0] != "Dridex" {
		t.Errorf("Tags = %v, want [Dridex ssl c2]", item.Tags)
	}
}
