package feed

import (
	"testing"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

const urlhausSample = `{
  "3344556": [
    {
      "url": "http://203.0.113.77/bins/mozi.m",
      "url_status": "online",
      "threat": "malware_download",
      "dateadded": "2026-08-01 07:00:00",
      "reporter": "sandbox1",
      "urlhaus_link": "https://urlhaus.abuse.ch/url/3344556/",
      "tags": ["elf", "32-bit", "Mozi"]
    }
  ],
  "3344557": {
    "url": "http://x.example.su/drop",
    "url_status": "offline",
    "reporter": "sandbox2"
  },
  "3344558": []
}`

func TestURLhausParse(t *testing.T) {
	items, err := URLhausParser{}.Parse([]byte(urlhausSample), 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (empty-list entry dropped)", len(items))
	}

	// IDs sort lexicographically, so 3344556 comes first.
	first := items[0]
	if first.ID != "3344556" {
		t.Errorf("ID = %q, want 3344556", first.ID)
	}
	if first.Type != domain.URL || first.Value != "http://203.0.113.77/bins/mozi.m" {
		t.Errorf("got %s %q, want the url record", first.Type, first.Value)
	}
	if first.MalwareFamily != "Mozi" {
		t.Errorf("MalwareFamily = %q, want Mozi (architecture tags skipped)", first.MalwareFamily)
	}
	if len(first.Tags) != 4 || first.Tags[3] != "malware_download" {
		t.Errorf("Tags = %v, want original tags plus the threat appended", first.Tags)
	}
	if first.Raw == nil || first.Raw.Status != "online" || first.Raw.Reporter != "sandbox1" {
		t.Errorf("Raw = %+v, want status and reporter", first.Raw)
	}

	second := items[1]
	if second.ThreatType != "malware_download" {
		t.Errorf("ThreatType = %q, want the default for a missing threat field", second.ThreatType)
	}
	if second.MalwareFamily != "" {
		t.Errorf("MalwareFamily = %q, want empty without tags", second.MalwareFamily)
	}
}

func TestURLhausParseLimitDeterministic(t *testing.T) {
	first, err := URLhausParser{}.Parse([]byte(urlhausSample), 1)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	second, err := URLhausParser{}.Parse([]byte(urlhausSample), 1)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Errorf("capped parse is not deterministic: %v vs %v", first, second)
	}
}

func TestURLhausParseBadPayload(t *testing.T) {
	if _, err := (URLhausParser{}).Parse([]byte("not json"), 0); err == nil {
		t.Error("expected a decode error for a non-JSON payload")
	}
}
