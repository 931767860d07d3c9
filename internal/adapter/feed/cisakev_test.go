package feed

import (
	"testing"
)

const kevSample = `{
  "title": "CISA Catalog of Known Exploited Vulnerabilities",
  "vulnerabilities": [
    {
      "cveID": "CVE-2024-3400",
      "vendorProject": "Palo Alto Networks",
      "product": "PAN-OS",
      "vulnerabilityName": "PAN-OS Command Injection Vulnerability",
      "dateAdded": "2026-04-12",
      "dueDate": "2026-04-19",
      "knownRansomwareCampaignUse": "Known",
      "shortDescription": "Command injection in the GlobalProtect feature."
    },
    {
      "cveID": "CVE-2024-21412",
      "vendorProject": "Microsoft",
      "product": "Windows",
      "vulnerabilityName": "Internet Shortcut Files Bypass",
      "dateAdded": "2026-02-13",
      "dueDate": "2026-03-05",
      "knownRansomwareCampaignUse": "Unknown",
      "shortDescription": "Security feature bypass via crafted shortcut files."
    },
    {
      "cveID": "",
      "vendorProject": "Nobody",
      "product": "Nothing",
      "vulnerabilityName": "Placeholder",
      "dateAdded": "2026-01-01"
    }
  ]
}`

func TestCISAKEVParse(t *testing.T) {
	items, err := CISAKEVParser{}.Parse([]byte(kevSample), 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (empty cveID dropped)", len(items))
	}

	first := items[0]
	if first.CVEID != "CVE-2024-3400" {
		t.Errorf("CVEID = %q", first.CVEID)
	}
	if !first.KnownRansomware {
		t.Error("knownRansomwareCampaignUse 'Known' should set KnownRansomware")
	}
	if first.Vendor != "Palo Alto Networks" || first.Product != "PAN-OS" {
		t.Errorf("vendor/product = %q/%q", first.Vendor, first.Product)
	}
	if first.Notes != "Command injection in the GlobalProtect feature." {
		t.Errorf("Notes = %q, want the short description", first.Notes)
	}
	if first.Source != "cisa_kev" {
		t.Errorf("Source = %q, want cisa_kev", first.Source)
	}

	// Only the exact sentinel counts.
	if items[1].KnownRansomware {
		t.Error("'Unknown' must not set KnownRansomware")
	}
}

func TestCISAKEVParseLimit(t *testing.T) {
	items, err := CISAKEVParser{}.Parse([]byte(kevSample), 1)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("got %d items, want 1 with limit 1", len(items))
	}
}

func TestCISAKEVParseBadPayload(t *testing.T) {
	if _, err := (CISAKEVParser{}).Parse([]byte("<html>"), 0); err == nil {
		t.Error("expected a decode error for a non-JSON payload")
	}
}
