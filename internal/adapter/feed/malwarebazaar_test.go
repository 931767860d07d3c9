package feed

import (
	"strings"
	"testing"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

const mbSHA256 = "ed01ebfbc9eb5bbea545af4d01bf5f1071661840480439c6e5babe8e080e41aa"

// Three rows: one valid, one with a truncated 30-char hash, one with
// non-hex characters in the hash field.
const malwarebazaarSample = `# MalwareBazaar recent samples
"2026-08-01 09:00:00", "` + mbSHA256 + `", "84c82835a5d21bbcf75a61706d8ab549", "5ff465afaab12e2f2b9b1f4d3bf9a8c2c9a52b42", "reporter1", "invoice.exe", "exe", "application/x-dosexec", "AgentTesla", "n/a", "n/a", "imphash", "ssdeep", "tlsh"
"2026-08-01 10:00:00", "deadbeefdeadbeefdeadbeefdeadbe", "", "", "reporter2", "short.bin", "elf", "application/x-executable", "Mirai", "n/a", "n/a", "", "", ""
"2026-08-01 11:00:00", "zzzzebfbc9eb5bbea545af4d01bf5f1071661840480439c6e5babe8e080e41aa", "", "", "reporter3", "odd.bin", "dll", "application/x-dosexec", "n/a", "n/a", "n/a", "", "", ""
`

func TestMalwareBazaarParse(t *testing.T) {
	items, err := MalwareBazaarParser{}.Parse([]byte(malwarebazaarSample), 0)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (malformed hash rows dropped)", len(items))
	}

	item := items[0]
	if item.ID != mbSHA256[:12] {
		t.Errorf("ID = %q, want first 12 chars of the sha256", item.ID)
	}
	if item.Type != domain.FileHash || item.Value != mbSHA256 {
		t.Errorf("got %s %q, want hash record for the sha256", item.Type, item.Value)
	}
	if item.MalwareFamily != "AgentTesla" {
		t.Errorf("MalwareFamily = %q, want AgentTesla", item.MalwareFamily)
	}
	if len(item.Tags) != 2 || item.Tags[0] != "AgentTesla" || item.Tags[1] != "exe" {
		t.Errorf("Tags = %v, want [AgentTesla exe]", item.Tags)
	}
	if item.Reference != "https://bazaar.abuse.ch/sample/"+mbSHA256+"/" {
		t.Errorf("Reference = %q", item.Reference)
	}
	if item.Raw == nil || item.Raw.MD5 != "84c82835a5d21bbcf75a61706d8ab549" {
		t.Errorf("Raw = %+v, want md5 carried through", item.Raw)
	}
	if item.Raw.FileName != "invoice.exe" || item.Raw.Reporter != "reporter1" {
		t.Errorf("Raw = %+v, want file_name and reporter", item.Raw)
	}
}

func TestIsHexString(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		length   int
		expected bool
	}{
		{"Valid sha256", mbSHA256, 64, true},
		{"Uppercase valid", strings.ToUpper(mbSHA256), 64, true},
		{"Too short", mbSHA256[:30], 64, false},
		{"Non-hex char", strings.Replace(mbSHA256, "a", "z", 1), 64, false},
		{"Empty", "", 64, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isHexString(tt.value, tt.length); got != tt.expected {
				t.Errorf("isHexString(%q, %d) = %v, want %v", tt.value, tt.length, got, tt.expected)
			}
		})
	}
}
