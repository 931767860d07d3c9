package feed

import (
	"encoding/json"
	"fmt"

	"github.com/umbra-security/threatlens/internal/core/domain"
)

type kevCatalog struct {
	Vulnerabilities []kevEntry `json:"vulnerabilities"`
}

type kevEntry struct {
	CVEID                      string `json:"cveID"`
	VendorProject              string `json:"vendorProject"`
	Product                    string `json:"product"`
	VulnerabilityName          string `json:"vulnerabilityName"`
	DateAdded                  string `json:"dateAdded"`
	DueDate                    string `json:"dueDate"`
	KnownRansomwareCampaignUse string `json:"knownRansomwareCampaignUse"`
	ShortDescription           string `json:"shortDescription"`
}

// CISAKEVParser normalizes the CISA Known Exploited Vulnerabilities
// catalog into vulnerability records.
type CISAKEVParser struct{}

func (CISAKEVParser) Name() string { return "cisa_kev" }

func (p CISAKEVParser) Parse(payload []byte, limit int) ([]domain.VulnerabilityRecord, error) {
	var catalog kevCatalog
	if err := json.Unmarshal(payload, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode cisa kev payload: %w", err)
	}

	var items []domain.VulnerabilityRecord
	for _, v := range catalog.Vulnerabilities {
		if limit > 0 && len(items) >= limit {
			break
		}
		if v.CVEID == "" {
			continue
		}

		items = append(items, domain.VulnerabilityRecord{
			CVEID:     v.CVEID,
			Vendor:    v.VendorProject,
			Product:   v.Product,
			Name:      v.VulnerabilityName,
			DateAdded: v.DateAdded,
			DueDate:   v.DueDate,
			// The catalog reports "Known" or "Unknown"; anything but the
			// exact sentinel counts as not known.
			KnownRansomware: v.KnownRansomwareCampaignUse == "Known",
			Notes:           v.ShortDescription,
			Source:          p.Name(),
		})
	}

	return items, nil
}
