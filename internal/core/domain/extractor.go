package domain

import (
	"strconv"
	"strings"
)

// ExtractAll runs every recognizer over the same input independently
// and merges the results. Pure function of the text and the static
// pattern tables; deterministic, no I/O.
func ExtractAll(text string) ExtractedEntities {
	threats, malware, actors := extractThreats(text)

	return ExtractedEntities{
		CVEs:      ExtractCVEs(text),
		IPs:       ExtractIPs(text),
		Domains:   ExtractDomains(text),
		URLs:      ExtractURLs(text),
		Hashes:    ExtractHashes(text),
		Threats:   threats,
		Malware:   malware,
		Actors:    actors,
		Tags:      matchCategories(text, ttpCategories),
		Products:  matchCategories(text, productCategories),
		Geography: matchCategories(text, geographyCategories),
		Sectors:   matchCategories(text, sectorCategories),
	}
}

// ExtractCVEs returns CVE identifiers upper-cased, deduplicated,
// first-occurrence order preserved.
func ExtractCVEs(text string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, m := range cvePattern.FindAllString(text, -1) {
		cve := strings.ToUpper(m)
		if _, ok := seen[cve]; ok {
			continue
		}
		seen[cve] = struct{}{}
		result = append(result, cve)
	}
	return result
}

// ExtractIPs returns IPv4 addresses, skipping version-number lookalikes:
// an address is rejected only when all four octets are below 10, so
// "1.2.3.4" is dropped but "10.0.0.1" survives.
func ExtractIPs(text string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, ip := range ipPattern.FindAllString(text, -1) {
		if _, ok := seen[ip]; ok {
			continue
		}
		if looksLikeVersion(ip) {
			continue
		}
		seen[ip] = struct{}{}
		result = append(result, ip)
	}
	return result
}

func looksLikeVersion(ip string) bool {
	for _, part := range strings.Split(ip, ".") {
		octet, err := strconv.Atoi(part)
		if err != nil || octet >= 10 {
			return false
		}
	}
	return true
}

// ExtractDomains returns lower-cased domains on the TLD allow-list,
// minus the benign-domain denylist.
func ExtractDomains(text string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, m := range domainPattern.FindAllString(text, -1) {
		d := strings.ToLower(m)
		if _, ok := seen[d]; ok {
			continue
		}
		if _, benign := falsePositiveDomains[d]; benign {
			continue
		}
		seen[d] = struct{}{}
		result = append(result, d)
	}
	return result
}

// ExtractURLs returns http(s) URLs with trailing punctuation stripped,
// deduplicated verbatim (case-sensitive).
func ExtractURLs(text string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, m := range urlPattern.FindAllString(text, -1) {
		u := strings.TrimRight(m, ".,;:)")
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		result = append(result, u)
	}
	return result
}

// ExtractHashes finds file hashes longest-pattern-first (sha256, then
// sha1, then md5) so a 64-char hex string is never also counted as a
// shorter type. Values are lower-cased.
func ExtractHashes(text string) []FileHashRef {
	seen := make(map[string]struct{})
	var result []FileHashRef

	collect := func(hashType string, matches []string) {
		for _, m := range matches {
			v := strings.ToLower(m)
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			result = append(result, FileHashRef{Type: hashType, Value: v})
		}
	}

	collect("sha256", sha256Pattern.FindAllString(text, -1))
	collect("sha1", sha1Pattern.FindAllString(text, -1))
	collect("md5", md5Pattern.FindAllString(text, -1))
	return result
}

// extractThreats matches the malware and actor keyword lists by
// case-insensitive substring and returns (union, malware, actors).
// The union has set semantics; its order is not guaranteed.
func extractThreats(text string) (threats, malware, actors []string) {
	lower := strings.ToLower(text)

	for _, family := range malwareFamilies {
		if strings.Contains(lower, strings.ToLower(family)) {
			malware = append(malware, family)
		}
	}
	for _, actor := range threatActors {
		if strings.Contains(lower, strings.ToLower(actor)) {
			actors = append(actors, actor)
		}
	}

	union := make(map[string]struct{})
	for _, name := range malware {
		if _, ok := union[name]; !ok {
			union[name] = struct{}{}
			threats = append(threats, name)
		}
	}
	for _, name := range actors {
		if _, ok := union[name]; !ok {
			union[name] = struct{}{}
			threats = append(threats, name)
		}
	}
	return threats, malware, actors
}

// matchCategories folds over an ordered category list, activating each
// category at most once, at the first phrase that appears in the text.
func matchCategories(text string, categories []keywordCategory) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, cat := range categories {
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, kw) {
				found = append(found, cat.Label)
				break
			}
		}
	}
	return found
}
