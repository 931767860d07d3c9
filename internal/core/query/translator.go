// Package query translates a bounded-grammar natural-language search
// string into a structured filter and applies it to stored documents.
package query

import (
	"regexp"
	"strings"
)

// ParsedQuery is the structured form of one search string. Ambiguous
// queries simply populate multiple fields; there is no conflict
// resolution between, say, QueryType and EntityType.
type ParsedQuery struct {
	QueryType  string   `json:"query_type"` // cve, ioc, threat, item, all
	Keywords   []string `json:"keywords"`
	CVEID      string   `json:"cve_id,omitempty"`
	TimeRange  string   `json:"time_range,omitempty"` // last_24h, 7d, 30d
	Source     string   `json:"source,omitempty"`
	EntityType string   `json:"entity_type,omitempty"` // ip, domain, hash, url
	RawQuery   string   `json:"raw_query"`
}

type patternRule struct {
	re    *regexp.Regexp
	value string
}

// Fixed phrase table for time ranges; first matching pattern wins.
var timeRules = []patternRule{
	{regexp.MustCompile(`\b(today|last\s*24\s*h(ours?)?|past\s*24\s*h(ours?)?)\b`), "last_24h"},
	{regexp.MustCompile(`\b(last\s*(7|seven)\s*days?|past\s*(7|seven)\s*days?|this\s*week)\b`), "7d"},
	{regexp.MustCompile(`\b(last\s*(30|thirty)\s*days?|past\s*(30|thirty)\s*days?|this\s*month)\b`), "30d"},
	{regexp.MustCompile(`\b(last\s*week)\b`), "7d"},
	{regexp.MustCompile(`\b(last\s*month)\b`), "30d"},
}

var cveIDPattern = regexp.MustCompile(`(?i)CVE-\d{4}-\d{4,}`)

var typeRules = []patternRule{
	{regexp.MustCompile(`\bcves?\b`), "cve"},
	{regexp.MustCompile(`\bvulnerabilit(y|ies)\b`), "cve"},
	{regexp.MustCompile(`\biocs?\b`), "ioc"},
	{regexp.MustCompile(`\bindicators?\b`), "ioc"},
	{regexp.MustCompile(`\bips?\b`), "ioc"},
	{regexp.MustCompile(`\bdomains?\b`), "ioc"},
	{regexp.MustCompile(`\bhash(es)?\b`), "ioc"},
	{regexp.MustCompile(`\burls?\b`), "ioc"},
	{regexp.MustCompile(`\bthreats?\b`), "threat"},
	{regexp.MustCompile(`\bmalware\b`), "threat"},
	{regexp.MustCompile(`\bactors?\b`), "threat"},
	{regexp.MustCompile(`\bapts?\b`), "threat"},
	{regexp.MustCompile(`\battack(ers?)?\b`), "threat"},
	{regexp.MustCompile(`\barticles?\b`), "item"},
	{regexp.MustCompile(`\breports?\b`), "item"},
	{regexp.MustCompile(`\bnews\b`), "item"},
	{regexp.MustCompile(`\bpdfs?\b`), "item"},
}

var entityRules = []patternRule{
	{regexp.MustCompile(`\bips?\b`), "ip"},
	{regexp.MustCompile(`\bip\s*address(es)?\b`), "ip"},
	{regexp.MustCompile(`\bdomains?\b`), "domain"},
	{regexp.MustCompile(`\bhash(es)?\b`), "hash"},
	{regexp.MustCompile(`\bmd5\b`), "hash"},
	{regexp.MustCompile(`\bsha\d+\b`), "hash"},
	{regexp.MustCompile(`\burls?\b`), "url"},
}

// Small alias table mapping source mentions to canonical source names.
var sourceRules = []patternRule{
	{regexp.MustCompile(`\bbleeping\s*computer\b`), "bleepingcomputer"},
	{regexp.MustCompile(`\bbleeping\b`), "bleepingcomputer"},
	{regexp.MustCompile(`\bgbhackers?\b`), "gbhackers"},
	{regexp.MustCompile(`\bgb\s*hackers?\b`), "gbhackers"},
	{regexp.MustCompile(`\bpdfs?\b`), "pdf"},
	{regexp.MustCompile(`\buploaded?\b`), "pdf"},
	{regexp.MustCompile(`\breports?\b`), "pdf"},
}

var stopWords = map[string]struct{}{
	"show": {}, "find": {}, "search": {}, "list": {}, "get": {}, "display": {},
	"give": {}, "me": {}, "the": {}, "all": {}, "any": {}, "from": {}, "for": {},
	"with": {}, "about": {}, "related": {}, "to": {}, "in": {}, "a": {}, "an": {},
	"and": {}, "or": {}, "of": {}, "are": {}, "is": {}, "was": {}, "were": {},
	"been": {}, "what": {}, "which": {}, "where": {}, "when": {}, "how": {},
	"can": {}, "could": {}, "would": {}, "please": {}, "thanks": {}, "thank": {},
	"you": {}, "i": {}, "my": {}, "we": {}, "our": {},
}

var tokenPattern = regexp.MustCompile(`\b[a-zA-Z0-9_-]+\b`)

// Parse classifies a raw query string. Best-effort heuristics: later
// steps consume the residual text after earlier matches are stripped.
func Parse(raw string) ParsedQuery {
	parsed := ParsedQuery{RawQuery: raw}
	lower := strings.ToLower(raw)

	for _, rule := range timeRules {
		if rule.re.MatchString(lower) {
			parsed.TimeRange = rule.value
			break
		}
	}

	if m := cveIDPattern.FindString(raw); m != "" {
		parsed.CVEID = strings.ToUpper(m)
	}

	parsed.QueryType = "all"
	for _, rule := range typeRules {
		if rule.re.MatchString(lower) {
			parsed.QueryType = rule.value
			break
		}
	}

	for _, rule := range entityRules {
		if rule.re.MatchString(lower) {
			parsed.EntityType = rule.value
			break
		}
	}

	for _, rule := range sourceRules {
		if rule.re.MatchString(lower) {
			parsed.Source = rule.value
			break
		}
	}

	parsed.Keywords = extractKeywords(raw)
	return parsed
}

// extractKeywords tokenizes the residual query after stripping every
// phrase the structured steps consumed, then drops stop words and
// single-character tokens.
func extractKeywords(raw string) []string {
	text := cveIDPattern.ReplaceAllString(raw, "")
	text = strings.ToLower(text)

	for _, rule := range timeRules {
		text = rule.re.ReplaceAllString(text, "")
	}
	for _, rule := range typeRules {
		text = rule.re.ReplaceAllString(text, "")
	}
	for _, rule := range sourceRules {
		text = rule.re.ReplaceAllString(text, "")
	}

	var keywords []string
	for _, tok := range tokenPattern.FindAllString(text, -1) {
		if len(tok) <= 1 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		keywords = append(keywords, tok)
	}
	return keywords
}
