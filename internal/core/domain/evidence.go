package domain

import "strings"

const snippetMaxChars = 300

// EvidenceSnippet is the first sentence in which an extracted entity
// was mentioned.
type EvidenceSnippet struct {
	Entity  string `json:"entity"`
	Snippet string `json:"snippet"`
	Type    string `json:"type"` // cve or threat
}

// GetEvidenceSnippets locates supporting sentences for up to 3 CVEs and
// up to 3 threats, CVEs first, returning at most max snippets. Each
// snippet is truncated to 300 characters with an ellipsis marker.
func GetEvidenceSnippets(text string, entities ExtractedEntities, max int) []EvidenceSnippet {
	var snippets []EvidenceSnippet
	sentences := splitSentences(text)

	cves := entities.CVEs
	if len(cves) > 3 {
		cves = cves[:3]
	}
	for _, cve := range cves {
		for _, sentence := range sentences {
			if strings.Contains(strings.ToUpper(sentence), strings.ToUpper(cve)) {
				snippets = append(snippets, EvidenceSnippet{
					Entity:  cve,
					Snippet: truncate(sentence, snippetMaxChars),
					Type:    "cve",
				})
				break
			}
		}
	}

	threats := entities.Threats
	if len(threats) > 3 {
		threats = threats[:3]
	}
	for _, threat := range threats {
		for _, sentence := range sentences {
			if strings.Contains(strings.ToLower(sentence), strings.ToLower(threat)) {
				snippets = append(snippets, EvidenceSnippet{
					Entity:  threat,
					Snippet: truncate(sentence, snippetMaxChars),
					Type:    "threat",
				})
				break
			}
		}
	}

	if len(snippets) > max {
		snippets = snippets[:max]
	}
	return snippets
}

// splitSentences cuts text after terminal punctuation followed by
// whitespace. The punctuation stays with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 >= len(runes) || !isSpace(runes[i+1]) {
			continue
		}
		sentences = append(sentences, string(runes[start:i+1]))
		j := i + 1
		for j < len(runes) && isSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}

	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
