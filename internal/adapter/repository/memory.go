// Package repository holds the process-lifetime in-memory store. There
// is no persistence: data lives for the session only.
package repository

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/umbra-security/threatlens/internal/core/domain"
	"github.com/umbra-security/threatlens/internal/core/ports"
)

// Store owns identity assignment, dedup, and aggregation for ingested
// documents and feed snapshots. A single RWMutex serializes mutators;
// readers work on copies.
type Store struct {
	mu    sync.RWMutex
	items []domain.Document
	byID  map[string]int // index into items

	feedIOCs    map[string][]domain.IndicatorRecord
	feedCVEs    map[string][]domain.VulnerabilityRecord
	feedUpdated map[string]string
}

func NewStore() *Store {
	return &Store{
		byID:        make(map[string]int),
		feedIOCs:    make(map[string][]domain.IndicatorRecord),
		feedCVEs:    make(map[string][]domain.VulnerabilityRecord),
		feedUpdated: make(map[string]string),
	}
}

// AddItem inserts a document, assigning a short generated ID and an
// ingestion timestamp when absent. If an existing document shares a
// non-empty URL, or the same (title, source) pair, the existing ID is
// returned and nothing is inserted. The dedup scan is O(n) per insert;
// fine for a session-scoped corpus.
func (s *Store) AddItem(doc domain.Document) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.NewString()[:8]
	}
	if doc.AddedAt == "" {
		doc.AddedAt = time.Now().UTC().Format(time.RFC3339)
	}

	for _, existing := range s.items {
		if doc.URL != "" && existing.URL == doc.URL {
			return existing.ID
		}
		if doc.Title == existing.Title && doc.Source == existing.Source {
			return existing.ID
		}
	}

	s.items = append(s.items, doc)
	s.byID[doc.ID] = len(s.items) - 1
	return doc.ID
}

// AddItems inserts documents in order and returns their IDs.
func (s *Store) AddItems(docs []domain.Document) []string {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, s.AddItem(doc))
	}
	return ids
}

// Item looks up one document by ID.
func (s *Store) Item(id string) (domain.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return domain.Document{}, false
	}
	return s.items[idx], true
}

// AllItems returns every document, newest first. Documents without a
// date sort by ingestion time; the order is otherwise stable.
func (s *Store) AllItems() []domain.Document {
	s.mu.RLock()
	out := make([]domain.Document, len(s.items))
	copy(out, s.items)
	s.mu.RUnlock()

	sortKey := func(d domain.Document) string {
		if d.Date != "" {
			return d.Date
		}
		return d.AddedAt
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i]) > sortKey(out[j])
	})
	return out
}

// ItemsBySource returns documents from one source, insertion order.
func (s *Store) ItemsBySource(source string) []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Document
	for _, item := range s.items {
		if item.Source == source {
			out = append(out, item)
		}
	}
	return out
}

// Clear drops every document. There is no partial deletion.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.byID = make(map[string]int)
}

// orderedCounter counts occurrences while remembering first-seen order,
// so top-N ties resolve deterministically.
type orderedCounter struct {
	counts map[string]int
	order  []string
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{counts: make(map[string]int)}
}

func (c *orderedCounter) Add(keys ...string) {
	for _, k := range keys {
		if _, seen := c.counts[k]; !seen {
			c.order = append(c.order, k)
		}
		c.counts[k]++
	}
}

func (c *orderedCounter) MostCommon(n int) []domain.EntityCount {
	out := make([]domain.EntityCount, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, domain.EntityCount{Name: k, Count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Stats recomputes the dashboard roll-up from scratch on every call.
// Totals count unique values across all documents (set union), not the
// sum of per-document counts.
func (s *Store) Stats() domain.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cveSet := make(map[string]struct{})
	ipSet := make(map[string]struct{})
	domainSet := make(map[string]struct{})
	hashSet := make(map[string]struct{})
	urlSet := make(map[string]struct{})
	threatSet := make(map[string]struct{})
	malwareSet := newOrderedCounter()
	actorSet := newOrderedCounter()

	cveCounter := newOrderedCounter()
	threatCounter := newOrderedCounter()
	tagCounts := make(map[string]int)
	productCounts := make(map[string]int)
	geographyCounts := make(map[string]int)
	sectorCounts := make(map[string]int)
	sourceCounts := make(map[string]int)

	var allCVEs, allThreats []string

	for _, item := range s.items {
		ex := item.Extracted

		for _, cve := range ex.CVEs {
			if _, ok := cveSet[cve]; !ok {
				cveSet[cve] = struct{}{}
				allCVEs = append(allCVEs, cve)
			}
		}
		cveCounter.Add(ex.CVEs...)

		for _, ip := range ex.IPs {
			ipSet[ip] = struct{}{}
		}
		for _, d := range ex.Domains {
			domainSet[d] = struct{}{}
		}
		for _, u := range ex.URLs {
			urlSet[u] = struct{}{}
		}
		for _, h := range ex.Hashes {
			hashSet[h.Value] = struct{}{}
		}

		for _, threat := range ex.Threats {
			if _, ok := threatSet[threat]; !ok {
				threatSet[threat] = struct{}{}
				allThreats = append(allThreats, threat)
			}
		}
		threatCounter.Add(ex.Threats...)
		malwareSet.Add(ex.Malware...)
		actorSet.Add(ex.Actors...)

		for _, t := range ex.Tags {
			tagCounts[t]++
		}
		for _, p := range ex.Products {
			productCounts[p]++
		}
		for _, g := range ex.Geography {
			geographyCounts[g]++
		}
		for _, sec := range ex.Sectors {
			sectorCounts[sec]++
		}

		src := item.Source
		if src == "" {
			src = "unknown"
		}
		sourceCounts[src]++
	}

	return domain.StoreStats{
		TotalItems:   len(s.items),
		TotalCVEs:    len(cveSet),
		TotalIOCs:    len(ipSet) + len(domainSet) + len(hashSet) + len(urlSet),
		TotalThreats: len(threatSet),
		IOCBreakdown: domain.IOCBreakdown{
			IPs:     len(ipSet),
			Domains: len(domainSet),
			Hashes:  len(hashSet),
			URLs:    len(urlSet),
		},
		TopCVEs:         cveCounter.MostCommon(10),
		TopThreats:      threatCounter.MostCommon(10),
		AllCVEs:         allCVEs,
		AllThreats:      allThreats,
		AllMalware:      malwareSet.order,
		AllActors:       actorSet.order,
		TagCounts:       tagCounts,
		ProductCounts:   productCounts,
		GeographyCounts: geographyCounts,
		SectorCounts:    sectorCounts,
		Sources:         sourceCounts,
	}
}

// AllCVEs rolls up occurrence counts and document backlinks per CVE,
// sorted by count descending, ties in first-seen order.
func (s *Store) AllCVEs() []domain.CVERollup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[string]*domain.CVERollup)
	var order []string

	for _, item := range s.items {
		for _, cve := range item.Extracted.CVEs {
			rollup, ok := byID[cve]
			if !ok {
				rollup = &domain.CVERollup{ID: cve}
				byID[cve] = rollup
				order = append(order, cve)
			}
			rollup.Count++
			rollup.Sources = append(rollup.Sources, item.Source)
			rollup.Items = append(rollup.Items, domain.ItemRef{
				ID:     item.ID,
				Title:  item.Title,
				Source: item.Source,
			})
		}
	}

	out := make([]domain.CVERollup, 0, len(order))
	for _, cve := range order {
		out = append(out, *byID[cve])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// AllThreats rolls up malware and actor mentions with backlinks,
// sorted by count descending.
func (s *Store) AllThreats() []domain.ThreatRollup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byName := make(map[string]*domain.ThreatRollup)
	var order []string

	record := func(name, threatType string, item domain.Document) {
		rollup, ok := byName[name]
		if !ok {
			rollup = &domain.ThreatRollup{Name: name, Type: threatType}
			byName[name] = rollup
			order = append(order, name)
		}
		rollup.Count++
		rollup.Items = append(rollup.Items, domain.ItemRef{ID: item.ID, Title: item.Title})
	}

	for _, item := range s.items {
		for _, malware := range item.Extracted.Malware {
			record(malware, "malware", item)
		}
		for _, actor := range item.Extracted.Actors {
			record(actor, "actor", item)
		}
	}

	out := make([]domain.ThreatRollup, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// AllIOCs groups document-extracted indicators by kind, deduplicated by
// value; the first document that mentioned a value wins the backlink.
func (s *Store) AllIOCs() domain.IOCGroups {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups domain.IOCGroups
	ipSeen := make(map[string]struct{})
	domainSeen := make(map[string]struct{})
	urlSeen := make(map[string]struct{})
	hashSeen := make(map[string]struct{})

	for _, item := range s.items {
		ref := domain.ItemRef{ID: item.ID, Title: item.Title, Source: item.Source}
		ex := item.Extracted

		for _, ip := range ex.IPs {
			if _, ok := ipSeen[ip]; !ok {
				ipSeen[ip] = struct{}{}
				groups.IPs = append(groups.IPs, domain.IOCEntry{Value: ip, SourceItem: ref})
			}
		}
		for _, d := range ex.Domains {
			if _, ok := domainSeen[d]; !ok {
				domainSeen[d] = struct{}{}
				groups.Domains = append(groups.Domains, domain.IOCEntry{Value: d, SourceItem: ref})
			}
		}
		for _, u := range ex.URLs {
			if _, ok := urlSeen[u]; !ok {
				urlSeen[u] = struct{}{}
				groups.URLs = append(groups.URLs, domain.IOCEntry{Value: u, SourceItem: ref})
			}
		}
		for _, h := range ex.Hashes {
			if h.Value == "" {
				continue
			}
			if _, ok := hashSeen[h.Value]; !ok {
				hashSeen[h.Value] = struct{}{}
				groups.Hashes = append(groups.Hashes, domain.IOCEntry{
					Value:      h.Value,
					HashType:   h.Type,
					SourceItem: ref,
				})
			}
		}
	}

	return groups
}

// UpdateFeedIOCs replaces the indicator snapshot for one source. A
// resync discards the source's previous snapshot entirely.
func (s *Store) UpdateFeedIOCs(source string, items []domain.IndicatorRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedIOCs[source] = items
	s.feedUpdated[source] = time.Now().UTC().Format(time.RFC3339)
	return len(items)
}

// UpdateFeedCVEs replaces the vulnerability snapshot for one source.
func (s *Store) UpdateFeedCVEs(source string, items []domain.VulnerabilityRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedCVEs[source] = items
	s.feedUpdated[source] = time.Now().UTC().Format(time.RFC3339)
	return len(items)
}

// FeedIOCs returns feed indicators matching the filter, capped at
// filter.Limit when positive.
func (s *Store) FeedIOCs(filter ports.FeedIOCFilter) []domain.IndicatorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := s.feedSourcesLocked(filter.Source, true)

	var out []domain.IndicatorRecord
	for _, src := range sources {
		for _, ioc := range s.feedIOCs[src] {
			if filter.Type != "" && ioc.Type != filter.Type {
				continue
			}
			if filter.ThreatType != "" && ioc.ThreatType != filter.ThreatType {
				continue
			}
			out = append(out, ioc)
		}
	}

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

// FeedCVEs returns feed vulnerabilities matching the filter, newest
// date_added first, capped at filter.Limit when positive.
func (s *Store) FeedCVEs(filter ports.FeedCVEFilter) []domain.VulnerabilityRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := s.feedSourcesLocked(filter.Source, false)

	var out []domain.VulnerabilityRecord
	for _, src := range sources {
		for _, cve := range s.feedCVEs[src] {
			if filter.RansomwareOnly && !cve.KnownRansomware {
				continue
			}
			out = append(out, cve)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DateAdded > out[j].DateAdded })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

func (s *Store) feedSourcesLocked(source string, iocs bool) []string {
	if source != "" {
		return []string{source}
	}
	var sources []string
	if iocs {
		for src := range s.feedIOCs {
			sources = append(sources, src)
		}
	} else {
		for src := range s.feedCVEs {
			sources = append(sources, src)
		}
	}
	sort.Strings(sources)
	return sources
}

// FeedStats aggregates the current snapshots per source, without
// cross-source dedup.
func (s *Store) FeedStats() domain.FeedStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.FeedStats{
		BySource:        make(map[string]int),
		ByIOCType:       map[string]int{"ip": 0, "domain": 0, "url": 0, "hash": 0},
		ByThreatType:    make(map[string]int),
		MalwareFamilies: make(map[string]int),
		LastUpdated:     make(map[string]string),
	}
	for src, ts := range s.feedUpdated {
		stats.LastUpdated[src] = ts
	}

	families := newOrderedCounter()

	for src, items := range s.feedIOCs {
		stats.BySource[src] = len(items)
		stats.TotalIOCs += len(items)

		for _, item := range items {
			if _, tracked := stats.ByIOCType[string(item.Type)]; tracked {
				stats.ByIOCType[string(item.Type)]++
			}
			if item.ThreatType != "" {
				stats.ByThreatType[item.ThreatType]++
			}
			if item.MalwareFamily != "" {
				families.Add(item.MalwareFamily)
			}
		}
	}

	for src, items := range s.feedCVEs {
		stats.BySource[src] = len(items)
		stats.TotalCVEs += len(items)
		for _, item := range items {
			if item.KnownRansomware {
				stats.RansomwareCVEs++
			}
		}
	}

	stats.MalwareFamilies = families.counts
	stats.TopMalware = families.MostCommon(20)
	return stats
}

// SearchFeeds matches the query case-insensitively against indicator
// value, malware family, and tags, and against CVE ID, vulnerability
// name, vendor, and product. Each result list stops accumulating once
// it reaches limit within the current source, so the final size may
// exceed limit by up to one source's overflow.
func (s *Store) SearchFeeds(queryStr string, limit int) domain.FeedSearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(queryStr)
	var result domain.FeedSearchResult

	for _, src := range s.feedSourcesLocked("", true) {
		for _, item := range s.feedIOCs[src] {
			if strings.Contains(strings.ToLower(item.Value), q) ||
				strings.Contains(strings.ToLower(item.MalwareFamily), q) ||
				containsFold(item.Tags, q) {
				result.IOCs = append(result.IOCs, item)
				if len(result.IOCs) >= limit {
					break
				}
			}
		}
	}

	for _, src := range s.feedSourcesLocked("", false) {
		for _, item := range s.feedCVEs[src] {
			if strings.Contains(strings.ToLower(item.CVEID), q) ||
				strings.Contains(strings.ToLower(item.Name), q) ||
				strings.Contains(strings.ToLower(item.Vendor), q) ||
				strings.Contains(strings.ToLower(item.Product), q) {
				result.CVEs = append(result.CVEs, item)
				if len(result.CVEs) >= limit {
					break
				}
			}
		}
	}

	return result
}

func containsFold(tags []string, q string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// ClearFeeds drops every feed snapshot.
func (s *Store) ClearFeeds() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedIOCs = make(map[string][]domain.IndicatorRecord)
	s.feedCVEs = make(map[string][]domain.VulnerabilityRecord)
	s.feedUpdated = make(map[string]string)
}
