package feed

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/umbra-security/threatlens/internal/core/ports"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultLimitPerFeed = 300
)

// Source describes one registered feed: where to fetch it and which
// parser normalizes it. Exactly one of the parser fields is set,
// matching Kind.
type Source struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Format      string `json:"format"`
	Provider    string `json:"provider"`
	Description string `json:"description"`
	Kind        string `json:"kind"` // indicator or vulnerability

	indicators ports.IndicatorParser
	vulns      ports.VulnerabilityParser
}

// DefaultSources returns the built-in feed catalog.
func DefaultSources() []Source {
	return []Source{
		{
			Key:         "threatfox",
			Name:        "ThreatFox",
			URL:         "https://threatfox.abuse.ch/export/csv/recent/",
			Format:      "csv",
			Provider:    "abuse.ch",
			Description: "IOCs including C2 servers, malware hashes, domains",
			Kind:        "indicator",
			indicators:  ThreatFoxParser{},
		},
		{
			Key:         "urlhaus",
			Name:        "URLhaus",
			URL:         "https://urlhaus.abuse.ch/downloads/json_recent/",
			Format:      "json",
			Provider:    "abuse.ch",
			Description: "Malicious URLs (malware distribution, C2)",
			Kind:        "indicator",
			indicators:  URLhausParser{},
		},
		{
			Key:         "malwarebazaar",
			Name:        "MalwareBazaar",
			URL:         "https://bazaar.abuse.ch/export/csv/recent/",
			Format:      "csv",
			Provider:    "abuse.ch",
			Description: "Malware samples and hashes",
			Kind:        "indicator",
			indicators:  MalwareBazaarParser{},
		},
		{
			Key:         "feodotracker",
			Name:        "Feodo Tracker",
			URL:         "https://feodotracker.abuse.ch/downloads/ipblocklist.json",
			Format:      "json",
			Provider:    "abuse.ch",
			Description: "Botnet C2 servers (Dridex, Emotet, TrickBot, QakBot)",
			Kind:        "indicator",
			indicators:  FeodoTrackerParser{},
		},
		{
			Key:         "sslbl",
			Name:        "SSL Blacklist",
			URL:         "https://sslbl.abuse.ch/blacklist/sslipblacklist.json",
			Format:      "json",
			Provider:    "abuse.ch",
			Description: "Malicious SSL certificates and IPs",
			Kind:        "indicator",
			indicators:  SSLBLParser{},
		},
		{
			Key:         "emergingthreats",
			Name:        "Emerging Threats",
			URL:         "https://rules.emergingthreats.net/blockrules/compromised-ips.txt",
			Format:      "text",
			Provider:    "Proofpoint",
			Description: "Compromised IP addresses",
			Kind:        "indicator",
			indicators:  NewEmergingThreatsParser(),
		},
		{
			Key:         "c2_tracker",
			Name:        "C2 IntelFeeds",
			URL:         "https://raw.githubusercontent.com/drb-ra/C2IntelFeeds/master/feeds/IPC2s-30day.csv",
			Format:      "csv",
			Provider:    "Community",
			Description: "C2 server IP addresses",
			Kind:        "indicator",
			indicators:  C2TrackerParser{},
		},
		{
			Key:         "openphish",
			Name:        "OpenPhish",
			URL:         "https://openphish.com/feed.txt",
			Format:      "text",
			Provider:    "OpenPhish",
			Description: "Phishing URLs (community feed)",
			Kind:        "indicator",
			indicators:  OpenPhishParser{},
		},
		{
			Key:         "cisa_kev",
			Name:        "CISA KEV",
			URL:         "https://www.cisa.gov/sites/default/files/feeds/known_exploited_vulnerabilities.json",
			Format:      "json",
			Provider:    "CISA",
			Description: "Known Exploited Vulnerabilities catalog",
			Kind:        "vulnerability",
			vulns:       CISAKEVParser{},
		},
	}
}

// SyncResult reports one sync pass. Counts holds normalized items per
// successful source, Errors the failure message per failed source. A
// source appears in exactly one of the two maps.
type SyncResult struct {
	Counts map[string]int    `json:"counts"`
	Errors map[string]string `json:"errors,omitempty"`
	Total  int               `json:"total"`
}

// Registry owns the feed catalog and runs fetch-and-normalize passes
// against the repository.
type Registry struct {
	fetcher ports.PayloadFetcher
	repo    ports.FeedRepository
	sources map[string]Source
	order   []string
	timeout time.Duration
}

func NewRegistry(fetcher ports.PayloadFetcher, repo ports.FeedRepository, sources []Source) *Registry {
	r := &Registry{
		fetcher: fetcher,
		repo:    repo,
		sources: make(map[string]Source, len(sources)),
		timeout: fetchTimeoutFromEnv(),
	}
	for _, s := range sources {
		r.sources[s.Key] = s
		r.order = append(r.order, s.Key)
	}
	return r
}

func fetchTimeoutFromEnv() time.Duration {
	if v := os.Getenv("FEED_HTTP_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultFetchTimeout
}

// Sources lists the catalog in registration order.
func (r *Registry) Sources() []Source {
	out := make([]Source, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.sources[key])
	}
	return out
}

// Sync fetches and normalizes the named sources concurrently, one
// goroutine per source. An empty names slice means every registered
// source. A failing source contributes an error entry and nothing
// else; it never aborts the other sources or keeps its previous
// snapshot from surviving (the snapshot is only replaced on success).
func (r *Registry) Sync(ctx context.Context, names []string, limitPerFeed int) SyncResult {
	if len(names) == 0 {
		names = r.order
	}
	if limitPerFeed <= 0 {
		limitPerFeed = defaultLimitPerFeed
	}

	result := SyncResult{
		Counts: make(map[string]int),
		Errors: make(map[string]string),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, name := range names {
		src, ok := r.sources[name]
		if !ok {
			result.Errors[name] = "unknown feed source"
			continue
		}

		wg.Add(1)
		go func(src Source) {
			defer wg.Done()

			count, err := r.syncOne(ctx, src, limitPerFeed)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("❌ Feed %s failed: %v", src.Key, err)
				result.Errors[src.Key] = err.Error()
				return
			}
			log.Printf("✅ Feed %s: %d items", src.Key, count)
			result.Counts[src.Key] = count
			result.Total += count
		}(src)
	}

	wg.Wait()
	return result
}

func (r *Registry) syncOne(ctx context.Context, src Source, limit int) (int, error) {
	start := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	payload, err := r.fetcher.Fetch(fetchCtx, src.URL)
	if err != nil {
		recordSync(src.Key, "error", 0, time.Since(start))
		return 0, fmt.Errorf("fetch failed: %w", err)
	}

	var count int
	switch {
	case src.indicators != nil:
		items, err := src.indicators.Parse(payload, limit)
		if err != nil {
			recordSync(src.Key, "error", 0, time.Since(start))
			return 0, fmt.Errorf("parse failed: %w", err)
		}
		count = r.repo.UpdateFeedIOCs(src.Key, items)
	case src.vulns != nil:
		items, err := src.vulns.Parse(payload, limit)
		if err != nil {
			recordSync(src.Key, "error", 0, time.Since(start))
			return 0, fmt.Errorf("parse failed: %w", err)
		}
		count = r.repo.UpdateFeedCVEs(src.Key, items)
	default:
		return 0, fmt.Errorf("source %s has no parser", src.Key)
	}

	recordSync(src.Key, "success", count, time.Since(start))
	return count, nil
}
