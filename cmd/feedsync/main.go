package main

import (
	"context"
	"flag"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/umbra-security/threatlens/internal/adapter/feed"
	"github.com/umbra-security/threatlens/internal/adapter/repository"
)

func main() {
	// Load .env file if it exists (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found (this is fine)")
	}

	sourcesFlag := flag.String("sources", "", "comma-separated feed keys (default: all)")
	limitFlag := flag.Int("limit", 300, "max items per feed")
	flag.Parse()

	var names []string
	if *sourcesFlag != "" {
		for _, name := range strings.Split(*sourcesFlag, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	store := repository.NewStore()
	fetcher := feed.NewHTTPFetcher(nil)
	registry := feed.NewRegistry(fetcher, store, feed.DefaultSources())

	log.Println("🚀 Feed sync started...")
	start := time.Now()

	result := registry.Sync(ctx, names, *limitFlag)

	// Per-source summary, sorted for readability
	keys := make([]string, 0, len(result.Counts))
	for key := range result.Counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		log.Printf("  %-18s %d items", key, result.Counts[key])
	}
	errKeys := make([]string, 0, len(result.Errors))
	for key := range result.Errors {
		errKeys = append(errKeys, key)
	}
	sort.Strings(errKeys)
	for _, key := range errKeys {
		log.Printf("  %-18s ERROR: %s", key, result.Errors[key])
	}

	log.Printf("🏁 Sync finished in %v: %d items from %d sources, %d failed",
		time.Since(start).Round(time.Millisecond), result.Total,
		len(result.Counts), len(result.Errors))

	// Only a total failure is a hard error; partial results are normal
	// operation for OSINT feeds.
	if len(result.Counts) == 0 && len(result.Errors) > 0 {
		os.Exit(1)
	}
}
