package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/umbra-security/threatlens/internal/adapter/exporter"
	"github.com/umbra-security/threatlens/internal/adapter/feed"
	"github.com/umbra-security/threatlens/internal/adapter/repository"
	"github.com/umbra-security/threatlens/internal/core/domain"
	"github.com/umbra-security/threatlens/internal/core/ports"
	"github.com/umbra-security/threatlens/internal/core/query"
)

const searchResultCap = 50

type RestHandler struct {
	store        *repository.Store
	registry     *feed.Registry
	cefExporter  *exporter.CEFExporter
	stixExporter *exporter.STIXExporter
}

func NewRestHandler(store *repository.Store, registry *feed.Registry) *RestHandler {
	return &RestHandler{
		store:        store,
		registry:     registry,
		cefExporter:  exporter.NewCEFExporter(store),
		stixExporter: exporter.NewSTIXExporter(store),
	}
}

// Health check endpoint
func (h *RestHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "threatlens-api",
	})
}

// GetStats returns the document-store dashboard roll-up.
func (h *RestHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats())
}

// ListItems returns every ingested document, newest first.
func (h *RestHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	var items []domain.Document
	if source := r.URL.Query().Get("source"); source != "" {
		items = h.store.ItemsBySource(source)
	} else {
		items = h.store.AllItems()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(items),
		"items": items,
	})
}

// IngestRequest is the POST /items payload. Content is the text the
// extraction engine runs over; Description is folded in when present.
type IngestRequest struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// IngestItem extracts entities from the submitted document and stores
// it. Returns the assigned ID, or the existing one when the document
// deduplicates against a prior ingest.
func (h *RestHandler) IngestItem(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Title == "" && req.Content == "" {
		writeError(w, http.StatusBadRequest, "title or content required")
		return
	}

	text := req.Title + " " + req.Description + " " + req.Content
	extracted := domain.ExtractAll(text)

	id := h.store.AddItem(domain.Document{
		Title:       req.Title,
		Source:      req.Source,
		URL:         req.URL,
		Date:        req.Date,
		Description: req.Description,
		Content:     req.Content,
		Extracted:   extracted,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"extracted": extracted,
	})
}

// GetItem returns one document. When the document carries content,
// evidence snippets for its CVEs and threats are attached.
func (h *RestHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	item, ok := h.store.Item(id)
	if !ok {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	response := map[string]interface{}{"item": item}
	if item.Content != "" {
		response["evidence"] = domain.GetEvidenceSnippets(item.Content, item.Extracted, 10)
	}
	writeJSON(w, http.StatusOK, response)
}

// ListCVEs returns per-CVE roll-ups with document backlinks.
func (h *RestHandler) ListCVEs(w http.ResponseWriter, r *http.Request) {
	cves := h.store.AllCVEs()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(cves),
		"cves":  cves,
	})
}

// ListIOCs returns document-extracted indicators grouped by kind.
func (h *RestHandler) ListIOCs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.AllIOCs())
}

// ListThreats returns per-threat roll-ups with document backlinks.
func (h *RestHandler) ListThreats(w http.ResponseWriter, r *http.Request) {
	threats := h.store.AllThreats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(threats),
		"threats": threats,
	})
}

// SearchRequest is the POST /search payload.
type SearchRequest struct {
	Query string `json:"query"`
}

// Search runs the copilot query pipeline: parse, filter, summarize.
// Accepts POST with a JSON body or GET with ?q=.
func (h *RestHandler) Search(w http.ResponseWriter, r *http.Request) {
	var raw string
	if r.Method == http.MethodPost {
		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		raw = req.Query
	} else {
		raw = r.URL.Query().Get("q")
	}
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}

	parsed := query.Parse(raw)
	results := query.Filter(h.store.AllItems(), parsed)
	answer := query.Summarize(results, parsed)

	capped := results
	if len(capped) > searchResultCap {
		capped = capped[:searchResultCap]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   parsed,
		"answer":  answer,
		"count":   len(results),
		"results": capped,
	})
}

// ClearItems drops every ingested document.
func (h *RestHandler) ClearItems(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// SyncRequest is the POST /feeds/sync payload. Empty Sources means
// every registered feed.
type SyncRequest struct {
	Sources      []string `json:"sources"`
	LimitPerFeed int      `json:"limit_per_feed"`
}

// SyncFeeds runs a concurrent fetch-and-normalize pass over the
// requested sources and returns per-source counts and errors alongside
// refreshed feed stats.
func (h *RestHandler) SyncFeeds(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if r.Body != nil {
		// An empty body means a full sync with defaults.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result := h.registry.Sync(r.Context(), req.Sources, req.LimitPerFeed)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"counts": result.Counts,
		"errors": result.Errors,
		"total":  result.Total,
		"stats":  h.store.FeedStats(),
	})
}

// ListFeedSources returns the registered feed catalog.
func (h *RestHandler) ListFeedSources(w http.ResponseWriter, r *http.Request) {
	sources := h.registry.Sources()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(sources),
		"sources": sources,
	})
}

// GetFeedIOCs returns aggregated feed indicators, optionally filtered
// by source, IOC type, and threat type.
func (h *RestHandler) GetFeedIOCs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.FeedIOCFilter{
		Source:     q.Get("source"),
		Type:       domain.IOCType(q.Get("type")),
		ThreatType: q.Get("threat_type"),
		Limit:      intParam(q.Get("limit"), 100),
	}
	iocs := h.store.FeedIOCs(filter)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(iocs),
		"iocs":  iocs,
	})
}

// GetFeedCVEs returns aggregated feed vulnerabilities, newest first.
func (h *RestHandler) GetFeedCVEs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.FeedCVEFilter{
		Source:         q.Get("source"),
		RansomwareOnly: q.Get("ransomware_only") == "true",
		Limit:          intParam(q.Get("limit"), 100),
	}
	cves := h.store.FeedCVEs(filter)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(cves),
		"cves":  cves,
	})
}

// GetFeedStats returns per-source and per-type feed aggregates.
func (h *RestHandler) GetFeedStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.FeedStats())
}

// SearchFeeds substring-matches the query across feed snapshots.
func (h *RestHandler) SearchFeeds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing 'q' parameter")
		return
	}
	limit := intParam(r.URL.Query().Get("limit"), 50)

	result := h.store.SearchFeeds(q, limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":     q,
		"ioc_count": len(result.IOCs),
		"cve_count": len(result.CVEs),
		"iocs":      result.IOCs,
		"cves":      result.CVEs,
	})
}

// ExportFeeds renders the feed IOC snapshots for SIEM ingestion.
func (h *RestHandler) ExportFeeds(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("format") {
	case "stix":
		data, err := h.stixExporter.Export()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to export STIX feed")
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(data)); err != nil {
			log.Printf("Error writing STIX feed response: %v", err)
		}

	case "cef":
		data, err := h.cefExporter.Export()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to export CEF feed")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(data)); err != nil {
			log.Printf("Error writing CEF feed response: %v", err)
		}

	default:
		writeError(w, http.StatusBadRequest, "unsupported format (use 'stix' or 'cef')")
	}
}

// ClearFeeds drops every feed snapshot.
func (h *RestHandler) ClearFeeds(w http.ResponseWriter, r *http.Request) {
	h.store.ClearFeeds()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Register wires every route onto the router.
func (h *RestHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/items", h.ListItems).Methods(http.MethodGet)
	api.HandleFunc("/items", h.IngestItem).Methods(http.MethodPost)
	api.HandleFunc("/items/{id}", h.GetItem).Methods(http.MethodGet)
	api.HandleFunc("/cves", h.ListCVEs).Methods(http.MethodGet)
	api.HandleFunc("/iocs", h.ListIOCs).Methods(http.MethodGet)
	api.HandleFunc("/threats", h.ListThreats).Methods(http.MethodGet)
	api.HandleFunc("/search", h.Search).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/clear", h.ClearItems).Methods(http.MethodDelete)

	api.HandleFunc("/feeds/sync", h.SyncFeeds).Methods(http.MethodPost)
	api.HandleFunc("/feeds/sources", h.ListFeedSources).Methods(http.MethodGet)
	api.HandleFunc("/feeds/iocs", h.GetFeedIOCs).Methods(http.MethodGet)
	api.HandleFunc("/feeds/cves", h.GetFeedCVEs).Methods(http.MethodGet)
	api.HandleFunc("/feeds/stats", h.GetFeedStats).Methods(http.MethodGet)
	api.HandleFunc("/feeds/search", h.SearchFeeds).Methods(http.MethodGet)
	api.HandleFunc("/feeds/export", h.ExportFeeds).Methods(http.MethodGet)
	api.HandleFunc("/feeds/clear", h.ClearFeeds).Methods(http.MethodDelete)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
