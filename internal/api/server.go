// Package api exposes the compiled rules and the tagged feed data over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/Thaodan/elfeed-autotag/internal/outline"
	"github.com/Thaodan/elfeed-autotag/internal/rules"
	"github.com/Thaodan/elfeed-autotag/internal/runner"
	"github.com/Thaodan/elfeed-autotag/internal/store"
)

// Server handles HTTP requests.
type Server struct {
	store  *store.Store
	runner *runner.Runner
	addr   string
	log    *log.Logger
}

// New creates a new API server.
func New(s *store.Store, r *runner.Runner, addr string, logger *log.Logger) *Server {
	return &Server{store: s, runner: r, addr: addr, log: logger}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /rules", s.getRules)
	mux.HandleFunc("POST /compile", s.compile)

	mux.HandleFunc("GET /feeds", s.listFeeds)
	mux.HandleFunc("GET /feeds/entries", s.listFeedEntries)

	mux.HandleFunc("GET /entries", s.listEntries)
	mux.HandleFunc("GET /entries/{id}", s.getEntry)
	mux.HandleFunc("GET /search", s.searchEntries)

	mux.HandleFunc("GET /health", s.health)

	s.log.Info("starting server", "addr", s.addr)
	return http.ListenAndServe(s.addr, withCORS(mux))
}

// withCORS adds CORS headers for frontend development.
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RulesResponse is the GET /rules and POST /compile response body.
type RulesResponse struct {
	KeywordRules      []rules.KeywordRule      `json:"keyword_rules"`
	SubscriptionRules []rules.SubscriptionRule `json:"subscription_rules"`
	Total             int                      `json:"total"`
}

func rulesResponse(t *rules.Table) RulesResponse {
	return RulesResponse{
		KeywordRules:      t.KeywordRules,
		SubscriptionRules: t.SubscriptionRules,
		Total:             t.RuleCount(),
	}
}

func (s *Server) getRules(w http.ResponseWriter, r *http.Request) {
	table := s.runner.Holder().Load()
	if table == nil {
		writeError(w, http.StatusNotFound, "no rule table compiled yet")
		return
	}
	writeJSON(w, http.StatusOK, rulesResponse(table))
}

func (s *Server) compile(w http.ResponseWriter, r *http.Request) {
	table, err := s.runner.Recompile()
	if err != nil {
		var cfgErr *outline.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusBadRequest, cfgErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rulesResponse(table))
}

func (s *Server) listFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.store.ListFeeds()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feeds": feeds})
}

func (s *Server) listFeedEntries(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'url' is required")
		return
	}

	entries, err := s.store.ListEntriesByFeed(url, queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feed": url, "entries": entries})
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	entries, err := s.store.ListEntries(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
	})
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.store.GetEntry(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) searchEntries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	entries, err := s.store.SearchEntries(query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"query":   query,
	})
}

func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
