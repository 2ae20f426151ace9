package api

import (
	"fmt"
	"log"
	"net/http"

	"serp-radar/cache"
	"serp-radar/database/groups"
	"serp-radar/database/keywords"
	"serp-radar/database/metrics"
	"serp-radar/database/snapshots"
	"serp-radar/realtime"
	ws "serp-radar/websocket"
)

// Deps bundles everything the read API serves from
type Deps struct {
	Keywords  *keywords.Repository
	Metrics   *metrics.Repository
	Groups    *groups.Repository
	Snapshots *snapshots.Repository
	Redis     *cache.RedisClient
	Broker    *realtime.Broker
	Hub       *ws.Hub
}

// Server handles HTTP API requests. It is a read surface over the
// latest ranking snapshot (Redis first, Postgres fallback) plus the one
// write that belongs to the domain: marking a group optimized.
type Server struct {
	deps Deps
}

// NewServer creates a new API server instance
func NewServer(deps Deps) *Server {
	return &Server{deps: deps}
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()

	// Live updates
	mux.Handle("GET /api/events", s.deps.Broker) // SSE endpoint
	mux.Handle("GET /api/live", s.deps.Hub)      // WebSocket endpoint

	// Ranked lists
	mux.HandleFunc("GET /api/rankings", s.handleGetRankings)
	mux.HandleFunc("GET /api/rankings/top", s.handleGetTopKeywords)
	mux.HandleFunc("GET /api/rankings/improve", s.handleGetImproveKeywords)

	// Group rollups and page priorities
	mux.HandleFunc("GET /api/groups/cities", s.handleGetCityRollups)
	mux.HandleFunc("GET /api/groups/pages", s.handleGetPageRollups)
	mux.HandleFunc("POST /api/groups/{id}/optimized", s.handleMarkOptimized)
	mux.HandleFunc("GET /api/pages/priorities", s.handleGetPagePriorities)

	// Keyword detail and dataset aggregates
	mux.HandleFunc("GET /api/keywords/{id}/samples", s.handleGetKeywordSamples)
	mux.HandleFunc("GET /api/metrics/daily", s.handleGetDailyTotals)

	mux.HandleFunc("GET /health", s.handleHealth)

	// Add middleware
	handler := s.corsMiddleware(s.loggingMiddleware(mux))

	serverAddr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Printf("🚀 API Server starting on %s", serverAddr)
	return http.ListenAndServe(serverAddr, handler)
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
	})
}

// handleHealth reports service liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
