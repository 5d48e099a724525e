// Package api exposes the recommendation core over HTTP as a small JSON API.
//
// The core's Decision taxonomy maps onto HTTP like this: refusals are 200
// responses with a refusal code and user-facing message; provider failures
// are 502; internal consistency faults are 500.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shelfwise/librarian/internal/recommend"
)

// Core is the recommendation entry point the server fronts.
// *recommend.Recommender satisfies it.
type Core interface {
	Recommend(ctx context.Context, query string) (recommend.Decision, error)
}

// Pinger reports database connectivity for readiness checks.
// *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter reports how many catalog items are indexed. *index.Store satisfies it.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger *slog.Logger
	Core   Core    // Required
	DB     Pinger  // Optional: nil disables the DB check in /readyz
	Index  Counter // Optional: nil disables the index check in /readyz

	// Per-IP rate limit for the recommend endpoint.
	// RateLimitRPS <= 0 defaults to 1 token/sec; RateLimitBurst <= 0 to 60.
	RateLimitRPS   float64
	RateLimitBurst int
	TrustProxy     bool // trust X-Real-IP/X-Forwarded-For (behind reverse proxy)
}

// Server is the JSON API HTTP server.
type Server struct {
	handler http.Handler
}

// NewServer creates the API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Core == nil {
		return nil, errors.New("recommendation core is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rh := &recommendHandler{core: cfg.Core, logger: logger}
	hh := &healthHandler{db: cfg.DB, index: cfg.Index, logger: logger}

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 1.0
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(rps, burst)
	limited := rateLimitMiddleware(rl, cfg.TrustProxy, logger)

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/recommend", limited(http.HandlerFunc(rh.recommend)))
	mux.HandleFunc("GET /healthz", hh.health)
	mux.HandleFunc("GET /readyz", hh.ready)

	return &Server{handler: withMiddleware(mux, logger)}, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
