// Package web exposes the HTTP surface: the swap pipeline, the single-pass
// studio endpoints, and the element library. All dependencies are injected;
// handlers hold no global state.
package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pchoi/fitswap/internal/imaging"
	"github.com/pchoi/fitswap/internal/library"
	"github.com/pchoi/fitswap/internal/studio"
	"github.com/pchoi/fitswap/internal/swap"
)

// Server routes API requests to the pipeline components.
type Server struct {
	codec   *imaging.Codec
	swapper *swap.Orchestrator
	studio  *studio.Service
	library *library.Library
}

func NewServer(codec *imaging.Codec, swapper *swap.Orchestrator, studioSvc *studio.Service, lib *library.Library) *Server {
	return &Server{
		codec:   codec,
		swapper: swapper,
		studio:  studioSvc,
		library: lib,
	}
}

// Handler returns the full middleware-wrapped route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/swap", s.handleSwap)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/pose", s.handlePose)
	mux.HandleFunc("GET /api/library", s.handleLibraryList)
	mux.HandleFunc("POST /api/library", s.handleLibrarySave)
	mux.HandleFunc("GET /api/library/{id}", s.handleLibraryGet)
	mux.HandleFunc("DELETE /api/library/{id}", s.handleLibraryDelete)
	mux.HandleFunc("GET /health", s.handleHealth)

	return withLogging(withCORS(mux))
}

// --- Middleware ---

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("API request")
		}
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Local dev only: the UI runs on another localhost port.
		origin := r.Header.Get("Origin")
		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
