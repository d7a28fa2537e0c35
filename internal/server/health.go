// Package server exposes the read-only status surface.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/samarth30/twitter-engagement-bot/internal/bot"
	"github.com/samarth30/twitter-engagement-bot/internal/core/ports"
)

// healthResponse mirrors the original service's health payload.
type healthResponse struct {
	Status       string `json:"status"`
	IsProcessing bool   `json:"isProcessing"`
}

// New builds the status HTTP server. It only reads the run guard and the
// store; it never participates in the pipeline.
func New(addr string, guard *bot.RunGuard, store ports.Storage) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:       "ok",
			IsProcessing: guard.InProgress(),
		})
	})

	// Diagnostic export of every reply marker, newest first.
	mux.HandleFunc("GET /replied", func(w http.ResponseWriter, r *http.Request) {
		markers, err := store.ListReplied(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		type marker struct {
			TweetID   string `json:"tweetId"`
			CreatedAt string `json:"createdAt"`
		}
		out := make([]marker, 0, len(markers))
		for _, m := range markers {
			out = append(out, marker{TweetID: m.TweetID, CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339)})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})

	return &http.Server{Addr: addr, Handler: mux}
}

// Serve runs the server, treating a clean shutdown as success.
func Serve(srv *http.Server) {
	slog.Info("Status server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Status server failed", "error", err)
	}
}
