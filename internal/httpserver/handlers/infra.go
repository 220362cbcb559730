package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/bookmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarks/internal/httpserver/respond"
)

type componentStatus struct {
	OK        bool   `json:"ok"`
	Backend   string `json:"backend,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
	Bookmarks *int64 `json:"bookmarks,omitempty"`
	Error     string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the backing store. Errors are reported as a
// fixed word, never the driver message.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := checkStore(r.Context(), d)

		status := "ok"
		if !store.OK {
			status = "degraded"
		}

		respond.JSON(w, http.StatusOK, infraResponse{
			Status:     status,
			Components: map[string]componentStatus{"store": store},
		})
	}
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Service == nil {
		return componentStatus{Backend: d.StoreName, Error: "not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := d.Service.Ping(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return componentStatus{Backend: d.StoreName, LatencyMS: latency, Error: "unreachable"}
	}

	cs := componentStatus{OK: true, Backend: d.StoreName, LatencyMS: latency}
	if n, err := d.Service.Count(ctx); err == nil {
		cs.Bookmarks = &n
	}
	return cs
}
