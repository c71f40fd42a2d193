package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kirillkom/doc-compliance/internal/observability/logging"
)

var eventsHeartbeat = 25 * time.Second

// streamEvents pushes the caller's cache invalidations as server-sent events so
// open views can refetch exactly the queries that went stale.
func (rt *Router) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok || rt.events == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "event streaming is not supported"})
		return
	}

	user := userFromContext(r.Context())
	events, cancel := rt.events.Listen(user.ID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, ": connected\n\n"); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(eventsHeartbeat)
	defer heartbeat.Stop()

	logger := logging.FromContext(r.Context())
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
		case inv, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(map[string]any{"keys": inv.Keys})
			if err != nil {
				logger.Warn("sse_encode_failed", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: invalidate\ndata: %s\n\n", payload); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}
