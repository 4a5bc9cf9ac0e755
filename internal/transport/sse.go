package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kutahiru/idea-labo-sub002/internal/events"
)

// EventSubscriber opens a live event stream for one session.
type EventSubscriber interface {
	Subscribe(ctx context.Context, tenantID, sessionID string) (*events.Subscription, error)
}

// handleSessionEvents streams session events over Server-Sent Events. The
// stream is advisory: Pub/Sub delivery is at-most-once, so clients re-fetch
// the session detail whenever they receive an event rather than applying
// payloads as deltas.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	// Access check piggybacks on the detail read path.
	if _, err := s.svc.Brainwriting.GetDetail(r.Context(), id.TenantID, id.UserID, sessionID); err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := s.svc.Events.Subscribe(r.Context(), id.TenantID, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case env, open := <-sub.Events():
			if !open {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", env.Type, env.Payload)
			flusher.Flush()
		case <-sub.Errors():
			// Malformed messages are skipped; the stream stays open.
		}
	}
}
