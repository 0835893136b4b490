package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/shelfline/server/internal/api/problem"
	"github.com/shelfline/server/internal/bus"
	"github.com/shelfline/server/internal/metrics"
)

type StreamHandler struct {
	Queue *bus.Queue
	Env   string
}

func NewStreamHandler(queue *bus.Queue, env string) *StreamHandler {
	return &StreamHandler{Queue: queue, Env: env}
}

// Stream handles GET /sse. It drains the shared event queue for as long as
// the client stays connected, writing one `data: <json>` frame per event.
// Events are competing-consumer: with several subscribers connected, each
// event goes to whichever one dequeues it first.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Queue == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Streaming unsupported", nil, h.Env)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	metrics.SSESubscribers.Inc()
	defer metrics.SSESubscribers.Dec()

	logger := zerolog.Ctx(r.Context())
	logger.Info().Msg("sse subscriber connected")

	for {
		event, err := h.Queue.Consume(r.Context())
		if err != nil {
			// Client went away or the server is shutting down.
			logger.Info().Msg("sse subscriber disconnected")
			return
		}

		payload, err := json.Marshal(event)
		if err != nil {
			logger.Error().Err(err).Msg("encode event")
			continue
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			logger.Info().Err(err).Msg("sse write failed, closing stream")
			return
		}
		flusher.Flush()
	}
}
