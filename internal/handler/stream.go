package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ecommerce-platform/checkout-service/internal/events"
)

// StreamHandler serves the long-lived order event stream as
// newline-delimited JSON. Events fired before a client connects are not
// replayed; that is a documented property of the bus.
type StreamHandler struct {
	bus *events.Bus
}

func NewStreamHandler(bus *events.Bus) *StreamHandler {
	return &StreamHandler{bus: bus}
}

func (h *StreamHandler) OrderEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Соединение живёт дольше серверного WriteTimeout, поэтому
	// снимаем дедлайн записи для этого запроса.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Warn().Err(err).Msg("handler: failed to clear write deadline for event stream")
	}

	ch, cancel := h.bus.Subscribe(32)
	defer cancel()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			// Поток отдаёт только события жизненного цикла заказов.
			if !strings.HasPrefix(ev.Name, "order.") {
				continue
			}
			if err := enc.Encode(ev); err != nil {
				log.Warn().Err(err).Msg("handler: event stream write failed, closing")
				return
			}
			flusher.Flush()
		}
	}
}
