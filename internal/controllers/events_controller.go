package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"guildstore/internal/models"
	"guildstore/internal/providers"
	"guildstore/internal/storage/interfaces"
)

const (
	eventBufferSize   = 16
	defaultKeepAlive  = 15 * time.Second
	sseContentType    = "text/event-stream"
	changeEventName   = "change"
	snapshotEventName = "snapshot"
)

// EventsController streams store change events to browsers over SSE.
type EventsController struct {
	manager   interfaces.SchemaManagerInterface
	logger    providers.Logger
	keepAlive time.Duration
}

func NewEventsController(manager interfaces.SchemaManagerInterface, logger providers.Logger) *EventsController {
	return &EventsController{
		manager:   manager,
		logger:    logger,
		keepAlive: defaultKeepAlive,
	}
}

func (ec *EventsController) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	events := make(chan models.ChangeEvent, eventBufferSize)
	unsubscribe := ec.manager.SubscribeEvents(func(e models.ChangeEvent) {
		select {
		case events <- e:
		default:
			// Client lags behind; the next delivered event carries a newer snapshot.
		}
	})
	defer unsubscribe()

	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", sseContentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	snap := ec.manager.GetSnapshot()
	if err := writeEvent(w, snapshotEventName, snap, snapshotResponse{Snapshot: snap}); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(ec.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			ec.logger.Debugf(providers.TypeGet, "SSE client %s disconnected", r.RemoteAddr)
			return
		case e := <-events:
			if err := writeEvent(w, changeEventName, e.Snapshot, e); err != nil {
				ec.logger.Warnf(providers.TypeGet, "Failed to write SSE event: %s", err)
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, id uint64, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, name, data)
	return err
}
