package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jgonzalez0406/Messaging-Program/internal/broker"
	"github.com/jgonzalez0406/Messaging-Program/internal/common/logs"
)

const defaultPollWait = time.Second

// Service defines what the handlers need from the broker
type Service interface {
	Publish(ctx context.Context, topic, body string) error
	Subscribe(name, topic string)
	Unsubscribe(name, topic string)
	Poll(ctx context.Context, name string, wait time.Duration) (string, error)
}

type Handler struct {
	service  Service
	pollWait time.Duration
	logger   logs.Logger
}

func NewHandler(service Service, logger logs.Logger) *Handler {
	return &Handler{
		service:  service,
		pollWait: defaultPollWait,
		logger:   logger,
	}
}

// WithPollWait replaces how long a mailbox GET parks before answering 404.
func (h *Handler) WithPollWait(d time.Duration) *Handler {
	if d > 0 {
		h.pollWait = d
	}
	return h
}

// Health returns service health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// PublishTopic fans the request body out to every mailbox subscribed to
// the topic.
func (h *Handler) PublishTopic(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := h.service.Publish(r.Context(), topic, string(body)); err != nil {
		h.logger.Error("publish failed", "topic", topic, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Subscribe attaches a mailbox to a topic.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	topic := chi.URLParam(r, "topic")

	h.service.Subscribe(name, topic)
	w.WriteHeader(http.StatusOK)
}

// Unsubscribe detaches a mailbox from a topic.
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	topic := chi.URLParam(r, "topic")

	h.service.Unsubscribe(name, topic)
	w.WriteHeader(http.StatusOK)
}

// PollMailbox hands out the next message for a mailbox, parking up to the
// poll wait. An empty mailbox answers 404, which clients read as "try
// again".
func (h *Handler) PollMailbox(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := h.service.Poll(r.Context(), name, h.pollWait)
	if err != nil {
		if errors.Is(err, broker.ErrNoMessage) || errors.Is(err, context.Canceled) {
			http.Error(w, "no message", http.StatusNotFound)
			return
		}
		h.logger.Error("poll failed", "mailbox", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Write([]byte(body))
}
