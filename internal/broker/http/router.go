package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jgonzalez0406/Messaging-Program/internal/common/logs"
)

func NewRouter(h *Handler, logger logs.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)
	r.Put("/topic/{topic}", h.PublishTopic)
	r.Put("/subscription/{name}/{topic}", h.Subscribe)
	r.Delete("/subscription/{name}/{topic}", h.Unsubscribe)
	r.Get("/queue/{name}", h.PollMailbox)

	return r
}
