package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TeapotSmashers/keypad-calculator/internal/handlers"
	"github.com/TeapotSmashers/keypad-calculator/internal/keypad"
	"github.com/TeapotSmashers/keypad-calculator/internal/observability"
)

func NewRouter(kp *keypad.Handler) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	keypad.RegisterRoutes(r, kp)

	return r
}
