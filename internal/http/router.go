// Package http exposes the session over HTTP: health probes, Prometheus
// metrics, the merged timeline, and the structured-input prompt surface that
// stands in for the browser UI.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voice-assistant-session/internal/service/inputs"
	"voice-assistant-session/internal/session"
)

type submitRequest struct {
	Value string `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(s *session.Session) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/timeline", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, s.Timeline())
		})

		r.Get("/prompts", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, s.Kinds())
		})

		r.Route("/prompts/{kind}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, req *http.Request) {
				c, ok := s.Collector(chi.URLParam(req, "kind"))
				if !ok {
					writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown input kind"})
					return
				}
				writeJSON(w, http.StatusOK, c.Prompt())
			})

			r.Post("/submit", func(w http.ResponseWriter, req *http.Request) {
				c, ok := s.Collector(chi.URLParam(req, "kind"))
				if !ok {
					writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown input kind"})
					return
				}

				var body submitRequest
				if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
					writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
					return
				}

				if err := c.Submit(req.Context(), body.Value); err != nil {
					status := http.StatusBadGateway
					if errors.Is(err, inputs.ErrRequired) ||
						errors.Is(err, inputs.ErrEmailInvalid) ||
						errors.Is(err, inputs.ErrURLInvalid) {
						status = http.StatusUnprocessableEntity
					}
					writeJSON(w, status, errorResponse{Error: err.Error()})
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})

			r.Post("/dismiss", func(w http.ResponseWriter, req *http.Request) {
				c, ok := s.Collector(chi.URLParam(req, "kind"))
				if !ok {
					writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown input kind"})
					return
				}
				c.Dismiss()
				w.WriteHeader(http.StatusNoContent)
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
