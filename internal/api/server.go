// Package api exposes the pipeline over HTTP for the job-execution host.
// One endpoint runs a job synchronously and returns the result map; the
// pipeline itself stays transport-agnostic.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/backmassage/stitchd/internal/job"
	"github.com/backmassage/stitchd/internal/logging"
)

// JobRunner processes one job request to completion.
type JobRunner interface {
	Run(ctx context.Context, req job.Request) job.Result
}

// Server routes host requests to the pipeline runner. FFmpegVersion is
// captured once at startup and echoed on the health endpoint.
type Server struct {
	Runner        JobRunner
	FFmpegVersion string
}

// Router builds the chi handler tree.
func (s Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/jobs", s.handleRunJob)
	})

	return r
}

func (s Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	ffmpeg := s.FFmpegVersion
	if ffmpeg == "" {
		ffmpeg = "unavailable"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"ffmpeg": ffmpeg,
	})
}

// handleRunJob decodes the request map, runs the pipeline synchronously,
// and writes the result map. Pipeline-level failures are part of the host
// contract (an {"error": ...} map with status 200); only malformed JSON is
// an HTTP-level error.
func (s Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	log := logging.WithComponent("api").With().Str(logging.FieldRequestID, requestID).Logger()

	var req job.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("malformed job request")
		writeJSON(w, http.StatusBadRequest, job.Result{Error: "malformed request body: " + err.Error()})
		return
	}

	result := s.Runner.Run(r.Context(), req)
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
