// apps/go-server/internal/httpserver/routes_runs.go
//
// Pipeline run endpoints:
//   - POST /runs      → run one request end to end (operator only)
//   - GET  /runs      → recent runs, newest first (operator only)
//   - GET  /runs/{id} → one stored run
//
// POST /runs answers 201 with the outcome when the run completed and 422
// with the outcome when a stage gate failed it. An empty request is the only
// 400: no stage runs and nothing is stored.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/pipeline"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/store"
)

type runReq struct {
	Request string `json:"request"`
}

func (s *Server) mountRuns() {
	s.r.Route("/runs", func(r chi.Router) {
		r.With(s.boundRun, s.requireAuth).Post("/", s.handleRun)
		r.With(s.boundRequest, s.requireAuth).Get("/", s.handleRecentRuns)
		r.With(s.boundRequest).Get("/{id}", s.handleGetRun)
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var body runReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	req, err := pipeline.NewRequest(body.Request)
	if err != nil {
		writeError(w, http.StatusBadRequest, "empty_request")
		return
	}

	out, err := s.deps.Runner.Run(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("run pipeline")
		writeError(w, http.StatusInternalServerError, "run_failed")
		return
	}
	if err := s.deps.Runs.SaveRun(r.Context(), store.NewRun(req.Text(), out)); err != nil {
		log.Error().Err(err).Str("run", out.RunID).Msg("save run")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	status := http.StatusCreated
	if !out.Succeeded() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, out)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.deps.Runs.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get run")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRecentRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = n
	}
	runs, err := s.deps.Runs.RecentRuns(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("recent runs")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
