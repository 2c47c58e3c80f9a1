// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the daily puzzles.
//   - POST /daily/generate → generate and publish today's variants (operator only)
//   - GET  /daily          → published puzzles for today, or ?date=YYYY-MM-DD
//
// Generation is idempotent per date: levels already published are reported
// as "existing" and not re-run.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/daily"
)

func (s *Server) mountDaily() {
	s.r.Route("/daily", func(r chi.Router) {
		r.With(s.boundRequest).Get("/", s.handleDailyList)
		r.With(s.boundRun, s.requireAuth).Post("/generate", s.handleDailyGenerate)
	})
}

func (s *Server) handleDailyGenerate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Daily == nil {
		writeError(w, http.StatusServiceUnavailable, "daily_disabled")
		return
	}
	rep, err := s.deps.Daily.Generate(r.Context(), s.now())
	if err != nil {
		log.Error().Err(err).Str("date", rep.Date).Msg("daily generate")
		writeError(w, http.StatusInternalServerError, "generate_failed")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleDailyList(w http.ResponseWriter, r *http.Request) {
	date := daily.DateKey(s.now())
	if q := r.URL.Query().Get("date"); q != "" {
		t, err := daily.ParseDateKey(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		date = daily.DateKey(t)
	}
	puzzles, err := s.deps.Archive.ForDate(r.Context(), date)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("daily list")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "puzzles": puzzles})
}
