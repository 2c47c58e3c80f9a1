// apps/go-server/main.go
//
// Process entry.
//
//	go-server                 serve HTTP on $PORT
//	go-server run "<request>" run one request and print the outcome as JSON
//
// In run mode the exit status is 0 when the game completed, 1 when a stage
// failed it and 2 on usage or setup errors.

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/puzzlenet/apps/go-server/assets"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/config"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/daily"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/httpserver"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/llm"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/pipeline"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/store"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/validate"
)

func main() {
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	orch := pipeline.New(llm.New(llm.Config{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	}), pipeline.Options{
		CallTimeout: cfg.LLMTimeout,
		MaxRetries:  cfg.MaxRetries,
		Validation:  validate.Options{Strict: cfg.StrictValidation},
	})

	if len(os.Args) > 1 && os.Args[1] == "run" {
		os.Exit(runOnce(orch, strings.Join(os.Args[2:], " ")))
	}
	serve(cfg, orch)
}

func runOnce(orch *pipeline.Orchestrator, text string) int {
	req, err := pipeline.NewRequest(text)
	if err != nil {
		fmt.Fprintln(os.Stderr, `usage: go-server run "<request>"`)
		return 2
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := orch.Run(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("run")
		return 2
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
	if !out.Succeeded() {
		return 1
	}
	return 0
}

func serve(cfg config.Config, orch *pipeline.Orchestrator) {
	themes, err := assets.ThemeList()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load theme list")
	}

	var (
		runs    store.Store
		archive daily.Archive
	)
	if cfg.DBPath != "" {
		db, err := store.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
		}
		defer closeDB(db)
		runs = store.NewSQLite(db)
		archive = daily.NewStore(db)
		log.Info().Str("path", cfg.DBPath).Msg("using sqlite store")
	} else {
		runs = store.NewMemoryStore()
		archive = daily.NewMemoryArchive()
		log.Info().Msg("using in-memory store")
	}

	srv := httpserver.New(httpserver.Config{
		ClientOrigin:      cfg.ClientOrigin,
		JWTSecret:         cfg.JWTSecret,
		JWTExpires:        time.Duration(cfg.JWTExpiresDays) * 24 * time.Hour,
		AdminPasswordHash: cfg.AdminPasswordHash,
		CookieName:        cfg.CookieName,
		SecureCookies:     cfg.Production,
		RunTimeout:        orch.MaxRunTime() + 30*time.Second,
	}, httpserver.Deps{
		Runner:  orch,
		Runs:    runs,
		Archive: archive,
		Daily: &daily.Generator{
			Runner:  orch,
			Archive: archive,
			Runs:    runs,
			Themes:  themes,
			Salt:    cfg.DailySalt,
		},
	})

	log.Info().Str("port", cfg.Port).Str("model", cfg.LLMModel).Msg("starting go-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("close database")
	}
}
