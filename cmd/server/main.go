package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vytor/tourneydesk/internal/admin"
	"github.com/vytor/tourneydesk/internal/api"
	"github.com/vytor/tourneydesk/internal/config"
	"github.com/vytor/tourneydesk/internal/db"
	"github.com/vytor/tourneydesk/internal/logger"
	"github.com/vytor/tourneydesk/internal/repository/sqldb"
	"github.com/vytor/tourneydesk/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithJSON(strings.EqualFold(cfg.LogFormat, "json")),
		logger.WithColors(!strings.EqualFold(cfg.LogFormat, "json")),
	)
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("Tourneydesk Admin Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_driver=%s", cfg.DBDriver)
	log.Debug("log_level=%s log_format=%s", cfg.LogLevel, cfg.LogFormat)
	log.Debug("list_per_page=%d", cfg.ListPerPage)
	log.Debug("admin_css=%s", cfg.AdminCSS)
	log.Debug("metrics_enabled=%t", cfg.MetricsEnabled)

	database, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	log.Debug("loading templates")
	tmpl, err := api.LoadTemplates()
	if err != nil {
		log.Error("failed to load templates: %v", err)
		os.Exit(1)
	}

	playerRepo := sqldb.NewPlayerRepository(database)
	tournamentRepo := sqldb.NewTournamentRepository(database)
	roundRepo := sqldb.NewRoundRepository(database)
	gameRepo := sqldb.NewGameRepository(database)

	playerService := services.NewPlayerService(playerRepo)
	tournamentService := services.NewTournamentService(tournamentRepo)
	roundService := services.NewRoundService(roundRepo, gameRepo, tournamentRepo)

	site := admin.NewSite("Tournament administration", cfg.ListPerPage)
	site.Register(admin.NewPlayerAdmin(playerService))
	site.Register(admin.NewTournamentAdmin(tournamentService, playerService, cfg.AdminCSS))
	site.Register(admin.NewRoundAdmin(roundService, tournamentService, playerService, cfg.AdminCSS))

	srv := &api.Server{
		DB:        database,
		Site:      site,
		Templates: tmpl,
	}
	if cfg.MetricsEnabled {
		srv.Metrics = api.NewMetrics()
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("Tourneydesk Admin Stopped")
	log.Info("===========================================")
}
