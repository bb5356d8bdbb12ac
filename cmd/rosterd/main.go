package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/draftpulse/rosterlive/internal/api"
	"github.com/draftpulse/rosterlive/internal/config"
	"github.com/draftpulse/rosterlive/internal/connection"
	"github.com/draftpulse/rosterlive/internal/database"
	"github.com/draftpulse/rosterlive/internal/delta"
	"github.com/draftpulse/rosterlive/internal/journal"
	"github.com/draftpulse/rosterlive/internal/ledger"
	"github.com/draftpulse/rosterlive/internal/model"
	"github.com/draftpulse/rosterlive/internal/roster"
	"github.com/draftpulse/rosterlive/internal/schedule"
	"github.com/draftpulse/rosterlive/internal/tradelock"
	"github.com/draftpulse/rosterlive/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/rosterd.yaml", "path to config file")
	teamFlag := flag.String("team", "", "team id to manage (default: first team from the backend)")
	sportsFlag := flag.String("sports", "football,nba,f1", "comma-separated sports to price")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting rosterd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sports, err := parseSports(*sportsFlag)
	if err != nil {
		logger.Error("invalid sports flag", "error", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.TradeLock.Timezone)
	if err != nil {
		logger.Error("invalid trade lock timezone", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"api_url", cfg.API.BaseURL,
		"realtime_origin", cfg.Realtime.Origin,
		"sports", *sportsFlag,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Optional delta journal
	var deltaJournal *journal.Writer
	if cfg.JournalEnabled() {
		logger.Info("connecting to journal database",
			"host", cfg.Journal.Database.Host,
			"port", cfg.Journal.Database.Port,
			"database", cfg.Journal.Database.Name,
		)

		pool, err := database.Connect(ctx, cfg.Journal.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		deltaJournal = journal.NewWriter(journal.Config{
			BatchSize:     cfg.Journal.BatchSize,
			FlushInterval: cfg.Journal.FlushInterval,
			QueueSize:     cfg.Journal.BufferSize,
		}, pool, logger.With("component", "journal"))

		if err := deltaJournal.Start(ctx); err != nil {
			logger.Error("failed to start journal", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			deltaJournal.Stop(shutdownCtx)
		}()
	}

	// Create API client
	apiClient := api.NewClient(
		cfg.API.BaseURL,
		os.Getenv("ROSTERLIVE_API_KEY"),
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Resolve the team to manage
	team, seed, err := resolveTeam(ctx, apiClient, *teamFlag, logger)
	if err != nil {
		logger.Error("failed to resolve team", "error", err)
		os.Exit(1)
	}
	logger.Info("team resolved", "team", team, "seed_players", len(seed))

	// Fetch the per-sport catalogs concurrently
	catalogs := make(map[model.Sport][]model.Player, len(sports))
	var catalogMu sync.Mutex
	g, fetchCtx := errgroup.WithContext(ctx)
	for _, sport := range sports {
		sport := sport
		g.Go(func() error {
			players, err := apiClient.GetPlayers(fetchCtx, sport)
			if err != nil {
				return fmt.Errorf("fetch %s catalog: %w", sport, err)
			}
			catalogMu.Lock()
			catalogs[sport] = players
			catalogMu.Unlock()
			logger.Info("catalog loaded", "sport", sport, "players", len(players))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("failed to load catalogs", "error", err)
		os.Exit(1)
	}

	// Shared components
	sharedLedger := ledger.New(ledger.Config{
		BudgetFloor: cfg.Roster.BudgetFloor,
		MaxSlots:    cfg.Roster.MaxSlots,
	}, nil)

	policy := tradelock.New(loc)

	connCfg := connection.DefaultConfig()
	connCfg.ReconnectAttempts = cfg.Realtime.ReconnectAttempts
	connCfg.ReconnectDelay = cfg.Realtime.ReconnectDelay
	connCfg.PingInterval = cfg.Realtime.PingInterval
	connCfg.WriteTimeout = cfg.Realtime.WriteTimeout
	connCfg.BufferSize = cfg.Realtime.BufferSize

	registry := connection.NewRegistry(connCfg, logger)
	defer registry.Close()

	// One pricing session per sport, all feeding the shared ledger
	sessions := make(map[model.Sport]*roster.Session, len(sports))
	for _, sport := range sports {
		ch := registry.Channel(cfg.Realtime.Origin, sport.Namespace())
		mux := delta.New(sport, ch, logger.With("component", "mux", "sport", sport))

		opts := []roster.Option{roster.WithLogger(logger)}
		if deltaJournal != nil {
			opts = append(opts, roster.WithJournal(deltaJournal))
		}

		session := roster.New(roster.Config{
			Team:    team,
			Sport:   sport,
			Catalog: catalogs[sport],
			Seed:    filterSport(seed, sport),
			Schedule: schedule.Config{
				BatchSize:  cfg.Schedule.BatchSize,
				BatchDelay: cfg.Schedule.BatchDelay,
			},
		}, sharedLedger, mux, policy, apiClient, opts...)

		session.Start()
		sessions[sport] = session
	}
	defer func() {
		for _, s := range sessions {
			s.Stop()
		}
	}()

	// Health server
	healthAddr := fmt.Sprintf(":%d", cfg.Health.Port)
	healthServer := &http.Server{
		Addr:    healthAddr,
		Handler: createHealthHandler(cfg, registry, sessions, deltaJournal),
	}

	go func() {
		logger.Info("starting health server", "addr", healthAddr)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("rosterd running",
		"team", team,
		"week", policy.CurrentToken(),
		"health_url", fmt.Sprintf("http://localhost:%d%s", cfg.Health.Port, cfg.Health.Path),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("rosterd stopped")
}

// parseSports splits and validates the -sports flag.
func parseSports(s string) ([]model.Sport, error) {
	var sports []model.Sport
	for _, part := range strings.Split(s, ",") {
		sport, err := model.ParseSport(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		sports = append(sports, sport)
	}
	if len(sports) == 0 {
		return nil, fmt.Errorf("no sports given")
	}
	return sports, nil
}

// resolveTeam picks the team to manage and fetches its current roster.
// Without a -team flag the first backend team is used; a fresh id means
// a brand-new team with an empty roster.
func resolveTeam(ctx context.Context, client *api.Client, idFlag string, logger *slog.Logger) (uuid.UUID, []model.Player, error) {
	if idFlag != "" {
		team, err := uuid.Parse(idFlag)
		if err != nil {
			return uuid.Nil, nil, fmt.Errorf("parse team id: %w", err)
		}
		seed, err := client.GetTeamPlayers(ctx, team)
		if err != nil {
			return uuid.Nil, nil, err
		}
		return team, seed, nil
	}

	teams, err := client.GetTeams(ctx)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if len(teams) == 0 {
		team := uuid.New()
		logger.Info("no existing teams, starting fresh", "team", team)
		return team, nil, nil
	}

	team := teams[0].ID
	seed, err := client.GetTeamPlayers(ctx, team)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return team, seed, nil
}

func filterSport(players []model.Player, sport model.Sport) []model.Player {
	var out []model.Player
	for _, p := range players {
		if p.Key.Sport == sport {
			out = append(out, p)
		}
	}
	return out
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(cfg *config.Config, registry *connection.Registry, sessions map[model.Sport]*roster.Session, deltaJournal *journal.Writer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(cfg.Health.Path, func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		total, connected := registry.Stats()
		health.Components["realtime"] = map[string]int{
			"connections": total,
			"connected":   connected,
		}
		if connected < total {
			health.Status = "degraded"
		}

		if deltaJournal != nil {
			health.Components["journal"] = deltaJournal.Stats()
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/budget", func(w http.ResponseWriter, r *http.Request) {
		states := make(map[string]model.BudgetState, len(sessions))
		for sport, s := range sessions {
			states[string(sport)] = s.State()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(states)
	})

	return mux
}
