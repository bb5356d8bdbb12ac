// deltawatch subscribes to live price deltas for one sport and prints
// them to the console.
// Usage: go run ./cmd/deltawatch --config configs/rosterd.yaml --sport football --ids 1,2,3
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/draftpulse/rosterlive/internal/config"
	"github.com/draftpulse/rosterlive/internal/connection"
	"github.com/draftpulse/rosterlive/internal/delta"
	"github.com/draftpulse/rosterlive/internal/model"
)

func main() {
	configPath := flag.String("config", "configs/rosterd.yaml", "path to config file")
	sportFlag := flag.String("sport", "football", "sport namespace to watch")
	idsFlag := flag.String("ids", "", "comma-separated entity ids to subscribe (default: none)")
	verbose := flag.Bool("verbose", false, "print full delta JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Load config
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sport, err := model.ParseSport(*sportFlag)
	if err != nil {
		logger.Error("invalid sport", "error", err)
		os.Exit(1)
	}

	ids, err := parseIDs(*idsFlag)
	if err != nil {
		logger.Error("invalid ids flag", "error", err)
		os.Exit(1)
	}
	if len(ids) == 0 {
		logger.Error("no ids given, nothing to watch")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	// Connect and subscribe
	connCfg := connection.DefaultConfig()
	connCfg.ReconnectAttempts = cfg.Realtime.ReconnectAttempts
	connCfg.ReconnectDelay = cfg.Realtime.ReconnectDelay

	registry := connection.NewRegistry(connCfg, logger)
	defer registry.Close()

	ch := registry.Channel(cfg.Realtime.Origin, sport.Namespace())
	mux := delta.New(sport, ch, logger)
	defer mux.Close()

	mux.OnDelta(func(sport model.Sport, msg model.DeltaMessage) {
		if *verbose {
			data, _ := json.MarshalIndent(msg, "", "  ")
			fmt.Printf("[DELTA] %s\n", data)
			return
		}
		line := fmt.Sprintf("[DELTA] sport=%s id=%d", sport, msg.ID)
		if msg.LiveDelta != nil {
			line += fmt.Sprintf(" live_delta=%d", *msg.LiveDelta)
		}
		if msg.PreviewPrice != nil {
			line += fmt.Sprintf(" preview_price=%d", *msg.PreviewPrice)
		}
		fmt.Println(line)
	})

	mux.SetEntities(ids)

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				total, connected := registry.Stats()
				logger.Info("stats",
					"connections", total,
					"connected", connected,
					"deltas_held", len(mux.Deltas()),
				)
			}
		}
	}()

	logger.Info("watching deltas - press Ctrl+C to stop",
		"sport", sport,
		"ids", len(ids),
		"origin", cfg.Realtime.Origin,
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutdown complete")
}

func parseIDs(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
