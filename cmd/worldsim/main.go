// Command worldsim runs the tile economy simulation, either stepping on
// demand from the terminal or continuously behind the HTTP API.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/talgya/mini-economy/internal/api"
	"github.com/talgya/mini-economy/internal/config"
	"github.com/talgya/mini-economy/internal/engine"
	"github.com/talgya/mini-economy/internal/entropy"
	"github.com/talgya/mini-economy/internal/persistence"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults when empty)")
	serve := flag.Bool("serve", false, "run continuously and serve the HTTP API")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// ── World ─────────────────────────────────────────────────────────
	jobs, err := cfg.JobTable()
	if err != nil {
		slog.Error("invalid job ratios", "error", err)
		os.Exit(1)
	}
	tiles, err := cfg.TileTable()
	if err != nil {
		slog.Error("invalid tile ratios", "error", err)
		os.Exit(1)
	}
	sim := engine.Genesis(engine.GenesisConfig{
		Size:                     cfg.Size,
		StartingPopPerSettlement: cfg.StartingPopPerSettlement,
		Jobs:                     jobs,
		Tiles:                    tiles,
		Clustered:                cfg.Terrain == config.TerrainClustered,
		Seed:                     cfg.Seed,
	})

	if client := entropy.NewClient(cfg.RandomOrgKey); client.Enabled() {
		sim.Rand = client
		slog.Info("birth rolls use random.org entropy")
	}

	eng := engine.NewEngine(sim)
	eng.Interval = cfg.StepInterval

	// ── History ───────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.History.Path != "" {
		if dir := filepath.Dir(cfg.History.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				slog.Error("failed to create history directory", "error", err)
				os.Exit(1)
			}
		}
		db, err = persistence.Open(cfg.History.Path)
		if err != nil {
			slog.Error("failed to open history database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.StartRun(sim.ID, sim.Grid.Width(), sim.Grid.Height(), cfg.Seed); err != nil {
			slog.Error("failed to register run", "error", err)
			os.Exit(1)
		}
		runID := sim.ID
		eng.OnStep(func(summary engine.StepSummary) {
			if err := db.SaveStep(runID, summary); err != nil {
				slog.Error("history save failed", "step", summary.Step, "error", err)
			}
		})
		slog.Info("history enabled", "path", cfg.History.Path, "run", runID)
	}

	if *serve {
		runServed(eng, db, cfg)
		return
	}
	runInteractive(eng, os.Stdin, os.Stdout)
}

// runInteractive prints the world, steps once, and waits for a line of
// input. A line containing q quits.
func runInteractive(eng *engine.Engine, in *os.File, out io.Writer) {
	prompt := isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd())
	reader := bufio.NewReader(in)

	for {
		eng.View(func(sim *engine.Simulation) {
			fmt.Fprintf(out, "\nsim step %d\n", sim.Steps)
			if err := sim.Render(out); err != nil {
				slog.Error("render failed", "error", err)
			}
		})
		eng.Step()

		if prompt {
			fmt.Fprint(out, "[enter] step, [q] quit: ")
		}
		line, err := reader.ReadString('\n')
		if strings.Contains(strings.ToLower(line), "q") {
			return
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Error("read input failed", "error", err)
			}
			return
		}
	}
}

// runServed steps continuously behind the HTTP API until SIGINT/SIGTERM.
func runServed(eng *engine.Engine, db *persistence.DB, cfg config.Config) {
	if cfg.AdminKey == "" {
		slog.Warn("WORLDSIM_ADMIN_KEY not set, admin POST endpoints disabled")
	}

	server := api.NewServer(eng, db, cfg.API.Port, cfg.AdminKey)
	server.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("engine stopped", "error", err)
	}
	eng.View(func(sim *engine.Simulation) {
		slog.Info("simulation stopped", "steps", sim.Steps, "population", sim.Stats.Population)
	})
}
