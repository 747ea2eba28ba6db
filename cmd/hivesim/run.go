package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talgya/hive-economy/internal/api"
	"github.com/talgya/hive-economy/internal/buildings"
	"github.com/talgya/hive-economy/internal/config"
	"github.com/talgya/hive-economy/internal/economy"
	"github.com/talgya/hive-economy/internal/engine"
	"github.com/talgya/hive-economy/internal/metrics"
	"github.com/talgya/hive-economy/internal/persistence"
	"github.com/talgya/hive-economy/internal/research"
	"github.com/talgya/hive-economy/internal/world"
)

func newRunCommand() *cobra.Command {
	var obelisk bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, obelisk)
		},
	}
	cmd.Flags().BoolVar(&obelisk, "obelisk", true, "Place the obelisk on the dry cell nearest the map center")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, placeObelisk bool) error {
	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Database.Path)

	// ── Catalog ───────────────────────────────────────────────────────
	catalog, err := buildings.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	slog.Info("catalog loaded", "types", catalog.Len(), "overrides", cfg.Catalog.Path)

	// ── World ─────────────────────────────────────────────────────────
	gen := cfg.GenConfig()
	if gen.Seed == 0 {
		gen.Seed = rand.Int63()
	}
	worldMap := world.Generate(gen)
	slog.Info("world generated", "width", worldMap.Width, "height", worldMap.Height, "seed", gen.Seed)

	// ── Simulation ────────────────────────────────────────────────────
	ledger := economy.NewLedger(cfg.StartingStock())
	tracker := research.NewTracker(cfg.Economy.Research...)

	sim := engine.NewSimulation(cfg.SimulationOptions(), catalog, worldMap, ledger, tracker)
	sim.RunID = uuid.NewString()

	hud := api.NewHUD()
	recorder := persistence.NewRecorder(db, sim.RunID)
	collector := metrics.NewCollector()
	registry := metrics.NewRegistry()
	if err := collector.Register(registry); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	sim.AddObserver(hud)
	sim.AddObserver(recorder)
	sim.AddObserver(collector)

	if err := db.SaveRun(persistence.RunInfo{
		RunID:     sim.RunID,
		StartedAt: time.Now(),
		Seed:      gen.Seed,
		Width:     worldMap.Width,
		Height:    worldMap.Height,
	}); err != nil {
		slog.Error("failed to record run", "error", err)
	}
	if err := db.SaveMeta("last_run", sim.RunID); err != nil {
		slog.Warn("failed to save metadata", "error", err)
	}

	if placeObelisk {
		pos, ok := dryCellNear(worldMap, world.C(worldMap.Width/2, worldMap.Height/2))
		if !ok {
			return fmt.Errorf("no dry cell for the obelisk")
		}
		if _, err := sim.Place(pos, buildings.TypeObelisk); err != nil {
			return fmt.Errorf("place obelisk: %w", err)
		}
		slog.Info("obelisk placed", "pos", pos)
	}

	eng := engine.NewEngine(sim, cfg.Scheduler.FrameInterval())

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn("HIVE_API_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}
	srv := &api.Server{
		Eng:           eng,
		Research:      tracker,
		DB:            db,
		HUD:           hud,
		Metrics:       collector,
		Registry:      registry,
		Port:          cfg.API.Port,
		AdminKey:      cfg.API.AdminKey,
		RatePerMinute: cfg.API.RatePerMinute,
		Burst:         cfg.API.Burst,
	}
	srv.Start(ctx)

	color.New(color.FgCyan, color.Bold).Printf("\nHive settlement %s is alive on a %dx%d map.\n",
		sim.RunID, worldMap.Width, worldMap.Height)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	if n := recorder.Pending(); n > 0 {
		slog.Info("discarding changes from the unfinished cycle", "changes", n)
	}
	fmt.Printf("Simulation stopped after %d cycles.\n", eng.Sim.Scheduler().Cycle())
	return nil
}

// dryCellNear returns the non-water cell closest to c by Chebyshev ring.
func dryCellNear(m *world.Map, c world.Coord) (world.Coord, bool) {
	if m.InBounds(c) && !m.IsWater(c) {
		return c, true
	}
	maxR := m.Width
	if m.Height > maxR {
		maxR = m.Height
	}
	for r := 1; r <= maxR; r++ {
		for _, p := range c.Within(r) {
			if world.ChebyshevDistance(c, p) == r && m.InBounds(p) && !m.IsWater(p) {
				return p, true
			}
		}
	}
	return world.Coord{}, false
}
