package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/framecore/config"
	"github.com/plus3/framecore/engine"
	"github.com/plus3/framecore/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities per world.")
	churn := flag.Int("churn", 100, "Entities destroyed and recreated per frame.")
	workers := flag.Int("workers", 1, "Independent worlds to run in parallel, one goroutine each.")
	poolCapacity := flag.Int("pool-capacity", 0, "Slots per component pool (0 uses the config value).")
	configPath := flag.String("config", "", "Optional TOML config file.")
	profileMode := flag.String("profile", "", "Write a profile: cpu, mem or allocs.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *poolCapacity > 0 {
		cfg.Storage.PoolCapacity = *poolCapacity
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "allocs":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Churn:          *churn,
		Workers:        *workers,
		PoolCapacity:   cfg.Storage.PoolCapacity,
		GCPauseMetrics: *gcPauseMetrics,
		Worlds:         make([]WorldResult, *workers),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	log.Info("starting stress test",
		zap.Int("workers", *workers),
		zap.Int("entities", *entityCount),
		zap.Int("churn", *churn),
		zap.Duration("duration", *duration),
	)

	runtime.ReadMemStats(&report.MemStatsStart)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := range *workers {
		g.Go(func() error {
			res, err := runWorld(gctx, cfg, log.With(zap.Int("world", i)), uint64(i), *entityCount, *churn)
			report.Worlds[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("stress test failed", zap.Error(err))
		os.Exit(1)
	}

	report.TotalTime = time.Since(startTime)
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.Finalize()

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatal("failed to generate report", zap.Error(err))
	}
	fmt.Println("--- End of Report ---")
}

// runWorld builds one Context and steps its loop until ctx is done.
func runWorld(ctx context.Context, cfg *config.Config, log *zap.Logger, seed uint64, entities, churn int) (WorldResult, error) {
	world := engine.NewContext(
		engine.WithPoolCapacity(cfg.Storage.PoolCapacity),
		engine.WithMaxPools(cfg.Storage.MaxPools),
		engine.WithLogger(log),
	)
	defer world.Close()

	rng := rand.New(rand.NewPCG(seed, seed+1))
	s, err := populate(world, rng, entities, churn)
	if err != nil {
		return WorldResult{}, fmt.Errorf("populate: %w", err)
	}

	loop := engine.NewFrameLoop(world, &engine.HeadlessPlatform{}, &engine.NullBackend{}, engine.LoopConfig{
		FixedInterval: cfg.Loop.FixedInterval,
		TimeScale:     cfg.Loop.TimeScale,
		MaxFrameDelta: cfg.Loop.MaxFrameDelta,
	})

	res := WorldResult{FrameTime: Stats{Samples: make([]time.Duration, 0, 1024)}}
	for ctx.Err() == nil {
		start := time.Now()
		if err := loop.Step(); err != nil {
			return res, err
		}
		res.FrameTime.Samples = append(res.FrameTime.Samples, time.Since(start))
		if s.err != nil {
			return res, fmt.Errorf("spawn: %w", s.err)
		}
	}

	res.Loop = loop.Stats()
	res.Context = world.Stats()
	res.Created = s.created
	res.Destroyed = s.destroyed
	res.FrameTime.Finalize()
	log.Info("world finished", zap.Int64("frames", res.Loop.Frames))
	return res, nil
}
