package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/plus3/framecore/config"
	"github.com/plus3/framecore/ecs"
	"github.com/plus3/framecore/engine"
	"github.com/plus3/framecore/engine/debugui"
	engineebiten "github.com/plus3/framecore/engine/ebiten"
	"github.com/plus3/framecore/engine/scene"
	"github.com/plus3/framecore/logging"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "TOML config file.")
	scenePath := flag.String("scene", "", "YAML scene file (overrides [scene] path).")
	flag.Parse()

	if err := run(*configPath, *scenePath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, scenePath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if scenePath != "" {
		cfg.Scene.Path = scenePath
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	ctx := engine.NewContext(
		engine.WithPoolCapacity(cfg.Storage.PoolCapacity),
		engine.WithMaxPools(cfg.Storage.MaxPools),
		engine.WithLogger(log),
	)
	defer ctx.Close()

	var first engine.Scene = orbitScene()
	if cfg.Scene.Path != "" {
		s, err := scene.Open(cfg.Scene.Path)
		if err != nil {
			return err
		}
		first = s
	}
	ctx.ChangeScene(first)
	if err := ctx.Cleanup(); err != nil {
		return err
	}

	platform := engineebiten.NewPlatform()
	renderer := engineebiten.NewRenderer()
	loop := engine.NewFrameLoop(ctx, platform, renderer, engine.LoopConfig{
		FixedInterval: cfg.Loop.FixedInterval,
		TimeScale:     cfg.Loop.TimeScale,
		MaxFrameDelta: cfg.Loop.MaxFrameDelta,
	})

	game := &engineebiten.Game{Loop: loop, Platform: platform, Renderer: renderer}
	if cfg.Debug.ImGui {
		overlay := debugui.NewOverlay(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
		browser := debugui.NewEntityBrowser(ctx, 100)
		overlay.Add(browser, debugui.NewInspector(ctx, browser), debugui.NewPerformanceStats(ctx, loop, 120))
		game.Overlay = overlay
	}

	log.Info("opening window",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)
	return engineebiten.Run(game, cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)
}

// orbiter circles its entity around a fixed center.
type orbiter struct {
	ecs.Behavior
	ctx    *engine.Context
	center engine.Vec3
	radius float64
	speed  float64
	angle  float64
}

func (o *orbiter) Update(dt float64) {
	o.angle += o.speed * dt
	t, err := engine.GetEngineComponent[engine.Transform](o.ctx, o.Owner())
	if err != nil {
		return
	}
	t.Position = engine.Vec3{
		X: o.center.X + o.radius*math.Cos(o.angle),
		Y: o.center.Y + o.radius*math.Sin(o.angle),
	}
}

// orbitScene is loaded when no scene file is configured.
func orbitScene() engine.Scene {
	return engine.SceneFunc{
		SceneName: "orbit",
		LoadFunc: func(ctx *engine.Context) error {
			sun, err := ctx.CreateEntity(engine.Vec3{}, engine.Vec3{}, engine.One, "sun")
			if err != nil {
				return err
			}
			if _, err := engine.AddEngineComponent(ctx, sun, engine.PointLight{
				Color: engine.RGBA{R: 255, G: 230, B: 160, A: 255}, Intensity: 1, Radius: 120,
			}); err != nil {
				return err
			}
			if _, err := engine.AddEngineComponent(ctx, sun, engine.Renderer{
				Mesh: "circle", Color: engine.RGBA{R: 255, G: 200, B: 80, A: 255}, Size: engine.Vec2{X: 40, Y: 40},
			}); err != nil {
				return err
			}

			for i := range 8 {
				h, err := ctx.CreateEntity(engine.Vec3{}, engine.Vec3{}, engine.One, fmt.Sprintf("planet-%d", i))
				if err != nil {
					return err
				}
				if _, err := engine.AddEngineComponent(ctx, h, engine.Renderer{
					Mesh: "circle", Color: engine.RGBA{R: uint8(60 + 24*i), G: 140, B: 255, A: 255}, Size: engine.Vec2{X: 12, Y: 12},
				}); err != nil {
					return err
				}
				if _, err := engine.AddUserComponent(ctx, h, &orbiter{
					ctx:    ctx,
					radius: float64(60 + 30*i),
					speed:  2.0 / float64(i+1),
					angle:  float64(i),
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
