package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"GopherPlanets/internal/behaviour"
	"GopherPlanets/internal/config"
	"GopherPlanets/internal/engine"
	"GopherPlanets/internal/logger"
	"GopherPlanets/internal/renderer"
	"GopherPlanets/internal/terrain"

	"go.uber.org/zap"
)

var (
	scenePath  = flag.String("scene", "", "scene file (YAML); defaults to assets/scene.yaml or the built-in solar system")
	frameCount = flag.Int("frames", 600, "frames to run, 0 runs until interrupted")
	frameDt    = flag.Float64("dt", 1.0/60.0, "seconds per frame")
	bakeDir    = flag.String("bake", "", "write every ready tile mesh under this directory when done")
	viewerName = flag.String("viewer", "", "viewer behaviour, overrides the scene")
	logLevel   = flag.String("log-level", "info", "debug, info, warn or error")
	statsEvery = flag.Int("stats-every", 60, "frames between stats lines, 0 disables them")
)

func main() {
	flag.Parse()

	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -log-level: %v\n", err)
		os.Exit(2)
	}
	logger.InitWithLevel(level)
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Log.Error("Run failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	scene, err := loadScene()
	if err != nil {
		return err
	}
	if *viewerName != "" {
		scene.Viewer.Behaviour = *viewerName
	}

	executor := terrain.NewPoolExecutor(scene.Workers)
	scheduler := terrain.NewScheduler(executor, terrain.NewAdmission(scene.MaxInFlight))
	scheduler.MaxRetries = scene.MaxRetries
	defer scheduler.Close()

	planets, err := buildPlanets(scene, scheduler)
	if err != nil {
		return err
	}

	headless := renderer.NewHeadlessRenderer()
	gameEngine := engine.NewGopher(headless)
	gameEngine.Behaviours = behaviour.NewBehaviourManager()

	// orbits first so the LOD pass sees this frame's positions
	for _, b := range orbitBehaviours(scene, planets) {
		gameEngine.Behaviours.Add(b)
	}

	viewer := &behaviour.Viewer{Position: scene.Viewer.Position}
	mover, err := behaviour.CreateViewer(scene.Viewer.Behaviour, viewer, planets)
	if err != nil {
		return err
	}
	gameEngine.Behaviours.Add(mover)

	lod := behaviour.NewLODBehaviour(planets, viewer, gameEngine.GetRenderer())
	gameEngine.Behaviours.Add(lod)

	gameEngine.SetOnRenderCallback(func(f behaviour.Frame) {
		if *statsEvery <= 0 || f.Index%*statsEvery != 0 {
			return
		}
		logFrameStats(f, viewer, planets, headless, scheduler)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.Info("Running scene",
		zap.Int("planets", len(planets)),
		zap.Int("workers", scene.Workers),
		zap.Int("maxInFlight", scene.MaxInFlight),
		zap.String("viewer", scene.Viewer.Behaviour),
		zap.Int("frames", *frameCount))

	frames, err := gameEngine.Run(ctx, *frameCount, *frameDt)
	if err != nil && ctx.Err() == nil {
		return err
	}
	logger.Log.Info("Frame loop stopped",
		zap.Int("frames", frames),
		zap.Int("drawables", len(lod.Drawables())),
		zap.Int("uploads", headless.Uploads()),
		zap.Int("uploadedBytes", headless.UploadedBytes()))

	for _, p := range planets {
		if failed := p.FailedTiles(); failed > 0 {
			logger.Log.Warn("Planet has tiles that never generated",
				zap.String("planet", p.Name()),
				zap.Int("failed", failed))
		}
	}

	if *bakeDir == "" {
		return nil
	}
	// drain running jobs so their results are not lost mid-write
	scheduler.Close()
	for _, p := range planets {
		n, err := bakePlanet(*bakeDir, p)
		if err != nil {
			return fmt.Errorf("bake %s: %w", p.Name(), err)
		}
		logger.Log.Info("Baked planet",
			zap.String("planet", p.Name()),
			zap.Int("tiles", n),
			zap.String("dir", filepath.Join(*bakeDir, p.Name())))
	}
	return nil
}

func loadScene() (*config.Scene, error) {
	path := *scenePath
	if path == "" {
		path = findAsset("scene.yaml")
	}
	if path == "" {
		logger.Log.Info("No scene file found, using the built-in solar system")
		return config.DefaultScene(), nil
	}
	scene, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Scene loaded", zap.String("path", path))
	return scene, nil
}

func buildPlanets(scene *config.Scene, scheduler *terrain.Scheduler) ([]*terrain.Planet, error) {
	planets := make([]*terrain.Planet, 0, len(scene.Planets))
	for _, cfg := range scene.Planets {
		p, err := terrain.NewPlanet(cfg.Config, scheduler)
		if err != nil {
			return nil, err
		}
		planets = append(planets, p)
	}
	return planets, nil
}

// orbitBehaviours follows scene order, which puts parents before satellites.
func orbitBehaviours(scene *config.Scene, planets []*terrain.Planet) []behaviour.Behaviour {
	var out []behaviour.Behaviour
	for i, cfg := range scene.Planets {
		if cfg.Orbit == nil {
			continue
		}
		o := &behaviour.OrbitBehaviour{
			Planet:     planets[i],
			Trajectory: cfg.Orbit.Trajectory,
			Speed:      cfg.Orbit.Speed,
			InitAngle:  cfg.Orbit.InitAngle,
		}
		if cfg.Orbit.Parent != "" {
			o.Parent = planets[scene.Index(cfg.Orbit.Parent)]
		}
		out = append(out, o)
	}
	return out
}

func logFrameStats(f behaviour.Frame, viewer *behaviour.Viewer, planets []*terrain.Planet, r *renderer.HeadlessRenderer, s *terrain.Scheduler) {
	closest := behaviour.Closest(planets, viewer.Position)
	if closest == nil {
		return
	}
	stats := closest.Stats()
	logger.Log.Info("Frame",
		zap.Int("frame", f.Index),
		zap.String("closest", closest.Name()),
		zap.Float32("altitude", closest.SurfaceDistance(viewer.Position)),
		zap.Int("nodes", stats.Nodes),
		zap.Int("visible", stats.Visible),
		zap.Int("pending", stats.Pending),
		zap.Int("depth", stats.MaxDepth),
		zap.Int("inFlight", s.Admission().InFlight()),
		zap.Int64("completed", s.Completed()),
		zap.Int("uploads", r.Uploads()))
}

func findAsset(name string) string {
	exePath, _ := os.Executable()
	exeDir := filepath.Dir(exePath)

	paths := []string{
		filepath.Join(exeDir, "assets", name),
		filepath.Join(exeDir, name),
		filepath.Join("assets", name),
		name,
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
