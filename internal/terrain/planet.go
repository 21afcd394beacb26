package terrain

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"GopherPlanets/internal/loader"
	"GopherPlanets/internal/logger"
	"GopherPlanets/internal/noise"
	"GopherPlanets/internal/renderer"
	"GopherPlanets/internal/water"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Config is the read-only setup of one planet.
type Config struct {
	Name         string          `yaml:"name"`
	Radius       float32         `yaml:"radius"`
	Center       mgl32.Vec3      `yaml:"center"`
	MaxLOD       int             `yaml:"max_lod"`
	Subdivisions int             `yaml:"subdivisions"`
	RenderLimit  float32         `yaml:"render_limit"` // radians of apparent size
	Noise        noise.Params    `yaml:"noise"`
	Palette      *loader.Palette `yaml:"palette"`
	Ocean        water.Config    `yaml:"ocean"`
}

func DefaultConfig(name string, seed int64) Config {
	return Config{
		Name:         name,
		Radius:       1,
		MaxLOD:       MaxLOD,
		Subdivisions: SubdivisionsPerLevel,
		Noise:        noise.DefaultParams(seed),
		Ocean:        water.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	var err error
	if c.Name == "" {
		err = multierr.Append(err, errors.New("planet name is empty"))
	}
	if c.Radius <= 0 {
		err = multierr.Append(err, fmt.Errorf("radius must be positive, got %v", c.Radius))
	}
	if c.MaxLOD < 0 {
		err = multierr.Append(err, fmt.Errorf("max_lod must not be negative, got %d", c.MaxLOD))
	}
	if c.Subdivisions < 1 {
		err = multierr.Append(err, fmt.Errorf("subdivisions must be at least 1, got %d", c.Subdivisions))
	}
	if c.RenderLimit < 0 {
		err = multierr.Append(err, fmt.Errorf("render_limit must not be negative, got %v", c.RenderLimit))
	}
	err = multierr.Append(err, c.Noise.Validate())
	if c.Ocean.Enabled {
		err = multierr.Append(err, c.Ocean.Validate())
	}
	return err
}

// Planet is one procedurally generated body: its height field, terrain tree and
// optional ocean.
type Planet struct {
	config   Config
	field    *noise.Field
	tree     *Tree
	ocean    *water.Shell
	uploader renderer.Render
}

func NewPlanet(cfg Config, scheduler *Scheduler) (*Planet, error) {
	if scheduler == nil {
		return nil, errors.New("planet needs a scheduler")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("planet %q: %w", cfg.Name, err)
	}
	field, err := noise.NewField(cfg.Noise)
	if err != nil {
		return nil, fmt.Errorf("planet %q: %w", cfg.Name, err)
	}

	p := &Planet{config: cfg, field: field}
	p.tree = NewTree(TreeOptions{
		Name:         cfg.Name,
		Radius:       cfg.Radius,
		MaxLOD:       cfg.MaxLOD,
		Subdivisions: cfg.Subdivisions,
		Field:        field,
		Palette:      cfg.Palette,
		Scheduler:    scheduler,
	})
	p.tree.SetCenter(cfg.Center)

	logger.Log.Info("Planet created",
		zap.String("planet", cfg.Name),
		zap.Int64("seed", cfg.Noise.Seed),
		zap.Float32("radius", cfg.Radius),
		zap.Int("maxLOD", cfg.MaxLOD),
		zap.Bool("ocean", cfg.Ocean.Enabled))
	return p, nil
}

func (p *Planet) Name() string        { return p.config.Name }
func (p *Planet) Config() Config      { return p.config }
func (p *Planet) Radius() float32     { return p.config.Radius }
func (p *Planet) Field() *noise.Field { return p.field }
func (p *Planet) Tree() *Tree         { return p.tree }
func (p *Planet) Center() mgl32.Vec3  { return p.tree.Center() }

func (p *Planet) SetCenter(c mgl32.Vec3) {
	p.tree.SetCenter(c)
	if p.ocean != nil {
		p.ocean.SetCenter(c)
	}
}

// SetUploader routes ready meshes to r. Call it from the goroutine that owns
// the graphics context, the same one that calls UpdateLOD.
func (p *Planet) SetUploader(r renderer.Render) {
	p.uploader = r
	p.tree.SetUploader(r)
}

// UpdateLOD runs one non-blocking LOD pass for the viewer position and reports
// whether every tile that should be drawn is ready.
func (p *Planet) UpdateLOD(viewer mgl32.Vec3) bool {
	return p.tree.Update(viewer)
}

// Height is the terrain surface distance from the planet center in the
// direction of world. It samples the same field the tile meshes are displaced
// with.
func (p *Planet) Height(world mgl32.Vec3) float32 {
	dir := world.Sub(p.Center())
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	return p.config.Radius * (1 + p.field.Height(dir))
}

// Ocean returns the ocean shell, building it on first use. Planets without an
// ocean return nil.
func (p *Planet) Ocean() *water.Shell {
	if !p.config.Ocean.Enabled {
		return nil
	}
	if p.ocean == nil {
		p.ocean = water.BuildShell(p.config.Name, p.config.Ocean, p.Center(), p.config.Radius)
		if p.uploader != nil {
			if err := p.ocean.Upload(p.uploader); err != nil {
				logger.Log.Warn("Ocean upload failed", zap.String("planet", p.config.Name), zap.Error(err))
			}
		}
	}
	return p.ocean
}

// Drawables lists the models to draw this frame: every visible ready tile,
// then the ocean faces.
func (p *Planet) Drawables() []*renderer.Model {
	var models []*renderer.Model
	p.tree.Walk(func(_ NodeID, n *Node) {
		if n.Model != nil {
			models = append(models, n.Model)
		}
	})
	if ocean := p.Ocean(); ocean != nil {
		models = append(models, ocean.Models...)
	}
	return models
}

// Raycast intersects ray with the terrain tiles drawn on the last LOD pass.
// The ocean is not hit.
func (p *Planet) Raycast(ray renderer.Ray) (renderer.Hit, bool) {
	var tiles []*renderer.Model
	p.tree.Walk(func(_ NodeID, n *Node) {
		if n.Model != nil {
			tiles = append(tiles, n.Model)
		}
	})
	return renderer.Raycast(ray, tiles)
}

// Visible reports whether the planet looks large enough from viewer to be
// drawn at all.
func (p *Planet) Visible(viewer mgl32.Vec3) bool {
	d := viewer.Sub(p.Center()).Len()
	if d <= p.config.Radius {
		return true
	}
	return math.Atan(float64(p.config.Radius/d)) >= float64(p.config.RenderLimit)
}

// SurfaceDistance is the viewer's distance to the planet's undisplaced surface.
func (p *Planet) SurfaceDistance(viewer mgl32.Vec3) float32 {
	return viewer.Sub(p.Center()).Len() - p.config.Radius
}

// FailedTiles counts tiles whose last generation attempt failed.
func (p *Planet) FailedTiles() int {
	return p.tree.Stats().Failed
}

func (p *Planet) Stats() TreeStats {
	return p.tree.Stats()
}

// SortByDistance orders planets nearest surface first.
func SortByDistance(planets []*Planet, viewer mgl32.Vec3) {
	sort.SliceStable(planets, func(i, j int) bool {
		return planets[i].SurfaceDistance(viewer) < planets[j].SurfaceDistance(viewer)
	})
}
