package behaviour

import (
	"GopherPlanets/internal/logger"
	"GopherPlanets/internal/renderer"
	"GopherPlanets/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// LODBehaviour runs one LOD pass per visible planet every frame.
type LODBehaviour struct {
	Planets  []*terrain.Planet
	Viewer   *Viewer
	Renderer renderer.Render

	ready   map[string]bool
	skipped map[string]bool
}

func NewLODBehaviour(planets []*terrain.Planet, viewer *Viewer, r renderer.Render) *LODBehaviour {
	return &LODBehaviour{Planets: planets, Viewer: viewer, Renderer: r}
}

func (b *LODBehaviour) Start() {
	b.ready = make(map[string]bool, len(b.Planets))
	b.skipped = make(map[string]bool, len(b.Planets))
	if b.Renderer == nil {
		return
	}
	for _, p := range b.Planets {
		p.SetUploader(b.Renderer)
	}
}

func (b *LODBehaviour) Update(f Frame) {
	pos := b.Viewer.Position
	for _, p := range b.Planets {
		if !p.Visible(pos) {
			b.skipped[p.Name()] = true
			continue
		}
		b.skipped[p.Name()] = false
		ready := p.UpdateLOD(pos)
		if ready && !b.ready[p.Name()] {
			logger.Log.Info("Planet terrain ready",
				zap.String("planet", p.Name()),
				zap.Int("frame", f.Index),
				zap.Int("visibleTiles", p.Stats().Visible))
		}
		b.ready[p.Name()] = ready
	}
}

func (b *LODBehaviour) UpdateFixed(Frame) {}

// Ready reports whether the named planet's last LOD pass was fully ready.
func (b *LODBehaviour) Ready(name string) bool {
	return b.ready[name]
}

// Skipped reports whether the named planet was too small on screen last frame.
func (b *LODBehaviour) Skipped(name string) bool {
	return b.skipped[name]
}

// Drawables collects the models of every planet drawn last frame.
func (b *LODBehaviour) Drawables() []*renderer.Model {
	var models []*renderer.Model
	for _, p := range b.Planets {
		if b.skipped[p.Name()] {
			continue
		}
		models = append(models, p.Drawables()...)
	}
	return models
}

// Closest returns the planet whose surface is nearest to pos.
func Closest(planets []*terrain.Planet, pos mgl32.Vec3) *terrain.Planet {
	if len(planets) == 0 {
		return nil
	}
	sorted := append([]*terrain.Planet(nil), planets...)
	terrain.SortByDistance(sorted, pos)
	return sorted[0]
}
