// Package water builds the translucent ocean sphere drawn over a planet's
// terrain.
package water

import (
	"fmt"

	"GopherPlanets/internal/loader"
	"GopherPlanets/internal/logger"
	"GopherPlanets/internal/renderer"

	mgl32 "github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// DefaultResolution is the grid resolution of one ocean face.
	DefaultResolution = 64
	DefaultOffset     = 0.0
	DefaultAlpha      = 0.85
)

// Config is the per-planet ocean setup.
type Config struct {
	Enabled      bool       `yaml:"enabled"`
	Offset       float32    `yaml:"offset"` // relative to radius
	Resolution   int        `yaml:"resolution"`
	DarkColor    [3]float32 `yaml:"dark_color"`
	LightColor   [3]float32 `yaml:"light_color"`
	Transparency float32    `yaml:"transparency"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		Offset:       DefaultOffset,
		Resolution:   DefaultResolution,
		DarkColor:    [3]float32{0.01, 0.06, 0.11},
		LightColor:   [3]float32{0.05, 0.20, 0.40},
		Transparency: DefaultAlpha,
	}
}

func (c Config) Validate() error {
	var err error
	if c.Resolution < 1 {
		err = multierr.Append(err, fmt.Errorf("ocean resolution must be at least 1, got %d", c.Resolution))
	}
	if c.Offset <= -1 {
		err = multierr.Append(err, fmt.Errorf("ocean offset must be above -1, got %v", c.Offset))
	}
	if c.Transparency < 0 || c.Transparency > 1 {
		err = multierr.Append(err, fmt.Errorf("ocean transparency must be in [0, 1], got %v", c.Transparency))
	}
	return err
}

// Shell is a flat cube-sphere at a fixed radius, one model per cube face.
type Shell struct {
	Models []*renderer.Model
	Radius float32
	config Config
}

// BuildShell generates the six ocean faces for a planet of the given radius.
// The geometry is never displaced.
func BuildShell(name string, cfg Config, center mgl32.Vec3, radius float32) *Shell {
	res := cfg.Resolution
	if res < 1 {
		res = DefaultResolution
	}
	shell := &Shell{
		Radius: radius * (1 + cfg.Offset),
		config: cfg,
	}

	for _, face := range loader.Faces {
		mesh := loader.BuildTile(1, face, mgl32.Vec3{0, 0, 1}, res)
		shadeFromCenter(mesh, face, cfg)

		model := renderer.NewModel(fmt.Sprintf("%s/ocean/%s", name, face.Name), mesh)
		model.SetScale(shell.Radius, shell.Radius, shell.Radius)
		model.SetPosition(center[0], center[1], center[2])
		model.SetDiffuseColor(cfg.LightColor[0], cfg.LightColor[1], cfg.LightColor[2])
		model.SetAlpha(cfg.Transparency)
		model.Metadata = map[string]interface{}{"planet": name, "ocean": true}
		model.NeedsUpload = true
		shell.Models = append(shell.Models, model)
	}

	logger.Log.Debug("Ocean shell built",
		zap.String("planet", name),
		zap.Float32("radius", shell.Radius),
		zap.Int("resolution", res))
	return shell
}

// shadeFromCenter blends from the dark colour at the face edges to the light
// colour at the face center.
func shadeFromCenter(mesh *renderer.Mesh, face loader.Face, cfg Config) {
	axis := face.Rotate(mgl32.Vec3{0, 0, 1})
	mesh.Colors = make([]float32, mesh.VertexCount()*3)
	for i := 0; i < mesh.VertexCount(); i++ {
		t := mesh.Normal(i).Dot(axis)
		for c := 0; c < 3; c++ {
			mesh.Colors[i*3+c] = cfg.DarkColor[c] + (cfg.LightColor[c]-cfg.DarkColor[c])*t
		}
	}
}

func (s *Shell) Config() Config {
	return s.config
}

// SetCenter keeps the shell on its planet.
func (s *Shell) SetCenter(c mgl32.Vec3) {
	for _, m := range s.Models {
		m.SetPosition(c[0], c[1], c[2])
	}
}

// Upload sends every face that is not on the GPU yet.
func (s *Shell) Upload(r renderer.Render) error {
	var err error
	for _, m := range s.Models {
		if m.Uploaded() {
			continue
		}
		err = multierr.Append(err, r.Upload(m))
	}
	return err
}
