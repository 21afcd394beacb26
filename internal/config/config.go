// Package config loads scene descriptions: which planets exist, how their
// terrain is generated and how they move.
package config

import (
	"errors"
	"fmt"
	"os"

	"GopherPlanets/internal/loader"
	"GopherPlanets/internal/terrain"
	"GopherPlanets/internal/water"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const DefaultWorkers = 4

// Scene is the top-level scene file.
type Scene struct {
	Workers     int      `yaml:"workers"`
	MaxInFlight int      `yaml:"max_in_flight"`
	MaxRetries  int      `yaml:"max_retries"`
	Viewer      Viewer   `yaml:"viewer"`
	Planets     []Planet `yaml:"planets"`
}

type Viewer struct {
	Position  mgl32.Vec3 `yaml:"position"`
	Behaviour string     `yaml:"behaviour"`
}

// Planet is a terrain configuration plus where it sits in the scene.
type Planet struct {
	terrain.Config `yaml:",inline"`
	Orbit          *Orbit `yaml:"orbit"`
}

// Orbit places a planet on a circle around its parent, or around the origin
// when Parent is empty.
type Orbit struct {
	Parent     string     `yaml:"parent"`
	Trajectory float32    `yaml:"trajectory"`
	Speed      float32    `yaml:"speed"`
	InitAngle  mgl32.Vec2 `yaml:"init_angle"`
}

// UnmarshalYAML fills in planet defaults before decoding so a scene file only
// needs to list what differs.
func (p *Planet) UnmarshalYAML(value *yaml.Node) error {
	type plain Planet
	raw := plain{Config: terrain.DefaultConfig("", 0)}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*p = Planet(raw)
	return nil
}

// Load reads and validates a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	scene, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return scene, nil
}

// Parse decodes a scene, applies defaults and validates it.
func Parse(data []byte) (*Scene, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	scene.applyDefaults()
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return &scene, nil
}

// Marshal encodes a scene back to YAML.
func (s *Scene) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

func (s *Scene) applyDefaults() {
	if s.Workers == 0 {
		s.Workers = DefaultWorkers
	}
	if s.MaxInFlight == 0 {
		s.MaxInFlight = terrain.MaxInFlight
	}
	if s.MaxRetries == 0 {
		s.MaxRetries = terrain.DefaultMaxRetries
	}
	if s.Viewer.Behaviour == "" {
		s.Viewer.Behaviour = "descend"
	}
}

// Validate reports every problem in the scene at once.
func (s *Scene) Validate() error {
	var err error
	if s.Workers < 1 {
		err = multierr.Append(err, fmt.Errorf("workers must be at least 1, got %d", s.Workers))
	}
	if s.MaxInFlight < 1 {
		err = multierr.Append(err, fmt.Errorf("max_in_flight must be at least 1, got %d", s.MaxInFlight))
	}
	if s.MaxRetries < 1 {
		err = multierr.Append(err, fmt.Errorf("max_retries must be at least 1, got %d", s.MaxRetries))
	}
	if len(s.Planets) == 0 {
		err = multierr.Append(err, errors.New("scene has no planets"))
	}

	seen := make(map[string]bool, len(s.Planets))
	for i, p := range s.Planets {
		if perr := p.Config.Validate(); perr != nil {
			err = multierr.Append(err, fmt.Errorf("planet %d (%s): %w", i, p.Name, perr))
		}
		if seen[p.Name] {
			err = multierr.Append(err, fmt.Errorf("duplicate planet name %q", p.Name))
		}
		// parents must come first so orbits update in order
		if p.Orbit != nil && p.Orbit.Parent != "" && !seen[p.Orbit.Parent] {
			err = multierr.Append(err, fmt.Errorf("planet %q orbits %q, which is not defined before it", p.Name, p.Orbit.Parent))
		}
		seen[p.Name] = true
	}
	return err
}

// Index returns the position of the named planet, or -1.
func (s *Scene) Index(name string) int {
	for i := range s.Planets {
		if s.Planets[i].Name == name {
			return i
		}
	}
	return -1
}

func rgb(r, g, b float32) [3]float32 { return [3]float32{r, g, b} }

func planet(name string, seed int64, radius, maxHeight, noiseSize float32, maxLOD int) Planet {
	cfg := terrain.DefaultConfig(name, seed)
	cfg.Radius = radius
	cfg.MaxLOD = maxLOD
	cfg.Noise.MaxHeight = maxHeight
	cfg.Noise.Size = noiseSize
	cfg.Ocean.Enabled = false
	cfg.RenderLimit = 0.002
	return Planet{Config: cfg}
}

var moonPalette = loader.Palette{
	Colors: [5][3]float32{
		rgb(0.118, 0.1255, 0.1255),
		rgb(0.118, 0.255, 0.255),
		rgb(0.018, 0.20, 0.20),
		rgb(0.08, 0.1055, 0.1055),
		rgb(0.118, 0.1255, 0.1255),
	},
	Thresholds: [4]float32{-0.0005, 0.001, 0.014, 0.026},
}

// DefaultScene is a small solar system: a sun, two ocean worlds, a desert
// planet and their moons.
func DefaultScene() *Scene {
	sun := planet("sun", 498765401, 32.5, 0.005, 500, 2)
	sun.Palette = &loader.Palette{
		Colors: [5][3]float32{
			rgb(0.7608, 0.1535, 0.1),
			rgb(0.8608, 0.2029, 0.1),
			rgb(0.9608, 0.2235, 0.1),
			rgb(0.9608, 0.3729, 0.1),
			rgb(0.9908, 0.4335, 0.1),
		},
		Thresholds: [4]float32{-0.0007, -0.0001, 0.0004, 0.0008},
	}

	earth := planet("earth", 43932, 11.5, 0.03, 25, terrain.MaxLOD)
	earth.Ocean = water.DefaultConfig()
	earth.Ocean.DarkColor = rgb(0.001, 0.03, 0.01)
	earth.Ocean.LightColor = rgb(0.04, 0.37, 0.33)
	earth.Palette = &loader.Palette{
		Colors: [5][3]float32{
			rgb(0.4, 0.4, 0.3),
			rgb(0.7, 0.55, 0.0),
			rgb(0.2, 0.6, 0.4),
			rgb(0.5, 0.4, 0.4),
			rgb(0.91, 1.0, 1.0),
		},
		Thresholds: [4]float32{-0.0005, 0.0008, 0.019, 0.022},
	}
	earth.Orbit = &Orbit{Trajectory: 970, Speed: 0.012, InitAngle: mgl32.Vec2{6.24, 0.5}}

	oceanus := planet("oceanus", 1834327, 8, 0.08, 4, terrain.MaxLOD)
	oceanus.Ocean = water.DefaultConfig()
	oceanus.Palette = &loader.Palette{
		Colors: [5][3]float32{
			rgb(0.6118, 0.3137, 0.1961),
			rgb(0.6118, 0.3137, 0.1961),
			rgb(0.1686, 0.3922, 0.3176),
			rgb(0.4588, 0.4588, 0.4588),
			rgb(0.91, 1.0, 1.0),
		},
		Thresholds: [4]float32{-0.0005, 0.001, 0.014, 0.028},
	}
	oceanus.Orbit = &Orbit{Trajectory: 650, Speed: 0.03, InitAngle: mgl32.Vec2{0.08, 0.3}}

	mars := planet("mars", 94333, 7.65, 0.03, 10, terrain.MaxLOD)
	mars.Palette = &loader.Palette{
		Colors: [5][3]float32{
			rgb(0.6118, 0.1255, 0.1255),
			rgb(0.7, 0.55, 0.0),
			rgb(0.7804, 0.2275, 0.0118),
			rgb(0.8275, 0.302, 0.0),
			rgb(0.91, 1.0, 1.0),
		},
		Thresholds: [4]float32{-0.0005, 0.001, 0.014, 0.026},
	}
	mars.Orbit = &Orbit{Trajectory: 440, Speed: 0.02, InitAngle: mgl32.Vec2{6.24, 0.1}}

	phobos := planet("phobos", 4329713, 2, 0.003, 6, 3)
	phobos.Palette = &moonPalette
	phobos.Orbit = &Orbit{Parent: "mars", Trajectory: 50, Speed: 0.8, InitAngle: mgl32.Vec2{0.02, 0}}

	luna := planet("luna", 35462, 2.2, 0.09, 5.4, 3)
	luna.Palette = &moonPalette
	luna.Orbit = &Orbit{Parent: "earth", Trajectory: 48, Speed: 0.8, InitAngle: mgl32.Vec2{0.7, 0}}

	scene := &Scene{
		Viewer: Viewer{
			Position:  mgl32.Vec3{0, 40, 1000},
			Behaviour: "descend",
		},
		Planets: []Planet{sun, earth, oceanus, mars, phobos, luna},
	}
	scene.applyDefaults()
	return scene
}
