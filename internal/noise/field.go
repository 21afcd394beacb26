// Package noise provides the deterministic fractal height field shared by terrain
// meshing and surface height queries.
package noise

import (
	"fmt"

	perlin "github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
)

// FractalIterations is the default octave count.
const FractalIterations = 8

type Basis string

const (
	BasisPerlin   Basis = "perlin"
	BasisGradient Basis = "gradient"
)

// Sampler is a single-octave 3D noise source.
type Sampler interface {
	Noise3D(x, y, z float64) float64
}

// Params unambiguously define a planet's terrain.
type Params struct {
	Seed             int64   `yaml:"seed"`
	Size             float32 `yaml:"size"`
	Octaves          int     `yaml:"octaves"`
	MaxHeight        float32 `yaml:"max_height"` // relative to radius
	Gain             float32 `yaml:"gain"`
	Lacunarity       float32 `yaml:"lacunarity"`
	GainJitter       float32 `yaml:"gain_jitter"`
	LacunarityJitter float32 `yaml:"lacunarity_jitter"`
	JitterScale      float32 `yaml:"jitter_scale"`
	Basis            Basis   `yaml:"basis"`
}

func DefaultParams(seed int64) Params {
	return Params{
		Seed:             seed,
		Size:             4.0,
		Octaves:          FractalIterations,
		MaxHeight:        0.03,
		Gain:             0.5,
		Lacunarity:       2.0,
		GainJitter:       0.05,
		LacunarityJitter: 0.1,
		JitterScale:      0.5,
		Basis:            BasisPerlin,
	}
}

func (p Params) Validate() error {
	var err error
	if p.Octaves <= 0 {
		err = multierr.Append(err, fmt.Errorf("octaves must be positive, got %d", p.Octaves))
	}
	if p.Size <= 0 {
		err = multierr.Append(err, fmt.Errorf("size must be positive, got %v", p.Size))
	}
	if p.MaxHeight < 0 {
		err = multierr.Append(err, fmt.Errorf("max_height must not be negative, got %v", p.MaxHeight))
	}
	if p.Gain <= 0 {
		err = multierr.Append(err, fmt.Errorf("gain must be positive, got %v", p.Gain))
	}
	if p.Lacunarity <= 0 {
		err = multierr.Append(err, fmt.Errorf("lacunarity must be positive, got %v", p.Lacunarity))
	}
	if p.GainJitter < 0 || p.GainJitter >= p.Gain {
		err = multierr.Append(err, fmt.Errorf("gain_jitter must be in [0, gain), got %v", p.GainJitter))
	}
	if p.LacunarityJitter < 0 || p.LacunarityJitter >= p.Lacunarity {
		err = multierr.Append(err, fmt.Errorf("lacunarity_jitter must be in [0, lacunarity), got %v", p.LacunarityJitter))
	}
	switch p.Basis {
	case BasisPerlin, BasisGradient, "":
	default:
		err = multierr.Append(err, fmt.Errorf("unknown noise basis %q", p.Basis))
	}
	return err
}

// Field is the fractal height function of one planet. Immutable once built.
type Field struct {
	params     Params
	base       Sampler
	gainNoise  Sampler
	lacunarity Sampler
}

func NewField(p Params) (*Field, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("noise params: %w", err)
	}
	f := &Field{params: p}
	// Independent generators for the octave jitter, one seed apart
	switch p.Basis {
	case BasisGradient:
		f.base = NewGradientNoise(p.Seed)
		f.gainNoise = NewGradientNoise(p.Seed + 1)
		f.lacunarity = NewGradientNoise(p.Seed + 2)
	default:
		f.base = perlin.NewPerlin(2, 2, 1, p.Seed)
		f.gainNoise = perlin.NewPerlin(2, 2, 1, p.Seed+1)
		f.lacunarity = perlin.NewPerlin(2, 2, 1, p.Seed+2)
	}
	return f, nil
}

func (f *Field) Params() Params {
	return f.params
}

// Height returns the displacement, relative to radius, for a unit direction.
// A zero vector has no direction and yields 0.
func (f *Field) Height(dir mgl32.Vec3) float32 {
	if dir == (mgl32.Vec3{}) {
		return 0
	}
	p := f.params
	x := float64(dir[0]) * float64(p.Size)
	y := float64(dir[1]) * float64(p.Size)
	z := float64(dir[2]) * float64(p.Size)
	js := float64(p.JitterScale)

	frequency, amplitude := 1.0, 1.0
	height := 0.0
	for i := 0; i < p.Octaves; i++ {
		qx, qy, qz := x*frequency, y*frequency, z*frequency
		height += f.base.Noise3D(qx, qy, qz) * amplitude * float64(p.MaxHeight)

		gain := float64(p.Gain) + float64(p.GainJitter)*f.gainNoise.Noise3D(qx*js, qy*js, qz*js)
		lacunarity := float64(p.Lacunarity) + float64(p.LacunarityJitter)*f.lacunarity.Noise3D(qx*js, qy*js, qz*js)
		frequency *= lacunarity
		amplitude *= gain
	}
	return float32(height)
}
