package behaviour

import (
	"math"

	"GopherPlanets/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
)

// Viewer is the point LOD is computed for.
type Viewer struct {
	Position mgl32.Vec3
}

// DescendBehaviour flies the viewer toward the surface of the closest planet,
// shrinking its altitude exponentially and never going below the terrain.
type DescendBehaviour struct {
	Viewer  *Viewer
	Planets []*terrain.Planet
	// Rate is the fraction of altitude lost per second.
	Rate float32
	// MinAltitude is the closest approach, relative to planet radius.
	MinAltitude float32

	target *terrain.Planet
}

func NewDescendBehaviour(v *Viewer, planets []*terrain.Planet) *DescendBehaviour {
	return &DescendBehaviour{Viewer: v, Planets: planets, Rate: 0.5, MinAltitude: 0.002}
}

// Start locks onto whichever planet is closest, like a player entering a
// gravity well.
func (d *DescendBehaviour) Start() {
	d.target = Closest(d.Planets, d.Viewer.Position)
}

func (d *DescendBehaviour) Update(f Frame) {
	if d.target == nil {
		return
	}
	center := d.target.Center()
	offset := d.Viewer.Position.Sub(center)
	dist := offset.Len()
	if dist == 0 {
		return
	}
	dir := offset.Mul(1 / dist)
	ground := d.target.Height(d.Viewer.Position)

	altitude := dist - ground
	decay := float32(math.Exp(-float64(d.Rate) * f.Dt))
	altitude *= decay
	if floor := d.MinAltitude * d.target.Radius(); altitude < floor {
		altitude = floor
	}
	d.Viewer.Position = center.Add(dir.Mul(ground + altitude))
}

func (d *DescendBehaviour) UpdateFixed(Frame) {}

// Target is the planet being approached.
func (d *DescendBehaviour) Target() *terrain.Planet {
	return d.target
}

// CircleBehaviour keeps the viewer at a fixed altitude above the closest
// planet and sweeps it around the planet's equator.
type CircleBehaviour struct {
	Viewer   *Viewer
	Planets  []*terrain.Planet
	Altitude float32 // relative to radius
	Speed    float32 // radians per second

	target *terrain.Planet
	angle  float64
}

func NewCircleBehaviour(v *Viewer, planets []*terrain.Planet) *CircleBehaviour {
	return &CircleBehaviour{Viewer: v, Planets: planets, Altitude: 0.5, Speed: 0.2}
}

func (c *CircleBehaviour) Start() {
	c.target = Closest(c.Planets, c.Viewer.Position)
	if c.target == nil {
		return
	}
	rel := c.Viewer.Position.Sub(c.target.Center())
	c.angle = math.Atan2(float64(rel[0]), float64(rel[2]))
}

func (c *CircleBehaviour) Update(f Frame) {
	if c.target == nil {
		return
	}
	c.angle += float64(c.Speed) * f.Dt
	r := c.target.Radius() * (1 + c.Altitude)
	c.Viewer.Position = c.target.Center().Add(mgl32.Vec3{
		float32(math.Sin(c.angle)) * r,
		0,
		float32(math.Cos(c.angle)) * r,
	})
}

func (c *CircleBehaviour) UpdateFixed(Frame) {}

type staticViewer struct{}

func (staticViewer) Start()            {}
func (staticViewer) Update(Frame)      {}
func (staticViewer) UpdateFixed(Frame) {}
