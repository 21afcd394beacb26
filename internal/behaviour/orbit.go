package behaviour

import (
	"math"

	"GopherPlanets/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
)

// WorldSpeed scales every orbital speed.
const WorldSpeed = 0.5

// OrbitBehaviour moves a planet on a circle around its parent on fixed
// updates. Add parents to the manager before their satellites.
type OrbitBehaviour struct {
	Planet     *terrain.Planet
	Parent     *terrain.Planet // nil orbits the origin
	Trajectory float32         // orbit radius
	Speed      float32         // radians per second before WorldSpeed
	InitAngle  mgl32.Vec2      // start angle, height above the orbital plane
}

func (o *OrbitBehaviour) Start() {
	o.place(0)
}

func (o *OrbitBehaviour) Update(Frame) {}

func (o *OrbitBehaviour) UpdateFixed(f Frame) {
	o.place(f.Elapsed)
}

// Position is where the planet is at time elapsed.
func (o *OrbitBehaviour) Position(elapsed float64) mgl32.Vec3 {
	var origin mgl32.Vec3
	if o.Parent != nil {
		origin = o.Parent.Center()
	}
	angle := float64(o.Speed)*WorldSpeed*elapsed + float64(o.InitAngle[0])
	return origin.Add(mgl32.Vec3{
		float32(math.Sin(angle)) * o.Trajectory,
		o.InitAngle[1],
		float32(math.Cos(angle)) * o.Trajectory,
	})
}

func (o *OrbitBehaviour) place(elapsed float64) {
	if o.Trajectory == 0 && o.Parent == nil {
		return
	}
	o.Planet.SetCenter(o.Position(elapsed))
}
