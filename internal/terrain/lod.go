package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxLOD is the default deepest subdivision level.
const MaxLOD = 4

type Decision int

const (
	Keep Decision = iota
	Subdivide
)

func (d Decision) String() string {
	if d == Subdivide {
		return "subdivide"
	}
	return "keep"
}

// LODInput is the geometry a subdivision decision depends on.
type LODInput struct {
	PlanetCenter mgl32.Vec3
	TileCenter   mgl32.Vec3
	Viewer       mgl32.Vec3
	Radius       float32
	MaxHeight    float32
	Level        int
	MaxLOD       int
}

// AngleLimit is the largest angle between tile normal and viewer direction at
// which a tile at level may still subdivide.
func AngleLimit(level int) float64 {
	return (math.Pi / 2 * 1.5) / math.Pow(float64(level+1), 1.5)
}

// HeightLimit is the viewer distance from the planet center below which a tile
// at level may subdivide.
func HeightLimit(radius, maxHeight float32, level int) float64 {
	r := float64(radius)
	return r*(1+float64(maxHeight)) + r*2.6/math.Pow(float64(level+1), 1.5)
}

// ViewAngle is the angle between the tile's outward direction and the viewer's
// direction, both seen from the planet center. A viewer at the center gets a
// right angle.
func ViewAngle(in LODInput) float64 {
	a := vec64(in.TileCenter.Sub(in.PlanetCenter))
	b := vec64(in.Viewer.Sub(in.PlanetCenter))
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return math.Pi / 2
	}
	dot := a.Dot(b) / (la * lb)
	return math.Acos(math.Max(-1, math.Min(1, dot)))
}

// ViewerHeight is the viewer's distance from the planet center.
func ViewerHeight(in LODInput) float64 {
	return vec64(in.Viewer.Sub(in.PlanetCenter)).Len()
}

// Decide is the pure subdivision rule. Both thresholds are strict, so a viewer
// exactly on a boundary keeps the coarser tile.
func Decide(in LODInput) Decision {
	if in.Level >= in.MaxLOD {
		return Keep
	}
	if ViewAngle(in) < AngleLimit(in.Level) && ViewerHeight(in) < HeightLimit(in.Radius, in.MaxHeight, in.Level) {
		return Subdivide
	}
	return Keep
}

func vec64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
