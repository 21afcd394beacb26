package terrain

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestLimitsStrictlyDecrease(t *testing.T) {
	for level := 0; level < 20; level++ {
		assert.Less(t, AngleLimit(level+1), AngleLimit(level), "angle limit at level %d", level)
		assert.Less(t, HeightLimit(1, 0.05, level+1), HeightLimit(1, 0.05, level), "height limit at level %d", level)
	}
}

func scenario(viewer, tile mgl32.Vec3, level int) LODInput {
	return LODInput{
		TileCenter: tile,
		Viewer:     viewer,
		Radius:     1,
		MaxHeight:  0.05,
		Level:      level,
		MaxLOD:     2,
	}
}

func TestDistantViewerDoesNotSubdivide(t *testing.T) {
	assert.InDelta(t, 3.65, HeightLimit(1, 0.05, 0), 1e-6)

	in := scenario(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{0, 0, 1}, 0)
	assert.InDelta(t, 0, ViewAngle(in), 1e-6)
	assert.Equal(t, Keep, Decide(in))
}

func TestNearViewerSubdividesToMaxLOD(t *testing.T) {
	viewer := mgl32.Vec3{0, 0, 1.02}
	assert.Equal(t, Subdivide, Decide(scenario(viewer, mgl32.Vec3{0, 0, 1}, 0)))
	assert.Equal(t, Subdivide, Decide(scenario(viewer, mgl32.Vec3{0.5, 0.5, 1}, 1)))
	assert.Equal(t, Keep, Decide(scenario(viewer, mgl32.Vec3{0.25, 0.25, 1}, 2)))
}

func TestFarSideSubdivisionBoundary(t *testing.T) {
	// only level 0 admits angles past a right angle
	assert.Greater(t, AngleLimit(0), math.Pi/2)
	assert.Less(t, AngleLimit(1), math.Pi/2)

	viewer := mgl32.Vec3{0, 0, 1.02}
	behind := mgl32.Vec3{0, 0, -1}
	assert.InDelta(t, math.Pi, ViewAngle(scenario(viewer, behind, 0)), 1e-6)
	assert.Equal(t, Keep, Decide(scenario(viewer, behind, 0)))

	// about 117 degrees away: inside the level 0 limit, outside level 1
	oblique := mgl32.Vec3{1, 0, -0.5}
	angle := ViewAngle(scenario(viewer, oblique, 0))
	assert.Greater(t, angle, math.Pi/2)
	assert.Equal(t, Subdivide, Decide(scenario(viewer, oblique, 0)))
	assert.Equal(t, Keep, Decide(scenario(viewer, oblique, 1)))
}

func TestHeightThresholdIsStrict(t *testing.T) {
	limit := HeightLimit(1, 0.05, 0)
	above := math.Nextafter32(float32(limit), float32(math.Inf(1)))
	below := math.Nextafter32(float32(limit), 0)
	if float64(below) >= limit {
		below = math.Nextafter32(below, 0)
	}

	assert.Equal(t, Keep, Decide(scenario(mgl32.Vec3{0, 0, above}, mgl32.Vec3{0, 0, 1}, 0)))
	assert.Equal(t, Subdivide, Decide(scenario(mgl32.Vec3{0, 0, below}, mgl32.Vec3{0, 0, 1}, 0)))
}

func TestDecideRespectsMaxLOD(t *testing.T) {
	in := scenario(mgl32.Vec3{0, 0, 1.01}, mgl32.Vec3{0, 0, 1}, 0)
	in.MaxLOD = 0
	assert.Equal(t, Keep, Decide(in))
}

// A viewer at the planet center sees every tile at a right angle, so a root
// still subdivides there instead of the pass producing NaN.
func TestViewerAtCenter(t *testing.T) {
	in := scenario(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, 0)
	assert.False(t, math.IsNaN(ViewAngle(in)))
	assert.Equal(t, Subdivide, Decide(in))
}
