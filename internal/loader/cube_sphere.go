package loader

import (
	"math"

	"GopherPlanets/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// Face is one side of the unit cube. Basis columns are the two in-face tangents
// followed by the outward normal.
type Face struct {
	Name  string
	Basis mgl32.Mat3
}

var (
	axisX = mgl32.Vec3{1, 0, 0}
	axisY = mgl32.Vec3{0, 1, 0}
	axisZ = mgl32.Vec3{0, 0, 1}
)

// Faces lists the six cube faces in a fixed order. Tree roots and ocean tiles
// index into it, so the order is part of node naming.
var Faces = [6]Face{
	{Name: "+x", Basis: mgl32.Mat3FromCols(axisY, axisZ, axisX)},
	{Name: "-x", Basis: mgl32.Mat3FromCols(axisY, axisZ, axisX.Mul(-1))},
	{Name: "+y", Basis: mgl32.Mat3FromCols(axisX, axisZ, axisY)},
	{Name: "-y", Basis: mgl32.Mat3FromCols(axisX, axisZ, axisY.Mul(-1))},
	{Name: "+z", Basis: mgl32.Mat3FromCols(axisX, axisY, axisZ)},
	{Name: "-z", Basis: mgl32.Mat3FromCols(axisX, axisY, axisZ.Mul(-1))},
}

// Rotate maps a tile-local point onto the face.
func (f Face) Rotate(v mgl32.Vec3) mgl32.Vec3 {
	return f.Basis.Mul3x1(v)
}

// Inverted reports whether the basis is left-handed, in which case grid
// triangles must be emitted in reverse order to face outward.
func (f Face) Inverted() bool {
	return f.Basis.Det() < 0
}

// CubeToSphere projects a point on the surface of the [-1,1] cube onto the unit
// sphere, spreading vertices evenly instead of bunching them at the corners.
func CubeToSphere(p mgl32.Vec3) mgl32.Vec3 {
	x, y, z := float64(p[0]), float64(p[1]), float64(p[2])
	x2, y2, z2 := x*x, y*y, z*z
	return mgl32.Vec3{
		float32(x * math.Sqrt(1-y2/2-z2/2+y2*z2/3)),
		float32(y * math.Sqrt(1-z2/2-x2/2+z2*x2/3)),
		float32(z * math.Sqrt(1-x2/2-y2/2+x2*y2/3)),
	}
}

// SphereUV is the equirectangular projection of p.
func SphereUV(p mgl32.Vec3) (float32, float32) {
	l := p.Len()
	if l == 0 {
		return 0.5, 0.5
	}
	u := math.Atan2(float64(p[2]), float64(p[0]))/(2*math.Pi) + 0.5
	v := math.Asin(float64(mgl32.Clamp(p[1]/l, -1, 1)))/math.Pi + 0.5
	return float32(u), float32(v)
}

// BuildTile lays out an (n+1)x(n+1) grid covering [offset-scale, offset+scale]
// in face-local coordinates and projects it onto the unit sphere. The result is
// a pure function of its arguments.
func BuildTile(scale float32, face Face, offset mgl32.Vec3, n int) *renderer.Mesh {
	if n < 1 {
		n = 1
	}
	side := n + 1
	mesh := renderer.NewMesh(side*side, 6*n*n)

	for j := 0; j < side; j++ {
		v := -1 + 2*float32(j)/float32(n)
		for i := 0; i < side; i++ {
			u := -1 + 2*float32(i)/float32(n)
			local := mgl32.Vec3{offset[0] + u*scale, offset[1] + v*scale, offset[2]}
			p := CubeToSphere(face.Rotate(local))

			idx := j*side + i
			mesh.SetVertex(idx, p)
			mesh.SetNormal(idx, p.Normalize())
			u, v := SphereUV(p)
			mesh.SetUV(idx, u, v)
		}
	}

	inverted := face.Inverted()
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			a := uint32(j*side + i)
			b := a + 1
			c := a + uint32(side)
			d := c + 1
			if inverted {
				mesh.Indices = append(mesh.Indices, a, d, b, a, c, d)
			} else {
				mesh.Indices = append(mesh.Indices, a, b, d, a, d, c)
			}
		}
	}
	return mesh
}

// Displace pushes every vertex out along its direction by 1+height(dir), then
// replaces the normals with per-triangle face normals and recomputes UVs. The
// returned slice holds the height sampled for each vertex.
//
// Vertices shared between triangles keep the normal of the last triangle that
// touched them, which gives the faceted look and visible tile seams.
func Displace(mesh *renderer.Mesh, height func(mgl32.Vec3) float32) []float32 {
	n := mesh.VertexCount()
	heights := make([]float32, n)
	for i := 0; i < n; i++ {
		v := mesh.Vertex(i)
		h := height(v.Normalize())
		heights[i] = h
		mesh.SetVertex(i, v.Mul(1+h))
	}

	for t := 0; t+2 < len(mesh.Indices); t += 3 {
		i0, i1, i2 := int(mesh.Indices[t]), int(mesh.Indices[t+1]), int(mesh.Indices[t+2])
		v0 := mesh.Vertex(i0)
		normal := mesh.Vertex(i1).Sub(v0).Cross(mesh.Vertex(i2).Sub(v0))
		if l := normal.Len(); l > 0 {
			normal = normal.Mul(1 / l)
		}
		mesh.SetNormal(i0, normal)
		mesh.SetNormal(i1, normal)
		mesh.SetNormal(i2, normal)
	}

	for i := 0; i < n; i++ {
		u, v := SphereUV(mesh.Vertex(i))
		mesh.SetUV(i, u, v)
	}
	return heights
}

// Palette colours terrain by height band. A vertex falls into band k when it is
// above exactly k of the thresholds.
type Palette struct {
	Colors     [5][3]float32 `yaml:"colors"`
	Thresholds [4]float32    `yaml:"thresholds"`
}

// Band returns the colour index for height h.
func (p Palette) Band(h float32) int {
	band := 0
	for _, t := range p.Thresholds {
		if h > t {
			band++
		}
	}
	return band
}

// Colorize writes one RGB triple per vertex.
func Colorize(mesh *renderer.Mesh, heights []float32, palette Palette) {
	mesh.Colors = make([]float32, len(heights)*3)
	for i, h := range heights {
		c := palette.Colors[palette.Band(h)]
		mesh.Colors[i*3], mesh.Colors[i*3+1], mesh.Colors[i*3+2] = c[0], c[1], c[2]
	}
}
