package loader

import (
	"bytes"
	"math"
	"testing"

	"GopherPlanets/internal/noise"
	"GopherPlanets/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

var rootOffset = mgl32.Vec3{0, 0, 1}

func TestBuildTileCounts(t *testing.T) {
	for _, n := range []int{1, 4, 16} {
		mesh := BuildTile(1, Faces[0], rootOffset, n)
		if got, want := mesh.VertexCount(), (n+1)*(n+1); got != want {
			t.Errorf("n=%d: expected %d vertices, got %d", n, want, got)
		}
		if got, want := len(mesh.Indices), 6*n*n; got != want {
			t.Errorf("n=%d: expected %d indices, got %d", n, want, got)
		}
		for _, idx := range mesh.Indices {
			if int(idx) >= mesh.VertexCount() {
				t.Fatalf("n=%d: index %d out of range", n, idx)
			}
		}
	}
}

func TestBuildTileOnUnitSphere(t *testing.T) {
	for _, face := range Faces {
		mesh := BuildTile(1, face, rootOffset, 8)
		for i := 0; i < mesh.VertexCount(); i++ {
			if l := mesh.Vertex(i).Len(); math.Abs(float64(l)-1) > 1e-5 {
				t.Fatalf("face %s: vertex %d has length %f", face.Name, i, l)
			}
		}
	}
}

func TestFacesWindOutward(t *testing.T) {
	inverted := 0
	for _, face := range Faces {
		if face.Inverted() {
			inverted++
		}
		mesh := BuildTile(1, face, rootOffset, 4)
		for tri := 0; tri < len(mesh.Indices); tri += 3 {
			v0 := mesh.Vertex(int(mesh.Indices[tri]))
			v1 := mesh.Vertex(int(mesh.Indices[tri+1]))
			v2 := mesh.Vertex(int(mesh.Indices[tri+2]))
			n := v1.Sub(v0).Cross(v2.Sub(v0))
			centroid := v0.Add(v1).Add(v2)
			if n.Dot(centroid) <= 0 {
				t.Fatalf("face %s: triangle %d faces inward", face.Name, tri/3)
			}
		}
	}
	if inverted == 0 || inverted == len(Faces) {
		t.Errorf("Expected a mix of inverted and regular faces, got %d inverted", inverted)
	}
}

func TestFacesCoverCube(t *testing.T) {
	seen := map[mgl32.Vec3]bool{}
	for _, face := range Faces {
		seen[face.Rotate(rootOffset)] = true
	}
	if len(seen) != 6 {
		t.Errorf("Expected six distinct face centres, got %d", len(seen))
	}
}

func TestChildTilesShareParentCorners(t *testing.T) {
	face := Faces[4]
	parent := BuildTile(1, face, rootOffset, 2)
	child := BuildTile(0.5, face, mgl32.Vec3{0.5, 0.5, 1}, 2)

	// last vertex is the (+u,+v) corner in both grids
	p := parent.Vertex(parent.VertexCount() - 1)
	c := child.Vertex(child.VertexCount() - 1)
	if p.Sub(c).Len() > 1e-6 {
		t.Errorf("Corner mismatch: parent %v, child %v", p, c)
	}
}

func TestCubeToSphereCorner(t *testing.T) {
	p := CubeToSphere(mgl32.Vec3{1, 1, 1})
	want := float32(1 / math.Sqrt(3))
	for i := 0; i < 3; i++ {
		if math.Abs(float64(p[i]-want)) > 1e-6 {
			t.Errorf("Component %d: got %f, want %f", i, p[i], want)
		}
	}
}

func TestDisplaceUsesHeightFunction(t *testing.T) {
	mesh := BuildTile(1, Faces[2], rootOffset, 4)
	heights := Displace(mesh, func(mgl32.Vec3) float32 { return 0.25 })

	if len(heights) != mesh.VertexCount() {
		t.Fatalf("Expected %d heights, got %d", mesh.VertexCount(), len(heights))
	}
	for i := 0; i < mesh.VertexCount(); i++ {
		if l := mesh.Vertex(i).Len(); math.Abs(float64(l)-1.25) > 1e-5 {
			t.Fatalf("Vertex %d has length %f, expected 1.25", i, l)
		}
	}
}

func TestDisplaceWritesFlatNormals(t *testing.T) {
	mesh := BuildTile(1, Faces[1], rootOffset, 3)
	Displace(mesh, func(dir mgl32.Vec3) float32 { return 0.1 * dir[1] })

	// the last triangle written owns all three of its vertices' normals
	last := len(mesh.Indices) - 3
	i0, i1, i2 := int(mesh.Indices[last]), int(mesh.Indices[last+1]), int(mesh.Indices[last+2])
	v0 := mesh.Vertex(i0)
	want := mesh.Vertex(i1).Sub(v0).Cross(mesh.Vertex(i2).Sub(v0)).Normalize()
	for _, idx := range []int{i0, i1, i2} {
		if mesh.Normal(idx).Sub(want).Len() > 1e-5 {
			t.Errorf("Vertex %d normal %v, expected face normal %v", idx, mesh.Normal(idx), want)
		}
	}
	for i := 0; i < mesh.VertexCount(); i++ {
		if l := mesh.Normal(i).Len(); math.Abs(float64(l)-1) > 1e-4 {
			t.Fatalf("Normal %d is not unit length: %f", i, l)
		}
	}
}

func buildDisplaced(t *testing.T, seed int64) []byte {
	t.Helper()
	field, err := noise.NewField(noise.DefaultParams(seed))
	if err != nil {
		t.Fatal(err)
	}
	mesh := BuildTile(0.5, Faces[3], mgl32.Vec3{-0.5, 0.5, 1}, 16)
	Displace(mesh, field.Height)
	data, err := renderer.EncodeMeshBinary(mesh)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestDisplacedTileIsReproducible(t *testing.T) {
	a := buildDisplaced(t, 43932)
	b := buildDisplaced(t, 43932)
	if !bytes.Equal(a, b) {
		t.Error("Two builds with identical inputs produced different buffers")
	}
	if bytes.Equal(a, buildDisplaced(t, 94333)) {
		t.Error("Different seeds should produce different terrain")
	}
}

func TestColorizeBands(t *testing.T) {
	palette := Palette{
		Colors: [5][3]float32{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1},
		},
		Thresholds: [4]float32{-0.0005, 0.0008, 0.019, 0.022},
	}
	mesh := renderer.NewMesh(3, 0)
	Colorize(mesh, []float32{-0.01, 0.001, 0.5}, palette)

	want := []float32{0, 0, 0, 0, 1, 0, 1, 1, 1}
	for i, v := range want {
		if mesh.Colors[i] != v {
			t.Errorf("Colour component %d: got %f, want %f", i, mesh.Colors[i], v)
		}
	}
	if palette.Band(-0.0005) != 0 {
		t.Error("A height equal to a threshold should stay in the lower band")
	}
}

func TestSphereUVRange(t *testing.T) {
	mesh := BuildTile(1, Faces[5], rootOffset, 6)
	for i := 0; i < mesh.VertexCount(); i++ {
		u, v := mesh.TextureCoords[i*2], mesh.TextureCoords[i*2+1]
		if u < 0 || u > 1 || v < 0 || v > 1 {
			t.Fatalf("UV %d out of range: (%f, %f)", i, u, v)
		}
	}
}

func TestUVsFollowVertexPositions(t *testing.T) {
	mesh := BuildTile(0.5, Faces[0], mgl32.Vec3{0.5, -0.5, 1}, 4)
	check := func(stage string) {
		for i := 0; i < mesh.VertexCount(); i++ {
			u, v := SphereUV(mesh.Vertex(i))
			if mesh.TextureCoords[i*2] != u || mesh.TextureCoords[i*2+1] != v {
				t.Fatalf("%s: vertex %d has UV (%f, %f), expected (%f, %f)",
					stage, i, mesh.TextureCoords[i*2], mesh.TextureCoords[i*2+1], u, v)
			}
		}
	}
	check("build")
	Displace(mesh, func(dir mgl32.Vec3) float32 { return 0.2 * dir[0] })
	check("displace")
}
