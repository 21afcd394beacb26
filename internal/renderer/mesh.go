package renderer

import "github.com/go-gl/mathgl/mgl32"

// Mesh is CPU-side geometry ready for upload. All attribute slices are flat:
// three floats per vertex for Vertices, Normals and Colors, two for TextureCoords.
type Mesh struct {
	Vertices      []float32
	Normals       []float32
	TextureCoords []float32
	Colors        []float32 // optional
	Indices       []uint32
}

func NewMesh(vertexCount, indexCount int) *Mesh {
	return &Mesh{
		Vertices:      make([]float32, vertexCount*3),
		Normals:       make([]float32, vertexCount*3),
		TextureCoords: make([]float32, vertexCount*2),
		Indices:       make([]uint32, 0, indexCount),
	}
}

func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

func (m *Mesh) Vertex(i int) mgl32.Vec3 {
	return mgl32.Vec3{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]}
}

func (m *Mesh) SetVertex(i int, v mgl32.Vec3) {
	m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2] = v[0], v[1], v[2]
}

func (m *Mesh) Normal(i int) mgl32.Vec3 {
	return mgl32.Vec3{m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2]}
}

func (m *Mesh) SetNormal(i int, n mgl32.Vec3) {
	m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2] = n[0], n[1], n[2]
}

func (m *Mesh) SetUV(i int, u, v float32) {
	m.TextureCoords[i*2], m.TextureCoords[i*2+1] = u, v
}

// InterleavedData packs position (3), uv (2) and normal (3) per vertex, the layout
// the vertex shaders expect.
func (m *Mesh) InterleavedData() []float32 {
	n := m.VertexCount()
	data := make([]float32, 0, n*8)
	for i := 0; i < n; i++ {
		data = append(data, m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2])
		if len(m.TextureCoords) >= (i+1)*2 {
			data = append(data, m.TextureCoords[i*2], m.TextureCoords[i*2+1])
		} else {
			data = append(data, 0, 0)
		}
		if len(m.Normals) >= (i+1)*3 {
			data = append(data, m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2])
		} else {
			data = append(data, 0, 1, 0)
		}
	}
	return data
}
