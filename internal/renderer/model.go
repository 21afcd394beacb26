package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMaterial provides a basic material to fall back on
var DefaultMaterial = &Material{
	Name:          "default",
	DiffuseColor:  [3]float32{1.0, 1.0, 1.0},
	SpecularColor: [3]float32{1.0, 1.0, 1.0},
	Shininess:     32.0,
	Alpha:         1.0,
}

// Model is the handle the external scene graph attaches for one drawable piece of
// geometry: a transform, the CPU mesh and, once uploaded, the GPU buffer handle.
type Model struct {
	// HOT DATA - read every frame by the scene graph
	ModelMatrix mgl32.Mat4
	Position    mgl32.Vec3
	Scale       mgl32.Vec3
	Rotation    mgl32.Quat
	Material    *Material
	VAO         uint32 // GPU handle, 0 until uploaded
	NeedsUpload bool

	// MEDIUM DATA
	BoundingSphereCenter mgl32.Vec3
	BoundingSphereRadius float32
	Metadata             map[string]interface{}

	// COLD DATA
	Id   int
	Name string
	Mesh *Mesh
}

type Material struct {
	DiffuseColor  [3]float32
	SpecularColor [3]float32
	Shininess     float32
	Alpha         float32 // 1.0 = opaque
	Name          string
}

// NewModel wraps mesh with an identity transform.
func NewModel(name string, mesh *Mesh) *Model {
	m := &Model{
		Name:     name,
		Mesh:     mesh,
		Position: mgl32.Vec3{0, 0, 0},
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.QuatIdent(),
		Material: DefaultMaterial,
	}
	m.updateModelMatrix()
	return m
}

// SetPosition moves the model. A fitted bounding sphere moves with it.
func (m *Model) SetPosition(x, y, z float32) {
	p := mgl32.Vec3{x, y, z}
	if m.BoundingSphereRadius > 0 {
		m.BoundingSphereCenter = m.BoundingSphereCenter.Add(p.Sub(m.Position))
	}
	m.Position = p
	m.updateModelMatrix()
}

func (m *Model) SetScale(x, y, z float32) {
	m.Scale = mgl32.Vec3{x, y, z}
	m.updateModelMatrix()
}

// Uploaded reports whether a GPU buffer handle has been assigned.
func (m *Model) Uploaded() bool {
	return m.VAO != 0
}

func (m *Model) SetAlpha(alpha float32) {
	m.ensureMaterial()
	m.Material.Alpha = alpha
}

func (m *Model) SetDiffuseColor(r, g, b float32) {
	m.ensureMaterial()
	m.Material.DiffuseColor = [3]float32{r, g, b}
}

// ensureMaterial gives the model its own material instead of sharing DefaultMaterial
func (m *Model) ensureMaterial() {
	if m.Material == nil || m.Material == DefaultMaterial {
		mat := *DefaultMaterial
		m.Material = &mat
	}
}

// CalculateBoundingSphere fits a sphere around the transformed mesh vertices.
func (m *Model) CalculateBoundingSphere() {
	if m.Mesh == nil || m.Mesh.VertexCount() == 0 {
		return
	}
	numVertices := m.Mesh.VertexCount()

	var center mgl32.Vec3
	for i := 0; i < numVertices; i++ {
		center = center.Add(ApplyModelTransformation(m.Mesh.Vertex(i), m.Position, m.Scale, m.Rotation))
	}
	center = center.Mul(1.0 / float32(numVertices))

	var maxDistanceSq float32
	for i := 0; i < numVertices; i++ {
		v := ApplyModelTransformation(m.Mesh.Vertex(i), m.Position, m.Scale, m.Rotation)
		if d := v.Sub(center).LenSqr(); d > maxDistanceSq {
			maxDistanceSq = d
		}
	}

	m.BoundingSphereCenter = center
	m.BoundingSphereRadius = float32(math.Sqrt(float64(maxDistanceSq)))
}

func (m *Model) updateModelMatrix() {
	// T * R * S
	scaleMatrix := mgl32.Scale3D(m.Scale[0], m.Scale[1], m.Scale[2])
	rotationMatrix := m.Rotation.Mat4()
	translationMatrix := mgl32.Translate3D(m.Position[0], m.Position[1], m.Position[2])
	m.ModelMatrix = translationMatrix.Mul4(rotationMatrix).Mul4(scaleMatrix)
}

func ApplyModelTransformation(vertex, position, scale mgl32.Vec3, rotation mgl32.Quat) mgl32.Vec3 {
	scaled := mgl32.Vec3{vertex[0] * scale[0], vertex[1] * scale[1], vertex[2] * scale[2]}
	return rotation.Rotate(scaled).Add(position)
}
