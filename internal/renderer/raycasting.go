package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a half-line. Direction need not be normalized; hit distances are in
// units of its length.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point t direction-lengths along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Hit is the closest intersection found by a ray query.
type Hit struct {
	Model    *Model
	Distance float32
	Point    mgl32.Vec3
	Triangle int
}

// RayIntersectSphere returns the nearest non-negative t at which the ray
// meets the sphere. An origin inside the sphere hits the far wall.
func RayIntersectSphere(ray Ray, sphereCenter mgl32.Vec3, radius float32) (bool, float32, mgl32.Vec3) {
	oc := ray.Origin.Sub(sphereCenter)
	a := ray.Direction.Dot(ray.Direction)
	b := 2.0 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius

	discriminant := b*b - 4*a*c
	if a == 0 || discriminant < 0 {
		return false, 0, mgl32.Vec3{}
	}

	sqrtDisc := float32(math.Sqrt(float64(discriminant)))
	t1 := (-b - sqrtDisc) / (2 * a)
	t2 := (-b + sqrtDisc) / (2 * a)

	var t float32
	switch {
	case t1 >= 0:
		t = t1
	case t2 >= 0:
		t = t2
	default:
		// both behind the origin
		return false, 0, mgl32.Vec3{}
	}
	return true, t, ray.At(t)
}

// RayIntersectTriangle is Möller-Trumbore. Both windings count as a hit.
func RayIntersectTriangle(ray Ray, v0, v1, v2 mgl32.Vec3) (bool, float32, mgl32.Vec3) {
	const epsilon = 0.0000001

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return false, 0, mgl32.Vec3{} // parallel
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return false, 0, mgl32.Vec3{}
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return false, 0, mgl32.Vec3{}
	}

	t := f * edge2.Dot(q)
	if t > epsilon {
		return true, t, ray.At(t)
	}
	return false, 0, mgl32.Vec3{}
}

// RayIntersectModel rejects on the bounding sphere first, then tests every
// triangle of the mesh in world space. Models without a fitted sphere skip
// the early out.
func RayIntersectModel(ray Ray, model *Model) (Hit, bool) {
	if model == nil || model.Mesh == nil {
		return Hit{}, false
	}
	if model.BoundingSphereRadius > 0 {
		if ok, _, _ := RayIntersectSphere(ray, model.BoundingSphereCenter, model.BoundingSphereRadius); !ok {
			return Hit{}, false
		}
	}

	mesh := model.Mesh
	best := Hit{Model: model, Distance: float32(math.Inf(1)), Triangle: -1}
	world := func(i uint32) mgl32.Vec3 {
		return ApplyModelTransformation(mesh.Vertex(int(i)), model.Position, model.Scale, model.Rotation)
	}
	for tri := 0; tri+2 < len(mesh.Indices); tri += 3 {
		ok, t, p := RayIntersectTriangle(ray, world(mesh.Indices[tri]), world(mesh.Indices[tri+1]), world(mesh.Indices[tri+2]))
		if ok && t < best.Distance {
			best.Distance, best.Point, best.Triangle = t, p, tri/3
		}
	}
	return best, best.Triangle >= 0
}

// Raycast returns the nearest hit among models.
func Raycast(ray Ray, models []*Model) (Hit, bool) {
	var (
		best  Hit
		found bool
	)
	for _, m := range models {
		if hit, ok := RayIntersectModel(ray, m); ok && (!found || hit.Distance < best.Distance) {
			best, found = hit, true
		}
	}
	return best, found
}
