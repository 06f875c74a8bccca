package nearfield

import "github.com/go-gl/mathgl/mgl32"

// Shape selects a collider's geometry.
type Shape uint8

const (
	ShapeSphere Shape = iota
	ShapeBox
)

// Collider is a proximity volume registered with a Space. Grabbable
// marks it as a valid target for near interaction; Trigger marks it as
// a sensor volume, which queries may include or exclude per their
// TriggerPolicy.
type Collider struct {
	Name      string
	Layer     int
	Trigger   bool
	Grabbable bool

	Shape       Shape
	Center      mgl32.Vec3
	Radius      float32
	HalfExtents mgl32.Vec3
}

// NewSphereCollider builds a sphere volume on layer 0.
func NewSphereCollider(name string, center mgl32.Vec3, radius float32) *Collider {
	return &Collider{Name: name, Shape: ShapeSphere, Center: center, Radius: radius}
}

// NewBoxCollider builds an axis-aligned box volume on layer 0.
func NewBoxCollider(name string, center mgl32.Vec3, halfExtents mgl32.Vec3) *Collider {
	return &Collider{Name: name, Shape: ShapeBox, Center: center, HalfExtents: halfExtents}
}

// OverlapsSphere reports whether the collider intersects the sphere at
// center with the given radius. Surface contact counts as overlap.
func (c *Collider) OverlapsSphere(center mgl32.Vec3, radius float32) bool {
	switch c.Shape {
	case ShapeBox:
		p := center
		min := c.Center.Sub(c.HalfExtents)
		max := c.Center.Add(c.HalfExtents)
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				p[i] = min[i]
			}
			if p[i] > max[i] {
				p[i] = max[i]
			}
		}
		d := center.Sub(p)
		return d.Dot(d) <= radius*radius
	default:
		d := center.Sub(c.Center)
		r := radius + c.Radius
		return d.Dot(d) <= r*r
	}
}

// BoundingSphere returns a sphere enclosing the collider. The camera
// visibility test runs against this, so a partially visible collider
// still counts as visible.
func (c *Collider) BoundingSphere() (mgl32.Vec3, float32) {
	if c.Shape == ShapeBox {
		return c.Center, c.HalfExtents.Len()
	}
	return c.Center, c.Radius
}
