package nearfield

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera describes the user's viewpoint for the visibility veto.
// Forward must be unit length. VFOV is the vertical field of view in
// degrees.
type Camera struct {
	Position mgl32.Vec3
	Forward  mgl32.Vec3
	VFOV     float32
}

// CameraProvider resolves the active camera each frame. Returning nil
// means no camera is available this frame.
type CameraProvider func() *Camera

// InFOV reports whether any part of the collider's bounding sphere is
// inside the view cone: apex at the camera position, axis along
// Forward, half-angle VFOV/2.
func (cam *Camera) InFOV(c *Collider) bool {
	if cam == nil || c == nil {
		return false
	}
	center, radius := c.BoundingSphere()
	return coneIntersectsSphere(cam.Position, cam.Forward, mgl32.DegToRad(cam.VFOV)*0.5, center, radius)
}

func coneIntersectsSphere(apex, axis mgl32.Vec3, halfAngle float32, center mgl32.Vec3, radius float32) bool {
	sin := float32(math.Sin(float64(halfAngle)))
	cos := float32(math.Cos(float64(halfAngle)))

	if sin <= 0 {
		// Degenerate cone: only the axis ray remains.
		d := center.Sub(apex)
		along := d.Dot(axis)
		if along+radius < 0 {
			return false
		}
		perp := d.Sub(axis.Mul(along))
		return perp.Dot(perp) <= radius*radius
	}

	// Eberly's test: check the center against the cone expanded
	// outward by the sphere radius, then handle the region behind the
	// apex where only a sphere containing the apex still intersects.
	u := apex.Sub(axis.Mul(radius / sin))
	d := center.Sub(u)
	dsqr := d.Dot(d)
	e := d.Dot(axis)
	if e > 0 && e*e >= dsqr*cos*cos {
		d = center.Sub(apex)
		dsqr = d.Dot(d)
		e = -d.Dot(axis)
		if e > 0 && e*e >= dsqr*sin*sin {
			return dsqr <= radius*radius
		}
		return true
	}
	return false
}
