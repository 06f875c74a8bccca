package nearfield

import "github.com/go-gl/mathgl/mgl32"

// Joint identifies a tracked hand joint used for grasp resolution.
type Joint uint8

const (
	JointThumbTip Joint = iota
	JointIndexTip
)

// Pose is a tracked position plus aim direction. Forward must be unit
// length.
type Pose struct {
	Position mgl32.Vec3
	Forward  mgl32.Vec3
}

// JointProvider looks up tracked joint positions. ok is false while
// the joint is not currently tracked.
type JointProvider interface {
	Joint(j Joint) (mgl32.Vec3, bool)
}

// PoseProvider reports a source's tracked origin pose. ok is false
// while the source is not tracked.
type PoseProvider func() (Pose, bool)

// InputSource is one tracked input driving a pointer.
type InputSource interface {
	// GraspPoint resolves the world-space point proximity queries run
	// from this frame. ok is false when the source cannot produce one.
	GraspPoint() (mgl32.Vec3, bool)
	// Pose reports the source origin, used for the far-ray handoff.
	Pose() (Pose, bool)
}

// ArticulatedHand resolves its grasp point as the midpoint between the
// index and thumb tips. Both joints must be tracked; a hand never
// falls back to its origin pose.
type ArticulatedHand struct {
	Joints JointProvider
	Origin PoseProvider
}

func (h ArticulatedHand) GraspPoint() (mgl32.Vec3, bool) {
	if h.Joints == nil {
		return mgl32.Vec3{}, false
	}
	index, ok := h.Joints.Joint(JointIndexTip)
	if !ok {
		return mgl32.Vec3{}, false
	}
	thumb, ok := h.Joints.Joint(JointThumbTip)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return index.Add(thumb).Mul(0.5), true
}

func (h ArticulatedHand) Pose() (Pose, bool) {
	if h.Origin == nil {
		return Pose{}, false
	}
	return h.Origin()
}

// Controller is any non-hand source. Its grasp point is its tracked
// origin position.
type Controller struct {
	Origin PoseProvider
}

func (c Controller) GraspPoint() (mgl32.Vec3, bool) {
	if c.Origin == nil {
		return mgl32.Vec3{}, false
	}
	p, ok := c.Origin()
	return p.Position, ok
}

func (c Controller) Pose() (Pose, bool) {
	if c.Origin == nil {
		return Pose{}, false
	}
	return c.Origin()
}
