package nearfield

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// ProximityQuery owns one fixed collider buffer and one radius and
// answers "is there an eligible grabbable within radius of this
// point". The buffer is allocated once at construction and overwritten
// in place by every call, so a query never allocates per frame.
//
// This is a boolean gate, not a closest-object search: the scan takes
// the first qualifying collider in overlap order and never compares
// distances.
type ProximityQuery struct {
	name   string
	radius float32
	buffer []*Collider
	count  int
	target *Collider
}

// NewProximityQuery builds a query with a fixed buffer capacity and an
// immutable radius. capacity < 1 or radius < 0 fails construction.
func NewProximityQuery(name string, capacity int, radius float32) (*ProximityQuery, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("proximity query %q: capacity must be at least 1, got %d", name, capacity)
	}
	if radius < 0 {
		return nil, fmt.Errorf("proximity query %q: radius must not be negative, got %v", name, radius)
	}
	return &ProximityQuery{
		name:   name,
		radius: radius,
		buffer: make([]*Collider, capacity),
	}, nil
}

// Query runs one overlap test at point and scans the results for the
// first eligible grabbable. With visibilityFilter set and a camera
// available, colliders outside the view cone are skipped but the scan
// continues: a later, visible grabbable may still qualify. With the
// filter set but no camera, the veto is skipped for this call.
//
// Reports whether a target was found; the same answer stays readable
// through HasTarget and Target until the next call.
func (q *ProximityQuery) Query(space Overlapper, point mgl32.Vec3, mask LayerMask, policy TriggerPolicy, visibilityFilter bool, cameras CameraProvider) bool {
	q.target = nil
	if space == nil {
		q.count = 0
		return false
	}

	q.count = space.OverlapSphere(point, q.radius, q.buffer, mask, policy)
	if q.count == len(q.buffer) {
		// A full buffer may have truncated the overlap: anything past
		// capacity is invisible to this query until the buffer is
		// sized up in configuration.
		log.WithFields(log.Fields{
			"query":    q.name,
			"count":    q.count,
			"capacity": len(q.buffer),
		}).Warn("proximity query buffer saturated, results may be truncated")
	}

	var cam *Camera
	if visibilityFilter && cameras != nil {
		cam = cameras()
	}

	for i := 0; i < q.count; i++ {
		c := q.buffer[i]
		if c == nil || !c.Grabbable {
			continue
		}
		if cam != nil && !cam.InFOV(c) {
			continue
		}
		q.target = c
		return true
	}
	return false
}

// HasTarget reports whether the most recent Query found a grabbable.
// It never recomputes.
func (q *ProximityQuery) HasTarget() bool {
	return q.target != nil
}

// Target returns the grabbable found by the most recent Query, or nil.
func (q *ProximityQuery) Target() *Collider {
	return q.target
}

// ResultCount returns how many colliders the most recent overlap
// wrote into the buffer.
func (q *ProximityQuery) ResultCount() int {
	return q.count
}

func (q *ProximityQuery) Name() string {
	return q.name
}

func (q *ProximityQuery) Radius() float32 {
	return q.radius
}

func (q *ProximityQuery) Capacity() int {
	return len(q.buffer)
}
