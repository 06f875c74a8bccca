package nearfield

import "github.com/go-gl/mathgl/mgl32"

// TriggerPolicy controls whether trigger colliders participate in an
// overlap query.
type TriggerPolicy uint8

const (
	TriggersInclude TriggerPolicy = iota
	TriggersExclude
)

// Overlapper is the broad-phase primitive proximity queries run
// against: write up to len(out) colliders overlapping the sphere into
// out and report how many were written. Implementations must not
// allocate per call and must return results in a stable order for an
// unchanged space.
type Overlapper interface {
	OverlapSphere(center mgl32.Vec3, radius float32, out []*Collider, mask LayerMask, policy TriggerPolicy) int
}

// Space is a registration-ordered collider registry with a linear
// broad-phase. Overlap results come back in registration order.
type Space struct {
	colliders []*Collider
}

func NewSpace() *Space {
	return &Space{}
}

// Add registers a collider. Nil colliders are ignored.
func (s *Space) Add(c *Collider) {
	if c == nil {
		return
	}
	s.colliders = append(s.colliders, c)
}

// Remove unregisters a collider, preserving the order of the rest.
func (s *Space) Remove(c *Collider) {
	idx := -1
	for i, e := range s.colliders {
		if e == c {
			idx = i
		}
	}
	if idx != -1 {
		s.colliders = append(s.colliders[:idx], s.colliders[idx+1:]...)
	}
}

func (s *Space) Len() int {
	return len(s.colliders)
}

// OverlapSphere implements Overlapper. Candidates failing the mask,
// the trigger policy, or the sphere test are skipped; the scan stops
// once out is full, so a full buffer may mean truncated results.
func (s *Space) OverlapSphere(center mgl32.Vec3, radius float32, out []*Collider, mask LayerMask, policy TriggerPolicy) int {
	n := 0
	for _, c := range s.colliders {
		if n == len(out) {
			break
		}
		if !mask.Contains(c.Layer) {
			continue
		}
		if policy == TriggersExclude && c.Trigger {
			continue
		}
		if !c.OverlapsSphere(center, radius) {
			continue
		}
		out[n] = c
		n++
	}
	return n
}
