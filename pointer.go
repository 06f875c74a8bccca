package nearfield

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// PointerSettings configures a ProximityPointer.
type PointerSettings struct {
	Name string

	// InteractionRadius is the grab-enable radius. NearMargin extends
	// it for the near-object signal: the near radius is
	// InteractionRadius + NearMargin, so "near" always reads true at
	// or before "grab enabled" does.
	InteractionRadius float32
	NearMargin        float32

	// BufferSize caps how many colliders one overlap can return. Both
	// radius tiers use the same capacity.
	BufferSize int

	// LayerPriority is evaluated in order each frame; the first mask
	// that yields a target wins and later masks are not queried.
	LayerPriority []LayerMask

	TriggerPolicy    TriggerPolicy
	VisibilityFilter bool
}

// Ray is the segment handed to the far-pointer raycast that runs
// alongside near interaction.
type Ray struct {
	Origin mgl32.Vec3
	End    mgl32.Vec3
}

// ProximityPointer drives near-interaction state for one input source.
// Update, once per frame, resolves the source's grasp point and runs
// the two radius-tiered proximity queries; everything downstream reads
// the cached results with no recomputation.
//
// A pointer is single-threaded by contract: Update and all readers
// belong to the frame loop.
type ProximityPointer struct {
	settings PointerSettings

	source  InputSource
	space   Overlapper
	cameras CameraProvider

	near *ProximityQuery
	grab *ProximityQuery

	focusLocked bool
	enabled     bool

	grasp      mgl32.Vec3
	graspValid bool
	ray        Ray
}

// NewProximityPointer validates settings and allocates both query
// buffers up front. Configuration errors fail construction; a pointer
// never runs half-initialized.
func NewProximityPointer(settings PointerSettings, source InputSource, space Overlapper, cameras CameraProvider) (*ProximityPointer, error) {
	if source == nil {
		return nil, fmt.Errorf("pointer %q: input source is required", settings.Name)
	}
	if settings.NearMargin < 0 {
		return nil, fmt.Errorf("pointer %q: near margin must not be negative, got %v", settings.Name, settings.NearMargin)
	}
	near, err := NewProximityQuery(settings.Name+"/near", settings.BufferSize, settings.InteractionRadius+settings.NearMargin)
	if err != nil {
		return nil, err
	}
	grab, err := NewProximityQuery(settings.Name+"/grab", settings.BufferSize, settings.InteractionRadius)
	if err != nil {
		return nil, err
	}
	if len(settings.LayerPriority) == 0 {
		log.WithField("pointer", settings.Name).Warn("pointer has an empty layer priority and will never find a target")
	}
	return &ProximityPointer{
		settings: settings,
		source:   source,
		space:    space,
		cameras:  cameras,
		near:     near,
		grab:     grab,
		enabled:  true,
	}, nil
}

// Update runs the per-frame query pass: resolve the grasp point, run
// the near tier, run the grab tier, refresh the far ray. Call it
// exactly once per frame before anything reads the derived state.
//
// When the grasp point cannot be resolved the whole pass is skipped
// and every cached result keeps its previous frame's value.
func (p *ProximityPointer) Update() {
	point, ok := p.source.GraspPoint()
	if !ok {
		return
	}
	p.grasp = point
	p.graspValid = true

	p.runTier(p.near, point)
	p.runTier(p.grab, point)

	if pose, ok := p.source.Pose(); ok {
		p.ray = Ray{Origin: point, End: point.Add(pose.Forward.Mul(p.grab.Radius()))}
	} else {
		p.ray = Ray{Origin: point, End: point}
	}
}

func (p *ProximityPointer) runTier(q *ProximityQuery, point mgl32.Vec3) {
	for _, mask := range p.settings.LayerPriority {
		if q.Query(p.space, point, mask, p.settings.TriggerPolicy, p.settings.VisibilityFilter, p.cameras) {
			return
		}
	}
}

// IsNearObject reports whether the most recent frame found a grabbable
// within the near radius. Cursor and mode logic keys off this.
func (p *ProximityPointer) IsNearObject() bool {
	return p.near.HasTarget()
}

// IsInteractionEnabled reports whether grasp input is currently valid:
// always while focus is locked, otherwise only while the pointer is
// enabled and a grabbable sits within the interaction radius.
func (p *ProximityPointer) IsInteractionEnabled() bool {
	if p.focusLocked {
		return true
	}
	return p.enabled && p.grab.HasTarget()
}

// SetFocusLocked pins interaction on while a grab is in progress, even
// as the hand drifts out of range mid-manipulation.
func (p *ProximityPointer) SetFocusLocked(locked bool) {
	p.focusLocked = locked
}

func (p *ProximityPointer) FocusLocked() bool {
	return p.focusLocked
}

// SetEnabled sets the externally owned base interaction gate.
func (p *ProximityPointer) SetEnabled(enabled bool) {
	p.enabled = enabled
}

func (p *ProximityPointer) Enabled() bool {
	return p.enabled
}

// NearTarget returns the collider behind IsNearObject, or nil.
func (p *ProximityPointer) NearTarget() *Collider {
	return p.near.Target()
}

// GrabTarget returns the collider within the interaction radius, or
// nil.
func (p *ProximityPointer) GrabTarget() *Collider {
	return p.grab.Target()
}

// GraspPoint returns the last successfully resolved grasp point. ok is
// false until the first successful resolution.
func (p *ProximityPointer) GraspPoint() (mgl32.Vec3, bool) {
	return p.grasp, p.graspValid
}

// Ray returns the far-pointer segment from the last resolved frame.
func (p *ProximityPointer) Ray() Ray {
	return p.ray
}

func (p *ProximityPointer) Name() string {
	return p.settings.Name
}

func (p *ProximityPointer) NearRadius() float32 {
	return p.near.Radius()
}

func (p *ProximityPointer) InteractionRadius() float32 {
	return p.grab.Radius()
}
