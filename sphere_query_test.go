package nearfield

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func testSpace(colliders ...*Collider) *Space {
	s := NewSpace()
	for _, c := range colliders {
		s.Add(c)
	}
	return s
}

func grabbableSphere(name string, center mgl32.Vec3, radius float32) *Collider {
	c := NewSphereCollider(name, center, radius)
	c.Grabbable = true
	return c
}

func TestNewProximityQueryValidation(t *testing.T) {
	var tests = []struct {
		name     string
		capacity int
		radius   float32
		wantErr  bool
	}{
		{"valid", 8, 0.1, false},
		{"zero radius is a contact query", 1, 0, false},
		{"zero capacity", 0, 0.1, true},
		{"negative capacity", -3, 0.1, true},
		{"negative radius", 8, -0.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewProximityQuery("test", tt.capacity, tt.radius)
			if (err != nil) != tt.wantErr {
				t.Fatalf("got err %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && q.Capacity() != tt.capacity {
				t.Errorf("got capacity %d, want %d", q.Capacity(), tt.capacity)
			}
		})
	}
}

func TestProximityQueryFindsGrabbable(t *testing.T) {
	mug := grabbableSphere("mug", mgl32.Vec3{0.05, 0, 0}, 0.02)
	space := testSpace(mug)
	q, err := NewProximityQuery("grab", 8, 0.1)
	if err != nil {
		t.Fatal(err)
	}

	if !q.Query(space, mgl32.Vec3{}, AllLayers, TriggersInclude, false, nil) {
		t.Fatal("expected a target within radius")
	}
	if q.Target() != mug {
		t.Errorf("got %+v, want mug", q.Target())
	}
	if !q.HasTarget() {
		t.Error("HasTarget should agree with the Query result")
	}

	if q.Query(space, mgl32.Vec3{0, 5, 0}, AllLayers, TriggersInclude, false, nil) {
		t.Error("expected no target far away")
	}
	if q.Target() != nil {
		t.Errorf("a miss should clear the target, got %+v", q.Target())
	}
	if q.ResultCount() != 0 {
		t.Errorf("got %d results, want 0", q.ResultCount())
	}
}

func TestProximityQuerySkipsNonGrabbable(t *testing.T) {
	wall := NewSphereCollider("wall", mgl32.Vec3{0.01, 0, 0}, 0.05)
	mug := grabbableSphere("mug", mgl32.Vec3{0.08, 0, 0}, 0.02)
	space := testSpace(wall, mug)

	q, err := NewProximityQuery("grab", 8, 0.2)
	if err != nil {
		t.Fatal(err)
	}
	if !q.Query(space, mgl32.Vec3{}, AllLayers, TriggersInclude, false, nil) {
		t.Fatal("expected the grabbable behind the wall")
	}
	if q.Target() != mug {
		t.Errorf("got %q, want mug", q.Target().Name)
	}
	if q.ResultCount() != 2 {
		t.Errorf("got %d results, want both colliders in the buffer", q.ResultCount())
	}
}

func TestProximityQueryTakesFirstMatchNotClosest(t *testing.T) {
	farther := grabbableSphere("farther", mgl32.Vec3{0.09, 0, 0}, 0.01)
	closer := grabbableSphere("closer", mgl32.Vec3{0.01, 0, 0}, 0.01)
	space := testSpace(farther, closer)

	q, err := NewProximityQuery("grab", 8, 0.2)
	if err != nil {
		t.Fatal(err)
	}
	if !q.Query(space, mgl32.Vec3{}, AllLayers, TriggersInclude, false, nil) {
		t.Fatal("expected a target")
	}
	if q.Target() != farther {
		t.Errorf("got %q, want the first registered match regardless of distance", q.Target().Name)
	}
}

func TestProximityQueryVisibilityVeto(t *testing.T) {
	cam := &Camera{Position: mgl32.Vec3{0, 0, -1}, Forward: mgl32.Vec3{0, 0, 1}, VFOV: 40}
	cameras := func() *Camera { return cam }

	hidden := grabbableSphere("hidden", mgl32.Vec3{0, 0.9, 0}, 0.02)
	visible := grabbableSphere("visible", mgl32.Vec3{0.1, 0, 0}, 0.02)
	space := testSpace(hidden, visible)

	q, err := NewProximityQuery("grab", 8, 1)
	if err != nil {
		t.Fatal(err)
	}

	// filter off: first match wins even out of view
	if !q.Query(space, mgl32.Vec3{}, AllLayers, TriggersInclude, false, cameras) {
		t.Fatal("expected a target with the filter off")
	}
	if q.Target() != hidden {
		t.Errorf("got %q, want hidden", q.Target().Name)
	}

	// filter on: the veto skips it and the scan continues
	if !q.Query(space, mgl32.Vec3{}, AllLayers, TriggersInclude, true, cameras) {
		t.Fatal("expected the scan to continue to a visible target")
	}
	if q.Target() != visible {
		t.Errorf("got %q, want visible", q.Target().Name)
	}

	// filter on with no camera this frame: veto is skipped
	if !q.Query(space, mgl32.Vec3{}, AllLayers, TriggersInclude, true, func() *Camera { return nil }) {
		t.Fatal("expected a target with no camera available")
	}
	if q.Target() != hidden {
		t.Errorf("got %q, want hidden when the veto cannot run", q.Target().Name)
	}

	// nil provider behaves the same
	if !q.Query(space, mgl32.Vec3{}, AllLayers, TriggersInclude, true, nil) {
		t.Fatal("expected a target with no camera provider")
	}
}

func TestProximityQuerySaturationDiagnostic(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	space := testSpace(
		grabbableSphere("a", mgl32.Vec3{}, 0.01),
		grabbableSphere("b", mgl32.Vec3{}, 0.01),
		grabbableSphere("c", mgl32.Vec3{}, 0.01),
	)
	q, err := NewProximityQuery("grab", 2, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	if !q.Query(space, mgl32.Vec3{}, AllLayers, TriggersInclude, false, nil) {
		t.Fatal("a saturated query should still return its partial results")
	}
	if q.ResultCount() != 2 {
		t.Errorf("got %d results, want the buffer capacity 2", q.ResultCount())
	}

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == log.WarnLevel {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("got %d warnings, want exactly 1 per saturated call", warnings)
	}

	hook.Reset()
	roomy, err := NewProximityQuery("grab", 8, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	roomy.Query(space, mgl32.Vec3{}, AllLayers, TriggersInclude, false, nil)
	for _, e := range hook.AllEntries() {
		if e.Level == log.WarnLevel {
			t.Errorf("unexpected warning: %s", e.Message)
		}
	}
}

func TestProximityQueryRepeatable(t *testing.T) {
	mug := grabbableSphere("mug", mgl32.Vec3{0.05, 0, 0}, 0.02)
	space := testSpace(mug, NewSphereCollider("wall", mgl32.Vec3{0.02, 0, 0}, 0.01))

	q, err := NewProximityQuery("grab", 8, 0.1)
	if err != nil {
		t.Fatal(err)
	}

	first := q.Query(space, mgl32.Vec3{}, AllLayers, TriggersInclude, false, nil)
	target, count := q.Target(), q.ResultCount()
	second := q.Query(space, mgl32.Vec3{}, AllLayers, TriggersInclude, false, nil)

	if first != second || q.Target() != target || q.ResultCount() != count {
		t.Errorf("identical calls diverged: %v/%v target %v/%v count %d/%d",
			first, second, target, q.Target(), count, q.ResultCount())
	}
}

func TestProximityQueryNilSpace(t *testing.T) {
	q, err := NewProximityQuery("grab", 4, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if q.Query(nil, mgl32.Vec3{}, AllLayers, TriggersInclude, false, nil) {
		t.Error("a nil space should never produce a target")
	}
	if q.HasTarget() || q.ResultCount() != 0 {
		t.Error("a nil space should clear previous results")
	}
}
