package nearfield

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
)

// ProximityEntity pairs an ECS identity with its pointer and the last
// announced state, so the system only dispatches on transitions.
type ProximityEntity struct {
	*ecs.BasicEntity
	*ProximityPointer

	wasNear    bool
	wasEnabled bool
}

// ProximitySystem updates every registered pointer once per frame and
// dispatches NearObjectMessage / GrabEnabledMessage when a pointer's
// derived state flips. Schedule it before any system that reads
// pointer state.
type ProximitySystem struct {
	Mail *engo.MessageManager

	entities []*ProximityEntity
}

// Add registers a pointer under the given entity identity.
func (ps *ProximitySystem) Add(ent *ecs.BasicEntity, pointer *ProximityPointer) {
	ps.entities = append(ps.entities, &ProximityEntity{BasicEntity: ent, ProximityPointer: pointer})
}

func (ps *ProximitySystem) Remove(ent ecs.BasicEntity) {
	idx := -1
	for i, e := range ps.entities {
		if e.ID() == ent.ID() {
			idx = i
		}
	}
	if idx != -1 {
		ps.entities = append(ps.entities[:idx], ps.entities[idx+1:]...)
	}
}

func (ps *ProximitySystem) Update(dt float32) {
	for _, e := range ps.entities {
		e.ProximityPointer.Update()

		near := e.IsNearObject()
		if near != e.wasNear {
			e.wasNear = near
			ps.dispatch(NearObjectMessage{Pointer: e.Name(), Target: e.NearTarget(), Near: near})
		}

		enabled := e.IsInteractionEnabled()
		if enabled != e.wasEnabled {
			e.wasEnabled = enabled
			ps.dispatch(GrabEnabledMessage{Pointer: e.Name(), Target: e.GrabTarget(), Enabled: enabled})
		}
	}
}

func (ps *ProximitySystem) dispatch(msg engo.Message) {
	if ps.Mail == nil {
		return
	}
	ps.Mail.Dispatch(msg)
}
