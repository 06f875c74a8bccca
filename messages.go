package nearfield

// NearObjectMessage is dispatched when a pointer's near-object state
// flips. Target carries the collider that became near; it is nil when
// Near is false.
type NearObjectMessage struct {
	Pointer string
	Target  *Collider
	Near    bool
}

func (NearObjectMessage) Type() string {
	return "NearObjectMessage"
}

// GrabEnabledMessage is dispatched when a pointer's interaction-enabled
// state flips. Target carries the collider within the interaction
// radius; it may be nil when the flip came from focus lock alone.
type GrabEnabledMessage struct {
	Pointer string
	Target  *Collider
	Enabled bool
}

func (GrabEnabledMessage) Type() string {
	return "GrabEnabledMessage"
}
