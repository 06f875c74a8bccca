package nearfield

import (
	"path/filepath"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// simHand feeds scripted tracking data to the pointers. It serves as
// both the JointProvider behind a hand source and the PoseProvider
// behind a controller source, so one motion path drives either kind.
type simHand struct {
	pos     mgl32.Vec3
	tracked bool
	spread  float32
}

func (h *simHand) Joint(j Joint) (mgl32.Vec3, bool) {
	if !h.tracked {
		return mgl32.Vec3{}, false
	}
	offset := mgl32.Vec3{h.spread * 0.5, 0, 0}
	switch j {
	case JointIndexTip:
		return h.pos.Add(offset), true
	case JointThumbTip:
		return h.pos.Sub(offset), true
	}
	return mgl32.Vec3{}, false
}

func (h *simHand) Pose() (Pose, bool) {
	if !h.tracked {
		return Pose{}, false
	}
	return Pose{Position: h.pos, Forward: mgl32.Vec3{0, 0, 1}}, true
}

// handMotionSystem advances the scripted grasp path each frame and
// writes the result into the sim hand.
type handMotionSystem struct {
	hand   *simHand
	motion MotionFunc
	t      float64
}

func (hms *handMotionSystem) Remove(ecs.BasicEntity) {}
func (hms *handMotionSystem) Update(dt float32) {
	hms.t += float64(dt)
	if hms.motion == nil {
		hms.hand.tracked = false
		return
	}
	pos, tracked := hms.motion(hms.t)
	hms.hand.pos = pos
	hms.hand.tracked = tracked
}

// exitSystem stops the engine after the configured duration.
type exitSystem struct {
	deadline float32
	elapsed  float32
}

func (es *exitSystem) Remove(ecs.BasicEntity) {}
func (es *exitSystem) Update(dt float32) {
	if es.deadline <= 0 {
		return
	}
	es.elapsed += dt
	if es.elapsed >= es.deadline {
		engo.Exit()
	}
}

// reloadSystem drains the scene's config watcher once per frame and
// rebuilds when something changed on disk. The watcher lives on the
// scene because a reload may replace it.
type reloadSystem struct {
	scene *SimScene
}

func (rs *reloadSystem) Remove(ecs.BasicEntity) {}
func (rs *reloadSystem) Update(dt float32) {
	w := rs.scene.watcher
	if w == nil {
		return
	}
	select {
	case path := <-w.Events:
		log.WithField("path", path).Info("sim config changed, rebuilding")
		rs.scene.reload()
	case err := <-w.Errors:
		log.WithError(err).Warn("config watcher error")
	default:
	}
}

// SimScene runs a scripted grasp-point path against a configured
// collider scene and logs every near/grab transition. It is the
// headless harness for the proximity engine, not a renderer.
type SimScene struct {
	Config     *SimConfig
	ConfigPath string
	Duration   float32
	Watch      bool

	space     *Space
	camera    *Camera
	hand      *simHand
	prox      *ProximitySystem
	motionSys *handMotionSystem
	watcher   *ConfigWatcher

	pointerEnts []ecs.BasicEntity
}

func (*SimScene) Preload() {}

func (s *SimScene) Setup(u engo.Updater) {
	w, _ := u.(*ecs.World)

	s.hand = &simHand{spread: 0.04}
	s.prox = &ProximitySystem{Mail: engo.Mailbox}
	s.motionSys = &handMotionSystem{hand: s.hand}

	w.AddSystem(s.motionSys)
	w.AddSystem(s.prox)
	w.AddSystem(&exitSystem{deadline: s.Duration})

	if s.Watch {
		watcher, err := NewConfigWatcher(s.ConfigPath, s.Config.Motion.Script)
		if err != nil {
			log.WithError(err).Warn("config watch disabled")
		} else {
			s.watcher = watcher
			w.AddSystem(&reloadSystem{scene: s})
		}
	}

	engo.Mailbox.Listen(NearObjectMessage{}.Type(), func(msg engo.Message) {
		m, ok := msg.(NearObjectMessage)
		if !ok {
			return
		}
		if m.Near {
			log.WithFields(log.Fields{"pointer": m.Pointer, "target": colliderName(m.Target)}).Info("near object")
		} else {
			log.WithField("pointer", m.Pointer).Info("left near range")
		}
	})
	engo.Mailbox.Listen(GrabEnabledMessage{}.Type(), func(msg engo.Message) {
		m, ok := msg.(GrabEnabledMessage)
		if !ok {
			return
		}
		if m.Enabled {
			log.WithFields(log.Fields{"pointer": m.Pointer, "target": colliderName(m.Target)}).Info("grab enabled")
		} else {
			log.WithField("pointer", m.Pointer).Info("grab disabled")
		}
	})

	s.build()
}

func (*SimScene) Type() string { return "Sim" }

// build realizes the loaded config: colliders into a fresh space, the
// camera, the motion path, and one pointer per profile. Existing
// pointers are dropped first so reload replaces rather than stacks.
func (s *SimScene) build() {
	space := NewSpace()
	for _, cc := range s.Config.Colliders {
		col, err := cc.Build(s.Config.Layers)
		if err != nil {
			log.WithError(err).Warn("skipping collider")
			continue
		}
		space.Add(col)
	}
	s.space = space

	s.camera = nil
	if s.Config.Camera != nil {
		cam, err := s.Config.Camera.Build()
		if err != nil {
			log.WithError(err).Warn("running without a camera")
		} else {
			s.camera = cam
		}
	}

	motion, err := s.Config.Motion.Build()
	if err != nil {
		log.WithError(err).Warn("motion unavailable, hand reads untracked")
		motion = nil
	}
	s.motionSys.motion = motion

	for _, ent := range s.pointerEnts {
		s.prox.Remove(ent)
	}
	s.pointerEnts = nil

	cameras := func() *Camera { return s.camera }
	for _, prof := range s.Config.Pointers {
		settings, err := prof.Settings(s.Config)
		if err != nil {
			log.WithError(err).Warn("skipping pointer")
			continue
		}
		var source InputSource
		if prof.Source == "controller" {
			source = Controller{Origin: s.hand.Pose}
		} else {
			source = ArticulatedHand{Joints: s.hand, Origin: s.hand.Pose}
		}
		pointer, err := NewProximityPointer(settings, source, space, cameras)
		if err != nil {
			log.WithError(err).Warn("skipping pointer")
			continue
		}
		ent := ecs.NewBasic()
		s.pointerEnts = append(s.pointerEnts, ent)
		s.prox.Add(&ent, pointer)
		log.WithFields(log.Fields{
			"pointer":     pointer.Name(),
			"near_radius": pointer.NearRadius(),
			"grab_radius": pointer.InteractionRadius(),
		}).Info("pointer ready")
	}
}

func (s *SimScene) reload() {
	cfg, err := LoadSimConfig(s.ConfigPath)
	if err != nil {
		log.WithError(err).Warn("reload failed, keeping previous config")
		return
	}
	prevScript := s.Config.Motion.Script
	s.Config = cfg
	s.rearmWatcher(prevScript)
	s.build()
}

// rearmWatcher replaces the config watcher when a reload moved the
// motion script to a different directory. The old watcher is kept on
// failure so the config itself stays watched.
func (s *SimScene) rearmWatcher(prevScript string) {
	if s.watcher == nil {
		return
	}
	if filepath.Dir(s.Config.Motion.Script) == filepath.Dir(prevScript) {
		return
	}
	watcher, err := NewConfigWatcher(s.ConfigPath, s.Config.Motion.Script)
	if err != nil {
		log.WithError(err).Warn("config watch not rearmed for new script path")
		return
	}
	s.watcher.Close()
	s.watcher = watcher
}

func colliderName(c *Collider) string {
	if c == nil {
		return ""
	}
	return c.Name
}
