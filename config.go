package nearfield

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// SimConfig is the YAML document the sim binary runs from: named
// layers, pointer profiles, the scene's camera and colliders, and the
// scripted grasp motion.
type SimConfig struct {
	Layers    map[string]int   `yaml:"layers"`
	Pointers  []PointerProfile `yaml:"pointers"`
	Camera    *CameraConfig    `yaml:"camera"`
	Colliders []ColliderConfig `yaml:"colliders"`
	Motion    MotionConfig     `yaml:"motion"`
}

// PointerProfile is the on-disk form of PointerSettings, with layers
// referenced by name.
type PointerProfile struct {
	Name              string     `yaml:"name"`
	Source            string     `yaml:"source"`
	InteractionRadius float32    `yaml:"interaction_radius"`
	NearMargin        float32    `yaml:"near_margin"`
	BufferSize        int        `yaml:"buffer_size"`
	TriggerPolicy     string     `yaml:"trigger_policy"`
	VisibilityFilter  bool       `yaml:"visibility_filter"`
	LayerPriority     [][]string `yaml:"layer_priority"`
}

type CameraConfig struct {
	Position []float32 `yaml:"position"`
	Forward  []float32 `yaml:"forward"`
	VFOV     float32   `yaml:"vfov"`
}

type ColliderConfig struct {
	Name        string    `yaml:"name"`
	Shape       string    `yaml:"shape"`
	Center      []float32 `yaml:"center"`
	Radius      float32   `yaml:"radius"`
	HalfExtents []float32 `yaml:"half_extents"`
	Layer       string    `yaml:"layer"`
	Grabbable   bool      `yaml:"grabbable"`
	Trigger     bool      `yaml:"trigger"`
}

// MotionConfig selects the scripted grasp path: a tengo script when
// Script is set, otherwise a built-in orbit.
type MotionConfig struct {
	Script string    `yaml:"script"`
	Center []float32 `yaml:"center"`
	Radius float32   `yaml:"radius"`
	Period float32   `yaml:"period"`
}

// LoadSimConfig reads and validates a sim config. A relative motion
// script path is resolved against the config file's directory.
func LoadSimConfig(path string) (*SimConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sim config: %w", err)
	}
	cfg, err := ParseSimConfig(raw)
	if err != nil {
		return nil, fmt.Errorf("sim config %s: %w", path, err)
	}
	if cfg.Motion.Script != "" && !filepath.IsAbs(cfg.Motion.Script) {
		cfg.Motion.Script = filepath.Join(filepath.Dir(path), cfg.Motion.Script)
	}
	return cfg, nil
}

// ParseSimConfig parses and validates a sim config document.
func ParseSimConfig(raw []byte) (*SimConfig, error) {
	var cfg SimConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *SimConfig) validate() error {
	used := map[int]string{}
	for name, idx := range cfg.Layers {
		if idx < 0 || idx > 31 {
			return fmt.Errorf("layer %q: index %d out of range 0..31", name, idx)
		}
		if other, ok := used[idx]; ok {
			return fmt.Errorf("layer %q: index %d already taken by %q", name, idx, other)
		}
		used[idx] = name
	}
	for i, p := range cfg.Pointers {
		if p.Name == "" {
			return fmt.Errorf("pointer %d: name is required", i)
		}
		switch p.Source {
		case "hand", "controller":
		default:
			return fmt.Errorf("pointer %q: unknown source %q, want hand or controller", p.Name, p.Source)
		}
		switch p.TriggerPolicy {
		case "", "include", "exclude":
		default:
			return fmt.Errorf("pointer %q: unknown trigger policy %q, want include or exclude", p.Name, p.TriggerPolicy)
		}
		if p.BufferSize < 1 {
			return fmt.Errorf("pointer %q: buffer_size must be at least 1, got %d", p.Name, p.BufferSize)
		}
		if p.InteractionRadius < 0 {
			return fmt.Errorf("pointer %q: interaction_radius must not be negative, got %v", p.Name, p.InteractionRadius)
		}
		if p.NearMargin < 0 {
			return fmt.Errorf("pointer %q: near_margin must not be negative, got %v", p.Name, p.NearMargin)
		}
		for _, tier := range p.LayerPriority {
			for _, layer := range tier {
				if _, ok := cfg.Layers[layer]; !ok {
					return fmt.Errorf("pointer %q: unknown layer %q", p.Name, layer)
				}
			}
		}
	}
	for i, c := range cfg.Colliders {
		if c.Name == "" {
			return fmt.Errorf("collider %d: name is required", i)
		}
		switch c.Shape {
		case "", "sphere", "box":
		default:
			return fmt.Errorf("collider %q: unknown shape %q, want sphere or box", c.Name, c.Shape)
		}
		// a config that parses must also build
		if _, err := c.Build(cfg.Layers); err != nil {
			return err
		}
	}
	if cfg.Camera != nil {
		if _, err := cfg.Camera.Build(); err != nil {
			return err
		}
	}
	return nil
}

// MaskOfNames resolves layer names into a mask.
func (cfg *SimConfig) MaskOfNames(names []string) (LayerMask, error) {
	var m LayerMask
	for _, name := range names {
		idx, ok := cfg.Layers[name]
		if !ok {
			return 0, fmt.Errorf("unknown layer %q", name)
		}
		m |= MaskOf(idx)
	}
	return m, nil
}

// Settings resolves a profile into live PointerSettings.
func (p PointerProfile) Settings(cfg *SimConfig) (PointerSettings, error) {
	s := PointerSettings{
		Name:              p.Name,
		InteractionRadius: p.InteractionRadius,
		NearMargin:        p.NearMargin,
		BufferSize:        p.BufferSize,
		VisibilityFilter:  p.VisibilityFilter,
	}
	if p.TriggerPolicy == "exclude" {
		s.TriggerPolicy = TriggersExclude
	}
	for _, tier := range p.LayerPriority {
		mask, err := cfg.MaskOfNames(tier)
		if err != nil {
			return PointerSettings{}, fmt.Errorf("pointer %q: %w", p.Name, err)
		}
		s.LayerPriority = append(s.LayerPriority, mask)
	}
	return s, nil
}

// Build turns a collider config into a live collider.
func (c ColliderConfig) Build(layers map[string]int) (*Collider, error) {
	center, err := vec3(c.Center, "center")
	if err != nil {
		return nil, fmt.Errorf("collider %q: %w", c.Name, err)
	}
	col := &Collider{
		Name:      c.Name,
		Center:    center,
		Grabbable: c.Grabbable,
		Trigger:   c.Trigger,
	}
	if c.Layer != "" {
		idx, ok := layers[c.Layer]
		if !ok {
			return nil, fmt.Errorf("collider %q: unknown layer %q", c.Name, c.Layer)
		}
		col.Layer = idx
	}
	switch c.Shape {
	case "box":
		he, err := vec3(c.HalfExtents, "half_extents")
		if err != nil {
			return nil, fmt.Errorf("collider %q: %w", c.Name, err)
		}
		col.Shape = ShapeBox
		col.HalfExtents = he
	default:
		if c.Radius <= 0 {
			return nil, fmt.Errorf("collider %q: radius must be positive, got %v", c.Name, c.Radius)
		}
		col.Shape = ShapeSphere
		col.Radius = c.Radius
	}
	return col, nil
}

// Build turns a camera config into a live camera, normalizing Forward.
func (c *CameraConfig) Build() (*Camera, error) {
	pos, err := vec3(c.Position, "position")
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	fwd, err := vec3(c.Forward, "forward")
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	if fwd.Len() == 0 {
		return nil, fmt.Errorf("camera: forward must not be zero")
	}
	if c.VFOV <= 0 || c.VFOV >= 180 {
		return nil, fmt.Errorf("camera: vfov %v out of range (0, 180)", c.VFOV)
	}
	return &Camera{Position: pos, Forward: fwd.Normalize(), VFOV: c.VFOV}, nil
}

// Build resolves the motion config into a MotionFunc.
func (m MotionConfig) Build() (MotionFunc, error) {
	if m.Script != "" {
		return CompileMotionScript(m.Script)
	}
	center := mgl32.Vec3{}
	if len(m.Center) != 0 {
		c, err := vec3(m.Center, "center")
		if err != nil {
			return nil, fmt.Errorf("motion: %w", err)
		}
		center = c
	}
	radius := m.Radius
	if radius <= 0 {
		radius = 0.5
	}
	return Orbit(center, radius, m.Period), nil
}

func vec3(v []float32, what string) (mgl32.Vec3, error) {
	if len(v) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("%s wants 3 components, got %d", what, len(v))
	}
	return mgl32.Vec3{v[0], v[1], v[2]}, nil
}
