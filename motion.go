package nearfield

import (
	"fmt"
	"math"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// MotionFunc maps simulation time in seconds to a grasp-point position
// and whether tracking is live at that instant. Returning tracked
// false simulates tracking loss: the pointer skips that frame.
type MotionFunc func(t float64) (mgl32.Vec3, bool)

// Orbit returns a MotionFunc circling center in the XZ plane, one
// revolution per period seconds.
func Orbit(center mgl32.Vec3, radius float32, period float32) MotionFunc {
	if period <= 0 {
		period = 4
	}
	return func(t float64) (mgl32.Vec3, bool) {
		a := 2 * math.Pi * t / float64(period)
		offset := mgl32.Vec3{
			radius * float32(math.Cos(a)),
			0,
			radius * float32(math.Sin(a)),
		}
		return center.Add(offset), true
	}
}

// CompileMotionScript loads a tengo script that computes the grasp
// point per tick. The script reads `t` (seconds) and assigns `x`, `y`,
// `z`, and optionally `tracked` (defaults to true). The tengo math
// module is importable.
func CompileMotionScript(path string) (MotionFunc, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read motion script: %w", err)
	}
	fn, err := CompileMotion(src)
	if err != nil {
		return nil, fmt.Errorf("motion script %s: %w", path, err)
	}
	return fn, nil
}

// CompileMotion compiles motion script source. The script is compiled
// once; each tick re-runs the compiled program with a fresh `t`.
func CompileMotion(src []byte) (MotionFunc, error) {
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap("math"))
	if err := script.Add("t", 0.0); err != nil {
		return nil, err
	}
	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("initial script run: %w", err)
	}
	for _, name := range []string{"x", "y", "z"} {
		if compiled.Get(name).IsUndefined() {
			return nil, fmt.Errorf("script must assign %q", name)
		}
	}

	logged := false
	return func(t float64) (mgl32.Vec3, bool) {
		if err := compiled.Set("t", t); err != nil {
			return mgl32.Vec3{}, false
		}
		if err := compiled.Run(); err != nil {
			if !logged {
				logged = true
				log.WithError(err).Warn("motion script failed, reporting untracked")
			}
			return mgl32.Vec3{}, false
		}
		pos := mgl32.Vec3{
			float32(compiled.Get("x").Float()),
			float32(compiled.Get("y").Float()),
			float32(compiled.Get("z").Float()),
		}
		tracked := true
		if v := compiled.Get("tracked"); !v.IsUndefined() {
			tracked = v.Bool()
		}
		return pos, tracked
	}, nil
}
