// SPDX-License-Identifier: EPL-2.0

package scene

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/ik5/audmix/distance"
	"github.com/ik5/audmix/envelope"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/render"
	"github.com/ik5/audmix/voice"
)

// Load runs the script at path. Relative emitter files resolve against the
// script's directory.
func Load(ctx context.Context, path string) (*Scene, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	sc, err := LoadString(ctx, string(src), filepath.Base(path))
	if err != nil {
		return nil, err
	}
	sc.Dir = filepath.Dir(path)
	return sc, nil
}

// LoadString runs a script held in memory; name is used in error messages.
func LoadString(ctx context.Context, src, name string) (*Scene, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	L.SetContext(ctx)

	ld := &loader{
		sc: &Scene{
			Name:      name,
			Frequency: DefaultFrequency,
			Mode:      mixer.ModeStereo,
			Listener:  *voice.NewListener(),
		},
	}
	L.SetGlobal("emitter", L.NewFunction(ld.emitter))
	L.SetGlobal("listener", L.NewFunction(ld.listener))

	if err := L.DoString(src); err != nil {
		if ld.err != nil {
			return nil, fmt.Errorf("%s: %w", name, ld.err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrScript, name, err)
	}

	if err := ld.globals(L); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(ld.sc.Emitters) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoEmitters)
	}
	return ld.sc, nil
}

type loader struct {
	sc  *Scene
	err error
}

// fail records err and raises it as a Lua error so the script stops.
func (ld *loader) fail(L *lua.LState, err error) int {
	ld.err = err
	L.RaiseError("%v", err)
	return 0
}

func (ld *loader) globals(L *lua.LState) error {
	g := L.G.Global
	var err error
	num := func(key string, def float64) float64 {
		v, e := number(g, key, def)
		err = errors.Join(err, e)
		return v
	}
	str := func(key, def string) string {
		v, e := text(g, key, def)
		err = errors.Join(err, e)
		return v
	}

	sc := ld.sc
	sc.Frequency = num("frequency", DefaultFrequency)
	sc.Tracks = int(num("tracks", 0))
	sc.Workers = int(num("workers", 0))
	sc.Refresh = num("refresh", 0)
	sc.MasterGain = float32(num("master_gain", 1))
	seconds := num("duration", 0)
	mode := str("mode", "stereo")
	kind := str("renderer", "auto")
	limit, e := boolean(g, "limit", false)
	if err = errors.Join(err, e); err != nil {
		return err
	}
	sc.Limit = limit

	if seconds < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidLength, seconds)
	}
	sc.Duration = time.Duration(seconds * float64(time.Second))

	if sc.Mode, err = mixer.ParseMode(mode); err != nil {
		return err
	}
	sc.Renderer, err = render.ParseKind(kind)
	return err
}

func (ld *loader) listener(L *lua.LState) int {
	tbl := L.CheckTable(1)
	l := &ld.sc.Listener

	var err error
	vec := func(key string, dst *voice.Vec3) {
		v, _, e := vector(tbl, key, *dst)
		err = errors.Join(err, e)
		*dst = v
	}
	vec("position", &l.Position)
	vec("velocity", &l.Velocity)
	vec("at", &l.At)
	vec("up", &l.Up)

	gain, e1 := number(tbl, "gain", float64(l.Gain))
	pitch, e2 := number(tbl, "pitch", float64(l.Pitch))
	if err = errors.Join(err, e1, e2); err != nil {
		return ld.fail(L, fmt.Errorf("listener: %w", err))
	}
	l.Gain, l.Pitch = float32(gain), float32(pitch)
	return 0
}

func (ld *loader) emitter(L *lua.LState) int {
	tbl := L.CheckTable(1)
	e, err := parseEmitter(tbl)
	if err != nil {
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("#%d", len(ld.sc.Emitters)+1)
		}
		return ld.fail(L, fmt.Errorf("emitter %s: %w", name, err))
	}
	ld.sc.Emitters = append(ld.sc.Emitters, e)
	return 0
}

func parseEmitter(tbl *lua.LTable) (Emitter, error) {
	e := newEmitter()
	var err error
	num := func(key string, def float64) float64 {
		v, ferr := number(tbl, key, def)
		err = errors.Join(err, ferr)
		return v
	}
	flag := func(key string) bool {
		v, ferr := boolean(tbl, key, false)
		err = errors.Join(err, ferr)
		return v
	}
	secs := func(key string) time.Duration {
		return time.Duration(num(key, 0) * float64(time.Second))
	}

	var ferr error
	e.Name, ferr = text(tbl, "name", "")
	err = errors.Join(err, ferr)
	e.File, ferr = text(tbl, "file", "")
	err = errors.Join(err, ferr)

	e.Tone = num("tone", 0)
	e.ToneSeconds = num("tone_seconds", DefaultToneSeconds)
	e.Gain = float32(num("gain", 1))
	e.Pitch = float32(num("pitch", 1))
	e.Pan = float32(num("pan", 0))
	e.FadeIn = flag("fade_in")
	e.Loop = flag("loop")
	e.LoopCount = int(num("loop_count", 0))
	e.Start = secs("start")
	e.Stop = secs("stop")
	e.Relative = flag("relative")

	var has bool
	e.Position, has, ferr = vector(tbl, "position", voice.Vec3{})
	err = errors.Join(err, ferr)
	e.Spatial = has
	e.Velocity, has, ferr = vector(tbl, "velocity", voice.Vec3{})
	err = errors.Join(err, ferr)
	e.Spatial = e.Spatial || has

	e.Distance.RefDistance = float32(num("ref_distance", float64(e.Distance.RefDistance)))
	e.Distance.MaxDistance = float32(num("max_distance", float64(e.Distance.MaxDistance)))
	e.Distance.Rolloff = float32(num("rolloff", float64(e.Distance.Rolloff)))
	e.Distance.DopplerFactor = float32(num("doppler", float64(e.Distance.DopplerFactor)))
	if err != nil {
		return e, err
	}

	name, ferr := text(tbl, "model", "")
	if ferr != nil {
		return e, ferr
	}
	if name != "" {
		if e.Model, err = distance.ParseModel(name); err != nil {
			return e, err
		}
	}

	if cone, ok := tbl.RawGetString("cone").(*lua.LTable); ok {
		if e.Cone, err = parseCone(cone); err != nil {
			return e, fmt.Errorf("cone: %w", err)
		}
		e.Spatial = true
	}

	if e.Envelope, e.Sustain, err = breakpoints(tbl, "envelope"); err != nil {
		return e, err
	}
	if e.PitchEnvelope, _, err = breakpoints(tbl, "pitch_envelope"); err != nil {
		return e, err
	}
	for key, dst := range map[string]**LFO{"tremolo": &e.Tremolo, "vibrato": &e.Vibrato, "dynamic": &e.Dynamic} {
		if *dst, err = parseLFO(tbl, key); err != nil {
			return e, err
		}
	}

	if e.File == "" && e.Tone <= 0 {
		return e, ErrNoSource
	}
	return e, nil
}

func parseCone(tbl *lua.LTable) (voice.Cone, error) {
	facing, _, err := vector(tbl, "facing", voice.Vec3{})
	if err != nil {
		return voice.Cone{}, err
	}
	inner, e1 := number(tbl, "inner", 360)
	outer, e2 := number(tbl, "outer", 360)
	gain, e3 := number(tbl, "outer_gain", 0)
	if err := errors.Join(e1, e2, e3); err != nil {
		return voice.Cone{}, err
	}

	// Angles are full cone apertures in degrees.
	cos := func(deg float64) float32 {
		return float32(math.Cos(deg * math.Pi / 360))
	}
	return voice.Cone{
		Facing:    facing,
		InnerCos:  cos(inner),
		OuterCos:  cos(outer),
		OuterGain: float32(gain),
	}, nil
}

func parseLFO(parent *lua.LTable, key string) (*LFO, error) {
	v := parent.RawGetString(key)
	if v == lua.LNil {
		return nil, nil
	}
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a table", ErrField, key)
	}

	shapeName, err := text(tbl, "shape", "sine")
	if err != nil {
		return nil, err
	}
	shape, err := envelope.ParseShape(shapeName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	l := &LFO{Shape: shape}
	fields := []struct {
		name string
		dst  *float32
		def  float64
	}{
		{"min", &l.Min, 0},
		{"max", &l.Max, 1},
		{"frequency", &l.Frequency, 0},
		{"attack", &l.Attack, 0},
		{"release", &l.Release, 0},
		{"threshold", &l.Threshold, 0},
		{"ratio", &l.Ratio, envelope.MinRatio},
	}
	for _, f := range fields {
		n, err := number(tbl, f.name, f.def)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		*f.dst = float32(n)
	}
	if l.Inverse, err = boolean(tbl, "inverse", false); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return l, nil
}

// breakpoints reads {{level, time}, ..., sustain = bool}.
func breakpoints(parent *lua.LTable, key string) ([]envelope.Breakpoint, bool, error) {
	v := parent.RawGetString(key)
	if v == lua.LNil {
		return nil, false, nil
	}
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s must be a table", ErrField, key)
	}

	sustain, err := boolean(tbl, "sustain", false)
	if err != nil {
		return nil, false, err
	}

	var pts []envelope.Breakpoint
	for i := 1; i <= tbl.Len(); i++ {
		pt, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, false, fmt.Errorf("%w: %s[%d] must be {level, time}", ErrField, key, i)
		}
		level, lok := pt.RawGetInt(1).(lua.LNumber)
		at, tok := pt.RawGetInt(2).(lua.LNumber)
		if !lok || !tok {
			return nil, false, fmt.Errorf("%w: %s[%d] must be {level, time}", ErrField, key, i)
		}
		pts = append(pts, envelope.Breakpoint{Level: float32(level), Time: float32(at)})
	}
	if len(pts) == 0 {
		return nil, false, fmt.Errorf("%w: %s has no breakpoints", ErrField, key)
	}
	return pts, sustain, nil
}

func number(tbl *lua.LTable, key string, def float64) (float64, error) {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LNumber:
		return float64(v), nil
	case *lua.LNilType:
		return def, nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %s", ErrField, key, v.Type())
	}
}

func text(tbl *lua.LTable, key, def string) (string, error) {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LString:
		return string(v), nil
	case *lua.LNilType:
		return def, nil
	default:
		return "", fmt.Errorf("%w: %s must be a string, got %s", ErrField, key, v.Type())
	}
}

func boolean(tbl *lua.LTable, key string, def bool) (bool, error) {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LBool:
		return bool(v), nil
	case *lua.LNilType:
		return def, nil
	default:
		return false, fmt.Errorf("%w: %s must be a boolean, got %s", ErrField, key, v.Type())
	}
}

// vector reads {x, y, z}. The second result reports whether key was set.
func vector(tbl *lua.LTable, key string, def voice.Vec3) (voice.Vec3, bool, error) {
	v := tbl.RawGetString(key)
	if v == lua.LNil {
		return def, false, nil
	}
	t, ok := v.(*lua.LTable)
	if !ok || t.Len() != 3 {
		return def, false, fmt.Errorf("%w: %s must be {x, y, z}", ErrField, key)
	}

	var out voice.Vec3
	for i := range out {
		n, ok := t.RawGetInt(i + 1).(lua.LNumber)
		if !ok {
			return def, false, fmt.Errorf("%w: %s[%d] must be a number", ErrField, key, i+1)
		}
		out[i] = float32(n)
	}
	return out, true, nil
}
