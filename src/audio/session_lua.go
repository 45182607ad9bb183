package audio

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// ----- Session Scripts ----- //

// LoadSessionScript runs a Lua file and converts its session table into a
// Session. The script sets a global like:
//
//	session = {
//	  name = "wind-down",
//	  segments = {
//	    { name = "settle", seconds = 300, fade = 30, layers = {
//	      { carrier = 210, mod = 10, depth = 0.8, weight = 1, active = true },
//	    }},
//	  },
//	}
//
// Scripts that compute layers over time define layers(t) instead; see
// OpenScriptedSession.
func LoadSessionScript(path string) (*Session, error) {
	L := lua.NewState()
	defer L.Close()
	if err := L.DoFile(path); err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", path, err)
	}
	root, ok := L.GetGlobal("session").(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%s does not set a session table", path)
	}
	s := &Session{Name: stringField(root, "name")}
	segments, ok := root.RawGetString("segments").(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%s: session.segments is missing", path)
	}
	var convErr error
	segments.ForEach(func(_, v lua.LValue) {
		if convErr != nil {
			return
		}
		seg, ok := v.(*lua.LTable)
		if !ok {
			convErr = fmt.Errorf("%s: segment is not a table", path)
			return
		}
		layers, err := layersFromTable(seg.RawGetString("layers"))
		if err != nil {
			convErr = fmt.Errorf("%s: %w", path, err)
			return
		}
		s.Segments = append(s.Segments, SessionSegment{
			Name:    stringField(seg, "name"),
			Seconds: numberField(seg, "seconds"),
			Fade:    numberField(seg, "fade"),
			Layers:  layers,
		})
	})
	if convErr != nil {
		return nil, convErr
	}
	return s, nil
}

func stringField(t *lua.LTable, key string) string {
	if v, ok := t.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return ""
}

func numberField(t *lua.LTable, key string) float64 {
	if v, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float64(v)
	}
	return 0
}

func boolField(t *lua.LTable, key string, def bool) bool {
	if v, ok := t.RawGetString(key).(lua.LBool); ok {
		return bool(v)
	}
	return def
}

func layersFromTable(v lua.LValue) ([]LayerConfig, error) {
	table, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("layers is not a table")
	}
	var configs []LayerConfig
	var convErr error
	table.ForEach(func(_, v lua.LValue) {
		if convErr != nil {
			return
		}
		t, ok := v.(*lua.LTable)
		if !ok {
			convErr = fmt.Errorf("layer is not a table")
			return
		}
		configs = append(configs, LayerConfig{
			CarrierFreq:  numberField(t, "carrier"),
			CarrierShape: stringField(t, "shape"),
			ModFreq:      numberField(t, "mod"),
			ModShape:     stringField(t, "modShape"),
			ModDepth:     numberField(t, "depth"),
			Duty:         numberField(t, "duty"),
			Weight:       numberField(t, "weight"),
			Active:       boolField(t, "active", true),
			Description:  stringField(t, "description"),
		})
	})
	if convErr != nil {
		return nil, convErr
	}
	return configs, nil
}

// ----- Scripted Session ----- //

// ScriptedSession drives layer updates from a Lua layers(t) function. The
// Lua state is not safe for concurrent use; Step, Run, and Close must stay
// on one goroutine.
type ScriptedSession struct {
	L       *lua.LState
	fn      lua.LValue
	seconds float64
}

// OpenScriptedSession loads a script that defines layers(t) and, optionally,
// a global seconds duration.
func OpenScriptedSession(path string) (*ScriptedSession, error) {
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to run %s: %w", path, err)
	}
	fn := L.GetGlobal("layers")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("%s does not define layers(t)", path)
	}
	seconds := 0.0
	if v, ok := L.GetGlobal("seconds").(lua.LNumber); ok {
		seconds = float64(v)
	}
	return &ScriptedSession{L: L, fn: fn, seconds: seconds}, nil
}

// Seconds reports the script's declared duration; 0 means unbounded.
func (s *ScriptedSession) Seconds() float64 {
	return s.seconds
}

// Step evaluates layers(t) for an elapsed time in seconds.
func (s *ScriptedSession) Step(t float64) ([]LayerConfig, error) {
	if err := s.L.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, lua.LNumber(t)); err != nil {
		return nil, err
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return layersFromTable(ret)
}

// Run publishes script output to the engine every tick until the declared
// duration passes or ctx is cancelled.
func (s *ScriptedSession) Run(ctx context.Context, e *Engine) error {
	t := time.NewTicker(sessionTick)
	defer t.Stop()
	start := time.Now()
	for {
		elapsed := time.Since(start).Seconds()
		if s.seconds > 0 && elapsed >= s.seconds {
			return nil
		}
		configs, err := s.Step(elapsed)
		if err != nil {
			return err
		}
		if err := e.UpdateConfigs(configs); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// Close ...
func (s *ScriptedSession) Close() {
	s.L.Close()
}
