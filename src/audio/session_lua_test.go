package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.lua")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSessionScript(t *testing.T) {
	path := writeScript(t, `
session = {
  name = "wind-down",
  segments = {
    { name = "settle", seconds = 300, fade = 30, layers = {
      { carrier = 210, shape = "sine", mod = 6, modShape = "square", depth = 1, duty = 0.4, weight = 0.7, active = true, description = "theta" },
      { carrier = 320, mod = 10, depth = 0.8, weight = 0.5 },
    }},
    { name = "deep", seconds = 600, layers = {
      { carrier = 180, mod = 4, depth = 1, weight = 1 },
    }},
  },
}
`)
	s, err := LoadSessionScript(path)
	expectNoError(t, err)
	expectEqual(t, s.Name, "wind-down")
	expectEqual(t, len(s.Segments), 2)

	settle := s.Segments[0]
	expectEqual(t, settle.Name, "settle")
	expectEqual(t, settle.Seconds, 300.0)
	expectEqual(t, settle.Fade, 30.0)
	expectEqual(t, len(settle.Layers), 2)
	expectEqual(t, settle.Layers[0].CarrierFreq, 210.0)
	expectEqual(t, settle.Layers[0].ModShape, "square")
	expectEqual(t, settle.Layers[0].Duty, 0.4)
	expectEqual(t, settle.Layers[0].Description, "theta")
	expectEqual(t, settle.Layers[1].Active, true) // active defaults to true
	expectEqual(t, settle.Layers[1].ModShape, "")

	expectEqual(t, s.Segments[1].Seconds, 600.0)
	expectNoError(t, s.validate(44100))
}

func TestLoadSessionScriptErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"no session table", `x = 1`},
		{"no segments", `session = { name = "x" }`},
		{"layers not a table", `session = { segments = { { name = "x", seconds = 1, layers = 5 } } }`},
		{"syntax error", `session = {`},
	}
	for _, tc := range cases {
		path := writeScript(t, tc.src)
		if _, err := LoadSessionScript(path); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}

func TestScriptedSessionStep(t *testing.T) {
	path := writeScript(t, `
seconds = 120
function layers(t)
  local w = 1
  if t >= 60 then w = 0.25 end
  return {
    { carrier = 210, mod = 6, depth = 1, weight = w },
  }
end
`)
	s, err := OpenScriptedSession(path)
	expectNoError(t, err)
	defer s.Close()
	expectEqual(t, s.Seconds(), 120.0)

	early, err := s.Step(0)
	expectNoError(t, err)
	expectEqual(t, early[0].Weight, 1.0)
	expectEqual(t, early[0].Active, true)

	late, err := s.Step(90)
	expectNoError(t, err)
	expectEqual(t, late[0].Weight, 0.25)
}

func TestOpenScriptedSessionErrors(t *testing.T) {
	if _, err := OpenScriptedSession(writeScript(t, `x = 1`)); err == nil {
		t.Errorf("expected an error when layers(t) is missing")
	}
	if _, err := OpenScriptedSession(writeScript(t, `function layers(t`)); err == nil {
		t.Errorf("expected an error for a broken script")
	}
}

func TestScriptedSessionStepRejectsNonTable(t *testing.T) {
	s, err := OpenScriptedSession(writeScript(t, `
function layers(t)
  return 5
end
`))
	expectNoError(t, err)
	defer s.Close()
	if _, err := s.Step(0); err == nil {
		t.Errorf("expected an error for a non-table result")
	}
}

func TestScriptedSessionRun(t *testing.T) {
	s, err := OpenScriptedSession(writeScript(t, `
seconds = 0.2
function layers(t)
  return { { carrier = 125, weight = 0.3, active = true } }
end
`))
	expectNoError(t, err)
	defer s.Close()

	e := NewEngine(fastFades())
	expectNoError(t, e.Initialize(squareConfigs(1)))
	defer e.Dispose()

	start := time.Now()
	expectNoError(t, s.Run(context.Background(), e))
	if time.Since(start) > 5*time.Second {
		t.Errorf("expected the declared duration to end the run promptly")
	}
	expectEqual(t, e.Configs()[0].Weight, 0.3)
}
