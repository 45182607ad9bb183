package audio

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// ----- Session ----- //

const sessionTick = 100 * time.Millisecond

// SessionSegment is one timed step of a session program.
type SessionSegment struct {
	Name    string
	Seconds float64
	Fade    float64 // seconds of weight crossfade into this segment
	Layers  []LayerConfig
}

// Session is an ordered program of segments, played by publishing each
// segment's layers to a running engine. It lives entirely on the control
// side; the render context only ever sees the published snapshots.
type Session struct {
	ID       string
	Name     string
	Segments []SessionSegment
}

func (s *Session) validate(sampleRate float64) error {
	if len(s.Segments) == 0 {
		return fmt.Errorf("session %s has no segments", s.Name)
	}
	for i, seg := range s.Segments {
		if seg.Seconds <= 0 {
			return fmt.Errorf("segment %d (%s): duration must be positive", i, seg.Name)
		}
		if seg.Fade < 0 || seg.Fade > seg.Seconds {
			return fmt.Errorf("segment %d (%s): fade %g is outside [0, %g]", i, seg.Name, seg.Fade, seg.Seconds)
		}
		if err := validateConfigs(seg.Layers, sampleRate); err != nil {
			return fmt.Errorf("segment %d (%s): %w", i, seg.Name, err)
		}
	}
	return nil
}

// Duration ...
func (s *Session) Duration() time.Duration {
	total := 0.0
	for _, seg := range s.Segments {
		total += seg.Seconds
	}
	return time.Duration(total * float64(time.Second))
}

// Run publishes the program to the engine until the last segment ends or
// ctx is cancelled. Weights crossfade linearly over each segment's fade-in
// window. onSegment, when set, is called as each segment becomes current.
func (s *Session) Run(ctx context.Context, e *Engine, onSegment func(int, *SessionSegment)) error {
	if err := s.validate(e.Config().SampleRate); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	log.Printf("session %s (%s) started\n", s.Name, s.ID)
	t := time.NewTicker(sessionTick)
	defer t.Stop()
	start := time.Now()
	current := -1
	for {
		elapsed := time.Since(start).Seconds()
		i, into := s.segmentAt(elapsed)
		if i < 0 {
			log.Printf("session %s (%s) finished\n", s.Name, s.ID)
			return nil
		}
		if i != current {
			current = i
			log.Printf("session %s: segment %d (%s)\n", s.ID, i, s.Segments[i].Name)
			if onSegment != nil {
				onSegment(i, &s.Segments[i])
			}
		}
		if err := e.UpdateConfigs(s.configsAt(i, into)); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			log.Printf("session %s (%s) interrupted\n", s.Name, s.ID)
			return nil
		case <-t.C:
		}
	}
}

// segmentAt maps an elapsed time to (segment index, seconds into it);
// index -1 means the program is over.
func (s *Session) segmentAt(elapsed float64) (int, float64) {
	at := 0.0
	for i, seg := range s.Segments {
		if elapsed < at+seg.Seconds {
			return i, elapsed - at
		}
		at += seg.Seconds
	}
	return -1, 0
}

// configsAt returns segment i's layers, with weights blended from the
// previous segment during the fade-in window.
func (s *Session) configsAt(i int, into float64) []LayerConfig {
	seg := &s.Segments[i]
	out := append([]LayerConfig(nil), seg.Layers...)
	if i == 0 || seg.Fade <= 0 || into >= seg.Fade {
		return out
	}
	t := into / seg.Fade
	prev := s.Segments[i-1].Layers
	for j := range out {
		from := 0.0
		if j < len(prev) {
			from = prev[j].Weight
		}
		out[j].Weight = t*out[j].Weight + (1-t)*from
	}
	return out
}
