package audio

// ----- Envelope ----- //

/*
  1 +        ,------------.
    |       /              \
    |      /                \
    |     /                  \
  0 +----*                    *------
    |     |attack|    |release|
*/

// envelope ramps gain between 0 and 1 so starts and stops never click.
// value chases target by one step per sample; the step sizes come from the
// configured attack and release durations.
type envelope struct {
	attackStep  float64
	releaseStep float64
	value       float64
	target      float64
}

// configure derives the per-sample steps. A duration too short to cover a
// single sample degenerates to an instant jump.
func (e *envelope) configure(attackSeconds float64, releaseSeconds float64, sampleRate float64) {
	e.attackStep = rampStep(attackSeconds, sampleRate)
	e.releaseStep = rampStep(releaseSeconds, sampleRate)
}

func rampStep(seconds float64, sampleRate float64) float64 {
	samples := seconds * sampleRate
	if samples < 1 {
		return 1
	}
	return 1 / samples
}

// trigger sets the target without moving the value. Re-triggering an
// already-running ramp is harmless.
func (e *envelope) trigger(up bool) {
	if up {
		e.target = 1
	} else {
		e.target = 0
	}
}

// process advances the value one step per sample, never overshooting the
// target, then multiplies the sample by the post-step value. The value is
// monotonic within a ramp and never leaves [0,1].
func (e *envelope) process(buf []float64) {
	for i := range buf {
		if e.value < e.target {
			e.value += e.attackStep
			if e.value > e.target {
				e.value = e.target
			}
		} else if e.value > e.target {
			e.value -= e.releaseStep
			if e.value < e.target {
				e.value = e.target
			}
		}
		buf[i] *= e.value
	}
}

func (e *envelope) getValue() float64 {
	return e.value
}

// reset drops to silence immediately and clears the target.
func (e *envelope) reset() {
	e.value = 0
	e.target = 0
}
