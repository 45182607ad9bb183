package audio

import (
	"math"
	"sync/atomic"
)

// ----- Layer ----- //

// layer is one end-to-end signal path: a carrier oscillator, an optional
// amplitude modulator, a click-free envelope, and a mix weight. All of its
// state is owned by the render context; the envelope value is republished
// through an atomic word so metering never races the renderer.
type layer struct {
	carrier   *osc
	modulator *osc
	env       envelope
	modBuf    []float64 // grows to the largest buffer seen, then stays
	envBits   atomic.Uint64
}

func newLayer() *layer {
	return &layer{
		carrier:   newOsc(waveSine),
		modulator: newOsc(waveSine),
	}
}

// updateAndProcess renders one buffer. An inactive layer writes silence and
// leaves oscillator and envelope state untouched, so reactivating it resumes
// exactly where it froze. gate reflects whether the engine is playing; while
// it is up, an active layer keeps its envelope aimed at full gain.
func (l *layer) updateAndProcess(out []float64, sampleRate float64, cfg LayerConfig, gate bool) {
	if !cfg.Active {
		zeroBuffer(out)
		return
	}
	l.carrier.kind = shapeKind(cfg.CarrierShape)
	l.carrier.setFreq(cfg.CarrierFreq, sampleRate)
	l.modulator.kind = shapeKind(cfg.ModShape)
	l.modulator.setFreq(cfg.ModFreq, sampleRate)
	duty := cfg.Duty
	if duty == 0 {
		duty = defaultDuty
	}
	l.carrier.setDuty(duty)
	l.modulator.setDuty(duty)
	if gate {
		l.env.trigger(true)
	}
	l.carrier.process(out)
	depth := clamp01(cfg.ModDepth)
	if cfg.ModFreq > 0 && depth > 0 {
		if len(l.modBuf) < len(out) {
			l.modBuf = make([]float64, len(out))
		}
		mod := l.modBuf[:len(out)]
		l.modulator.process(mod)
		amApply(out, mod, depth)
	}
	l.env.process(out)
	if w := clamp01(cfg.Weight); w != 1 {
		for i := range out {
			out[i] *= w
		}
	}
	l.envBits.Store(math.Float64bits(l.env.getValue()))
}

func (l *layer) triggerRelease() {
	l.env.trigger(false)
}

// envelopeValue is the last published envelope gain, readable from any
// goroutine.
func (l *layer) envelopeValue() float64 {
	return math.Float64frombits(l.envBits.Load())
}

func (l *layer) reset() {
	l.carrier.reset()
	l.modulator.reset()
	l.env.reset()
	l.envBits.Store(0)
}
