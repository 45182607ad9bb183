package audio

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

// ----- Engine State ----- //

//go:generate go run ../gen/main.go -- engine_state.gen.go
/*
generate-enum engineState

engineStateUninitialized uninitialized
engineStateInitialized initialized
engineStatePlaying playing
engineStateStopped stopped
engineStateDisposed disposed

EOF
*/

// ----- Engine ----- //

const maxConsecutiveRenderFailures = 3

// Engine ties one mixer to a lifecycle and owns the hand-off of layer
// configurations from control goroutines to the render context.
//
// Exactly one render context calls FillBuffer, driven by an audio backend
// under a hard deadline. Everything it reads that control goroutines write
// goes through a single atomic snapshot swap plus a dirty flag, so a render
// call sees either the fully-old or the fully-new layer set, never a
// mixture. The mutex below guards lifecycle transitions only and is never
// taken on the render path.
type Engine struct {
	cfg EngineConfig

	mu    sync.Mutex
	state atomic.Int32

	configs      atomic.Pointer[[]LayerConfig]
	dirty        atomic.Bool
	resetPending atomic.Bool

	failures atomic.Int32
	critical atomic.Pointer[CriticalError]
	notifyCh chan *CriticalError
	done     chan struct{}

	mixer *mixer
	meter *meter

	// owned by the render context
	active   []LayerConfig
	lastGate bool
}

// NewEngine ...
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		cfg:      cfg.withDefaults(),
		meter:    newMeter(),
		notifyCh: make(chan *CriticalError, 1),
	}
}

// Config returns the normalized construction-time configuration.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

func (e *Engine) loadState() int {
	return int(e.state.Load())
}

// Initialize validates the layer set, builds the mixer pool, and starts the
// notification worker. It runs synchronously under the control-side critical
// section and never touches the render path.
func (e *Engine) Initialize(configs []LayerConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st := e.loadState(); st != engineStateUninitialized {
		return &LifecycleError{Op: "Initialize", State: engineStateToString(st)}
	}
	if err := validateConfigs(configs, e.cfg.SampleRate); err != nil {
		return err
	}
	m := newMixer()
	if err := m.initialize(len(configs), e.cfg.SampleRate, e.cfg.AttackSeconds, e.cfg.ReleaseSeconds); err != nil {
		return err
	}
	e.mixer = m
	e.publish(configs)
	e.done = make(chan struct{})
	go e.notifyLoop(e.done)
	e.state.Store(int32(engineStateInitialized))
	return nil
}

// UpdateConfigs re-validates and publishes a fresh immutable layer set with
// one atomic swap. The render context adopts it at the start of its next
// call. Sets shorter than the mixer pool leave the remaining layers
// unrendered; longer sets are truncated to the pool.
func (e *Engine) UpdateConfigs(configs []LayerConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch st := e.loadState(); st {
	case engineStateInitialized, engineStatePlaying, engineStateStopped:
	default:
		return &LifecycleError{Op: "UpdateConfigs", State: engineStateToString(st)}
	}
	if err := validateConfigs(configs, e.cfg.SampleRate); err != nil {
		return err
	}
	e.publish(configs)
	return nil
}

func (e *Engine) publish(configs []LayerConfig) {
	cp := append([]LayerConfig(nil), configs...)
	e.configs.Store(&cp)
	e.dirty.Store(true)
}

// Configs returns a copy of the most recently published layer set.
func (e *Engine) Configs() []LayerConfig {
	p := e.configs.Load()
	if p == nil {
		return nil
	}
	return append([]LayerConfig(nil), (*p)...)
}

// Start opens the envelope gate and clears any recorded failures.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch st := e.loadState(); st {
	case engineStateInitialized, engineStateStopped:
	default:
		return &LifecycleError{Op: "Start", State: engineStateToString(st)}
	}
	e.failures.Store(0)
	e.critical.Store(nil)
	e.state.Store(int32(engineStatePlaying))
	return nil
}

// Stop begins the release fade. The state flip is consumed by the next
// render call; an in-flight render is never interrupted, and the tail keeps
// rendering until every envelope has faded to silence.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st := e.loadState(); st != engineStatePlaying {
		return &LifecycleError{Op: "Stop", State: engineStateToString(st)}
	}
	e.state.Store(int32(engineStateStopped))
	return nil
}

// IsPlaying ...
func (e *Engine) IsPlaying() bool {
	return e.loadState() == engineStatePlaying
}

// FillBuffer is the real-time entry point. It never allocates in steady
// state, never blocks, and never lets a fault escape: on an internal panic
// the buffer is silenced and the failure counted, and after
// maxConsecutiveRenderFailures in a row the engine stops itself, records a
// CriticalError, and wakes the notification worker without waiting on it.
func (e *Engine) FillBuffer(buf []float64) {
	defer func() {
		if r := recover(); r != nil {
			zeroBuffer(buf)
			e.recordRenderFailure(r)
		}
	}()
	st := e.loadState()
	if st != engineStatePlaying && st != engineStateStopped {
		zeroBuffer(buf)
		return
	}
	if e.resetPending.CompareAndSwap(true, false) {
		e.mixer.reset()
		e.lastGate = false
	}
	if e.dirty.CompareAndSwap(true, false) {
		e.active = *e.configs.Load()
	}
	gate := st == engineStatePlaying
	if e.lastGate && !gate {
		e.mixer.triggerReleaseAll()
	}
	e.lastGate = gate
	e.mixer.render(buf, e.cfg.SampleRate, e.active, gate)
	e.meter.observe(buf)
	e.failures.Store(0)
}

func (e *Engine) recordRenderFailure(cause interface{}) {
	n := int(e.failures.Add(1))
	if n != maxConsecutiveRenderFailures {
		return
	}
	crit := &CriticalError{Failures: n, Cause: fmt.Errorf("render fault: %v", cause)}
	e.critical.Store(crit)
	e.state.CompareAndSwap(int32(engineStatePlaying), int32(engineStateStopped))
	select {
	case e.notifyCh <- crit:
	default:
	}
}

func (e *Engine) notifyLoop(done <-chan struct{}) {
	for {
		select {
		case crit := <-e.notifyCh:
			log.Printf("critical render failure: %v\n", crit)
			if e.cfg.OnCriticalError != nil {
				e.cfg.OnCriticalError(crit)
			}
		case <-done:
			return
		}
	}
}

// GetCriticalError returns the recorded critical failure and clears it, or
// nil. Non-blocking, intended for control-side polling.
func (e *Engine) GetCriticalError() error {
	if crit := e.critical.Swap(nil); crit != nil {
		return crit
	}
	return nil
}

// GetLayerEnvelopeValue reports the current envelope gain of one layer for
// metering. Out-of-range indexes and an engine that never built its layer
// pool, whether still uninitialized or disposed straight away, read as 0.
func (e *Engine) GetLayerEnvelopeValue(index int) float64 {
	if e.loadState() == engineStateUninitialized || e.mixer == nil {
		return 0
	}
	return e.mixer.envelopeValue(index)
}

// PeakLevel reports the largest output magnitude of the last rendered block.
func (e *Engine) PeakLevel() float64 {
	return e.meter.peak()
}

// Spectrum returns output magnitudes per frequency bin over the most recent
// window of size samples; bin i spans i*sampleRate/size Hz.
func (e *Engine) Spectrum(size int) ([]float64, error) {
	return e.meter.spectrum(size)
}

var spectrumWindows = map[string]func([]float64){
	"han":      han,
	"hamming":  hamming,
	"blackman": blackman,
}

// SetSpectrumWindow selects the window function applied before the spectrum
// transform: "han" (the default), "hamming" or "blackman". Callable in any
// state.
func (e *Engine) SetSpectrumWindow(name string) error {
	fn, ok := spectrumWindows[name]
	if !ok {
		return &ConfigError{Layer: -1, Field: "spectrumWindow", Reason: "unknown window " + name}
	}
	e.meter.setWindow(fn)
	return nil
}

// Reset performs a hard stop plus a full mixer reset, so the next Start
// ramps up from zeroed phase and gain. The render context applies it at the
// start of its next call.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch st := e.loadState(); st {
	case engineStateInitialized, engineStatePlaying, engineStateStopped:
	default:
		return &LifecycleError{Op: "Reset", State: engineStateToString(st)}
	}
	if e.loadState() == engineStatePlaying {
		e.state.Store(int32(engineStateStopped))
	}
	e.resetPending.Store(true)
	e.failures.Store(0)
	e.critical.Store(nil)
	return nil
}

// Dispose tears the engine down. It is idempotent; afterwards every other
// operation fails with a LifecycleError and the render path emits silence.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loadState() == engineStateDisposed {
		return
	}
	if e.done != nil {
		close(e.done)
		e.done = nil
	}
	e.state.Store(int32(engineStateDisposed))
}
