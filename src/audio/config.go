package audio

import (
	"fmt"
	"math"
)

// ----- Engine Config ----- //

const (
	// MaxLayers bounds the mixer's layer pool.
	MaxLayers = 8

	DefaultSampleRate     = 44100.0
	DefaultAttackSeconds  = 10.0
	DefaultReleaseSeconds = 30.0

	minCarrierFreq = 20.0
)

// EngineConfig carries the construction-time constants of an Engine.
// Zero fields fall back to the defaults above.
type EngineConfig struct {
	SampleRate     float64
	AttackSeconds  float64
	ReleaseSeconds float64

	// OnCriticalError, when set, is called from a non-real-time worker
	// after repeated consecutive render faults stop playback.
	OnCriticalError func(error)
}

// DefaultEngineConfig ...
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SampleRate:     DefaultSampleRate,
		AttackSeconds:  DefaultAttackSeconds,
		ReleaseSeconds: DefaultReleaseSeconds,
	}
}

func (c EngineConfig) withDefaults() EngineConfig {
	if !isFinite(c.SampleRate) || c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	if !isFinite(c.AttackSeconds) || c.AttackSeconds <= 0 {
		c.AttackSeconds = DefaultAttackSeconds
	}
	if !isFinite(c.ReleaseSeconds) || c.ReleaseSeconds <= 0 {
		c.ReleaseSeconds = DefaultReleaseSeconds
	}
	return c
}

// ----- Layer Config ----- //

// LayerConfig describes one signal layer: an audible carrier, an optional
// amplitude modulator gating or shaping it, a mix weight, and an active flag.
// Values are plain data; they are validated against the engine sample rate
// and published to the render context as part of an immutable set.
type LayerConfig struct {
	CarrierFreq  float64 `json:"carrierFreq"`
	CarrierShape string  `json:"carrierShape,omitempty"` // "sine" (default), "triangle", "square"
	ModFreq      float64 `json:"modFreq"`                // 0 disables modulation
	ModShape     string  `json:"modShape,omitempty"`     // square gives isochronic gating
	ModDepth     float64 `json:"modDepth"`               // 0..1
	Duty         float64 `json:"duty,omitempty"`         // square duty, 0 means 0.5
	Weight       float64 `json:"weight"`                 // 0..1
	Active       bool    `json:"active"`
	Description  string  `json:"description,omitempty"`
}

// shapeKind maps an optional shape name to a wave kind; empty means sine.
func shapeKind(s string) int {
	if s == "" {
		return waveSine
	}
	return waveKindFromString(s)
}

// isFinite filters the values rendering cannot absorb. NaN compares false
// against any bound, so every range check below must reject it explicitly.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (c LayerConfig) validate(index int, sampleRate float64) error {
	nyquist := sampleRate / 2
	if !isFinite(c.CarrierFreq) || c.CarrierFreq < minCarrierFreq || c.CarrierFreq > nyquist {
		return &ConfigError{
			Layer:  index,
			Field:  "carrierFreq",
			Reason: fmt.Sprintf("%g is outside [%g, %g]", c.CarrierFreq, minCarrierFreq, nyquist),
		}
	}
	if !isFinite(c.ModFreq) || c.ModFreq < 0 || c.ModFreq >= nyquist {
		return &ConfigError{
			Layer:  index,
			Field:  "modFreq",
			Reason: fmt.Sprintf("%g is outside [0, %g)", c.ModFreq, nyquist),
		}
	}
	if !isFinite(c.ModDepth) || c.ModDepth < 0 || c.ModDepth > 1 {
		return &ConfigError{
			Layer:  index,
			Field:  "modDepth",
			Reason: fmt.Sprintf("%g is outside [0, 1]", c.ModDepth),
		}
	}
	if !isFinite(c.Weight) || c.Weight < 0 || c.Weight > 1 {
		return &ConfigError{
			Layer:  index,
			Field:  "weight",
			Reason: fmt.Sprintf("%g is outside [0, 1]", c.Weight),
		}
	}
	if !isFinite(c.Duty) {
		return &ConfigError{
			Layer:  index,
			Field:  "duty",
			Reason: fmt.Sprintf("%g is not a usable duty cycle", c.Duty),
		}
	}
	if shapeKind(c.CarrierShape) < 0 {
		return &ConfigError{Layer: index, Field: "carrierShape", Reason: "unknown shape " + c.CarrierShape}
	}
	if shapeKind(c.ModShape) < 0 {
		return &ConfigError{Layer: index, Field: "modShape", Reason: "unknown shape " + c.ModShape}
	}
	return nil
}

func validateConfigs(configs []LayerConfig, sampleRate float64) error {
	if len(configs) == 0 {
		return &ConfigError{Layer: -1, Field: "layers", Reason: "no layers"}
	}
	if len(configs) > MaxLayers {
		return &ConfigError{
			Layer:  -1,
			Field:  "layers",
			Reason: fmt.Sprintf("%d layers exceed the maximum of %d", len(configs), MaxLayers),
		}
	}
	for i, c := range configs {
		if err := c.validate(i, sampleRate); err != nil {
			return err
		}
	}
	return nil
}
