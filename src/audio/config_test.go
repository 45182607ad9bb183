package audio

import (
	"errors"
	"math"
	"testing"
)

func validLayer() LayerConfig {
	return LayerConfig{CarrierFreq: 200, ModFreq: 10, ModDepth: 0.8, Weight: 1, Active: true}
}

func TestLayerConfigValidate(t *testing.T) {
	cases := []struct {
		name  string
		tweak func(*LayerConfig)
		field string // empty means the config is valid
	}{
		{"valid", func(c *LayerConfig) {}, ""},
		{"carrier at lower bound", func(c *LayerConfig) { c.CarrierFreq = 20 }, ""},
		{"carrier at nyquist", func(c *LayerConfig) { c.CarrierFreq = 500 }, ""},
		{"carrier too low", func(c *LayerConfig) { c.CarrierFreq = 19.9 }, "carrierFreq"},
		{"carrier above nyquist", func(c *LayerConfig) { c.CarrierFreq = 500.1 }, "carrierFreq"},
		{"mod at zero", func(c *LayerConfig) { c.ModFreq = 0 }, ""},
		{"mod negative", func(c *LayerConfig) { c.ModFreq = -1 }, "modFreq"},
		{"mod at nyquist", func(c *LayerConfig) { c.ModFreq = 500 }, "modFreq"},
		{"depth at bounds", func(c *LayerConfig) { c.ModDepth = 1 }, ""},
		{"depth too deep", func(c *LayerConfig) { c.ModDepth = 1.1 }, "modDepth"},
		{"depth negative", func(c *LayerConfig) { c.ModDepth = -0.1 }, "modDepth"},
		{"weight too heavy", func(c *LayerConfig) { c.Weight = 1.5 }, "weight"},
		{"weight negative", func(c *LayerConfig) { c.Weight = -0.5 }, "weight"},
		{"carrier NaN", func(c *LayerConfig) { c.CarrierFreq = math.NaN() }, "carrierFreq"},
		{"carrier infinite", func(c *LayerConfig) { c.CarrierFreq = math.Inf(1) }, "carrierFreq"},
		{"mod freq NaN", func(c *LayerConfig) { c.ModFreq = math.NaN() }, "modFreq"},
		{"mod freq infinite", func(c *LayerConfig) { c.ModFreq = math.Inf(1) }, "modFreq"},
		{"depth NaN", func(c *LayerConfig) { c.ModDepth = math.NaN() }, "modDepth"},
		{"weight NaN", func(c *LayerConfig) { c.Weight = math.NaN() }, "weight"},
		{"duty NaN", func(c *LayerConfig) { c.Duty = math.NaN() }, "duty"},
		{"duty infinite", func(c *LayerConfig) { c.Duty = math.Inf(-1) }, "duty"},
		{"oversized duty clamps instead", func(c *LayerConfig) { c.Duty = 5 }, ""},
		{"unknown carrier shape", func(c *LayerConfig) { c.CarrierShape = "saw" }, "carrierShape"},
		{"unknown mod shape", func(c *LayerConfig) { c.ModShape = "noise" }, "modShape"},
		{"named shapes", func(c *LayerConfig) { c.CarrierShape = "triangle"; c.ModShape = "square" }, ""},
	}
	for _, tc := range cases {
		cfg := validLayer()
		tc.tweak(&cfg)
		err := cfg.validate(3, 1000)
		if tc.field == "" {
			if err != nil {
				t.Errorf("%s: expected no error, but got: %v", tc.name, err)
			}
			continue
		}
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("%s: expected a ConfigError, but got: %v", tc.name, err)
			continue
		}
		if ce.Field != tc.field {
			t.Errorf("%s: expected field %s, but got: %s", tc.name, tc.field, ce.Field)
		}
		if ce.Layer != 3 {
			t.Errorf("%s: expected layer 3, but got: %d", tc.name, ce.Layer)
		}
	}
}

func TestValidateConfigsBounds(t *testing.T) {
	if err := validateConfigs(nil, 1000); err == nil {
		t.Errorf("expected an error for an empty set")
	}
	tooMany := make([]LayerConfig, MaxLayers+1)
	for i := range tooMany {
		tooMany[i] = validLayer()
	}
	var ce *ConfigError
	if err := validateConfigs(tooMany, 1000); !errors.As(err, &ce) || ce.Layer != -1 {
		t.Errorf("expected a whole-set ConfigError, but got: %v", err)
	}
	expectNoError(t, validateConfigs(tooMany[:MaxLayers], 1000))
}

func TestValidateConfigsReportsOffendingLayer(t *testing.T) {
	configs := []LayerConfig{validLayer(), validLayer()}
	configs[1].Weight = 2
	var ce *ConfigError
	if err := validateConfigs(configs, 1000); !errors.As(err, &ce) || ce.Layer != 1 {
		t.Errorf("expected layer 1 to be reported, but got: %v", err)
	}
}

func TestEngineConfigDefaults(t *testing.T) {
	cfg := EngineConfig{}.withDefaults()
	expectEqual(t, cfg.SampleRate, DefaultSampleRate)
	expectEqual(t, cfg.AttackSeconds, DefaultAttackSeconds)
	expectEqual(t, cfg.ReleaseSeconds, DefaultReleaseSeconds)

	custom := EngineConfig{SampleRate: 48000, AttackSeconds: 1, ReleaseSeconds: 2}.withDefaults()
	expectEqual(t, custom.SampleRate, 48000.0)
	expectEqual(t, custom.AttackSeconds, 1.0)
	expectEqual(t, custom.ReleaseSeconds, 2.0)

	// a NaN rate would poison every phase increment downstream
	bad := EngineConfig{SampleRate: math.NaN(), AttackSeconds: math.Inf(1), ReleaseSeconds: math.NaN()}.withDefaults()
	expectEqual(t, bad.SampleRate, DefaultSampleRate)
	expectEqual(t, bad.AttackSeconds, DefaultAttackSeconds)
	expectEqual(t, bad.ReleaseSeconds, DefaultReleaseSeconds)
}

func TestShapeKindDefaultsToSine(t *testing.T) {
	expectEqual(t, shapeKind(""), waveSine)
	expectEqual(t, shapeKind("triangle"), waveTriangle)
	expectEqual(t, shapeKind("saw"), -1)
}
