package audio

import "testing"

func activeSquareLayer() (*layer, LayerConfig) {
	l := newLayer()
	l.env.configure(0, 0, 1000)
	cfg := LayerConfig{
		CarrierFreq:  125, // 8 samples per cycle at 1kHz, exact phase steps
		CarrierShape: "square",
		Weight:       1,
		Active:       true,
	}
	return l, cfg
}

func TestLayerRendersCarrier(t *testing.T) {
	l, cfg := activeSquareLayer()
	out := make([]float64, 8)
	l.updateAndProcess(out, 1000, cfg, true)
	for i := 0; i < 4; i++ {
		expectEqual(t, out[i], 1.0)
	}
	for i := 4; i < 8; i++ {
		expectEqual(t, out[i], -1.0)
	}
	expectEqual(t, l.envelopeValue(), 1.0)
}

func TestInactiveLayerIsSilentAndFrozen(t *testing.T) {
	l, cfg := activeSquareLayer()
	out := make([]float64, 4)
	l.updateAndProcess(out, 1000, cfg, true)
	expectEqual(t, l.carrier.phase, 0.5)

	off := cfg
	off.Active = false
	frozen := make([]float64, 7)
	for i := range frozen {
		frozen[i] = 9
	}
	l.updateAndProcess(frozen, 1000, off, true)
	for _, v := range frozen {
		expectEqual(t, v, 0.0)
	}
	expectEqual(t, l.carrier.phase, 0.5)
	expectEqual(t, l.env.getValue(), 1.0)

	// reactivation resumes mid-cycle instead of restarting at phase zero
	resumed := make([]float64, 1)
	l.updateAndProcess(resumed, 1000, cfg, true)
	expectEqual(t, resumed[0], -1.0)
}

func TestLayerWeightScalesOutput(t *testing.T) {
	a, cfgA := activeSquareLayer()
	b, cfgB := activeSquareLayer()
	cfgB.Weight = 0.5
	outA := make([]float64, 16)
	outB := make([]float64, 16)
	a.updateAndProcess(outA, 1000, cfgA, true)
	b.updateAndProcess(outB, 1000, cfgB, true)
	for i := range outA {
		expectEqual(t, outB[i], 0.5*outA[i])
	}
}

func TestLayerModFreqZeroDisablesModulation(t *testing.T) {
	plain, cfg := activeSquareLayer()
	modded, cfgMod := activeSquareLayer()
	cfgMod.ModDepth = 0.8 // depth without a mod frequency must do nothing
	outPlain := make([]float64, 16)
	outMod := make([]float64, 16)
	plain.updateAndProcess(outPlain, 1000, cfg, true)
	modded.updateAndProcess(outMod, 1000, cfgMod, true)
	for i := range outPlain {
		expectEqual(t, outMod[i], outPlain[i])
	}
	expectEqual(t, modded.modulator.phase, 0.0)
}

func TestLayerIsochronicGating(t *testing.T) {
	l, cfg := activeSquareLayer()
	cfg.ModFreq = 125
	cfg.ModShape = "square"
	cfg.ModDepth = 1
	out := make([]float64, 8)
	l.updateAndProcess(out, 1000, cfg, true)
	// carrier and modulator run in lockstep: doubled for half the cycle,
	// silenced for the other half
	for i := 0; i < 4; i++ {
		expectEqual(t, out[i], 2.0)
	}
	for i := 4; i < 8; i++ {
		expectEqual(t, out[i], 0.0)
	}
}

func TestLayerGateDownKeepsEnvelopeClosed(t *testing.T) {
	l, cfg := activeSquareLayer()
	out := make([]float64, 8)
	l.updateAndProcess(out, 1000, cfg, false)
	for _, v := range out {
		expectEqual(t, v, 0.0)
	}
	expectEqual(t, l.envelopeValue(), 0.0)
}

func TestLayerDutyAppliesToCarrier(t *testing.T) {
	l, cfg := activeSquareLayer()
	cfg.Duty = 0.25
	out := make([]float64, 8)
	l.updateAndProcess(out, 1000, cfg, true)
	high := 0
	for _, v := range out {
		if v == 1 {
			high++
		}
	}
	expectEqual(t, high, 2)
}

func TestLayerReset(t *testing.T) {
	l, cfg := activeSquareLayer()
	out := make([]float64, 5)
	l.updateAndProcess(out, 1000, cfg, true)
	l.reset()
	expectEqual(t, l.carrier.phase, 0.0)
	expectEqual(t, l.env.getValue(), 0.0)
	expectEqual(t, l.envelopeValue(), 0.0)
}
