package audio

// ----- Amplitude Modulator ----- //

// amApply multiplies carrier[i] by 1 + depth*mod[i]. With a full-depth
// square modulator this gates the carrier on and off (isochronic pulsing);
// with a sine it produces smooth tremolo. depth at or below 0 leaves the
// carrier untouched. The transform is stateless and allocation free.
func amApply(carrier []float64, mod []float64, depth float64) {
	if depth <= 0 {
		return
	}
	if depth > 1 {
		depth = 1
	}
	n := len(carrier)
	if len(mod) < n {
		n = len(mod)
	}
	for i := 0; i < n; i++ {
		carrier[i] *= 1 + depth*mod[i]
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func zeroBuffer(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}
