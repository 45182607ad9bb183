package audio

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"
	"sync/atomic"

	"github.com/ktye/fft"
)

// ----- Meter ----- //

const meterRingSize = 8192 // power of two, the largest spectrum window

// meter taps the rendered output for control-side level and spectrum
// readouts. The render side never blocks on it: the peak is one atomic word
// and the sample ring is guarded by a try-lock, so a reader holding the lock
// costs the meter one block of samples, never the renderer any time.
type meter struct {
	peakBits atomic.Uint64

	mu     sync.Mutex
	ring   []float64
	cursor int
	window func([]float64) // nil means han
}

func newMeter() *meter {
	return &meter{ring: make([]float64, meterRingSize)}
}

// observe is called by the render context after each block.
func (m *meter) observe(buf []float64) {
	peak := 0.0
	for _, v := range buf {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	m.peakBits.Store(math.Float64bits(peak))
	if !m.mu.TryLock() {
		return // a reader is copying, skip this block
	}
	for _, v := range buf {
		m.ring[m.cursor] = v
		m.cursor = (m.cursor + 1) & (meterRingSize - 1)
	}
	m.mu.Unlock()
}

// peak reports the largest output magnitude of the last observed block.
func (m *meter) peak() float64 {
	return math.Float64frombits(m.peakBits.Load())
}

// snapshot copies the most recent len(dst) samples, oldest first.
func (m *meter) snapshot(dst []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := m.cursor - len(dst) + meterRingSize
	for i := range dst {
		dst[i] = m.ring[(start+i)&(meterRingSize-1)]
	}
}

// setWindow swaps the shaping function applied before the transform.
func (m *meter) setWindow(fn func([]float64)) {
	m.mu.Lock()
	m.window = fn
	m.mu.Unlock()
}

// spectrum transforms the latest window of size samples and returns the
// magnitude per bin up to Nyquist. size must be a power of two no larger
// than the ring. Runs entirely on the control side.
func (m *meter) spectrum(size int) ([]float64, error) {
	if size <= 0 || size > meterRingSize || size&(size-1) != 0 {
		return nil, fmt.Errorf("spectrum size %d is not a power of two in (0, %d]", size, meterRingSize)
	}
	f, err := fft.New(size)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	shape := m.window
	m.mu.Unlock()
	if shape == nil {
		shape = han
	}
	window := make([]float64, size)
	m.snapshot(window)
	shape(window)
	buf := make([]complex128, size)
	for i, v := range window {
		buf[i] = complex(v, 0)
	}
	buf = f.Transform(buf)
	mags := make([]float64, size/2)
	for i := range mags {
		mags[i] = 2 * cmplx.Abs(buf[i]) / float64(size)
	}
	return mags, nil
}
