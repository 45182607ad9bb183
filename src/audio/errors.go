package audio

import "fmt"

// ----- Config Error ----- //

// ConfigError reports a rejected configuration value. Layer is the index of
// the offending layer, or -1 when the whole set is invalid.
type ConfigError struct {
	Layer  int
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Layer < 0 {
		return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid config: layer %d: %s: %s", e.Layer, e.Field, e.Reason)
}

// ----- Lifecycle Error ----- //

// LifecycleError reports an operation called in a state that does not allow it.
type LifecycleError struct {
	Op    string
	State string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s is not allowed while %s", e.Op, e.State)
}

// ----- Critical Error ----- //

// CriticalError is recorded after repeated consecutive render faults.
// It is delivered to the control side by polling or by the engine's
// notification callback, never through the render call itself.
type CriticalError struct {
	Failures int
	Cause    error
}

func (e *CriticalError) Error() string {
	return fmt.Sprintf("render failed %d times in a row: %v", e.Failures, e.Cause)
}

func (e *CriticalError) Unwrap() error {
	return e.Cause
}
