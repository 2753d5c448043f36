package onset

import (
	"github.com/nlicitra/best-friend/algorithms/temporal"
)

// Config configures a Detector.
type Config struct {
	// Mode selects the onset detection function.
	Mode temporal.DetectionMode `json:"mode"`

	// Threshold weights the adaptive threshold recomputed on every chunk.
	Threshold temporal.ThresholdParams `json:"threshold"`

	// SampleRate, when positive, lets events carry a time offset. Zero is
	// valid: events then report chunk indices only.
	SampleRate int `json:"sample_rate,omitempty"`
}

// DefaultConfig returns the default configuration: energy mode with the
// tuned threshold weights and no sample rate.
func DefaultConfig() *Config {
	return &Config{
		Mode:      temporal.ModeEnergy,
		Threshold: temporal.DefaultThresholdParams(),
	}
}
