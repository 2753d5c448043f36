package onset

import (
	"time"

	"github.com/nlicitra/best-friend/algorithms/temporal"
	"github.com/nlicitra/best-friend/logging"
)

// Event describes one confirmed onset.
type Event struct {
	// Chunk is the index of the chunk the onset belongs to, counting from 0.
	// Detection lags by one chunk: the event for chunk N is returned by the
	// call that processed chunk N+1.
	Chunk int64 `json:"chunk"`

	// Offset is the start time of that chunk within the stream. Zero when
	// the sample rate is unknown.
	Offset time.Duration `json:"offset"`

	// Strength is the detection function magnitude that confirmed the onset.
	Strength float64 `json:"strength"`
}

// Detector is the host-facing onset detector: it wraps the frame processor
// with chunk accounting, event records, and diagnostics through the injected
// logger.
//
// A Detector must be driven by exactly one goroutine, one batch or chunk at
// a time, in strict arrival order. Hosts that share one must serialize
// access externally (a single-producer queue feeding one consumer) rather
// than rely on internal locking, which the detector deliberately does not
// have.
type Detector struct {
	sampleRate int
	proc       *temporal.FrameProcessor

	// pending accumulates samples between Feed calls until a full chunk is
	// available.
	pending temporal.Chunk
	fill    int
	chunks  int64

	logger logging.Logger
}

// New creates a detector. A nil config selects DefaultConfig. Construction
// fails for an unimplemented or unknown detection mode and for invalid
// threshold parameters.
func New(cfg *Config) (*Detector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	proc, err := temporal.NewFrameProcessor(cfg.Mode, cfg.Threshold)
	if err != nil {
		return nil, err
	}

	logger := logging.WithFields(logging.Fields{
		"component": "onset_detector",
	})
	logger.Debug("detector created", logging.Fields{
		"mode":        string(cfg.Mode),
		"lookback":    cfg.Threshold.Lookback,
		"sample_rate": cfg.SampleRate,
	})

	return &Detector{
		sampleRate: cfg.SampleRate,
		proc:       proc,
		logger:     logger,
	}, nil
}

// ProcessChunk feeds one fixed-size chunk to the processor. The returned
// event is meaningful only when the boolean is true.
func (d *Detector) ProcessChunk(c temporal.Chunk) (Event, bool) {
	warming := d.proc.State() == temporal.StateWarmingUp
	confirmed := d.proc.Process(c)
	idx := d.chunks
	d.chunks++

	if warming && d.proc.State() == temporal.StateReady {
		d.logger.Debug("warm-up complete", logging.Fields{
			"chunks": d.chunks,
		})
	}

	if !confirmed {
		return Event{}, false
	}

	ev := Event{
		Chunk:    idx - 1,
		Offset:   d.offset(idx - 1),
		Strength: d.proc.LastOnsetStrength(),
	}
	d.logger.Debug("onset confirmed", logging.Fields{
		"chunk":     ev.Chunk,
		"strength":  ev.Strength,
		"threshold": d.proc.Threshold(),
	})
	return ev, true
}

// offset converts a chunk index to its start time within the stream.
func (d *Detector) offset(chunk int64) time.Duration {
	if d.sampleRate <= 0 {
		return 0
	}
	samples := float64(chunk) * temporal.ChunkSize
	return time.Duration(samples / float64(d.sampleRate) * float64(time.Second))
}

// Mode returns the detection mode the detector was constructed with.
func (d *Detector) Mode() temporal.DetectionMode {
	return d.proc.Mode()
}

// State reports whether the detector is still warming up.
func (d *Detector) State() temporal.State {
	return d.proc.State()
}

// Threshold returns the adaptive threshold carried from the most recently
// processed chunk.
func (d *Detector) Threshold() float64 {
	return d.proc.Threshold()
}

// HighestPeak returns the largest confirmed onset magnitude seen so far.
func (d *Detector) HighestPeak() float64 {
	return d.proc.HighestPeak()
}

// Chunks returns how many full chunks have been processed.
func (d *Detector) Chunks() int64 {
	return d.chunks
}
