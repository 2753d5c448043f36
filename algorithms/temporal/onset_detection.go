package temporal

import (
	"errors"
	"fmt"
	"math"

	"github.com/nlicitra/best-friend/algorithms/stats"
)

var (
	// ErrModeNotImplemented is returned when constructing a processor with a
	// detection mode that is declared but has no implemented computation.
	ErrModeNotImplemented = errors.New("detection mode is not implemented")

	// ErrInvalidLookback is returned when the threshold lookback window is
	// smaller than one entry.
	ErrInvalidLookback = errors.New("threshold lookback must be at least 1")
)

// DetectionMode selects the onset detection function.
type DetectionMode string

const (
	// ModeEnergy detects onsets from the absolute energy difference between
	// two staggered sliding frames.
	ModeEnergy DetectionMode = "energy"

	// ModeSpectralDifference is declared as an alternative but has no
	// implemented computation; constructing a processor with it fails with
	// ErrModeNotImplemented.
	ModeSpectralDifference DetectionMode = "spectral_difference"
)

// peakPickSpan is the number of history entries the local-maximum test
// inspects: the newest value, the one before it, and the one before that.
const peakPickSpan = 3

// ThresholdParams weights the adaptive threshold
//
//	threshold = Lambda*median(history[0:Lookback]) +
//	            Alpha*mean(history[0:Lookback]) +
//	            PeakWeight*highestPeak
//
// recomputed after every processed chunk over the Lookback most recent
// detection function values.
type ThresholdParams struct {
	Lambda     float64 `json:"lambda"`      // median weight
	Alpha      float64 `json:"alpha"`       // mean weight
	Lookback   int     `json:"lookback"`    // history entries the threshold reads
	PeakWeight float64 `json:"peak_weight"` // weight of the highest confirmed peak
}

// DefaultThresholdParams returns the tuned default weights.
func DefaultThresholdParams() ThresholdParams {
	return ThresholdParams{
		Lambda:     1.0,
		Alpha:      0.7,
		Lookback:   10,
		PeakWeight: 0.05,
	}
}

// State reports whether the processor has seen enough chunks for the
// threshold and peak-picking logic to be defined.
type State int

const (
	// StateWarmingUp means the history is still shorter than the threshold
	// lookback or the peak-picking span; Process reports no onsets.
	StateWarmingUp State = iota

	// StateReady means every Process call runs the full detection pipeline.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateWarmingUp:
		return "warming_up"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// FrameProcessor turns a stream of chunks into a stream of onset booleans.
//
// It owns two staggered sliding frames: each processed chunk enters the
// "current" frame, and the chunk evicted from "current" enters "previous",
// so "previous" always lags "current" by exactly one chunk-write. The
// absolute difference between the two frame energies is the onset detection
// function value for the chunk; values are prepended to a most-recent-first
// history, the adaptive threshold is recomputed, and a strict local maximum
// one step back that exceeds the threshold confirms an onset.
//
// A FrameProcessor is not safe for concurrent use: it is meant to be driven
// by exactly one processing loop, one chunk at a time, in strict arrival
// order. Sharing one across goroutines requires external serialization.
type FrameProcessor struct {
	mode     DetectionMode
	params   ThresholdParams
	previous Frame
	current  Frame

	// history holds detection function values most-recent-first, bounded at
	// Lookback+peakPickSpan entries; older values are never read.
	history     []float64
	threshold   float64
	highestPeak float64
	lastOnset   float64
	state       State
}

// NewFrameProcessor creates a processor with zero-filled frames and an empty
// history. ModeSpectralDifference is rejected with ErrModeNotImplemented;
// unknown modes and a lookback below 1 are rejected as well.
func NewFrameProcessor(mode DetectionMode, params ThresholdParams) (*FrameProcessor, error) {
	switch mode {
	case ModeEnergy:
	case ModeSpectralDifference:
		return nil, fmt.Errorf("%w: %q", ErrModeNotImplemented, mode)
	default:
		return nil, fmt.Errorf("unknown detection mode %q", mode)
	}

	if params.Lookback < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLookback, params.Lookback)
	}

	return &FrameProcessor{
		mode:    mode,
		params:  params,
		history: make([]float64, 0, params.Lookback+peakPickSpan),
		state:   StateWarmingUp,
	}, nil
}

// Process consumes one chunk and reports whether an onset was confirmed.
//
// A confirmed onset belongs to the chunk processed one call earlier: the
// peak test inspects the previous history entry, never the value computed on
// this call, so detection lags the live chunk by exactly one call. During
// warm-up (fewer history entries than the lookback window or the peak span)
// Process always returns false.
//
// Samples must be finite; a chunk carrying NaN or Inf is a caller contract
// violation. The derived detection function value is sanitized to 0 in that
// case so the history keeps the total order the median relies on, and the
// pipeline recovers once the bad samples slide out of both frames.
func (p *FrameProcessor) Process(chunk Chunk) bool {
	p.shift(chunk)

	odf := math.Abs(p.current.Energy() - p.previous.Energy())
	if math.IsNaN(odf) || math.IsInf(odf, 0) {
		odf = 0
	}
	p.push(odf)

	n := len(p.history)
	if n >= p.params.Lookback {
		p.threshold = p.computeThreshold()
	}

	if p.state == StateWarmingUp {
		if n < p.params.Lookback || n < peakPickSpan {
			return false
		}
		p.state = StateReady
	}

	return p.checkPreviousOnset()
}

// shift writes chunk into the current frame and carries the chunk it evicts
// into the previous frame, keeping the two windows staggered by one write.
func (p *FrameProcessor) shift(chunk Chunk) {
	carry := p.current.Write(chunk)
	p.previous.Write(carry)
}

// push prepends v to the history, discarding the oldest retained value once
// the backing window is full.
func (p *FrameProcessor) push(v float64) {
	if len(p.history) < cap(p.history) {
		p.history = p.history[:len(p.history)+1]
	}
	copy(p.history[1:], p.history)
	p.history[0] = v
}

func (p *FrameProcessor) computeThreshold() float64 {
	window := p.history[:p.params.Lookback]
	return p.params.Lambda*stats.Median(window) +
		p.params.Alpha*stats.Mean(window) +
		p.params.PeakWeight*p.highestPeak
}

// checkPreviousOnset applies the peak test to the three newest history
// values: the middle one must be a strict local maximum and exceed the
// threshold. On confirmation it becomes the new highest peak if it is the
// largest seen so far.
func (p *FrameProcessor) checkPreviousOnset() bool {
	curr, prev, prevPrev := p.history[0], p.history[1], p.history[2]
	if prev > curr && prev > prevPrev && prev > p.threshold {
		if prev > p.highestPeak {
			p.highestPeak = prev
		}
		p.lastOnset = prev
		return true
	}
	return false
}

// Mode returns the detection mode the processor was constructed with.
func (p *FrameProcessor) Mode() DetectionMode {
	return p.mode
}

// Params returns the threshold parameters in use.
func (p *FrameProcessor) Params() ThresholdParams {
	return p.params
}

// State reports whether the processor is still warming up.
func (p *FrameProcessor) State() State {
	return p.state
}

// Threshold returns the adaptive threshold carried from the most recent
// Process call. It stays 0 until the history covers the lookback window.
func (p *FrameProcessor) Threshold() float64 {
	return p.threshold
}

// HighestPeak returns the largest confirmed onset magnitude seen so far.
// It never decreases and is never reset.
func (p *FrameProcessor) HighestPeak() float64 {
	return p.highestPeak
}

// LastOnsetStrength returns the detection function magnitude of the most
// recently confirmed onset, or 0 if none has been confirmed yet.
func (p *FrameProcessor) LastOnsetStrength() float64 {
	return p.lastOnset
}
