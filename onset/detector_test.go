package onset

import (
	"errors"
	"testing"
	"time"

	"github.com/nlicitra/best-friend/algorithms/temporal"
)

// constantChunk returns a chunk with every sample set to v.
func constantChunk(v float32) temporal.Chunk {
	var c temporal.Chunk
	for i := range c {
		c[i] = v
	}
	return c
}

// stepSamples is a flat sample stream of 12 silent chunks followed by count
// chunks at a constant level of 5, which confirms exactly one onset on chunk
// index 16 with strength 51200.
func stepSamples(count int) []float32 {
	samples := make([]float32, 0, (12+count)*temporal.ChunkSize)
	for i := 0; i < 12*temporal.ChunkSize; i++ {
		samples = append(samples, 0)
	}
	for i := 0; i < count*temporal.ChunkSize; i++ {
		samples = append(samples, 5)
	}
	return samples
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	d, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil) error = %v", err)
	}
	if got := d.State(); got != temporal.StateWarmingUp {
		t.Errorf("State() = %v, want %v", got, temporal.StateWarmingUp)
	}
	if got := d.Chunks(); got != 0 {
		t.Errorf("Chunks() = %d, want 0", got)
	}
}

func TestNewRejectsSpectralDifference(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Mode = temporal.ModeSpectralDifference
	_, err := New(cfg)
	if !errors.Is(err, temporal.ErrModeNotImplemented) {
		t.Fatalf("New(spectral difference) error = %v, want ErrModeNotImplemented", err)
	}
}

func TestProcessChunkStepScenario(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SampleRate = 44100
	d, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var events []Event
	for i := 0; i < 22; i++ {
		chunk := constantChunk(0)
		if i >= 12 {
			chunk = constantChunk(5)
		}
		if ev, ok := d.ProcessChunk(chunk); ok {
			events = append(events, ev)
		}
	}

	if len(events) != 1 {
		t.Fatalf("got %d events (%v), want exactly 1", len(events), events)
	}

	ev := events[0]
	// The onset is confirmed while processing chunk 16 but belongs to the
	// peak produced on chunk 15.
	if got, want := ev.Chunk, int64(15); got != want {
		t.Errorf("Event.Chunk = %d, want %d", got, want)
	}
	if got, want := ev.Strength, 51200.0; got != want {
		t.Errorf("Event.Strength = %v, want %v", got, want)
	}
	// Chunk 15 starts at sample 7680; at 44.1 kHz that is ~174 ms in.
	if ev.Offset < 174*time.Millisecond || ev.Offset > 175*time.Millisecond {
		t.Errorf("Event.Offset = %v, want ~174ms", ev.Offset)
	}

	if got, want := d.HighestPeak(), 51200.0; got != want {
		t.Errorf("HighestPeak() = %v, want %v", got, want)
	}
	if got, want := d.Chunks(), int64(22); got != want {
		t.Errorf("Chunks() = %d, want %d", got, want)
	}
}

func TestProcessChunkWithoutSampleRate(t *testing.T) {
	t.Parallel()

	d, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil) error = %v", err)
	}

	var events []Event
	for i := 0; i < 22; i++ {
		chunk := constantChunk(0)
		if i >= 12 {
			chunk = constantChunk(5)
		}
		if ev, ok := d.ProcessChunk(chunk); ok {
			events = append(events, ev)
		}
	}

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if got := events[0].Offset; got != 0 {
		t.Errorf("Event.Offset without a sample rate = %v, want 0", got)
	}
}

func TestDetectorStatePromotion(t *testing.T) {
	t.Parallel()

	d, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil) error = %v", err)
	}

	silence := constantChunk(0)
	lookback := DefaultConfig().Threshold.Lookback
	for i := 0; i < lookback; i++ {
		if got := d.State(); got != temporal.StateWarmingUp {
			t.Fatalf("State() before chunk %d = %v, want %v", i, got, temporal.StateWarmingUp)
		}
		d.ProcessChunk(silence)
	}
	if got := d.State(); got != temporal.StateReady {
		t.Errorf("State() after %d chunks = %v, want %v", lookback, got, temporal.StateReady)
	}
}
