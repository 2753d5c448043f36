package onset

import (
	"errors"

	goaudio "github.com/go-audio/audio"

	"github.com/nlicitra/best-friend/algorithms/temporal"
	"github.com/nlicitra/best-friend/logging"
)

// ErrNilBuffer is returned by FeedBuffer when the PCM buffer is nil.
var ErrNilBuffer = errors.New("nil audio buffer")

// Feed consumes a batch of mono samples of any length, slicing it into
// fixed-size chunks and processing each completed chunk. A trailing partial
// chunk stays pending and is completed by the next call. The returned events
// are the onsets confirmed during this batch, in order.
func (d *Detector) Feed(samples []float32) []Event {
	var events []Event
	for len(samples) > 0 {
		n := copy(d.pending[d.fill:], samples)
		d.fill += n
		samples = samples[n:]

		if d.fill == temporal.ChunkSize {
			d.fill = 0
			if ev, ok := d.ProcessChunk(d.pending); ok {
				events = append(events, ev)
			}
		}
	}
	return events
}

// FeedBuffer feeds an in-memory go-audio PCM buffer. Multi-channel buffers
// are averaged down to mono first. When the detector has no sample rate yet,
// the buffer's format supplies it, enabling event offsets. Decoding and
// file or stream I/O remain the host's job; this accepts decoded PCM only.
func (d *Detector) FeedBuffer(buf *goaudio.Float32Buffer) ([]Event, error) {
	if buf == nil {
		return nil, ErrNilBuffer
	}

	data := buf.Data
	if buf.Format != nil {
		if d.sampleRate == 0 && buf.Format.SampleRate > 0 {
			d.sampleRate = buf.Format.SampleRate
			d.logger.Debug("sample rate adopted from buffer", logging.Fields{
				"sample_rate": d.sampleRate,
			})
		}
		if buf.Format.NumChannels > 1 {
			data = downmix(data, buf.Format.NumChannels)
		}
	}

	return d.Feed(data), nil
}

// downmix averages interleaved multi-channel samples into mono. A trailing
// incomplete sample frame is dropped.
func downmix(data []float32, channels int) []float32 {
	frames := len(data) / channels
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += data[i*channels+c]
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
