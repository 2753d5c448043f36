package temporal

import "fmt"

// Audio arrives as fixed-size chunks and is analyzed over a sliding frame of
// several consecutive chunks. Both sizes are compile-time constants so the
// hot path works on fixed-length arrays with no allocation.
const (
	// ChunkSize is the number of samples per chunk delivered by the host.
	ChunkSize = 512

	// WindowChunks is the number of chunks held by one sliding frame.
	WindowChunks = 4

	// FrameSize is the effective analysis window in samples.
	FrameSize = ChunkSize * WindowChunks
)

// Chunk is one fixed-length block of consecutive single-precision audio
// samples as delivered by the caller. Chunks are value types and are treated
// as immutable once produced.
type Chunk [ChunkSize]float32

// Frame is a sliding window of WindowChunks consecutive chunks, oldest first,
// exposed as one contiguous buffer and a scalar energy metric. A Frame always
// holds exactly WindowChunks chunks and is mutated only through Write.
type Frame struct {
	chunks [WindowChunks]Chunk
}

// NewFrame creates a zero-filled frame.
func NewFrame() *Frame {
	return &Frame{}
}

// Write appends c at the newest position and removes and returns the oldest
// chunk. The window length is fixed by construction, so Write always
// succeeds.
func (f *Frame) Write(c Chunk) Chunk {
	evicted := f.chunks[0]
	copy(f.chunks[:WindowChunks-1], f.chunks[1:])
	f.chunks[WindowChunks-1] = c
	return evicted
}

// Buffer materializes the concatenation of the held chunks in
// oldest-to-newest order. It is recomputed on each call and never mutates
// the frame.
func (f *Frame) Buffer() [FrameSize]float32 {
	var buf [FrameSize]float32
	for i := range f.chunks {
		copy(buf[i*ChunkSize:(i+1)*ChunkSize], f.chunks[i][:])
	}
	return buf
}

// Energy returns the sum of squares of every sample in the window: a plain
// unnormalized L2 energy with no window function applied. It is non-negative
// and zero exactly when every sample is zero.
func (f *Frame) Energy() float64 {
	var sum float64
	for i := range f.chunks {
		for _, s := range &f.chunks[i] {
			sum += float64(s) * float64(s)
		}
	}
	return sum
}

// String renders the first few samples of the window for debugging.
func (f *Frame) String() string {
	b := &f.chunks[0]
	return fmt.Sprintf("[%v,%v,%v,%v...]", b[0], b[1], b[2], b[3])
}
