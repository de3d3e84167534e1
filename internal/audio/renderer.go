package audio

// SourceRenderer is anything that, given the live output sample rate and a
// buffer to contribute to, can additively render itself into that buffer and
// report whether it should still be kept alive. Implementations must not
// allocate, block, or take locks — they run on the audio callback thread.
type SourceRenderer interface {
	// RenderMono adds this source's contribution to data, a mono buffer of
	// one float per output frame.
	RenderMono(sampleRate uint32, data []float32)
	// RenderStereo adds this source's contribution to data, an interleaved
	// L,R,L,R... buffer.
	RenderStereo(sampleRate uint32, data []float32)
	// Alive reports whether the source should remain in the mixer's list.
	Alive() bool
}
