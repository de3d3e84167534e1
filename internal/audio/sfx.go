package audio

import (
	"weak"

	"audiocore/internal/audio/queue"
)

// sfxQueueCapacity is the default capacity of a Sfx handle's trigger queue.
const sfxQueueCapacity = 64

// PlaySfxParams configures one triggered playback.
type PlaySfxParams struct {
	// Amplifier is the linear gain multiplier applied to this one playback.
	Amplifier float32
}

// DefaultPlaySfxParams returns unity gain.
func DefaultPlaySfxParams() PlaySfxParams {
	return PlaySfxParams{Amplifier: 1}
}

type sfxEntry struct {
	position float32
	params   PlaySfxParams
}

// sfxMarker is the strong cell a Sfx handle keeps alive; SfxRenderer only
// holds a weak.Pointer to it, mirroring MusicRenderer's relationship to
// sharedMusicState. It is padded to 16 bytes: a zero-size value lives at one
// shared address that is never collected, and a smaller pointer-free value
// can be batched with other allocations, either of which keeps the weak
// pointer from ever clearing.
type sfxMarker struct{ _ [16]byte }

// SfxRenderer is a pooled one-shot player: one renderer per concurrently
// triggered clip. Triggers arrive as (position, params) tuples pushed onto
// cons by the paired Sfx handle; they are advanced and removed strictly in
// FIFO order so a long-running older trigger never gets shadowed by a
// shorter newer one jumping the queue.
type SfxRenderer struct {
	clip   *AudioClip
	marker weak.Pointer[sfxMarker]
	cons   *queue.SPSC[sfxEntry]
}

func newSfxRenderer(clip *AudioClip, marker weak.Pointer[sfxMarker], cons *queue.SPSC[sfxEntry]) *SfxRenderer {
	return &SfxRenderer{clip: clip, marker: marker, cons: cons}
}

// Alive implements SourceRenderer: a SfxRenderer outlives its Sfx handle
// long enough to finish any in-flight triggers still sitting in the queue.
func (r *SfxRenderer) Alive() bool {
	return !r.cons.IsEmpty() || r.marker.Value() != nil
}

// finishedPrefix walks entries from the queue's head, advancing each by
// delta per output frame and adding its contribution through add. It
// returns the number of leading entries that ran off the end of the clip
// this callback — only a contiguous prefix starting at the head can ever be
// removed, so an older unfinished entry blocks a younger finished one from
// being pruned ahead of it.
func (r *SfxRenderer) finishedPrefix(sampleRate uint32, frames int, add func(i int, frame Frame, amp float32)) int {
	delta := 1 / float32(sampleRate)
	finished := 0
	counting := true
	r.cons.ForEach(func(e *sfxEntry) {
		ranOff := false
		for i := 0; i < frames; i++ {
			frame, ok := r.clip.Sample(e.position)
			if !ok {
				ranOff = true
				break
			}
			add(i, frame, e.params.Amplifier)
			e.position += delta
		}
		if counting {
			if ranOff {
				finished++
			} else {
				counting = false
			}
		}
	})
	return finished
}

// RenderMono implements SourceRenderer.
func (r *SfxRenderer) RenderMono(sampleRate uint32, data []float32) {
	finished := r.finishedPrefix(sampleRate, len(data), func(i int, frame Frame, amp float32) {
		data[i] += frame.Avg() * amp
	})
	r.cons.Advance(finished)
}

// RenderStereo implements SourceRenderer.
func (r *SfxRenderer) RenderStereo(sampleRate uint32, data []float32) {
	frames := len(data) / 2
	finished := r.finishedPrefix(sampleRate, frames, func(i int, frame Frame, amp float32) {
		data[i*2] += frame.L * amp
		data[i*2+1] += frame.R * amp
	})
	r.cons.Advance(finished)
}

// Sfx is the application-thread handle for a pooled one-shot voice. It stays
// alive as long as the application holds it; triggers queued through it
// continue to play out even after the handle itself is dropped.
type Sfx struct {
	marker *sfxMarker
	prod   *queue.SPSC[sfxEntry]
}

func newSfx(clip *AudioClip, bufferSize int) (*Sfx, *SfxRenderer) {
	if bufferSize <= 0 {
		bufferSize = sfxQueueCapacity
	}
	q := queue.New[sfxEntry](bufferSize)
	marker := &sfxMarker{}
	renderer := newSfxRenderer(clip, weak.Make(marker), q)
	return &Sfx{marker: marker, prod: q}, renderer
}

// Play triggers one playback starting from the beginning of the clip.
func (s *Sfx) Play(params PlaySfxParams) error {
	if !s.prod.TryPush(sfxEntry{position: 0, params: params}) {
		return bufferFullErr("play sfx")
	}
	return nil
}
