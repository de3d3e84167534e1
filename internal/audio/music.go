package audio

import (
	"math"
	"sync/atomic"
	"weak"

	"audiocore/internal/audio/queue"
)

// MusicParams configures a MusicRenderer at creation time.
type MusicParams struct {
	// LoopMixTime, if >= 0, is the number of seconds of head/tail cross-mix
	// applied when the clip loops. Negative disables looping entirely.
	LoopMixTime float32
	// Amplifier is the linear gain multiplier applied to every sample.
	Amplifier float32
	// PlaybackRate scales playback speed; 1 is original speed.
	PlaybackRate float32
	// CommandBufferSize is the capacity of the control queue between the
	// Music handle and its renderer.
	CommandBufferSize int
}

// DefaultMusicParams mirrors the reference defaults: no looping, unity gain
// and speed, a 16-slot command queue.
func DefaultMusicParams() MusicParams {
	return MusicParams{
		LoopMixTime:       -1,
		Amplifier:         1,
		PlaybackRate:      1,
		CommandBufferSize: 16,
	}
}

// sharedMusicState is the cell a Music handle and its paired MusicRenderer
// both touch: position and paused are single-word atomics so neither thread
// ever blocks the other. Music holds the only strong pointer; MusicRenderer
// holds a weak.Pointer to it, so once the application drops its Music handle
// the state becomes unreachable, the weak pointer starts resolving to nil,
// and the renderer notices on its next callback and reports itself dead.
type sharedMusicState struct {
	position atomic.Uint32 // float32 bits
	paused   atomic.Bool
	// Pads the cell to 16 bytes so the runtime does not batch it with other
	// small pointer-free allocations, which could keep the weak pointer from
	// ever clearing.
	_ [8]byte
}

func newSharedMusicState() *sharedMusicState {
	s := &sharedMusicState{}
	s.paused.Store(true)
	return s
}

type musicCommandKind int

const (
	musicCmdPause musicCommandKind = iota
	musicCmdResume
	musicCmdSetAmplifier
	musicCmdSeekTo
	musicCmdSetLowPass
	musicCmdFadeIn
	musicCmdFadeOut
)

type musicCommand struct {
	kind  musicCommandKind
	value float32
}

// MusicRenderer renders a single long-running stream from one clip. It
// implements SourceRenderer and is driven exclusively by the audio callback
// thread; all control arrives as musicCommands drained from cons.
type MusicRenderer struct {
	clip     *AudioClip
	settings MusicParams
	state    weak.Pointer[sharedMusicState]
	cons     *queue.SPSC[musicCommand]

	paused         bool
	index          int64
	lastSampleRate uint32
	lowPass        float32
	lastOutput     Frame

	fadeTime    int64
	fadeCurrent int64
}

func newMusicRenderer(clip *AudioClip, settings MusicParams, state weak.Pointer[sharedMusicState], cons *queue.SPSC[musicCommand]) *MusicRenderer {
	return &MusicRenderer{
		clip:           clip,
		settings:       settings,
		state:          state,
		cons:           cons,
		paused:         true,
		lastSampleRate: 1,
	}
}

func round32(x float32) float32 {
	return float32(math.Round(float64(x)))
}

// prepare rescales position and fade counters for a sample-rate change, then
// drains and applies every pending command. Runs once per callback, before
// rendering.
func (r *MusicRenderer) prepare(sampleRate uint32) {
	if r.lastSampleRate != sampleRate {
		factor := float32(sampleRate) / float32(r.lastSampleRate)
		r.index = int64(round32(float32(r.index) * factor))
		r.fadeTime = int64(round32(float32(r.fadeTime) * factor))
		r.fadeCurrent = int64(round32(float32(r.fadeCurrent) * factor))
		r.lastSampleRate = sampleRate
	}

	r.cons.Drain(func(cmd musicCommand) {
		switch cmd.kind {
		case musicCmdPause:
			r.paused = true
			r.publishPaused(true)
		case musicCmdResume:
			r.paused = false
			r.publishPaused(false)
		case musicCmdSetAmplifier:
			r.settings.Amplifier = cmd.value
		case musicCmdSeekTo:
			r.index = int64(round32(cmd.value * float32(sampleRate) / r.settings.PlaybackRate))
		case musicCmdSetLowPass:
			r.lowPass = cmd.value
		case musicCmdFadeIn:
			if r.paused {
				r.paused = false
				r.publishPaused(false)
			}
			r.fadeTime = int64(round32(cmd.value * float32(sampleRate)))
			r.fadeCurrent = 0
		case musicCmdFadeOut:
			r.fadeTime = -int64(round32(cmd.value * float32(sampleRate)))
			r.fadeCurrent = 0
		}
	})
}

// publishPaused and publishPosition upgrade the weak pointer to the shared
// state and write through it, mirroring the reference implementation's
// `if let Some(state) = self.state.upgrade() { ... }`. Both are no-ops once
// the Music handle has been dropped.
func (r *MusicRenderer) publishPaused(v bool) {
	if s := r.state.Value(); s != nil {
		s.paused.Store(v)
	}
}

func (r *MusicRenderer) publishPosition(v float32) {
	if s := r.state.Value(); s != nil {
		s.position.Store(math.Float32bits(v))
	}
}

// frame produces the sample at position (seconds), advancing r.index, the
// loop cross-mix and fade state as a side effect. ok is false exactly when
// rendering for this buffer should stop: the clip ended with no loop, or a
// fade-out just completed.
func (r *MusicRenderer) frame(position, delta float32) (Frame, bool) {
	s := &r.settings
	if frame, ok := r.clip.Sample(position); ok {
		if s.LoopMixTime >= 0 {
			pos := position + s.LoopMixTime - r.clip.Length()
			if pos >= 0 {
				if tail, ok := r.clip.Sample(pos); ok {
					frame = frame.Add(tail)
				}
			}
		}
		r.index++
		amp := s.Amplifier
		if r.fadeTime != 0 {
			if r.fadeTime > 0 {
				r.fadeCurrent++
				if r.fadeCurrent >= r.fadeTime {
					r.fadeTime = 0
				} else {
					amp *= float32(r.fadeCurrent) / float32(r.fadeTime)
				}
			} else {
				r.fadeCurrent--
				if r.fadeCurrent <= r.fadeTime {
					r.fadeTime = 0
					r.paused = true
					r.publishPaused(true)
					return Frame{}, false
				}
				amp *= 1 - float32(r.fadeCurrent)/float32(r.fadeTime)
			}
		}
		return frame.Scale(amp), true
	}
	if s.LoopMixTime >= 0 {
		pos := position - r.clip.Length() + s.LoopMixTime
		r.index = int64(round32(pos / delta))
		if frame, ok := r.clip.Sample(pos); ok {
			return frame.Scale(s.Amplifier), true
		}
		return Frame{}, true
	}
	r.paused = true
	return Frame{}, false
}

func (r *MusicRenderer) lowPassed(frame Frame) Frame {
	r.lastOutput = r.lastOutput.Scale(r.lowPass).Add(frame.Scale(1 - r.lowPass))
	return r.lastOutput
}

func (r *MusicRenderer) position(delta float32) float32 {
	return float32(r.index) * delta
}

// Alive reports whether the paired Music handle still exists.
func (r *MusicRenderer) Alive() bool {
	return r.state.Value() != nil
}

// RenderMono implements SourceRenderer.
func (r *MusicRenderer) RenderMono(sampleRate uint32, data []float32) {
	r.prepare(sampleRate)
	if r.paused {
		return
	}
	delta := r.settings.PlaybackRate / float32(sampleRate)
	position := float32(r.index) * delta
	for i := range data {
		frame, ok := r.frame(position, delta)
		if !ok {
			break
		}
		data[i] += r.lowPassed(frame).Avg()
		position += delta
	}
	r.publishPosition(r.position(delta))
}

// RenderStereo implements SourceRenderer.
func (r *MusicRenderer) RenderStereo(sampleRate uint32, data []float32) {
	r.prepare(sampleRate)
	if r.paused {
		return
	}
	delta := r.settings.PlaybackRate / float32(sampleRate)
	position := float32(r.index) * delta
	for i := 0; i+1 < len(data); i += 2 {
		frame, ok := r.frame(position, delta)
		if !ok {
			break
		}
		out := r.lowPassed(frame)
		data[i] += out.L
		data[i+1] += out.R
		position += delta
	}
	r.publishPosition(r.position(delta))
}

// Music is the application-thread handle to a MusicRenderer living in the
// mixer. Dropping it (letting it become unreachable) lets the renderer
// report itself dead and be pruned from the mixer on its next callback —
// there is no explicit "stop" call.
type Music struct {
	state *sharedMusicState
	prod  *queue.SPSC[musicCommand]
}

func newMusic(clip *AudioClip, settings MusicParams) (*Music, *MusicRenderer) {
	if settings.CommandBufferSize <= 0 {
		settings.CommandBufferSize = 16
	}
	q := queue.New[musicCommand](settings.CommandBufferSize)
	state := newSharedMusicState()
	renderer := newMusicRenderer(clip, settings, weak.Make(state), q)
	return &Music{state: state, prod: q}, renderer
}

func (m *Music) post(kind musicCommandKind, value float32, op string) error {
	if !m.prod.TryPush(musicCommand{kind: kind, value: value}) {
		return bufferFullErr(op)
	}
	return nil
}

// Play resumes playback.
func (m *Music) Play() error { return m.post(musicCmdResume, 0, "play music") }

// Pause pauses playback. Pushing Pause twice is idempotent: the paused
// atomic stays true and the callback between the two posts renders silence.
func (m *Music) Pause() error { return m.post(musicCmdPause, 0, "pause") }

// Paused reports the last published paused state.
func (m *Music) Paused() bool { return m.state.paused.Load() }

// SetAmplifier changes the linear gain multiplier.
func (m *Music) SetAmplifier(amp float32) error {
	return m.post(musicCmdSetAmplifier, amp, "set amplifier")
}

// SeekTo jumps playback to the given position in seconds.
func (m *Music) SeekTo(position float32) error {
	return m.post(musicCmdSeekTo, position, "seek to")
}

// SetLowPass sets the one-pole low-pass coefficient, in [0, 1].
func (m *Music) SetLowPass(coef float32) error {
	return m.post(musicCmdSetLowPass, coef, "set low pass")
}

// FadeIn unpauses (if paused) and ramps the amplitude up over time seconds.
func (m *Music) FadeIn(seconds float32) error {
	return m.post(musicCmdFadeIn, seconds, "fade in")
}

// FadeOut ramps the amplitude down over time seconds, pausing once complete.
func (m *Music) FadeOut(seconds float32) error {
	return m.post(musicCmdFadeOut, seconds, "fade out")
}

// Position reads the renderer's last-published playback position, in
// seconds. Sequentially consistent with the audio thread's most recent
// callback.
func (m *Music) Position() float32 {
	return math.Float32frombits(m.state.position.Load())
}
