package audio

import (
	"runtime"
	"testing"
)

func constFrameClip(n int, rate uint32, frame Frame) *AudioClip {
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = frame
	}
	return NewClipFromRaw(frames, rate)
}

func almostEqual(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestMusicRenderStereoNonLooping(t *testing.T) {
	clip := sampleClip()
	settings := DefaultMusicParams()
	settings.Amplifier = 0.5

	music, renderer := newMusic(clip, settings)
	if err := music.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}

	data := make([]float32, 6)
	renderer.RenderStereo(2, data)

	want := []float32{0.5, 0, 0, 0.5, -0.5, 0}
	for i := range want {
		if !almostEqual(data[i], want[i], 1e-6) {
			t.Fatalf("data = %v, want %v", data, want)
		}
	}
}

func TestMusicSeekTo(t *testing.T) {
	clip := sampleClip()
	settings := DefaultMusicParams()
	settings.Amplifier = 0.5

	music, renderer := newMusic(clip, settings)
	music.Play()

	first := make([]float32, 6)
	renderer.RenderStereo(2, first)

	if err := music.SeekTo(1.0); err != nil {
		t.Fatalf("seek: %v", err)
	}

	second := make([]float32, 4)
	renderer.RenderStereo(2, second)

	want := []float32{-0.5, 0, 0, -0.5}
	for i := range want {
		if !almostEqual(second[i], want[i], 1e-6) {
			t.Fatalf("data = %v, want %v", second, want)
		}
	}
}

func TestMusicFadeInEnvelope(t *testing.T) {
	clip := constFrameClip(8, 4, Frame{L: 1, R: 1})
	music, renderer := newMusic(clip, DefaultMusicParams())

	if err := music.FadeIn(1.0); err != nil {
		t.Fatalf("fade in: %v", err)
	}

	data := make([]float32, 4)
	renderer.RenderMono(4, data)

	want := []float32{0.25, 0.5, 0.75, 1.0}
	for i := range want {
		if !almostEqual(data[i], want[i], 1e-6) {
			t.Fatalf("envelope = %v, want %v", data, want)
		}
	}
}

func TestMusicPauseIsIdempotent(t *testing.T) {
	clip := constFrameClip(8, 4, Frame{L: 1, R: 1})
	music, renderer := newMusic(clip, DefaultMusicParams())

	music.Pause()
	music.Pause()

	data := make([]float32, 4)
	renderer.RenderMono(4, data)

	for _, v := range data {
		if v != 0 {
			t.Fatalf("expected silence, got %v", data)
		}
	}
	if !music.Paused() {
		t.Fatal("expected paused to remain true")
	}
}

func TestMusicPositionSurvivesSampleRateChange(t *testing.T) {
	clip := constFrameClip(64, 4, Frame{L: 1, R: 1})
	music, renderer := newMusic(clip, DefaultMusicParams())
	music.Play()

	data := make([]float32, 4)
	renderer.RenderMono(4, data)
	before := music.Position()

	renderer.prepare(8)
	delta := float32(1) / float32(8)
	after := renderer.position(delta)

	if !almostEqual(before, after, delta) {
		t.Fatalf("position jumped across rate change: before=%v after=%v", before, after)
	}
}

func TestMusicDiesWhenHandleDropped(t *testing.T) {
	clip := constFrameClip(8, 4, Frame{L: 1, R: 1})
	mixer := NewMixer()
	music, renderer := newMusic(clip, DefaultMusicParams())
	mixer.TryAddSource(renderer)

	data := make([]float32, 4)
	mixer.RenderMono(data)
	if len(mixer.renderers) != 1 {
		t.Fatal("expected the renderer to survive while handle is reachable")
	}
	runtime.KeepAlive(music)

	music = nil
	runtime.GC()
	if renderer.Alive() {
		t.Fatal("expected the renderer to report dead once the handle is unreachable")
	}

	mixer.RenderMono(data)
	if len(mixer.renderers) != 0 {
		t.Fatalf("expected the dead renderer to be pruned, got %d renderers", len(mixer.renderers))
	}
}
