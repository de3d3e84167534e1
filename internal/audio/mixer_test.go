package audio

import "testing"

type constSource struct {
	value float32
	alive bool
}

func (s *constSource) RenderMono(sampleRate uint32, data []float32) {
	for i := range data {
		data[i] += s.value
	}
}

func (s *constSource) RenderStereo(sampleRate uint32, data []float32) {
	for i := range data {
		data[i] += s.value
	}
}

func (s *constSource) Alive() bool { return s.alive }

func TestMixerRendersSumOfSources(t *testing.T) {
	m := NewMixer()
	a := &constSource{value: 1, alive: true}
	b := &constSource{value: 2, alive: true}
	c := &constSource{value: 3, alive: true}

	if !m.TryAddSource(a) || !m.TryAddSource(b) || !m.TryAddSource(c) {
		t.Fatal("expected sources to be added")
	}

	data := make([]float32, 4)
	m.RenderMono(data)

	for i, v := range data {
		if v != 6 {
			t.Fatalf("data[%d] = %v, want 6", i, v)
		}
	}
}

func TestMixerPrunesDeadSources(t *testing.T) {
	m := NewMixer()
	alive := &constSource{value: 1, alive: true}
	dead := &constSource{value: 1, alive: false}

	m.TryAddSource(alive)
	m.TryAddSource(dead)

	data := make([]float32, 2)
	m.RenderMono(data) // first render picks up both commands, dead renders once more

	if len(m.renderers) != 1 {
		t.Fatalf("expected 1 surviving renderer, got %d", len(m.renderers))
	}
	if m.renderers[0] != alive {
		t.Fatal("expected the alive source to survive")
	}
}

func TestMixerAddSourceFailsWhenQueueFull(t *testing.T) {
	m := NewMixer()
	for i := 0; i < mixerCommandQueueCapacity; i++ {
		if !m.TryAddSource(&constSource{alive: true}) {
			t.Fatalf("unexpected rejection at %d", i)
		}
	}
	if m.TryAddSource(&constSource{alive: true}) {
		t.Fatal("expected queue to be full")
	}
}
