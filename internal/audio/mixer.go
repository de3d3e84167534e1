package audio

import "audiocore/internal/audio/queue"

// mixerCommandQueueCapacity is the capacity of the manager-to-mixer command
// queue (spec: capacity 16).
const mixerCommandQueueCapacity = 16

// mixerCommand is the only command the mixer understands today: attach a new
// live source.
type mixerCommand struct {
	add SourceRenderer
}

// Mixer owns the live source list and runs exclusively on the audio callback
// thread. Sources are appended only in response to AddSource commands drained
// from its queue; dead sources are pruned in place after every render. Mixing
// is purely additive — no clipping or limiting is applied, so amplitude
// budgeting across sources is the caller's responsibility.
type Mixer struct {
	// SampleRate is written directly by the backend adapter before the first
	// callback and on every subsequent rate change. It is touched exclusively
	// from the audio thread, matching the Rust StateCell contract.
	SampleRate uint32

	renderers []SourceRenderer
	cmds      *queue.SPSC[mixerCommand]
}

// NewMixer creates a mixer consuming AddSource commands from its own bounded
// queue (capacity 16, per spec).
func NewMixer() *Mixer {
	return &Mixer{
		renderers: make([]SourceRenderer, 0, 16),
		cmds:      queue.New[mixerCommand](mixerCommandQueueCapacity),
	}
}

// TryAddSource posts an AddSource command. Returns false if the queue is
// saturated; used by AudioManager.AddSource to decide whether to surface
// ErrBufferFull.
func (m *Mixer) TryAddSource(r SourceRenderer) bool {
	return m.cmds.TryPush(mixerCommand{add: r})
}

func (m *Mixer) drainCommands() {
	m.cmds.Drain(func(cmd mixerCommand) {
		m.renderers = append(m.renderers, cmd.add)
	})
}

// prune removes dead renderers in place, preserving the stable insertion
// order of the survivors.
func (m *Mixer) prune() {
	alive := m.renderers[:0]
	for _, r := range m.renderers {
		if r.Alive() {
			alive = append(alive, r)
		}
	}
	m.renderers = alive
}

// RenderMono drains pending commands, zeroes data, renders every live source
// into it in insertion order, then prunes the ones that reported dead.
func (m *Mixer) RenderMono(data []float32) {
	m.drainCommands()
	for i := range data {
		data[i] = 0
	}
	for _, r := range m.renderers {
		r.RenderMono(m.SampleRate, data)
	}
	m.prune()
}

// RenderStereo is RenderMono's interleaved L,R,L,R... counterpart.
func (m *Mixer) RenderStereo(data []float32) {
	m.drainCommands()
	for i := range data {
		data[i] = 0
	}
	for _, r := range m.renderers {
		r.RenderStereo(m.SampleRate, data)
	}
	m.prune()
}
