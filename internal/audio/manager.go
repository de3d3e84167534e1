package audio

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// managerMetrics are the Prometheus collectors AudioManager publishes
// through. They are created once per process (promauto-style constant
// label set would be unusual here since there's exactly one manager per
// process) and registered against whatever registry the caller supplies.
type managerMetrics struct {
	latency         prometheus.Gauge
	deviceLost      prometheus.Counter
	commandsDropped prometheus.Counter
}

func newManagerMetrics(reg prometheus.Registerer) *managerMetrics {
	m := &managerMetrics{
		latency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "audiocore_callback_latency_seconds",
			Help: "Moving average of the audio callback's own render time.",
		}),
		deviceLost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audiocore_device_lost_total",
			Help: "Number of times the backend reported and recovered from a broken stream.",
		}),
		commandsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audiocore_command_queue_full_total",
			Help: "Number of control commands dropped because a target queue was saturated.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.latency, m.deviceLost, m.commandsDropped)
	}
	return m
}

// Backend is the subset of backend.Backend AudioManager depends on; declared
// locally to avoid internal/audio importing internal/audio/backend, which
// itself imports internal/audio for the Mixer and LatencyRecorder types.
// backend.Setup is a type alias for BackendSetup, so any backend.Backend
// implementation satisfies this interface too.
type Backend interface {
	Setup(setup BackendSetup) error
	Start() error
	ConsumeBroken() bool
}

// BackendSetup is handed to a Backend's Setup method once, at construction.
type BackendSetup struct {
	Mixer   *Mixer
	Latency *LatencyRecorder
}

// AudioManager is the facade application code talks to: it owns the
// platform backend, the manager-to-mixer source queue, and the published
// latency estimate, and exposes the only entry points the rest of the
// program needs — everything else happens through the Music and Sfx
// handles AudioManager hands back.
type AudioManager struct {
	backend Backend
	mixer   *Mixer
	latency *LatencyRecorder
	bits    atomic.Uint32

	metrics *managerMetrics
}

// NewAudioManager builds the mixer and latency recorder, hands them to the
// backend's Setup, starts the stream, and returns a ready manager. reg may
// be nil to skip metrics registration (tests, or a process already running
// its own default registry setup elsewhere).
func NewAudioManager(b Backend, reg prometheus.Registerer) (*AudioManager, error) {
	m := &AudioManager{
		backend: b,
		mixer:   NewMixer(),
		metrics: newManagerMetrics(reg),
	}
	m.latency = NewLatencyRecorder(&m.bits)

	if err := b.Setup(BackendSetup{Mixer: m.mixer, Latency: m.latency}); err != nil {
		return nil, errors.Wrap(ErrBackendStartFailure, "setup backend: "+err.Error())
	}
	if err := b.Start(); err != nil {
		return nil, errors.Wrap(ErrBackendStartFailure, err.Error())
	}
	return m, nil
}

// CreateSfx builds a pooled one-shot voice over clip and attaches it to the
// mixer. bufferSize is the trigger queue's capacity; 0 uses the default.
func (m *AudioManager) CreateSfx(clip *AudioClip, bufferSize int) (*Sfx, error) {
	sfx, renderer := newSfx(clip, bufferSize)
	if err := m.AddSource(renderer); err != nil {
		return nil, err
	}
	return sfx, nil
}

// CreateMusic builds a long-running stream over clip and attaches it to the
// mixer.
func (m *AudioManager) CreateMusic(clip *AudioClip, settings MusicParams) (*Music, error) {
	music, renderer := newMusic(clip, settings)
	if err := m.AddSource(renderer); err != nil {
		return nil, err
	}
	return music, nil
}

// AddSource attaches an arbitrary SourceRenderer to the mixer, e.g. a
// caller's own implementation sitting outside the music/sfx pair.
func (m *AudioManager) AddSource(r SourceRenderer) error {
	if !m.mixer.TryAddSource(r) {
		if m.metrics != nil {
			m.metrics.commandsDropped.Inc()
		}
		return bufferFullErr("add renderer")
	}
	return nil
}

// EstimateLatency returns the most recently published moving-average
// callback latency, in seconds.
func (m *AudioManager) EstimateLatency() float32 {
	v := estimateLatency(&m.bits)
	if m.metrics != nil {
		m.metrics.latency.Set(float64(v))
	}
	return v
}

// ConsumeBroken reports and clears the backend's broken flag.
func (m *AudioManager) ConsumeBroken() bool {
	return m.backend.ConsumeBroken()
}

// RecoverIfNeeded restarts the backend if it reported itself broken since
// the last call, e.g. after a device disconnect. Intended to be polled from
// a background goroutine, never from the audio thread.
func (m *AudioManager) RecoverIfNeeded() error {
	if !m.ConsumeBroken() {
		return nil
	}
	if m.metrics != nil {
		m.metrics.deviceLost.Inc()
	}
	if err := m.backend.Start(); err != nil {
		return errors.Wrap(ErrBackendStartFailure, err.Error())
	}
	return nil
}
