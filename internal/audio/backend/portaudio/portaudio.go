// Package portaudio implements backend.Backend on top of PortAudio, the
// cross-platform device API gordonklaus/portaudio binds.
package portaudio

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"

	"audiocore/internal/audio/backend"
)

// Settings mirrors the reference CpalSettings: everything a caller may want
// to override about how the stream is opened.
type Settings struct {
	// SampleRate is the preferred output rate; 0 requests the device default.
	SampleRate float64
	// FramesPerBuffer is the requested callback buffer size in frames; 0
	// requests PortAudio's own default.
	FramesPerBuffer int
	// Stereo selects a 2-channel stream; false renders mono.
	Stereo bool
}

// DefaultSettings requests the device's own rate and buffer size, stereo.
func DefaultSettings() Settings {
	return Settings{Stereo: true}
}

// Backend is a backend.Backend driving a single PortAudio output stream.
type Backend struct {
	settings Settings

	stream *portaudio.Stream
	cell   *backend.StateCell
	broken atomic.Bool

	started time.Time
}

// New creates an unconfigured Backend; call Setup then Start.
func New(settings Settings) *Backend {
	return &Backend{settings: settings}
}

// Setup initializes the PortAudio library and opens (but does not start) the
// output stream, wiring setup's mixer and latency recorder into the
// callback through a StateCell.
func (b *Backend) Setup(setup backend.Setup) error {
	if err := portaudio.Initialize(); err != nil {
		return errors.Wrap(err, "initialize portaudio")
	}

	b.cell = backend.NewStateCell(setup)
	sampleRate := b.deviceSampleRate()
	setup.Mixer.SampleRate = uint32(sampleRate)

	var stream *portaudio.Stream
	var err error
	if b.settings.Stereo {
		stream, err = portaudio.OpenDefaultStream(0, 2, sampleRate, b.settings.FramesPerBuffer, b.callbackStereo)
	} else {
		stream, err = portaudio.OpenDefaultStream(0, 1, sampleRate, b.settings.FramesPerBuffer, b.callbackMono)
	}
	if err != nil {
		portaudio.Terminate()
		return errors.Wrap(err, "open portaudio stream")
	}
	b.stream = stream

	info := stream.Info()
	if info != nil {
		setup.Mixer.SampleRate = uint32(info.SampleRate)
	}
	return nil
}

func (b *Backend) deviceSampleRate() float64 {
	if b.settings.SampleRate > 0 {
		return b.settings.SampleRate
	}
	dev, err := portaudio.DefaultOutputDevice()
	if err != nil || dev == nil {
		return 44100
	}
	return dev.DefaultSampleRate
}

// callbackMono and callbackStereo run on PortAudio's realtime thread: no
// allocation, no logging, no locking. A panic here would crash the process
// mid-callback, so any unexpected condition is turned into the broken flag
// instead of a log line.
func (b *Backend) callbackMono(out []float32) {
	mixer, latency := b.cell.Get()
	defer b.recoverBroken()
	start := time.Now()
	mixer.RenderMono(out)
	latency.Push(float32(time.Since(start).Seconds()))
}

func (b *Backend) callbackStereo(out []float32) {
	mixer, latency := b.cell.Get()
	defer b.recoverBroken()
	start := time.Now()
	mixer.RenderStereo(out)
	latency.Push(float32(time.Since(start).Seconds()))
}

func (b *Backend) recoverBroken() {
	if r := recover(); r != nil {
		b.broken.Store(true)
	}
}

// Start begins (or restarts, after a device loss) the stream.
func (b *Backend) Start() error {
	if err := b.stream.Start(); err != nil {
		b.broken.Store(true)
		return errors.Wrap(err, "start portaudio stream")
	}
	b.started = time.Now()
	log.Printf("✅ audio stream started")
	return nil
}

// ConsumeBroken reports and clears the broken flag.
func (b *Backend) ConsumeBroken() bool {
	return b.broken.Swap(false)
}

// Close stops the stream and tears down PortAudio. Not part of the
// backend.Backend contract; callers that own process shutdown should defer
// it after AudioManager construction succeeds.
func (b *Backend) Close() error {
	if b.stream != nil {
		if err := b.stream.Stop(); err != nil {
			return errors.Wrap(err, "stop portaudio stream")
		}
		if err := b.stream.Close(); err != nil {
			return errors.Wrap(err, "close portaudio stream")
		}
	}
	return portaudio.Terminate()
}
