// Package backend defines the adapter contract between the mixing core and
// a concrete platform audio API, plus the one escape hatch the adapters need
// to hand a stable, mutable state pointer across an FFI-style callback
// boundary without taking a lock on the audio thread.
package backend

import (
	"audiocore/internal/audio"
)

// Setup is handed to a Backend's Setup method once, at construction. The
// mixer and latency recorder it carries are exclusively owned by the audio
// callback thread from this point on. It is a type alias for
// audio.BackendSetup so a concrete Backend here also satisfies the
// audio.Backend interface AudioManager depends on, without audio importing
// this package back.
type Setup = audio.BackendSetup

// Backend is a concrete platform audio output: CoreAudio, WASAPI, ALSA,
// Oboe, whatever the host OS exposes through a C callback API. Setup opens
// the device and wires the given state into its callback without starting
// the stream; Start begins (or restarts) playback.
//
// ConsumeBroken reports and clears a fatal-error flag an implementation
// raises from inside its callback when the stream can no longer continue
// (device disconnected, host API error). It must be safe to call from any
// goroutine and must not block.
type Backend interface {
	Setup(setup Setup) error
	Start() error
	ConsumeBroken() bool
}
