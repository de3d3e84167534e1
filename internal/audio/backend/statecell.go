package backend

import (
	"unsafe"

	"audiocore/internal/audio"
)

// StateCell hands out a mutable view of a Setup to code that only holds an
// immutable reference to it — the shape a platform callback registration
// usually demands, since the callback is captured once by the host API and
// invoked later on a thread Go's escape analysis has no say over. There is
// no interior mutability here in the sync.Mutex or atomic sense: the audio
// thread must never block, and Mixer and LatencyRecorder already handle
// their own cross-thread fields atomically. StateCell exists only for the
// one point where a callback registration forces a value capture of
// something that must still be mutated afterward. Get must only ever be
// called from the goroutine the backend promised the callback runs on.
type StateCell struct {
	mixer   unsafe.Pointer
	latency unsafe.Pointer
}

// NewStateCell aliases setup's Mixer and Latency behind raw pointers.
func NewStateCell(setup Setup) *StateCell {
	return &StateCell{
		mixer:   unsafe.Pointer(setup.Mixer),
		latency: unsafe.Pointer(setup.Latency),
	}
}

// Get returns the aliased mixer and latency recorder for use inside the
// audio callback.
func (c *StateCell) Get() (*audio.Mixer, *audio.LatencyRecorder) {
	return (*audio.Mixer)(c.mixer), (*audio.LatencyRecorder)(c.latency)
}
