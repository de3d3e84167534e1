package audio

import "github.com/pkg/errors"

// ErrBufferFull is returned (wrapped with an operation-identifying context,
// e.g. "play music", "seek to", "add renderer") when a handle attempts to
// post a command but the target's control queue is saturated. The caller
// decides whether to drop the command or retry.
var ErrBufferFull = errors.New("buffer is full")

// ErrBackendStartFailure is returned from AudioManager construction or
// AudioManager.RecoverIfNeeded when the platform backend refuses to open or start its
// stream.
var ErrBackendStartFailure = errors.New("backend failed to start")

// ErrDeviceLost is the sentinel surfaced through AudioManager.ConsumeBroken
// semantics when a backend has signalled its broken flag — e.g. on device
// disconnection or an OS-level interrupt-force-stop.
var ErrDeviceLost = errors.New("audio device lost")

func bufferFullErr(op string) error {
	return errors.Wrap(ErrBufferFull, op)
}
