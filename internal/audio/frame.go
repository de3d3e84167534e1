// Package audio implements the real-time mixing core: a mixer that runs
// inside the platform audio callback, sample-rate-aware music and sfx
// renderers that submit control over lock-free queues, and an offline
// phase-vocoder time stretcher.
package audio

// Frame is one instant of stereo audio: one sample per channel.
type Frame struct {
	L, R float32
}

// Avg returns the mono down-mix of the frame.
func (f Frame) Avg() float32 {
	return (f.L + f.R) / 2
}

// Add returns the sum of two frames.
func (f Frame) Add(o Frame) Frame {
	return Frame{f.L + o.L, f.R + o.R}
}

// Scale returns the frame scaled by a linear gain factor.
func (f Frame) Scale(gain float32) Frame {
	return Frame{f.L * gain, f.R * gain}
}

// Lerp linearly interpolates between f and o by t in [0, 1].
func (f Frame) Lerp(o Frame, t float32) Frame {
	return Frame{
		L: f.L + (o.L-f.L)*t,
		R: f.R + (o.R-f.R)*t,
	}
}
