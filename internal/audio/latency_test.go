package audio

import (
	"math"
	"sync/atomic"
	"testing"
)

func TestLatencyRecorderMovingAverage(t *testing.T) {
	var bits atomic.Uint32
	r := NewLatencyRecorder(&bits)

	r.Push(0.01)
	r.Push(0.02)
	r.Push(0.03)

	got := math.Float32frombits(bits.Load())
	want := float32(0.02)
	if diff := got - want; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("average = %v, want %v", got, want)
	}
}

func TestLatencyRecorderWindowSlides(t *testing.T) {
	var bits atomic.Uint32
	r := NewLatencyRecorder(&bits)

	for i := 0; i < latencyWindow; i++ {
		r.Push(1.0)
	}
	r.Push(0.0)

	got := math.Float32frombits(bits.Load())
	want := float32(latencyWindow-1) / float32(latencyWindow)
	if diff := got - want; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("average after wrap = %v, want %v", got, want)
	}
}
