package decode

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// pcm16WAV builds a minimal valid little-endian PCM WAV file in memory so
// the decoder can be exercised without a fixture on disk.
func pcm16WAV(t *testing.T, sampleRate uint32, channels uint16, samples []int16) []byte {
	t.Helper()

	dataSize := len(samples) * 2
	byteRate := sampleRate * uint32(channels) * 2
	blockAlign := channels * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, channels)
	binary.Write(&buf, binary.LittleEndian, sampleRate)
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func TestWAVDecodesMonoPCM16(t *testing.T) {
	raw := pcm16WAV(t, 8000, 1, []int16{0, 16384, -32768, 32767})

	samples, sampleRate, channels, err := WAV(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sampleRate != 8000 {
		t.Fatalf("sample rate = %d, want 8000", sampleRate)
	}
	if channels != 1 {
		t.Fatalf("channels = %d, want 1", channels)
	}
	if len(samples) != 4 {
		t.Fatalf("len(samples) = %d, want 4", len(samples))
	}
	if samples[2] != -1 {
		t.Fatalf("samples[2] = %v, want -1 (full-scale negative)", samples[2])
	}
}

func TestWAVRejectsNonWAVData(t *testing.T) {
	if _, _, _, err := WAV(bytes.NewReader([]byte("not a wav file"))); err == nil {
		t.Fatal("expected an error decoding garbage input")
	}
}
