// Package waveform renders an audio.AudioClip to a PNG peak overview, used
// by the debug HTTP surface to preview a loaded clip without playing it.
package waveform

import (
	"bytes"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"audiocore/internal/audio"
)

// Settings controls the rendered image's size and colors.
type Settings struct {
	Width, Height int
	Background    color.Color
	Line          color.Color
}

// DefaultSettings is a 960x200 dark waveform.
func DefaultSettings() Settings {
	return Settings{
		Width:      960,
		Height:     200,
		Background: color.RGBA{R: 0x12, G: 0x12, B: 0x16, A: 0xff},
		Line:       color.RGBA{R: 0x4c, G: 0xc9, B: 0xf0, A: 0xff},
	}
}

// PNG renders clip's min/max peak envelope, one column per pixel, and
// returns the encoded image bytes.
func PNG(clip *audio.AudioClip, settings Settings) ([]byte, error) {
	frames := clip.Frames()
	if len(frames) == 0 {
		return nil, errors.New("clip has no frames")
	}

	dc := gg.NewContext(settings.Width, settings.Height)
	dc.SetColor(settings.Background)
	dc.Clear()
	dc.SetColor(settings.Line)
	dc.SetLineWidth(1)

	mid := float64(settings.Height) / 2
	perColumn := len(frames) / settings.Width
	if perColumn < 1 {
		perColumn = 1
	}

	for x := 0; x < settings.Width; x++ {
		start := x * perColumn
		if start >= len(frames) {
			break
		}
		end := start + perColumn
		if end > len(frames) {
			end = len(frames)
		}
		minV, maxV := float32(0), float32(0)
		for _, f := range frames[start:end] {
			v := f.Avg()
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		y0 := mid - float64(maxV)*mid
		y1 := mid - float64(minV)*mid
		dc.DrawLine(float64(x), y0, float64(x), y1)
		dc.Stroke()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(err, "encode waveform png")
	}
	return buf.Bytes(), nil
}
