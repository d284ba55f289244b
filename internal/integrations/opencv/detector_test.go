package opencv

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"moodtunes/internal/core/pipeline"
)

// Corrupt uploads must be rejected as invalid images before any cascade or
// model work happens, and native decode buffers must be released on every
// rejection. Both paths run without a loaded cascade.
func TestLocateRejectsUndecodableImage(t *testing.T) {
	d := &Detector{}

	inputs := map[string][]byte{
		"empty":          {},
		"garbage":        []byte("definitely not an image"),
		"truncated jpeg": {0xff, 0xd8, 0xff, 0xe0, 0x00},
		"large garbage":  bytes.Repeat([]byte{0xab}, 4096),
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := d.Locate(context.Background(), data)
			if !errors.Is(err, pipeline.ErrInvalidImage) {
				t.Fatalf("Locate(%s) = %v, want ErrInvalidImage", name, err)
			}
		})
	}
}

func TestNormalizeRejectsUndecodableImage(t *testing.T) {
	d := &Detector{}

	_, err := d.Normalize(context.Background(), []byte("not an image"), image.Rect(0, 0, 48, 48))
	if !errors.Is(err, pipeline.ErrInvalidImage) {
		t.Fatalf("Normalize = %v, want ErrInvalidImage", err)
	}
}
