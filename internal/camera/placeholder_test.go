package camera

import (
	"bytes"
	"image/jpeg"
	"testing"
)

func TestPlaceholderJPEGDecodes(t *testing.T) {
	data, err := PlaceholderJPEG(640, 480, PlaceholderOffline, 75)
	if err != nil {
		t.Fatalf("render placeholder: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode placeholder: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 640 || bounds.Dy() != 480 {
		t.Fatalf("placeholder size = %dx%d, want 640x480", bounds.Dx(), bounds.Dy())
	}
}

func TestPlaceholderJPEGRejectsBadDimensions(t *testing.T) {
	if _, err := PlaceholderJPEG(0, 480, PlaceholderOffline, 75); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestPlaceholderJPEGTextWiderThanFrame(t *testing.T) {
	// Text wider than the canvas must still render without panicking.
	if _, err := PlaceholderJPEG(20, 20, PlaceholderUnavailable, 75); err != nil {
		t.Fatalf("render tiny placeholder: %v", err)
	}
}
