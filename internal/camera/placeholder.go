package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placeholder messages shown in place of live video. The wording
// distinguishes a camera that could work but is off from a host with
// no camera support at all.
const (
	PlaceholderOffline     = "Camera offline"
	PlaceholderUnavailable = "Camera unavailable"
)

var placeholderBackground = color.RGBA{R: 24, G: 24, B: 28, A: 255}

// PlaceholderJPEG renders a dark frame with message centered in it,
// encoded at the given JPEG quality.
func PlaceholderJPEG(width, height int, message string, quality int) ([]byte, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("placeholder dimensions %dx%d invalid", width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = placeholderBackground.R
		img.Pix[i+1] = placeholderBackground.G
		img.Pix[i+2] = placeholderBackground.B
		img.Pix[i+3] = placeholderBackground.A
	}

	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	textWidth := drawer.MeasureString(message).Ceil()
	x := (width - textWidth) / 2
	if x < 0 {
		x = 0
	}
	drawer.Dot = fixed.P(x, height/2)
	drawer.DrawString(message)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}
