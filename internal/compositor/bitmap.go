package compositor

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

// LoadBitmap decodes the image at path and returns it as RGBA, flipped both
// vertically and horizontally to match the optical inversion of the panel.
func LoadBitmap(path string) (*image.RGBA, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return Orient(img), nil
}

// Orient applies the panel's flip to img.
func Orient(img image.Image) *image.RGBA {
	return transform.FlipH(transform.FlipV(img))
}
