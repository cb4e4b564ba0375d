package session

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"

	"github.com/kiruse/dreamoc-livelink/internal/compositor"
)

// RenderSettings describe how each view is produced. A render pass
// temporarily overrides some of them.
type RenderSettings struct {
	Width      int
	Height     int
	Background color.RGBA
}

// Renderer produces the image seen from one camera perspective.
type Renderer interface {
	Render(role compositor.Role, settings RenderSettings) (image.Image, error)
}

// Preparer is implemented by renderers that need a setup step before a pass.
// Failures of Prepare are not fatal to the pass.
type Preparer interface {
	Prepare() error
}

// FileRenderer reads pre-rendered images from disk, one per perspective.
type FileRenderer struct {
	Sources map[compositor.Role]string
}

// NewFileRenderer returns a renderer for the three given files.
func NewFileRenderer(front, left, right string) *FileRenderer {
	return &FileRenderer{Sources: map[compositor.Role]string{
		compositor.Front: front,
		compositor.Left:  left,
		compositor.Right: right,
	}}
}

// DirRenderer reads front.png, left.png and right.png from dir.
func DirRenderer(dir string) *FileRenderer {
	paths := compositor.ImagePaths(dir)
	return &FileRenderer{Sources: paths}
}

// Prepare checks that every source exists.
func (r *FileRenderer) Prepare() error {
	var missing []string
	for _, role := range compositor.Roles {
		if _, err := os.Stat(r.Sources[role]); err != nil {
			missing = append(missing, role.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing sources: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (r *FileRenderer) Render(role compositor.Role, settings RenderSettings) (image.Image, error) {
	path, ok := r.Sources[role]
	if !ok || path == "" {
		return nil, fmt.Errorf("no source for %s view", role)
	}
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s view: %w", role, err)
	}
	return fit(img, settings), nil
}

// PatternRenderer draws solid views with a white marker in the top-left
// corner, for checking region wiring and orientation on the device.
type PatternRenderer struct {
	Colors map[compositor.Role]color.RGBA
}

// DefaultPattern paints front red, left green and right blue.
func DefaultPattern() *PatternRenderer {
	return &PatternRenderer{Colors: map[compositor.Role]color.RGBA{
		compositor.Front: {R: 255, A: 255},
		compositor.Left:  {G: 255, A: 255},
		compositor.Right: {B: 255, A: 255},
	}}
}

func (r *PatternRenderer) Render(role compositor.Role, settings RenderSettings) (image.Image, error) {
	if settings.Width <= 0 || settings.Height <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", settings.Width, settings.Height)
	}
	img := image.NewRGBA(image.Rect(0, 0, settings.Width, settings.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.Colors[role]), image.Point{}, draw.Src)

	marker := min(settings.Width, settings.Height) / 8
	draw.Draw(img, image.Rect(0, 0, marker, marker), image.White, image.Point{}, draw.Src)
	return img, nil
}

// fit scales img to the configured size and flattens it onto the
// background color.
func fit(img image.Image, settings RenderSettings) image.Image {
	b := img.Bounds()
	if settings.Width > 0 && settings.Height > 0 && (b.Dx() != settings.Width || b.Dy() != settings.Height) {
		img = transform.Resize(img, settings.Width, settings.Height, transform.Linear)
		b = img.Bounds()
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(settings.Background), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

// writeImage saves img to path as PNG through a temporary file in the same
// directory, so the display never reads a partially written image.
func writeImage(path string, img image.Image) error {
	enc := imgio.PNGEncoder()
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if err := enc(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
