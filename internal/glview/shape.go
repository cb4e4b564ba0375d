package glview

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/kiruse/dreamoc-livelink/internal/compositor"
)

const (
	attribPosition = 0
	attribUV       = 1
	floatSize      = 4
)

// shape holds the GPU state of one compositor.Shape.
type shape struct {
	spec compositor.Shape
	vao  uint32
	vbos [2]uint32
	tex  uint32
	size image.Point
}

// newShape uploads the geometry of spec. The context must be current.
func newShape(spec compositor.Shape) *shape {
	s := &shape{spec: spec}

	gl.GenVertexArrays(1, &s.vao)
	gl.GenBuffers(2, &s.vbos[0])
	gl.GenTextures(1, &s.tex)

	gl.BindVertexArray(s.vao)
	uploadAttrib(attribPosition, s.vbos[0], spec.Positions)
	uploadAttrib(attribUV, s.vbos[1], spec.UVs)

	gl.BindTexture(gl.TEXTURE_2D, s.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	return s
}

func uploadAttrib(index uint32, vbo uint32, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*floatSize, gl.Ptr(data), gl.STATIC_DRAW)
	gl.VertexAttribPointer(index, 2, gl.FLOAT, false, 2*floatSize, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(index)
}

// loadTexture replaces the texture with the current contents of the shape's
// image file.
func (s *shape) loadTexture() error {
	img, err := compositor.LoadBitmap(s.spec.ImagePath)
	if err != nil {
		return err
	}
	s.size = img.Bounds().Size()

	gl.BindTexture(gl.TEXTURE_2D, s.tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(s.size.X), int32(s.size.Y), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	return nil
}

func (s *shape) draw() {
	gl.BindVertexArray(s.vao)
	gl.BindTexture(gl.TEXTURE_2D, s.tex)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(s.spec.VertexCount()))
}

func (s *shape) delete() {
	gl.DeleteTextures(1, &s.tex)
	gl.DeleteBuffers(2, &s.vbos[0])
	gl.DeleteVertexArrays(1, &s.vao)
}
