// Package compositor describes how the three rendered views are laid out on
// the Dreamoc HD3 panel. The geometry is fixed by the optics of the device:
// each view is drawn into its own non-rectangular region, and the regions
// overlap.
package compositor

import (
	"fmt"
	"path/filepath"
)

// Role names one of the three fixed regions of the panel.
type Role int

const (
	Front Role = iota
	Left
	Right
)

// Roles lists the regions in draw order.
var Roles = []Role{Front, Left, Right}

func (r Role) String() string {
	switch r {
	case Front:
		return "front"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ImageName is the file name, inside the render directory, of the image the
// host renders from the camera perspective named by r.
func (r Role) ImageName() string {
	return r.String() + ".png"
}

// Source returns the camera perspective whose image is drawn into region r.
// The panel presents its side lobes mirrored, so the left region shows the
// right camera and the right region shows the left camera.
func (r Role) Source() Role {
	switch r {
	case Left:
		return Right
	case Right:
		return Left
	default:
		return r
	}
}

// Vec2 is a 2D point.
type Vec2 struct {
	X float32
	Y float32
}

// PanelSize is the physical size of the panel in centimeters.
type PanelSize struct {
	Width  float32
	Height float32
}

// DefaultPanel approximates the visible area of the Dreamoc HD3.
var DefaultPanel = PanelSize{Width: 51, Height: 29}

// ToNDC converts a point in centimeters, measured from the panel center, to
// normalized device coordinates in [-1, 1].
func (p PanelSize) ToNDC(cm Vec2) Vec2 {
	return Vec2{X: cm.X / (p.Width / 2), Y: cm.Y / (p.Height / 2)}
}

// Region is the hand-tuned triangle list of one role, in centimeters, with
// matching texture coordinates. UVs outside [0, 1] are intentional: the
// texture is clamped at its edges.
type Region struct {
	Role Role
	CM   []Vec2
	UV   []Vec2
}

var regions = map[Role]Region{
	Front: {
		Role: Front,
		CM: []Vec2{
			{-21.5, -14.5}, {21.5, -14.5}, {-4, 3.5},
			{21.5, -14.5}, {4, 3.5}, {-4, 3.5},
		},
		UV: []Vec2{
			{-0.279, -0.109}, {1.284, -0.109}, {0.357, 1.109},
			{1.284, -0.109}, {0.648, 1.109}, {0.357, 1.109},
		},
	},
	Left: {
		Role: Left,
		CM: []Vec2{
			{-25.5, -14.5}, {-21.5, -14.5}, {-25.5, 14.5},
			{-21.5, -14.5}, {-4, 3.5}, {-25.5, 14.5},
			{-25.5, 14.5}, {-4, 3.5}, {-4, 14.5},
		},
		UV: []Vec2{
			{1.227, -0.109}, {1.227, 0.118}, {0.038, -0.109},
			{1.227, 0.118}, {0.489, 1.109}, {0.038, -0.109},
			{0.038, -0.109}, {0.489, 1.109}, {0.038, 1.109},
		},
	},
	Right: {
		Role: Right,
		CM: []Vec2{
			{21.5, -14.5}, {25.5, -14.5}, {25.5, 14.5},
			{21.5, -14.5}, {25.5, 14.5}, {4, 3.5},
			{4, 3.5}, {25.5, 14.5}, {4, 14.5},
		},
		UV: []Vec2{
			{-0.226, 0.118}, {-0.226, -0.109}, {0.962, -0.109},
			{-0.226, 0.118}, {0.962, -0.109}, {0.511, 1.109},
			{0.511, 1.109}, {0.962, -0.109}, {0.962, 1.109},
		},
	},
}

// RegionFor returns the layout of role.
func RegionFor(role Role) Region {
	return regions[role]
}

// Shape is a region bound to a panel size and to the image file it displays.
// It is immutable; GPU resources built from it belong to the renderer.
type Shape struct {
	Role      Role
	ImagePath string
	Positions []float32 // x,y pairs in NDC
	UVs       []float32 // u,v pairs
}

// VertexCount is the number of vertices to draw.
func (s Shape) VertexCount() int {
	return len(s.Positions) / 2
}

// NewShape builds the shape for role on the given panel, reading its image
// from renderDir.
func NewShape(role Role, panel PanelSize, renderDir string) Shape {
	region := RegionFor(role)
	shape := Shape{
		Role:      role,
		ImagePath: filepath.Join(renderDir, role.Source().ImageName()),
		Positions: make([]float32, 0, 2*len(region.CM)),
		UVs:       make([]float32, 0, 2*len(region.UV)),
	}
	for _, cm := range region.CM {
		ndc := panel.ToNDC(cm)
		shape.Positions = append(shape.Positions, ndc.X, ndc.Y)
	}
	for _, uv := range region.UV {
		shape.UVs = append(shape.UVs, uv.X, uv.Y)
	}
	return shape
}

// Layout returns the shapes of all three roles in draw order.
func Layout(panel PanelSize, renderDir string) []Shape {
	shapes := make([]Shape, 0, len(Roles))
	for _, role := range Roles {
		shapes = append(shapes, NewShape(role, panel, renderDir))
	}
	return shapes
}

// ImagePaths returns the three files the host must write before asking for a
// redraw, keyed by camera perspective.
func ImagePaths(renderDir string) map[Role]string {
	paths := make(map[Role]string, len(Roles))
	for _, role := range Roles {
		paths[role] = filepath.Join(renderDir, role.ImageName())
	}
	return paths
}
