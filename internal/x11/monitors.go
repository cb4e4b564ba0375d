package x11

import (
	"fmt"
	"math"
	"sort"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	// Number is the 1-based position in the order the display process
	// enumerates monitors: primary first, then RandR order.
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Primary  bool   `json:"primary"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	WidthMM  int    `json:"width_mm"`
	HeightMM int    `json:"height_mm"`
}

// Contains reports whether the root-window point (x, y) is on m.
func (m Monitor) Contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		mon := Monitor{
			Name:   fmt.Sprintf("Monitor%d", i),
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		output := crtcInfo.Outputs[0]
		if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), output, resources.ConfigTimestamp).Reply(); err == nil {
			mon.Name = string(outputInfo.Name)
			mon.WidthMM = int(outputInfo.MmWidth)
			mon.HeightMM = int(outputInfo.MmHeight)
		}
		for _, out := range crtcInfo.Outputs {
			if primary != 0 && out == primary {
				mon.Primary = true
			}
		}
		monitors = append(monitors, mon)
	}

	orderMonitors(monitors)
	return monitors, nil
}

// orderMonitors moves the primary monitor to the front, keeping the RandR
// order of the rest, and assigns numbers.
func orderMonitors(monitors []Monitor) {
	sort.SliceStable(monitors, func(i, j int) bool {
		return monitors[i].Primary && !monitors[j].Primary
	})
	for i := range monitors {
		monitors[i].Number = i + 1
	}
}

// ClosestToSize returns the monitor whose physical size is nearest to
// widthMM x heightMM, ignoring monitors that do not report a size.
func ClosestToSize(monitors []Monitor, widthMM, heightMM int) (*Monitor, bool) {
	var best *Monitor
	bestDist := math.Inf(1)
	for i := range monitors {
		m := &monitors[i]
		if m.WidthMM <= 0 || m.HeightMM <= 0 {
			continue
		}
		dist := math.Hypot(float64(m.WidthMM-widthMM), float64(m.HeightMM-heightMM))
		if dist < bestDist {
			best, bestDist = m, dist
		}
	}
	return best, best != nil
}

// GetActiveMonitor returns the monitor containing the currently focused
// window, falling back to the one under the pointer, then the first.
func (c *Connection) GetActiveMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	if activeWin, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && activeWin != 0 {
		if mon := findMonitorForWindow(c, monitors, activeWin); mon != nil {
			return mon, nil
		}
	}
	if mon := findMonitorForPointer(c, monitors); mon != nil {
		return mon, nil
	}
	return &monitors[0], nil
}

func findMonitorForWindow(c *Connection, monitors []Monitor, windowID xproto.Window) *Monitor {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return nil
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return nil
	}

	winCenterX := int(translate.DstX) + int(geom.Width)/2
	winCenterY := int(translate.DstY) + int(geom.Height)/2
	return monitorAt(monitors, winCenterX, winCenterY)
}

func findMonitorForPointer(c *Connection, monitors []Monitor) *Monitor {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil
	}
	return monitorAt(monitors, int(pointer.RootX), int(pointer.RootY))
}

func monitorAt(monitors []Monitor, x, y int) *Monitor {
	for i := range monitors {
		if monitors[i].Contains(x, y) {
			return &monitors[i]
		}
	}
	return nil
}
