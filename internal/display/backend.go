package display

// Dimensions is the per-view render size the host uses for its source
// images. The engine only passes it along to the next redraw.
type Dimensions struct {
	Width  int
	Height int
}

// Backend owns the windowing system and GPU context. Every method is called
// from the engine thread only, and never concurrently.
type Backend interface {
	// Init brings up the windowing library. Monitors may be queried after it
	// returns.
	Init() error
	// Monitors returns the number of monitors currently attached.
	Monitors() (int, error)
	// Open creates the GPU context and a full-screen window on monitor and
	// prepares everything Redraw needs.
	Open(monitor int) error
	// BindMonitor moves the full-screen window to monitor, resetting its size
	// and refresh rate to that monitor's native video mode.
	BindMonitor(monitor int) error
	// Redraw reloads the source images, draws them and presents the frame.
	Redraw(dims Dimensions) error
	// Close releases the window and GPU context.
	Close() error
}

// ResolveMonitor maps a requested monitor index onto the monitors that exist
// right now. Anything outside [0, count-1], including negative sentinels,
// resolves to the last monitor.
func ResolveMonitor(index, count int) int {
	if index < 0 || index >= count {
		return count - 1
	}
	return index
}
