package mcp

// UseDisplayInput is the input for the use_display tool.
type UseDisplayInput struct {
	Display int `json:"display" jsonschema:"required,1-based number of the monitor to show the preview on, as the operating system numbers them"`
}

// SetDimensionsInput is the input for the set_dimensions tool.
type SetDimensionsInput struct {
	Width  int `json:"width" jsonschema:"required,Width of each rendered view in pixels (50-3840)"`
	Height int `json:"height" jsonschema:"required,Height of each rendered view in pixels (50-2160)"`
}

// ShowRendersInput is the input for the show_renders tool.
type ShowRendersInput struct {
	Dir   string `json:"dir,omitempty" jsonschema:"Directory containing front.png, left.png and right.png. Ignored when front, left and right are all set."`
	Front string `json:"front,omitempty" jsonschema:"Path of the image rendered by the front camera"`
	Left  string `json:"left,omitempty" jsonschema:"Path of the image rendered by the left camera"`
	Right string `json:"right,omitempty" jsonschema:"Path of the image rendered by the right camera"`
}

// TestPatternInput is the input for the test_pattern tool.
type TestPatternInput struct{}

// StatusInput is the input for the status tool.
type StatusInput struct{}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// UpdateOutput is returned by every tool that changes the preview.
type UpdateOutput struct {
	Display int    `json:"display"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Message string `json:"message"`
}

// StatusOutput is the output for the status tool.
type StatusOutput struct {
	Running     bool   `json:"running"`
	Initialized bool   `json:"initialized"`
	Display     int    `json:"display"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	RenderDir   string `json:"render_dir"`
	Updates     int    `json:"updates"`
	LastError   string `json:"last_error,omitempty"`
}

// DisplayInfo describes one attached monitor.
type DisplayInfo struct {
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Primary  bool   `json:"primary"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	WidthMM  int    `json:"width_mm"`
	HeightMM int    `json:"height_mm"`
	Likely   bool   `json:"likely_dreamoc"`
}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []DisplayInfo `json:"displays"`
}
