package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kiruse/dreamoc-livelink/internal/config"
	"github.com/kiruse/dreamoc-livelink/internal/session"
	"github.com/kiruse/dreamoc-livelink/internal/x11"
)

const (
	ServerName    = "dreamoc"
	ServerVersion = "0.1.0"
)

// Controller is the part of a session the tools drive. *session.Session
// implements it.
type Controller interface {
	SetDisplay(display int) error
	SetDimensions(width, height int) error
	Update(r session.Renderer) error
	Status() session.Status
}

// Options configures a Server.
type Options struct {
	// PanelWidthMM and PanelHeightMM are the physical panel size used to
	// guess which monitor is the device. Zero means the HD3 default.
	PanelWidthMM  int
	PanelHeightMM int
	Logger        *slog.Logger
}

// Server exposes display control to MCP clients over stdio.
type Server struct {
	mcpServer *mcpsdk.Server
	ctrl      Controller
	logger    *slog.Logger

	panelWidthMM  int
	panelHeightMM int

	// monitorsFn lists attached monitors; replaced in tests.
	monitorsFn func() ([]x11.Monitor, error)
}

// NewServer creates an MCP server driving ctrl.
func NewServer(ctrl Controller, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PanelWidthMM <= 0 {
		opts.PanelWidthMM = config.DefaultPanelWidthCM * 10
	}
	if opts.PanelHeightMM <= 0 {
		opts.PanelHeightMM = config.DefaultPanelHeightCM * 10
	}
	s := &Server{
		ctrl:          ctrl,
		logger:        logger.With("component", "mcp"),
		panelWidthMM:  opts.PanelWidthMM,
		panelHeightMM: opts.PanelHeightMM,
		monitorsFn:    listMonitors,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "use_display",
		Description: "Move the holographic preview to another monitor. Numbers are 1-based as the operating system reports them; a number past the last monitor selects the last one. Takes effect with the next redraw, which this call triggers.",
	}, s.handleUseDisplay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_dimensions",
		Description: "Set the pixel size of each rendered view. Does not redraw; the new size applies to the next show_renders or test_pattern call.",
	}, s.handleSetDimensions)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "show_renders",
		Description: "Show three rendered views (front, left, right) on the Dreamoc. Images are scaled to the configured dimensions. Starts the display process if needed.",
	}, s.handleShowRenders)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "test_pattern",
		Description: "Show solid red (front), green (left) and blue (right) views with a white marker in each view's top-left corner, to check region wiring and orientation.",
	}, s.handleTestPattern)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "status",
		Description: "Report whether the display process is running, the selected monitor, the view size and the result of the last update.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List attached monitors with their 1-based numbers and physical sizes, flagging the one closest to the configured Dreamoc panel size.",
	}, s.handleListDisplays)
}

func listMonitors() ([]x11.Monitor, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.GetMonitors()
}
