package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kiruse/dreamoc-livelink/internal/session"
	"github.com/kiruse/dreamoc-livelink/internal/x11"
)

func (s *Server) updateOutput(msg string) UpdateOutput {
	st := s.ctrl.Status()
	return UpdateOutput{
		Display: st.Display,
		Width:   st.Width,
		Height:  st.Height,
		Message: msg,
	}
}

func (s *Server) handleUseDisplay(_ context.Context, _ *mcpsdk.CallToolRequest, args UseDisplayInput) (*mcpsdk.CallToolResult, UpdateOutput, error) {
	if err := s.ctrl.SetDisplay(args.Display); err != nil {
		s.logger.Warn("use_display failed", "display", args.Display, "error", err)
		return nil, UpdateOutput{}, err
	}
	return nil, s.updateOutput(fmt.Sprintf("preview moves to display %d", args.Display)), nil
}

func (s *Server) handleSetDimensions(_ context.Context, _ *mcpsdk.CallToolRequest, args SetDimensionsInput) (*mcpsdk.CallToolResult, UpdateOutput, error) {
	if err := s.ctrl.SetDimensions(args.Width, args.Height); err != nil {
		s.logger.Warn("set_dimensions failed", "width", args.Width, "height", args.Height, "error", err)
		return nil, UpdateOutput{}, err
	}
	return nil, s.updateOutput(fmt.Sprintf("views will render at %dx%d", args.Width, args.Height)), nil
}

func (s *Server) handleShowRenders(_ context.Context, _ *mcpsdk.CallToolRequest, args ShowRendersInput) (*mcpsdk.CallToolResult, UpdateOutput, error) {
	r, err := renderersFor(args)
	if err != nil {
		return nil, UpdateOutput{}, err
	}
	if err := s.ctrl.Update(r); err != nil {
		s.logger.Error("show_renders failed", "error", err)
		return nil, UpdateOutput{}, err
	}
	return nil, s.updateOutput("renders shown"), nil
}

func renderersFor(args ShowRendersInput) (*session.FileRenderer, error) {
	if args.Front != "" && args.Left != "" && args.Right != "" {
		return session.NewFileRenderer(args.Front, args.Left, args.Right), nil
	}
	if args.Front != "" || args.Left != "" || args.Right != "" {
		return nil, fmt.Errorf("front, left and right must be given together")
	}
	if args.Dir == "" {
		return nil, fmt.Errorf("either dir or front, left and right are required")
	}
	return session.DirRenderer(args.Dir), nil
}

func (s *Server) handleTestPattern(_ context.Context, _ *mcpsdk.CallToolRequest, _ TestPatternInput) (*mcpsdk.CallToolResult, UpdateOutput, error) {
	if err := s.ctrl.Update(session.DefaultPattern()); err != nil {
		s.logger.Error("test_pattern failed", "error", err)
		return nil, UpdateOutput{}, err
	}
	return nil, s.updateOutput("test pattern shown"), nil
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st := s.ctrl.Status()
	return nil, StatusOutput{
		Running:     st.Running,
		Initialized: st.Initialized,
		Display:     st.Display,
		Width:       st.Width,
		Height:      st.Height,
		RenderDir:   st.RenderDir,
		Updates:     st.Updates,
		LastError:   st.LastError,
	}, nil
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	monitors, err := s.monitorsFn()
	if err != nil {
		return nil, ListDisplaysOutput{}, fmt.Errorf("failed to list displays: %w", err)
	}
	return nil, ListDisplaysOutput{Displays: describeMonitors(monitors, s.panelWidthMM, s.panelHeightMM)}, nil
}

func describeMonitors(monitors []x11.Monitor, widthMM, heightMM int) []DisplayInfo {
	likely, _ := x11.ClosestToSize(monitors, widthMM, heightMM)
	out := make([]DisplayInfo, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, DisplayInfo{
			Number:   m.Number,
			Name:     m.Name,
			Primary:  m.Primary,
			Width:    m.Width,
			Height:   m.Height,
			WidthMM:  m.WidthMM,
			HeightMM: m.HeightMM,
			Likely:   likely != nil && likely.Number == m.Number,
		})
	}
	return out
}
