package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/kiruse/dreamoc-livelink/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dreamoc mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'dreamoc mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	if isHelp(args) {
		fmt.Fprintln(os.Stdout, "Usage: dreamoc mcp serve [options]")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Start the MCP server on stdio. The display process is spawned on the")
		fmt.Fprintln(os.Stdout, "first update and stopped when the server exits.")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Example:")
		fmt.Fprintln(os.Stdout, "  claude mcp add dreamoc -- dreamoc mcp serve")
		return 0
	}

	fs := pflag.NewFlagSet("mcp serve", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var common commonFlags
	common.register(fs)
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	// Stdout belongs to the MCP transport; logs and the display process
	// output go to stderr.
	h, err := newHost(&common)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start session: %v\n", err)
		return 1
	}
	defer h.close()

	ctx, cancel := signalContext()
	defer cancel()

	server := mcp.NewServer(h.session, mcp.Options{
		PanelWidthMM:  int(h.cfg.Panel.WidthCM * 10),
		PanelHeightMM: int(h.cfg.Panel.HeightCM * 10),
		Logger:        h.logger,
	})
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}
