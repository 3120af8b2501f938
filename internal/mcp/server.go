package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/snaptile/snaptile/internal/ipc"
)

const (
	ServerName    = "snaptile"
	ServerVersion = "0.1.0"
)

// daemonClient is the slice of the IPC client the tools need. Tests
// substitute a fake.
type daemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	GetWindows() (*ipc.WindowsData, error)
	Snap(window uint32, zone string) error
	Untile(window uint32) error
	Retile() error
}

// Server exposes the tiling daemon to MCP clients over stdio. Every tool
// is a thin wrapper around the daemon's IPC surface, so the daemon must
// be running for the tools to work.
type Server struct {
	mcpServer *mcpsdk.Server
	client    daemonClient
}

// NewServer creates a new MCP server that talks to the local daemon.
func NewServer() *Server {
	s := &Server{
		client: ipc.NewClient(),
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
		Name:        "list_windows",
		Description: "List all currently tiled windows with their zone and geometry.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_window",
		Description: "Snap a window into a named zone (left, right, quadrants, maximize, thirds). Targets the focused window unless a window id is given.",
	}, s.handleSnapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "untile_window",
		Description: "Restore a tiled window to the size and position it had before it was tiled. Targets the focused window unless a window id is given.",
	}, s.handleUntileWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "retile",
		Description: "Redistribute the tiled windows on the active monitor into equal-width slots.",
	}, s.handleRetile)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report daemon status: whether it is running, its uptime, and how many windows are tiled.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List connected monitors with their geometry.",
	}, s.handleListMonitors)
}
