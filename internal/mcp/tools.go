package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.client.GetWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	entries := make([]WindowEntry, len(data.Windows))
	for i, w := range data.Windows {
		entries[i] = WindowEntry{
			Window: w.ID,
			Zone:   w.Zone,
			X:      w.X,
			Y:      w.Y,
			Width:  w.Width,
			Height: w.Height,
		}
	}

	return nil, ListWindowsOutput{Windows: entries, Count: len(entries)}, nil
}

func (s *Server) handleSnapWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SnapWindowInput) (*mcpsdk.CallToolResult, SnapWindowOutput, error) {
	if args.Zone == "" {
		return nil, SnapWindowOutput{}, fmt.Errorf("zone is required")
	}

	if err := s.client.Snap(args.Window, args.Zone); err != nil {
		return nil, SnapWindowOutput{}, err
	}

	return nil, SnapWindowOutput{Window: args.Window, Zone: args.Zone}, nil
}

func (s *Server) handleUntileWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args UntileWindowInput) (*mcpsdk.CallToolResult, UntileWindowOutput, error) {
	if err := s.client.Untile(args.Window); err != nil {
		return nil, UntileWindowOutput{}, err
	}

	return nil, UntileWindowOutput{Window: args.Window}, nil
}

func (s *Server) handleRetile(_ context.Context, _ *mcpsdk.CallToolRequest, _ RetileInput) (*mcpsdk.CallToolResult, RetileOutput, error) {
	if err := s.client.Retile(); err != nil {
		return nil, RetileOutput{}, err
	}

	return nil, RetileOutput{Retiled: true}, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}

	return nil, GetStatusOutput{
		TiledCount:    status.TiledCount,
		UptimeSeconds: status.UptimeSeconds,
		DaemonRunning: status.DaemonRunning,
	}, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.client.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}

	monitors := make([]MonitorEntry, len(data.Monitors))
	for i, m := range data.Monitors {
		monitors[i] = MonitorEntry{
			ID:     m.ID,
			Name:   m.Name,
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		}
	}

	return nil, ListMonitorsOutput{Monitors: monitors}, nil
}
