package mcp

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// WindowEntry describes a single tiled window.
type WindowEntry struct {
	Window uint32 `json:"window"`
	Zone   string `json:"zone"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowEntry `json:"windows"`
	Count   int           `json:"count"`
}

// SnapWindowInput is the input for the snap_window tool.
type SnapWindowInput struct {
	Zone   string `json:"zone" jsonschema:"required,Zone name: left, right, left-top, right-top, left-bottom, right-bottom, maximize, left-third, center-third, right-third, left-two-thirds, right-two-thirds"`
	Window uint32 `json:"window,omitempty" jsonschema:"Window id to snap (default: the currently focused window)"`
}

// SnapWindowOutput is the output for the snap_window tool.
type SnapWindowOutput struct {
	Window uint32 `json:"window"`
	Zone   string `json:"zone"`
}

// UntileWindowInput is the input for the untile_window tool.
type UntileWindowInput struct {
	Window uint32 `json:"window,omitempty" jsonschema:"Window id to untile (default: the currently focused window)"`
}

// UntileWindowOutput is the output for the untile_window tool.
type UntileWindowOutput struct {
	Window uint32 `json:"window"`
}

// RetileInput is the input for the retile tool.
type RetileInput struct{}

// RetileOutput is the output for the retile tool.
type RetileOutput struct {
	Retiled bool `json:"retiled"`
}

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	TiledCount    int   `json:"tiled_count"`
	UptimeSeconds int64 `json:"uptime_seconds"`
	DaemonRunning bool  `json:"daemon_running"`
}

// MonitorEntry describes a single connected monitor.
type MonitorEntry struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []MonitorEntry `json:"monitors"`
}
