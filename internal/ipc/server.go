package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/snaptile/snaptile/internal/config"
	"github.com/snaptile/snaptile/internal/platform"
	"github.com/snaptile/snaptile/internal/runtimepath"
	"github.com/snaptile/snaptile/internal/tiling"
)

// Tiler is the engine surface the IPC server drives.
type Tiler interface {
	SnapWindow(id platform.WindowID, zone string) error
	SnapActiveWindow(zone string) error
	Untile(id platform.WindowID) error
	Retile() error
	Clear()
	TiledCount() int
	TiledStates() []tiling.WindowState
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	tiler        Tiler
	backend      platform.Backend
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(cfg *config.Config, tiler Tiler, backend platform.Backend, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		tiler:      tiler,
		backend:    backend,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandGetWindows:
		return s.handleGetWindows()
	case CommandSnap:
		return s.handleSnap(req.Payload)
	case CommandUntile:
		return s.handleUntile(req.Payload)
	case CommandRetile:
		return s.handleRetile()
	case CommandClear:
		return s.handleClear()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	// Load new config
	newCfg, err := config.Load()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	// Update config atomically
	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		TiledCount:    s.tiler.TiledCount(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

// handleGetMonitors returns information about all monitors
func (s *Server) handleGetMonitors() *Response {
	displays, err := s.backend.Displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}

	monitorInfos := make([]MonitorInfo, len(displays))
	for i, d := range displays {
		monitorInfos[i] = MonitorInfo{
			ID:     d.ID,
			Name:   d.Name,
			X:      d.Bounds.X,
			Y:      d.Bounds.Y,
			Width:  d.Bounds.Width,
			Height: d.Bounds.Height,
		}
	}

	data := MonitorsData{
		Monitors: monitorInfos,
	}

	resp, _ := NewOKResponse(data)
	return resp
}

// handleGetWindows returns the tiled window set
func (s *Server) handleGetWindows() *Response {
	states := s.tiler.TiledStates()
	infos := make([]WindowInfo, len(states))
	for i, w := range states {
		infos[i] = WindowInfo{
			ID:     uint32(w.ID),
			Zone:   w.Zone,
			X:      w.Rect.X,
			Y:      w.Rect.Y,
			Width:  w.Rect.Width,
			Height: w.Rect.Height,
		}
	}

	resp, _ := NewOKResponse(WindowsData{Windows: infos})
	return resp
}

// handleSnap tiles a window into a named zone
func (s *Server) handleSnap(payload json.RawMessage) *Response {
	var snapReq SnapPayload
	if err := json.Unmarshal(payload, &snapReq); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid snap payload: %v", err))
	}
	if snapReq.Zone == "" {
		return NewErrorResponse("zone is required")
	}

	var err error
	if snapReq.Window == 0 {
		err = s.tiler.SnapActiveWindow(snapReq.Zone)
	} else {
		err = s.tiler.SnapWindow(platform.WindowID(snapReq.Window), snapReq.Zone)
	}
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to snap: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleUntile restores a window to its pre-tile rectangle
func (s *Server) handleUntile(payload json.RawMessage) *Response {
	var untileReq UntilePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &untileReq); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid untile payload: %v", err))
		}
	}

	id := platform.WindowID(untileReq.Window)
	if id == 0 {
		active, err := s.backend.ActiveWindow()
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to resolve active window: %v", err))
		}
		id = active
	}

	if err := s.tiler.Untile(id); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to untile: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleRetile redistributes the active display's tiled row
func (s *Server) handleRetile() *Response {
	if err := s.tiler.Retile(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to retile: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleClear forgets all tiled state
func (s *Server) handleClear() *Response {
	s.tiler.Clear()

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
