// Package live serves interactive analysis over a websocket: the browser
// streams analyze requests while markers are dragged and gets a report back
// for each one.
package live

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/teslashibe/go-moto-ergo/internal/log"
	"github.com/teslashibe/go-moto-ergo/pkg/analysis"
	"github.com/teslashibe/go-moto-ergo/pkg/comfort"
	"github.com/teslashibe/go-moto-ergo/pkg/protocol"
)

// ErrUnsupported is returned for message types the server does not accept.
var ErrUnsupported = errors.New("unsupported message type")

// Session is one connected editor.
type Session struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time

	mu sync.Mutex
}

// Send writes msg to the session
func (s *Session) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Conn.WriteMessage(websocket.TextMessage, data)
}

// Server handles live analysis sessions
type Server struct {
	analyzer *analysis.Analyzer
	style    atomic.Value // comfort.RidingStyle applied when a request names none

	mu       sync.RWMutex
	sessions map[string]*Session

	// Stats
	messagesReceived atomic.Uint64
	reportsSent      atomic.Uint64
	errorsSent       atomic.Uint64
}

// NewServer creates a live server backed by analyzer
func NewServer(analyzer *analysis.Analyzer) *Server {
	if analyzer == nil {
		analyzer = analysis.New(nil, nil)
	}
	return &Server{
		analyzer: analyzer,
		sessions: make(map[string]*Session),
	}
}

// RegisterRoutes mounts /ws/live on app
func (s *Server) RegisterRoutes(app fiber.Router) {
	app.Use("/ws/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/live", websocket.New(s.handleSession))
}

func (s *Server) handleSession(c *websocket.Conn) {
	session := &Session{
		ID:        uuid.New().String(),
		Conn:      c,
		Connected: time.Now(),
	}
	logger := log.With("session", session.ID)

	s.mu.Lock()
	s.sessions[session.ID] = session
	count := len(s.sessions)
	s.mu.Unlock()
	logger.Debug("live session opened", "sessions", count)

	defer func() {
		s.mu.Lock()
		delete(s.sessions, session.ID)
		count := len(s.sessions)
		s.mu.Unlock()
		logger.Debug("live session closed", "sessions", count)
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		s.messagesReceived.Add(1)

		reply := s.Handle(data)
		if reply == nil {
			continue
		}
		if err := session.Send(reply); err != nil {
			logger.Warn("live send failed", "error", err)
			return
		}
	}
}

// Handle turns one inbound frame into its reply. It is the whole protocol;
// the websocket loop only moves bytes.
func (s *Server) Handle(data []byte) *protocol.Message {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		s.errorsSent.Add(1)
		return protocol.NewErrorMessage(0, err)
	}

	switch msg.Type {
	case protocol.TypeAnalyze:
		var in analysis.Input
		if err := msg.ParseData(&in); err != nil {
			s.errorsSent.Add(1)
			return protocol.NewErrorMessage(msg.Seq, fmt.Errorf("%w: %v", analysis.ErrInvalidInput, err))
		}
		if err := in.Validate(); err != nil {
			s.errorsSent.Add(1)
			return protocol.NewErrorMessage(msg.Seq, err)
		}
		if in.RidingStyle == "" {
			in.RidingStyle, _ = s.style.Load().(comfort.RidingStyle)
		}
		reply, err := protocol.NewReportMessage(msg.Seq, s.analyzer.Analyze(in))
		if err != nil {
			s.errorsSent.Add(1)
			return protocol.NewErrorMessage(msg.Seq, err)
		}
		s.reportsSent.Add(1)
		return reply

	case protocol.TypePing:
		pong, _ := protocol.NewMessage(protocol.TypePong, nil)
		pong.Seq = msg.Seq
		return pong

	case protocol.TypePong:
		return nil

	default:
		s.errorsSent.Add(1)
		return protocol.NewErrorMessage(msg.Seq, fmt.Errorf("%w: %s", ErrUnsupported, msg.Type))
	}
}

// SetDefaultStyle sets the riding style used when an analyze request
// names none
func (s *Server) SetDefaultStyle(style comfort.RidingStyle) {
	s.style.Store(style)
}

// SessionCount returns the number of open sessions
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stats contains live server statistics
type Stats struct {
	Sessions         int    `json:"sessions"`
	MessagesReceived uint64 `json:"messages_received"`
	ReportsSent      uint64 `json:"reports_sent"`
	ErrorsSent       uint64 `json:"errors_sent"`
}

// GetStats returns live server statistics
func (s *Server) GetStats() Stats {
	return Stats{
		Sessions:         s.SessionCount(),
		MessagesReceived: s.messagesReceived.Load(),
		ReportsSent:      s.reportsSent.Load(),
		ErrorsSent:       s.errorsSent.Load(),
	}
}
