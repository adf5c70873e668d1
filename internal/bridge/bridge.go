// Package bridge exposes the client's notification and navigation state to a
// UI process over HTTP, with a websocket stream for live updates.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/raysh454/buzzclient/internal/logging"
	"github.com/raysh454/buzzclient/internal/notify"
	"github.com/raysh454/buzzclient/internal/validate"
)

const (
	// Queued events per websocket connection. A client that falls this far
	// behind is disconnected.
	streamBuffer = 64
	writeTimeout = 10 * time.Second
)

// Notifications is the part of notify.Store the bridge uses.
type Notifications interface {
	Snapshot() notify.Snapshot
	Dismiss(ch notify.Channel)
	Subscribe(fn func(notify.Event)) (unsubscribe func())
}

// Navigation is the part of navigation.Router the bridge uses.
type Navigation interface {
	Current() string
	Subscribe(fn func(path string)) (unsubscribe func())
}

// Config configures a Server.
type Config struct {
	ListenAddr string
	Logger     logging.Logger
}

// Server is the HTTP + WebSocket bridge.
type Server struct {
	cfg      Config
	notes    Notifications
	nav      Navigation
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer builds the router. notes and nav must be non-nil.
func NewServer(cfg Config, notes Notifications, nav Navigation) (*Server, error) {
	if notes == nil || nav == nil {
		return nil, errors.New("bridge: notifications and navigation are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("bridge")
	}

	s := &Server{
		cfg:    cfg,
		notes:  notes,
		nav:    nav,
		router: chi.NewRouter(),
		logger: logger.With(logging.Field{Key: "component", Value: "bridge"}),
		upgrader: websocket.Upgrader{
			// The bridge binds to loopback by default; any local UI origin may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Options("/notifications", s.optionsHandler("GET"))
	r.Options("/notifications/{channel}/dismiss", s.optionsHandler("POST"))
	r.Options("/navigation", s.optionsHandler("GET"))
	r.Options("/validate/{schema}", s.optionsHandler("POST"))

	r.Get("/notifications", s.handleGetNotifications)
	r.Post("/notifications/{channel}/dismiss", s.handleDismiss)
	r.Get("/navigation", s.handleGetNavigation)
	r.Post("/validate/{schema}", s.handleValidate)

	r.Get("/ws", s.handleStream)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			// Validation bodies carry passwords.
			fields = append(fields, logging.Field{Key: "body_bytes", Value: len(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Debug("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- HTTP handlers ---

// handleGetNotifications godoc
// @Summary Current notification state
// @Tags notifications
// @Produce json
// @Success 200 {object} notify.Snapshot
// @Router /notifications [get]
func (s *Server) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.notes.Snapshot())
}

// handleDismiss godoc
// @Summary Hide a notification channel
// @Tags notifications
// @Param channel path string true "error or info"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /notifications/{channel}/dismiss [post]
func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	ch, err := notify.ParseChannel(chi.URLParam(r, "channel"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.notes.Dismiss(ch)
	s.logger.Debug("dismissed notification", logging.Field{Key: "channel", Value: string(ch)})
	w.WriteHeader(http.StatusNoContent)
}

type navigationResponse struct {
	Path string `json:"path"`
}

// handleGetNavigation godoc
// @Summary Current navigation target
// @Tags navigation
// @Produce json
// @Success 200 {object} navigationResponse
// @Router /navigation [get]
func (s *Server) handleGetNavigation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, navigationResponse{Path: s.nav.Current()})
}

type validateResponse struct {
	Valid   bool   `json:"valid"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// handleValidate godoc
// @Summary Check a value against a named schema
// @Tags validation
// @Accept json
// @Produce json
// @Param schema path string true "schema name, e.g. username"
// @Success 200 {object} validateResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /validate/{schema} [post]
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "schema")
	schema, ok := validate.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown schema "+name)
		return
	}

	var data any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if issue := schema.Validate(data); issue != nil {
		writeJSON(w, http.StatusOK, validateResponse{Field: issue.Field, Message: issue.Message})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true})
}

// --- WebSocket ---

// Event types on the /ws stream.
const (
	EventNotification = "notification"
	EventNavigation   = "navigation"
)

// StreamEvent is one message on the /ws stream.
type StreamEvent struct {
	Type    string        `json:"type"`
	Channel string        `json:"channel,omitempty"`
	State   *notify.State `json:"state,omitempty"`
	Path    *string       `json:"path,omitempty"`
}

// handleStream godoc
// @Summary Live notification and navigation events
// @Description Sends the current state of both notification channels and the navigation target, then every change.
// @Tags stream
// @Router /ws [get]
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()
	// Clear the deadline http.Server.ReadTimeout left on the hijacked conn.
	_ = conn.SetReadDeadline(time.Time{})

	logger := s.logger.With(logging.Field{Key: "conn_id", Value: uuid.NewString()})
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events := make(chan StreamEvent, streamBuffer)
	push := func(ev StreamEvent) {
		select {
		case events <- ev:
		default:
			logger.Warn("websocket client too slow, disconnecting")
			cancel()
		}
	}

	unsubNotes := s.notes.Subscribe(func(ev notify.Event) {
		st := ev.State
		push(StreamEvent{Type: EventNotification, Channel: string(ev.Channel), State: &st})
	})
	defer unsubNotes()
	unsubNav := s.nav.Subscribe(func(path string) {
		push(StreamEvent{Type: EventNavigation, Path: &path})
	})
	defer unsubNav()

	logger.Info("websocket client connected")
	defer logger.Info("websocket client disconnected")

	// Reads only detect the peer going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				logger.Debug("websocket write failed", logging.Field{Key: "error", Value: err})
				return
			}
		}
	}
}
