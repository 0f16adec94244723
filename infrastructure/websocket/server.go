package websocket

import (
	"chat-aggregator/auth"
	"chat-aggregator/contract"
	"chat-aggregator/domain/event"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

const (
	pingInterval = 30 * time.Second
	readLimit    = 4096
)

// Server pushes the events applied to a channel to the WebSocket clients listening to it.
// Clients only listen: whatever they send is discarded.
type Server struct {
	log          *slog.Logger
	registry     contract.IRegistry
	upgrader     websocket.Upgrader
	bufferSize   int
	writeTimeout time.Duration
}

func NewServer(log *slog.Logger, registry contract.IRegistry, bufferSize int, writeTimeout time.Duration) *Server {
	return &Server{
		log:          log,
		registry:     registry,
		upgrader:     websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
	}
}

// Handler routes GET /ws and GET /healthz. A nil verifier leaves /ws unauthenticated.
func (s *Server) Handler(verifier *auth.TokenVerifier) http.Handler {
	var ws http.Handler = http.HandlerFunc(s.serveWS)
	if verifier != nil {
		ws = auth.Middleware(verifier, ws)
	}
	mux := http.NewServeMux()
	mux.Handle("GET /ws", ws)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	channelIDs := lo.Uniq(lo.Compact(r.URL.Query()["channelId"]))
	if len(channelIDs) == 0 {
		http.Error(w, "channelId is required", http.StatusBadRequest)
		return
	}

	sessionID := uuid.NewString()
	log := s.log.With("session_id", sessionID)
	if userID, ok := auth.UserID(r.Context()); ok {
		log = log.With("user_id", userID)
	}

	// Subscribed before the handshake completes so no event applied after it is missed.
	sink := NewSink(s.bufferSize)
	for _, channelID := range channelIDs {
		s.registry.Subscribe(sessionID, channelID, sink)
	}
	defer func() {
		s.registry.Unsubscribe(sessionID)
		sink.Close()
	}()

	wc, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	log.Info("Client connected", "channels", channelIDs)

	go s.write(wc, sink, log)
	s.read(wc)
	log.Info("Client disconnected")
}

// read blocks until the client goes away.
func (s *Server) read(wc *websocket.Conn) {
	wc.SetReadLimit(readLimit)
	for {
		if _, _, err := wc.NextReader(); err != nil {
			return
		}
	}
}

func (s *Server) write(wc *websocket.Conn, sink *Sink, log *slog.Logger) {
	defer wc.Close()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case e := <-sink.send:
			_ = wc.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := wc.WriteJSON(event.NewFrame(e)); err != nil {
				log.Debug("Write failed, closing connection", "error", err)
				return
			}
		case <-ticker.C:
			_ = wc.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := wc.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sink.done:
			_ = wc.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			_ = wc.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
