// Package relay is a development room server: it fans every frame out to
// all members of a room, sender included, and synthesizes leave
// announcements when a socket drops. Production deployments are expected to
// bring their own room infrastructure; clients tolerate the echo by
// suppressing their own user id.
package relay

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pixelsheets/gridsync/collab"
)

// Server upgrades every request to a websocket and serves rooms keyed by
// (spreadsheet, sheet). Rooms live for the lifetime of the server.
type Server struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	rooms map[string]*room
}

// Opt configures a Server.
type Opt func(*Server)

func WithLogger(logger *zap.Logger) Opt {
	return func(s *Server) { s.logger = logger }
}

func New(opts ...Opt) *Server {
	s := &Server{
		logger: zap.NewNop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dev relay takes connections from anywhere.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		rooms: make(map[string]*room),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type room struct {
	name        string
	clients     map[chan []byte]bool
	subscribe   chan chan []byte
	unsubscribe chan chan []byte
	broadcast   chan []byte
}

func newRoom(name string) *room {
	return &room{
		name:        name,
		clients:     make(map[chan []byte]bool),
		subscribe:   make(chan chan []byte),
		unsubscribe: make(chan chan []byte),
		broadcast:   make(chan []byte, 16),
	}
}

func (r *room) run() {
	for {
		select {
		case c := <-r.subscribe:
			r.clients[c] = true
		case c := <-r.unsubscribe:
			delete(r.clients, c)
		case msg := <-r.broadcast:
			// Everyone gets the frame, the sender included.
			for send := range r.clients {
				select {
				case send <- msg:
				default:
					// Slow client; drop the frame rather than
					// stall the room.
				}
			}
		}
	}
}

func (s *Server) room(spreadsheetID, sheetID int) *room {
	name := strconv.Itoa(spreadsheetID) + "/" + strconv.Itoa(sheetID)
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[name]
	if !ok {
		r = newRoom(name)
		s.rooms[name] = r
		go r.run()
	}
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	s.handleConn(conn)
}

func (s *Server) handleConn(conn *websocket.Conn) {
	id := uuid.NewString()
	logger := s.logger.With(zap.String("conn", id))
	logger.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))

	send := make(chan []byte, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	var (
		rm       *room
		lastJoin *collab.CollaboratorJoin
	)
	for {
		_, buf, err := conn.ReadMessage()
		if err != nil {
			break
		}
		msg, err := collab.Decode(buf)
		if err != nil {
			logger.Debug("dropping undecodable frame", zap.Error(err))
			continue
		}
		switch m := msg.(type) {
		case *collab.JoinRoom:
			if rm != nil {
				logger.Debug("ignoring second join-room")
				continue
			}
			rm = s.room(m.SpreadsheetID, m.SheetID)
			rm.subscribe <- send
			logger.Info("joined room", zap.String("room", rm.name))
		case *collab.CollaboratorJoin:
			lastJoin = m
			if rm != nil {
				rm.broadcast <- buf
			}
		default:
			if rm != nil {
				rm.broadcast <- buf
			}
		}
	}

	if rm != nil {
		rm.unsubscribe <- send
		if lastJoin != nil {
			leave, err := json.Marshal(collab.CollaboratorLeave{
				Type:   collab.TypeCollaboratorLeave,
				UserID: lastJoin.User.ID,
			})
			if err == nil {
				rm.broadcast <- leave
			}
		}
	}
	close(send)
	<-done
	conn.Close()
	logger.Info("client disconnected")
}
