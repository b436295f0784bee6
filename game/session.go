package game

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/IllTzeko/wombokombo-gameserver/logger"
)

const (
	outboxSize   = 256
	pingInterval = 30 * time.Second
	writeTimeout = 20 * time.Second
	pongWait     = time.Minute
)

type websocketConnection struct {
	socket *websocket.Conn
}

func newWebsocketConnection(conn *websocket.Conn) *websocketConnection {
	// The deadline must be armed before the first read; the pong handler
	// only extends it.
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	return &websocketConnection{conn}
}

func (wc *websocketConnection) Write(data []byte) error {
	return wc.socket.WriteMessage(websocket.TextMessage, data)
}

func (wc *websocketConnection) Ping() error {
	return wc.socket.WriteMessage(websocket.PingMessage, nil)
}

func (wc *websocketConnection) Read() ([]byte, error) {
	_, p, err := wc.socket.ReadMessage()
	return p, err
}

func (wc *websocketConnection) Close(errCode string) {
	wc.socket.SetWriteDeadline(time.Now().Add(writeTimeout))
	wc.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, errCode))
	wc.socket.Close()
}

// clientPacket is the single frame shape clients send; Type selects which
// fields matter.
type clientPacket struct {
	Type    string   `json:"type"`
	Ready   bool     `json:"ready"`
	Message string   `json:"message"`
	Tick    int      `json:"tick"`
	Actions []string `json:"actions"`
}

// session owns one player's websocket for the duration of their stay in a
// room: a read pump dispatching client packets into the service and a write
// pump draining the outbox.
type session struct {
	playerId string
	conn     *websocketConnection
	svc      *Service

	outbox    chan []byte
	chatLimit *rate.Limiter

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(playerId string, conn *websocketConnection, svc *Service) *session {
	return &session{
		playerId:  playerId,
		conn:      conn,
		svc:       svc,
		outbox:    make(chan []byte, outboxSize),
		chatLimit: rate.NewLimiter(1, 5),
		done:      make(chan struct{}),
	}
}

// Enqueue implements outbound. A slow consumer loses frames rather than
// stalling the game loop.
func (s *session) Enqueue(payload []byte) {
	select {
	case s.outbox <- payload:
	default:
		logger.Warningf("player %s outbox full, dropping frame", s.playerId)
	}
}

// CloseSession implements outbound. It only closes the socket; the read
// pump observes the error and runs the normal disconnect path.
func (s *session) CloseSession() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close("replaced")
	})
}

func (s *session) ReadPump() {
	defer func() {
		s.svc.Disconnect(s.playerId, s)
		s.closeOnce.Do(func() {
			close(s.done)
			s.conn.Close("")
		})
	}()

	for {
		data, err := s.conn.Read()
		if err != nil {
			return
		}

		var packet clientPacket
		if err := json.Unmarshal(data, &packet); err != nil {
			logger.Debugf("player %s sent malformed packet: %v", s.playerId, err)
			continue
		}

		switch packet.Type {
		case "ready":
			s.svc.HandleReady(s.playerId, packet.Ready)
		case "chat":
			if !s.chatLimit.Allow() {
				continue
			}
			s.svc.HandleChat(s.playerId, packet.Message)
		case "input":
			s.svc.HandleInput(s.playerId, packet.Tick, packet.Actions)
		case "start":
			s.svc.HandleStart(s.playerId)
		case "leave":
			return
		default:
			logger.Debugf("player %s sent unknown packet type %q", s.playerId, packet.Type)
		}
	}
}

func (s *session) WritePump() {
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case data := <-s.outbox:
			if err := s.conn.Write(data); err != nil {
				return
			}
		case <-pingTicker.C:
			if err := s.conn.Ping(); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}
