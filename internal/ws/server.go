package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"coplay/internal/session"
)

const (
	writeWait    = 10 * time.Second
	maxFrameSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // dev‑only
}

// WsServer owns the live connection table and bridges the transport to the
// session coordinator: reader goroutines parse frames into typed commands,
// and the coordinator pushes events back out through Send/SendAll.
type WsServer struct {
	router     *Router
	coord      *session.Coordinator
	pingPeriod time.Duration
	pongWait   time.Duration // derived from pingPeriod so pings always land inside the read deadline

	mu    sync.RWMutex
	conns map[string]*clientConn // connection id -> live conn
}

func NewWsServer(pingPeriod time.Duration) *WsServer {
	srv := &WsServer{
		router:     NewRouter(),
		pingPeriod: pingPeriod,
		pongWait:   4 * pingPeriod,
		conns:      map[string]*clientConn{},
	}
	srv.registerHandlers() // ← all WS endpoints configured here
	return srv
}

// Attach wires the coordinator in after construction; the two reference each
// other, so one side has to come second.
func (s *WsServer) Attach(coord *session.Coordinator) { s.coord = coord }

// ---------------------------------------------------------------------------
//  Public: Gin entry‑point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}

	// Connection identity is assigned here and never reused while the
	// connection lives; everything downstream keys on it.
	connID := uuid.NewString()
	wsConn := &clientConn{rawConn: rawConn}

	s.mu.Lock()
	s.conns[connID] = wsConn
	s.mu.Unlock()

	go s.reader(connID, wsConn)
	go s.pinger(wsConn)
}

// ---------------------------------------------------------------------------
//  session.Dispatcher implementation
// ---------------------------------------------------------------------------

// Send unicasts one event. Unknown targets and write failures are silent
// drops; the reader notices a dead conn and runs the departure path.
func (s *WsServer) Send(connID, event string, body any) {
	s.mu.RLock()
	c := s.conns[connID]
	s.mu.RUnlock()
	if c == nil {
		return
	}
	if err := c.writeJSON(map[string]any{"event": event, "body": body}); err != nil {
		zap.L().Debug("ws.send_failed", zap.String("conn", connID), zap.Error(err))
	}
}

// SendAll broadcasts one event to every live connection. The conn list is
// snapshotted under the lock and the I/O happens outside it.
func (s *WsServer) SendAll(event string, body any) {
	s.mu.RLock()
	conns := make([]*clientConn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	frame := map[string]any{"event": event, "body": body}
	for _, c := range conns {
		_ = c.writeJSON(frame)
	}
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	// 🔹 join-room ------------------------------------------------------------
	Register(
		s.router,
		evJoinRoom,
		func(ctx context.Context, cc *ConnContext, req JoinRoomRequest) (any, error) {
			s.coord.Submit(session.JoinCmd{
				ConnID: cc.ConnID,
				RoomID: req.RoomID,
				Name:   req.DisplayName,
				Role:   session.ParseRole(req.Role),
			})
			return nil, nil
		},
	)

	// 🔹 control-event --------------------------------------------------------
	Register(
		s.router,
		evControlEvent,
		func(ctx context.Context, cc *ConnContext, req ControlEventRequest) (any, error) {
			s.coord.Submit(session.ControlCmd{
				ConnID:  cc.ConnID,
				Buttons: req.Buttons,
				Axes:    req.Axes,
				RoomID:  req.RoomID,
				Slot:    req.Slot,
			})
			return nil, nil
		},
	)

	// 🔹 negotiation relay ----------------------------------------------------
	for _, kind := range []string{evNegotiationOffer, evNegotiationAnswer, evNegotiationCandidate} {
		kind := kind
		Register(
			s.router,
			kind,
			func(ctx context.Context, cc *ConnContext, req SignalRequest) (any, error) {
				s.coord.Submit(session.SignalCmd{
					ConnID:  cc.ConnID,
					Kind:    kind,
					To:      req.To,
					Payload: req.Payload,
				})
				return nil, nil
			},
		)
	}

	// 🔹 request-negotiation ---------------------------------------------------
	Register(
		s.router,
		evRequestNegotiation,
		func(ctx context.Context, cc *ConnContext, req struct{}) (any, error) {
			s.coord.Submit(session.RenegotiateCmd{ConnID: cc.ConnID})
			return nil, nil
		},
	)

	// 🔹 set-label --------------------------------------------------------------
	Register(
		s.router,
		evSetLabel,
		func(ctx context.Context, cc *ConnContext, req SetLabelRequest) (any, error) {
			s.coord.Submit(session.SetLabelCmd{ConnID: cc.ConnID, Label: req.Label})
			return nil, nil
		},
	)

	// 🔹 chat -------------------------------------------------------------------
	Register(
		s.router,
		evChat,
		func(ctx context.Context, cc *ConnContext, req ChatRequest) (any, error) {
			s.coord.Submit(session.ChatCmd{ConnID: cc.ConnID, Text: req.Text})
			return nil, nil
		},
	)

	// 🔹 latency-probe ----------------------------------------------------------
	Register(
		s.router,
		evLatencyProbe,
		func(ctx context.Context, cc *ConnContext, req struct{}) (ProbeAckBody, error) {
			return ProbeAckBody{ServerTime: time.Now().UnixMilli()}, nil
		},
	)
}

func (s *WsServer) reader(connID string, conn *clientConn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, connID)
		s.mu.Unlock()
		s.coord.Submit(session.DisconnectCmd{ConnID: connID})
		conn.close()
	}()

	conn.rawConn.SetReadLimit(maxFrameSize)
	_ = conn.rawConn.SetReadDeadline(time.Now().Add(s.pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(s.pongWait))
	})

	cc := &ConnContext{ConnID: connID, Server: s}

	for {
		_, data, err := conn.rawConn.ReadMessage()
		if err != nil {
			return // client closed or errored
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue // unparseable frame: drop it, keep the connection
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1900*time.Millisecond)
		res, err := s.router.dispatch(ctx, cc, env)
		cancel()

		// Malformed or unknown frames are dropped, not answered; the only
		// user-visible failures are room-full and disconnects.
		if err != nil {
			zap.L().Debug("ws.dispatch", zap.String("event", env.Event), zap.Error(err))
			continue
		}

		// ---- handlers with an immediate result -> {"event":"<evt>-ack"} ----
		if res != nil {
			_ = conn.writeJSON(map[string]any{
				"event": env.Event + "-ack",
				"body":  res,
			})
		}
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(s.pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.ping(); err != nil {
			conn.close()
			return
		}
	}
}
