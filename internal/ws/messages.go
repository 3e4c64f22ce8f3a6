package ws

import (
	"encoding/json"

	"coplay/internal/session"
)

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "join-room"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

// Client→server event names.
const (
	evJoinRoom             = "join-room"
	evControlEvent         = "control-event"
	evNegotiationOffer     = "negotiation-offer"
	evNegotiationAnswer    = "negotiation-answer"
	evNegotiationCandidate = "negotiation-candidate"
	evRequestNegotiation   = "request-negotiation"
	evSetLabel             = "set-label"
	evChat                 = "chat"
	evLatencyProbe         = "latency-probe"
)

// ──────────────────────────── Request / Response DTOs ─────────────────────────

// JoinRoomRequest is the body for "join-room".
type JoinRoomRequest struct {
	RoomID      string `json:"room_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// ControlEventRequest is one input tick. RoomID/Slot are optional hints used
// only when the event arrives before the join finished server-side.
type ControlEventRequest struct {
	Buttons uint16       `json:"buttons"`
	Axes    session.Axes `json:"axes"`
	RoomID  string       `json:"room_id,omitempty"`
	Slot    int          `json:"slot,omitempty"`
}

// SignalRequest is the body for the three negotiation-* events.
type SignalRequest struct {
	To      string          `json:"to"`
	Payload json.RawMessage `json:"payload"`
}

// SetLabelRequest is the body for "set-label".
type SetLabelRequest struct {
	Label string `json:"label"`
}

// ChatRequest is the body for "chat".
type ChatRequest struct {
	Text string `json:"text"`
}

// ProbeAckBody answers "latency-probe" with the server clock so the client
// can measure the round trip.
type ProbeAckBody struct {
	ServerTime int64 `json:"server_time"`
}
