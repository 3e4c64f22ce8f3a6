package session

import "encoding/json"

// Server→client event names.
const (
	EvRoomJoined    = "room-joined"
	EvRoomFullError = "room-full-error"
	EvRoomUpdated   = "room-updated"
	EvNewHost       = "new-host"
	EvOwnerLeft     = "owner-left"
	EvOwnerJoined   = "owner-joined"
	EvPeerJoined    = "peer-joined"
	EvRoutedControl = "routed-control-event"
	EvDirectory     = "directory"
	EvChat          = "chat"
)

// Axes is the two-axis analog part of a control event.
type Axes struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ──────────────────────────── Outbound bodies ────────────────────────────

type RoomJoinedBody struct {
	Slot     int          `json:"slot"`
	IsHost   bool         `json:"is_host"`
	RoomID   string       `json:"room_id"`
	Snapshot RoomSnapshot `json:"snapshot"`
}

type RoomFullBody struct {
	Message string `json:"message"`
}

type RoomUpdatedBody struct {
	Snapshot RoomSnapshot `json:"snapshot"`
}

type NewHostBody struct {
	ConnectionID string `json:"connection_id"`
}

type PeerJoinedBody struct {
	ConnectionID string `json:"connection_id"`
	Slot         int    `json:"slot"`
	Name         string `json:"name"`
}

type RoutedControlBody struct {
	Slot    int    `json:"slot"`
	Buttons uint16 `json:"buttons"`
	Axes    Axes   `json:"axes"`
}

// SignalBody wraps a relayed negotiation payload. Payload is forwarded
// verbatim; the relay never looks inside it.
type SignalBody struct {
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

type ChatBody struct {
	Slot int    `json:"slot"`
	Name string `json:"name"`
	Text string `json:"text"`
}
