package session

import "encoding/json"

// Command is the closed set of inbound messages consumed by the coordinator
// loop. Transport readers parse frames into these and enqueue; all registry
// access happens on the loop.
type Command interface{ isCommand() }

// JoinCmd runs the session join protocol for a newly connecting participant.
type JoinCmd struct {
	ConnID string
	RoomID string
	Name   string
	Role   Role
}

// ControlCmd is one input tick from a controller. RoomID/Slot are the
// client-declared fallback, used only when no server-tracked session exists
// for the connection yet.
type ControlCmd struct {
	ConnID  string
	Buttons uint16
	Axes    Axes
	RoomID  string
	Slot    int
}

// SignalCmd relays an opaque negotiation payload to a named connection.
// Kind is the wire event name (offer/answer/candidate) and is echoed back
// out unchanged.
type SignalCmd struct {
	ConnID  string
	Kind    string
	To      string
	Payload json.RawMessage
}

// RenegotiateCmd asks the coordinator to re-announce the sender to the room
// owner, re-triggering a peer-joined and with it a fresh negotiation.
type RenegotiateCmd struct {
	ConnID string
}

// ChatCmd broadcasts a text line to the sender's room.
type ChatCmd struct {
	ConnID string
	Text   string
}

// SetLabelCmd updates the room label; honored only from the room owner.
type SetLabelCmd struct {
	ConnID string
	Label  string
}

// DisconnectCmd removes a departed connection and reassigns host/owner.
type DisconnectCmd struct {
	ConnID string
}

// directoryQuery is the pull-style directory read used by the REST surface;
// it runs on the loop like everything else and replies on its own channel.
type directoryQuery struct {
	reply chan []RoomSnapshot
}

func (JoinCmd) isCommand()        {}
func (ControlCmd) isCommand()     {}
func (SignalCmd) isCommand()      {}
func (RenegotiateCmd) isCommand() {}
func (ChatCmd) isCommand()        {}
func (SetLabelCmd) isCommand()    {}
func (DisconnectCmd) isCommand()  {}
func (directoryQuery) isCommand() {}
