package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	ErrRoomFull = errors.New("room is full")
)

// Label length bound; labels are short content titles, not chat.
const labelMaxLen = 64

// Dispatcher delivers outbound events. Implementations must treat a send to
// an unknown or already-closed connection as a silent drop.
type Dispatcher interface {
	Send(connID, event string, body any)
	SendAll(event string, body any)
}

// Limits is the coordinator's configuration surface.
type Limits struct {
	MaxSlots     int
	RoomIDMaxLen int
	NameMaxLen   int
	ChatMaxLen   int
	ReapInterval time.Duration
}

// sessionCtx is the server-tracked side table entry for a joined connection.
// Events are resolved through it rather than through any state attached to
// the transport object.
type sessionCtx struct {
	RoomID string
	Slot   int
	Role   Role
	Name   string
}

// Coordinator owns the room registry and consumes the command queue on a
// single goroutine, so no handler ever races another; the reaper tick is
// serialized onto the same loop.
type Coordinator struct {
	out      Dispatcher
	limits   Limits
	reg      *Registry
	sessions map[string]*sessionCtx // connID -> joined state
	cmds     chan Command
}

func NewCoordinator(out Dispatcher, limits Limits) *Coordinator {
	return &Coordinator{
		out:      out,
		limits:   limits,
		reg:      NewRegistry(limits.MaxSlots, limits.RoomIDMaxLen),
		sessions: map[string]*sessionCtx{},
		cmds:     make(chan Command, 256),
	}
}

// Submit enqueues a command for the coordinator loop.
func (c *Coordinator) Submit(cmd Command) {
	c.cmds <- cmd
}

// Run consumes commands until the context is cancelled. Each command runs to
// completion before the next is picked up.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.limits.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-c.cmds:
			c.apply(cmd)
		case <-ticker.C:
			c.reap()
		}
	}
}

// DirectorySnapshot is the synchronous pull used by the REST surface. The
// read is routed through the loop so the registry is never touched off it.
func (c *Coordinator) DirectorySnapshot(ctx context.Context) ([]RoomSnapshot, error) {
	q := directoryQuery{reply: make(chan []RoomSnapshot, 1)}
	select {
	case c.cmds <- q:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case snap := <-q.reply:
		return snap, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) apply(cmd Command) {
	switch m := cmd.(type) {
	case JoinCmd:
		c.join(m)
	case ControlCmd:
		c.routeControl(m)
	case SignalCmd:
		c.relaySignal(m)
	case RenegotiateCmd:
		c.renegotiate(m)
	case ChatCmd:
		c.chat(m)
	case SetLabelCmd:
		c.setLabel(m)
	case DisconnectCmd:
		c.disconnect(m)
	case directoryQuery:
		m.reply <- c.reg.Directory()
	}
}

// ──────────────────────────── Join protocol ────────────────────────────

func (c *Coordinator) join(m JoinCmd) {
	// A repeat join from a live connection is an implicit departure first;
	// otherwise the old room would keep a ghost participant holding a slot.
	if prev, ok := c.sessions[m.ConnID]; ok {
		delete(c.sessions, m.ConnID)
		c.leaveRoom(m.ConnID, prev)
	}

	roomID := c.reg.NormalizeID(m.RoomID)
	room := c.reg.GetOrCreate(roomID)

	slot, ok := room.AllocateSlot(c.limits.MaxSlots)
	if !ok {
		// Rejected to the requester only; nothing was mutated.
		c.out.Send(m.ConnID, EvRoomFullError, RoomFullBody{Message: ErrRoomFull.Error()})
		return
	}

	isHost := len(room.Participants) == 0

	name := truncate(m.Name, c.limits.NameMaxLen)
	if name == "" {
		name = fmt.Sprintf("Player %d", slot)
	}

	p := &Participant{ConnID: m.ConnID, Slot: slot, Name: name, Role: m.Role}
	room.Participants[m.ConnID] = p
	if isHost {
		room.HostID = m.ConnID
	}
	if m.Role == RoleSessionOwner {
		// Last owner to join wins as the routing target.
		room.OwnerID = m.ConnID
	}
	c.sessions[m.ConnID] = &sessionCtx{RoomID: room.ID, Slot: slot, Role: m.Role, Name: name}

	snap := room.Snapshot(c.limits.MaxSlots)
	c.out.Send(m.ConnID, EvRoomJoined, RoomJoinedBody{
		Slot: slot, IsHost: isHost, RoomID: room.ID, Snapshot: snap,
	})
	c.roomCast(room, m.ConnID, EvRoomUpdated, RoomUpdatedBody{Snapshot: snap})
	c.publishDirectory()

	if m.Role == RoleSessionOwner {
		// Announce every existing non-owner to the fresh owner so it can
		// open negotiation to each, then tell the room an owner is present.
		for _, q := range othersBySlot(room, m.ConnID) {
			if q.Role == RoleSessionOwner {
				continue
			}
			c.out.Send(m.ConnID, EvPeerJoined, PeerJoinedBody{
				ConnectionID: q.ConnID, Slot: q.Slot, Name: q.Name,
			})
		}
		c.roomCast(room, m.ConnID, EvOwnerJoined, struct{}{})
	} else if room.OwnerID != "" {
		c.out.Send(room.OwnerID, EvPeerJoined, PeerJoinedBody{
			ConnectionID: p.ConnID, Slot: p.Slot, Name: p.Name,
		})
	}

	zap.L().Debug("session.join",
		zap.String("room", room.ID),
		zap.String("conn", m.ConnID),
		zap.Int("slot", slot),
		zap.Stringer("role", m.Role),
	)
}

// ──────────────────────────── Input routing ────────────────────────────

func (c *Coordinator) routeControl(m ControlCmd) {
	var room *Room
	slot := m.Slot

	if sess, ok := c.sessions[m.ConnID]; ok {
		room, _ = c.reg.Get(sess.RoomID)
		slot = sess.Slot
	} else if m.RoomID != "" {
		// Event raced ahead of the join; trust the declared room/slot.
		room, _ = c.reg.Get(c.reg.NormalizeID(m.RoomID))
	}
	if room == nil {
		return
	}
	target := room.InputTarget()
	if target == "" {
		return
	}
	c.out.Send(target, EvRoutedControl, RoutedControlBody{
		Slot: slot, Buttons: m.Buttons, Axes: m.Axes,
	})
}

// ──────────────────────────── Signaling relay ────────────────────────────

func (c *Coordinator) relaySignal(m SignalCmd) {
	if m.To == "" {
		return
	}
	// Stateless opaque forward; an unreachable target is a silent drop.
	c.out.Send(m.To, m.Kind, SignalBody{From: m.ConnID, Payload: m.Payload})
}

func (c *Coordinator) renegotiate(m RenegotiateCmd) {
	sess, ok := c.sessions[m.ConnID]
	if !ok {
		return
	}
	room, ok := c.reg.Get(sess.RoomID)
	if !ok || room.OwnerID == "" || room.OwnerID == m.ConnID {
		return
	}
	c.out.Send(room.OwnerID, EvPeerJoined, PeerJoinedBody{
		ConnectionID: m.ConnID, Slot: sess.Slot, Name: sess.Name,
	})
}

// ──────────────────────────── Chat & label ────────────────────────────

func (c *Coordinator) chat(m ChatCmd) {
	sess, ok := c.sessions[m.ConnID]
	if !ok {
		return
	}
	room, ok := c.reg.Get(sess.RoomID)
	if !ok {
		return
	}
	text := truncate(m.Text, c.limits.ChatMaxLen)
	if text == "" {
		return
	}
	c.roomCast(room, "", EvChat, ChatBody{Slot: sess.Slot, Name: sess.Name, Text: text})
}

func (c *Coordinator) setLabel(m SetLabelCmd) {
	sess, ok := c.sessions[m.ConnID]
	if !ok {
		return
	}
	room, ok := c.reg.Get(sess.RoomID)
	if !ok || room.OwnerID != m.ConnID {
		return
	}
	room.Label = truncate(m.Label, labelMaxLen)
	c.publishDirectory()
}

// ──────────────────────────── Departure ────────────────────────────

func (c *Coordinator) disconnect(m DisconnectCmd) {
	sess, ok := c.sessions[m.ConnID]
	delete(c.sessions, m.ConnID)
	if !ok {
		return
	}
	c.leaveRoom(m.ConnID, sess)
}

// leaveRoom removes the connection's participant from its room and runs the
// owner/host/empty-room bookkeeping. Shared by disconnects and re-joins; the
// caller drops the session entry itself.
func (c *Coordinator) leaveRoom(connID string, sess *sessionCtx) {
	room, ok := c.reg.Get(sess.RoomID)
	if !ok {
		return
	}
	if _, ok := room.Participants[connID]; !ok {
		return
	}
	delete(room.Participants, connID)

	if room.OwnerID == connID {
		room.OwnerID = ""
		c.roomCast(room, "", EvOwnerLeft, struct{}{})
	}

	if len(room.Participants) == 0 {
		c.reg.Delete(room.ID)
		c.publishDirectory()
		zap.L().Debug("session.room_closed", zap.String("room", room.ID))
		return
	}

	if room.HostID == connID {
		next := room.nextHost()
		room.HostID = next.ConnID
		c.roomCast(room, "", EvNewHost, NewHostBody{ConnectionID: next.ConnID})
	}

	snap := room.Snapshot(c.limits.MaxSlots)
	c.roomCast(room, "", EvRoomUpdated, RoomUpdatedBody{Snapshot: snap})
	c.publishDirectory()

	zap.L().Debug("session.leave",
		zap.String("room", room.ID),
		zap.String("conn", connID),
		zap.Int("slot", sess.Slot),
	)
}

// ──────────────────────────── Reaper ────────────────────────────

// reap drops rooms whose membership went to zero without the synchronous
// departure path noticing. It never touches a non-empty room.
func (c *Coordinator) reap() {
	if n := c.reg.Reap(); n > 0 {
		zap.L().Info("session.reaped_rooms", zap.Int("count", n))
		c.publishDirectory()
	}
}

// ──────────────────────────── Helpers ────────────────────────────

func (c *Coordinator) publishDirectory() {
	c.out.SendAll(EvDirectory, c.reg.Directory())
}

// roomCast sends an event to every participant in the room except the one
// named by except (empty means everyone).
func (c *Coordinator) roomCast(room *Room, except, event string, body any) {
	for id := range room.Participants {
		if id == except {
			continue
		}
		c.out.Send(id, event, body)
	}
}

func othersBySlot(room *Room, except string) []*Participant {
	out := make([]*Participant, 0, len(room.Participants))
	for id, p := range room.Participants {
		if id == except {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune, so
// bounded names, chat lines, labels and room ids stay valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
