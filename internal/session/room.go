package session

import "sort"

// Participant is one live connection inside a room. It is created on join,
// destroyed on disconnect, and never mutated in between; host/owner
// bookkeeping lives on the Room.
type Participant struct {
	ConnID string
	Slot   int
	Name   string
	Role   Role
}

// Room groups up to maxSlots participants around one shared session.
type Room struct {
	ID           string
	Participants map[string]*Participant // connID -> participant
	HostID       string                  // administrative participant
	OwnerID      string                  // routing target for input + signaling originator
	Label        string
}

func newRoom(id string) *Room {
	return &Room{ID: id, Participants: map[string]*Participant{}}
}

// AllocateSlot returns the lowest slot in [1, maxSlots] not held by a live
// participant, or false when the room is full.
func (r *Room) AllocateSlot(maxSlots int) (int, bool) {
	used := make(map[int]bool, len(r.Participants))
	for _, p := range r.Participants {
		used[p.Slot] = true
	}
	for s := 1; s <= maxSlots; s++ {
		if !used[s] {
			return s, true
		}
	}
	return 0, false
}

// InputTarget is the connection routed control events: the designated owner,
// falling back to the host. Empty when neither exists.
func (r *Room) InputTarget() string {
	if r.OwnerID != "" {
		return r.OwnerID
	}
	return r.HostID
}

// nextHost picks the replacement host after the current one departs: the
// lowest-slot non-viewer, else the lowest-slot participant. Nil only when the
// room is empty. Selection is by slot so it does not depend on map order.
func (r *Room) nextHost() *Participant {
	var best, bestAny *Participant
	for _, p := range r.Participants {
		if bestAny == nil || p.Slot < bestAny.Slot {
			bestAny = p
		}
		if p.Role != RoleViewer && (best == nil || p.Slot < best.Slot) {
			best = p
		}
	}
	if best != nil {
		return best
	}
	return bestAny
}

// ParticipantSnapshot is the public view of a participant.
type ParticipantSnapshot struct {
	Slot int    `json:"slot"`
	Name string `json:"name"`
}

// RoomSnapshot is the full-replace view published in room-updated frames and
// directory broadcasts.
type RoomSnapshot struct {
	ID           string                `json:"id"`
	Occupancy    int                   `json:"occupancy"`
	MaxSlots     int                   `json:"max_slots"`
	Participants []ParticipantSnapshot `json:"participants"`
	Label        string                `json:"label"`
}

// Snapshot renders the room with participants ordered by slot.
func (r *Room) Snapshot(maxSlots int) RoomSnapshot {
	parts := make([]ParticipantSnapshot, 0, len(r.Participants))
	for _, p := range r.Participants {
		parts = append(parts, ParticipantSnapshot{Slot: p.Slot, Name: p.Name})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Slot < parts[j].Slot })
	return RoomSnapshot{
		ID:           r.ID,
		Occupancy:    len(r.Participants),
		MaxSlots:     maxSlots,
		Participants: parts,
		Label:        r.Label,
	}
}
