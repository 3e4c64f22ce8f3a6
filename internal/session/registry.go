package session

import "sort"

const defaultRoomID = "default"

// Registry is the in-memory room store. It is owned by the coordinator and
// only ever touched from the coordinator goroutine, so it carries no lock.
type Registry struct {
	maxSlots     int
	roomIDMaxLen int
	rooms        map[string]*Room
}

func NewRegistry(maxSlots, roomIDMaxLen int) *Registry {
	return &Registry{
		maxSlots:     maxSlots,
		roomIDMaxLen: roomIDMaxLen,
		rooms:        map[string]*Room{},
	}
}

// NormalizeID defaults an absent room id and truncates to the configured
// bound so client-supplied ids cannot grow keys without limit.
func (g *Registry) NormalizeID(id string) string {
	if id == "" {
		return defaultRoomID
	}
	return truncate(id, g.roomIDMaxLen)
}

// GetOrCreate returns the room for a normalized id, creating it empty on
// first use.
func (g *Registry) GetOrCreate(id string) *Room {
	if r, ok := g.rooms[id]; ok {
		return r
	}
	r := newRoom(id)
	g.rooms[id] = r
	return r
}

func (g *Registry) Get(id string) (*Room, bool) {
	r, ok := g.rooms[id]
	return r, ok
}

func (g *Registry) Delete(id string) {
	delete(g.rooms, id)
}

func (g *Registry) Len() int { return len(g.rooms) }

// Reap removes every room with zero participants and reports how many were
// dropped. Repeated sweeps of a clean registry are no-ops.
func (g *Registry) Reap() int {
	n := 0
	for id, r := range g.rooms {
		if len(r.Participants) == 0 {
			delete(g.rooms, id)
			n++
		}
	}
	return n
}

// Directory renders every room, ordered by id for stable output.
func (g *Registry) Directory() []RoomSnapshot {
	out := make([]RoomSnapshot, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r.Snapshot(g.maxSlots))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
