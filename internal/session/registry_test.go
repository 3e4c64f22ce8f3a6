package session

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeID(t *testing.T) {
	g := NewRegistry(4, 8)

	assert.Equal(t, "default", g.NormalizeID(""))
	assert.Equal(t, "r1", g.NormalizeID("r1"))
	assert.Equal(t, "abcdefgh", g.NormalizeID(strings.Repeat("abcdefgh", 10)))

	// The byte bound never splits a multi-byte rune.
	id := g.NormalizeID(strings.Repeat("界", 5)) // 3 bytes per rune, bound is 8
	assert.True(t, utf8.ValidString(id))
	assert.Len(t, id, 6)
}

func TestGetOrCreate(t *testing.T) {
	g := NewRegistry(4, 32)

	r1 := g.GetOrCreate("r1")
	require.NotNil(t, r1)
	assert.Equal(t, "r1", r1.ID)
	assert.Empty(t, r1.Participants)

	again := g.GetOrCreate("r1")
	assert.Same(t, r1, again)
	assert.Equal(t, 1, g.Len())
}

func TestAllocateSlotLowestFree(t *testing.T) {
	r := newRoom("r1")

	slot, ok := r.AllocateSlot(4)
	require.True(t, ok)
	assert.Equal(t, 1, slot)

	r.Participants["a"] = &Participant{ConnID: "a", Slot: 1}
	r.Participants["b"] = &Participant{ConnID: "b", Slot: 2}
	r.Participants["d"] = &Participant{ConnID: "d", Slot: 4}

	slot, ok = r.AllocateSlot(4)
	require.True(t, ok)
	assert.Equal(t, 3, slot)

	r.Participants["c"] = &Participant{ConnID: "c", Slot: 3}
	_, ok = r.AllocateSlot(4)
	assert.False(t, ok, "full room must yield the full sentinel")

	// Freeing a middle slot makes it the next allocation.
	delete(r.Participants, "b")
	slot, ok = r.AllocateSlot(4)
	require.True(t, ok)
	assert.Equal(t, 2, slot)
}

func TestNextHostPrefersNonViewer(t *testing.T) {
	r := newRoom("r1")
	r.Participants["v"] = &Participant{ConnID: "v", Slot: 1, Role: RoleViewer}
	r.Participants["c3"] = &Participant{ConnID: "c3", Slot: 3, Role: RoleController}
	r.Participants["c2"] = &Participant{ConnID: "c2", Slot: 2, Role: RoleController}

	next := r.nextHost()
	require.NotNil(t, next)
	assert.Equal(t, "c2", next.ConnID, "lowest-slot non-viewer wins")
}

func TestNextHostViewerFallback(t *testing.T) {
	r := newRoom("r1")
	r.Participants["v4"] = &Participant{ConnID: "v4", Slot: 4, Role: RoleViewer}
	r.Participants["v2"] = &Participant{ConnID: "v2", Slot: 2, Role: RoleViewer}

	next := r.nextHost()
	require.NotNil(t, next)
	assert.Equal(t, "v2", next.ConnID)
}

func TestReapRemovesOnlyEmptyRooms(t *testing.T) {
	g := NewRegistry(4, 32)
	g.GetOrCreate("empty")
	live := g.GetOrCreate("live")
	live.Participants["a"] = &Participant{ConnID: "a", Slot: 1}

	assert.Equal(t, 1, g.Reap())
	assert.Equal(t, 1, g.Len())
	_, ok := g.Get("live")
	assert.True(t, ok)

	// Sweeping a clean registry is a no-op.
	assert.Equal(t, 0, g.Reap())
	assert.Equal(t, 1, g.Len())
}

func TestDirectorySortedSnapshots(t *testing.T) {
	g := NewRegistry(4, 32)
	b := g.GetOrCreate("b")
	b.Participants["x"] = &Participant{ConnID: "x", Slot: 2, Name: "Xavi"}
	b.Participants["y"] = &Participant{ConnID: "y", Slot: 1, Name: "Yara"}
	a := g.GetOrCreate("a")
	a.Label = "puzzler"

	dir := g.Directory()
	require.Len(t, dir, 2)
	assert.Equal(t, "a", dir[0].ID)
	assert.Equal(t, "puzzler", dir[0].Label)
	assert.Equal(t, 0, dir[0].Occupancy)

	assert.Equal(t, "b", dir[1].ID)
	assert.Equal(t, 2, dir[1].Occupancy)
	assert.Equal(t, 4, dir[1].MaxSlots)
	require.Len(t, dir[1].Participants, 2)
	assert.Equal(t, 1, dir[1].Participants[0].Slot, "participants ordered by slot")
	assert.Equal(t, "Yara", dir[1].Participants[0].Name)
}

func TestRoleParsing(t *testing.T) {
	assert.Equal(t, RoleSessionOwner, ParseRole("session-owner"))
	assert.Equal(t, RoleController, ParseRole("controller"))
	assert.Equal(t, RoleViewer, ParseRole("viewer"))
	assert.Equal(t, RoleViewer, ParseRole("banana"), "unknown roles degrade to viewer")
}
