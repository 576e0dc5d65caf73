package room

import (
	"math/rand"
	"testing"
	"time"

	"github.com/inkfarer/Tableturfer/internal/wire"
)

func newTestRegistry(t *testing.T) *RoomRegistry {
	t.Helper()
	cards := testCardCatalog(t)
	maps := testMapCatalog(t)
	return NewRegistry(cards, maps, 0, 0, rand.New(rand.NewSource(1)))
}

func TestCreateGeneratesFourCharacterUppercaseCode(t *testing.T) {
	reg := newTestRegistry(t)
	sender, _ := collectingSender()
	r, err := reg.Create("owner", "Owner", sender)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(r.Code) != roomCodeLength {
		t.Fatalf("expected code length %d, got %q", roomCodeLength, r.Code)
	}
	for _, c := range r.Code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			t.Fatalf("expected uppercase alphanumeric code, got %q", r.Code)
		}
	}
}

func TestCreateRetriesOnCodeCollision(t *testing.T) {
	reg := newTestRegistry(t)
	// Pre-seed a room under the first code an identically seeded registry
	// generates, so the first Create call is forced to retry past it.
	taken := newTestRegistry(t).generateCode()
	reg.rooms[taken] = NewRoom(taken, "someone", "Someone", func(wire.Outbound) {}, reg.cards, reg.maps, reg.defaultConfig, reg.rng)

	seen := map[string]bool{taken: true}
	for i := 0; i < 50; i++ {
		sender, _ := collectingSender()
		r, err := reg.Create("owner", "Owner", sender)
		if err != nil {
			t.Fatalf("Create iter %d: %v", i, err)
		}
		if seen[r.Code] {
			t.Fatalf("expected unique codes, got duplicate %q", r.Code)
		}
		seen[r.Code] = true
	}
}

func TestJoinUnknownCodeReturnsRoomNotFound(t *testing.T) {
	reg := newTestRegistry(t)
	sender, _ := collectingSender()
	if _, err := reg.Join("ZZZZ", "someone", "Someone", sender); err != ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestJoinIsCaseInsensitive(t *testing.T) {
	reg := newTestRegistry(t)
	ownerSender, _ := collectingSender()
	r, err := reg.Create("owner", "Owner", ownerSender)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	joinerSender, _ := collectingSender()
	lower := ""
	for _, c := range r.Code {
		lower += string(c + 32)
	}
	joined, err := reg.Join(lower, "joiner", "Joiner", joinerSender)
	if err != nil {
		t.Fatalf("Join (lowercase code): %v", err)
	}
	if joined.Code != r.Code {
		t.Fatalf("expected to resolve to room %q, got %q", r.Code, joined.Code)
	}
}

func TestRemoveUserEvictsRoomWhenLastMemberLeaves(t *testing.T) {
	reg := newTestRegistry(t)
	sender, _ := collectingSender()
	r, err := reg.Create("owner", "Owner", sender)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	reg.RemoveUser(r.Code, "owner")
	if reg.Count() != 0 {
		t.Fatalf("expected room to be evicted, registry still has %d rooms", reg.Count())
	}
}

func TestRemoveUserLeavesRoomWithRemainingMembers(t *testing.T) {
	reg := newTestRegistry(t)
	ownerSender, _ := collectingSender()
	r, err := reg.Create("owner", "Owner", ownerSender)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	oppSender, _ := collectingSender()
	if _, err := reg.Join(r.Code, "opp", "Opponent", oppSender); err != nil {
		t.Fatalf("Join: %v", err)
	}
	reg.RemoveUser(r.Code, "owner")
	if reg.Count() != 1 {
		t.Fatalf("expected room to survive with one member remaining, count=%d", reg.Count())
	}
}

func TestDoReturnsRoomNotFoundForUnknownCode(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.Do("ZZZZ", func(r *Room) error { return nil })
	if err != ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestDoInvokesCallbackAgainstResolvedRoom(t *testing.T) {
	reg := newTestRegistry(t)
	sender, _ := collectingSender()
	r, err := reg.Create("owner", "Owner", sender)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	var sawCode string
	if err := reg.Do(r.Code, func(room *Room) error {
		sawCode = room.Code
		return nil
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if sawCode != r.Code {
		t.Fatalf("expected callback to see room %q, got %q", r.Code, sawCode)
	}
}

func TestReapIdleEvictsRoomsPastTTLButNotFreshOnes(t *testing.T) {
	reg := NewRegistry(testCardCatalog(t), testMapCatalog(t), 10*time.Millisecond, time.Hour, rand.New(rand.NewSource(1)))
	defer reg.Stop()

	sender, _ := collectingSender()
	r, err := reg.Create("owner", "Owner", sender)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Simulate a member disappearing without a matching RemoveUser call.
	reg.mu.Lock()
	delete(r.members, "owner")
	delete(r.senders, "owner")
	reg.mu.Unlock()

	if n := reg.ReapIdle(); n != 0 {
		t.Fatalf("expected no eviction on first pass (emptySince just recorded), got %d", n)
	}
	time.Sleep(15 * time.Millisecond)
	if n := reg.ReapIdle(); n != 1 {
		t.Fatalf("expected one eviction past TTL, got %d", n)
	}
	if reg.Count() != 0 {
		t.Fatalf("expected registry to be empty after reap, count=%d", reg.Count())
	}
}

func TestReapIdleClearsTrackingWhenRoomRegainsMembers(t *testing.T) {
	reg := newTestRegistry(t)
	reg.idleTTL = 10 * time.Millisecond

	sender, _ := collectingSender()
	r, err := reg.Create("owner", "Owner", sender)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	reg.mu.Lock()
	delete(r.members, "owner")
	delete(r.senders, "owner")
	reg.mu.Unlock()
	reg.ReapIdle()

	oppSender, _ := collectingSender()
	if _, err := reg.Join(r.Code, "opp", "Opponent", oppSender); err != nil {
		t.Fatalf("Join: %v", err)
	}

	time.Sleep(15 * time.Millisecond)
	if n := reg.ReapIdle(); n != 0 {
		t.Fatalf("expected no eviction once the room regained a member, got %d", n)
	}
	if reg.Count() != 1 {
		t.Fatalf("expected room to survive, count=%d", reg.Count())
	}
}
