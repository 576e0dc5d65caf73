package room

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/inkfarer/Tableturfer/catalog"
)

// roomCodeAlphabet is the character set for generated room codes: uppercase
// letters and digits, matching room_store's code shape.
const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// roomCodeLength is the number of characters in a generated room code.
const roomCodeLength = 4

// RoomRegistry owns every live Room and the single lock that serializes
// every mutating action against them. No Room carries its own mutex or
// background goroutine; the registry's write lock is the only one, held for
// the duration of a single action (Create, Join, or a Do callback).
type RoomRegistry struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	emptySince map[string]time.Time

	cards *catalog.CardCatalog
	maps  *catalog.MapCatalog

	defaultConfig   RoomConfig
	idleTTL         time.Duration
	cleanupInterval time.Duration

	rng *rand.Rand

	done     chan struct{}
	stopOnce sync.Once
}

// NewRegistry builds a registry and starts its idle-room reaper.
// idleTTL/cleanupInterval of zero disable reaping (useful in tests that
// drive ReapIdle manually).
func NewRegistry(cards *catalog.CardCatalog, maps *catalog.MapCatalog, idleTTL, cleanupInterval time.Duration, rng *rand.Rand) *RoomRegistry {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	r := &RoomRegistry{
		rooms:           make(map[string]*Room),
		emptySince:      make(map[string]time.Time),
		cards:           cards,
		maps:            maps,
		defaultConfig:   RoomConfig{MaxMembers: DefaultMaxMembers},
		idleTTL:         idleTTL,
		cleanupInterval: cleanupInterval,
		rng:             rng,
		done:            make(chan struct{}),
	}
	if idleTTL > 0 && cleanupInterval > 0 {
		go r.reapLoop()
	}
	return r
}

// Stop halts the background reaper. Safe to call more than once.
func (r *RoomRegistry) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

func (r *RoomRegistry) reapLoop() {
	ticker := time.NewTicker(r.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.ReapIdle()
		case <-r.done:
			return
		}
	}
}

// ReapIdle evicts every room that has had zero members for at least
// idleTTL. Rooms are normally evicted immediately on their last member
// leaving (RemoveUser); this is a backstop for a room a caller forgot to
// clean up (e.g. a sender that was dropped without a matching RemoveUser).
// Returns the number of rooms evicted.
func (r *RoomRegistry) ReapIdle() int {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	var stale []string
	for code, room := range r.rooms {
		if room.MemberCount() > 0 {
			delete(r.emptySince, code)
			continue
		}
		since, tracked := r.emptySince[code]
		if !tracked {
			r.emptySince[code] = now
			continue
		}
		if now.Sub(since) >= r.idleTTL {
			stale = append(stale, code)
		}
	}
	for _, code := range stale {
		delete(r.rooms, code)
		delete(r.emptySince, code)
	}
	return len(stale)
}

func (r *RoomRegistry) generateCode() string {
	buf := make([]byte, roomCodeLength)
	for i := range buf {
		buf[i] = roomCodeAlphabet[r.rng.Intn(len(roomCodeAlphabet))]
	}
	return string(buf)
}

// Create allocates a fresh code, builds a new Lobby-phase room owned by
// userID, and registers it. Collisions against live codes are retried under
// the same write lock.
func (r *RoomRegistry) Create(userID, username string, sender Sender) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var code string
	for {
		code = r.generateCode()
		if _, exists := r.rooms[code]; !exists {
			break
		}
	}

	room := NewRoom(code, userID, username, sender, r.cards, r.maps, r.defaultConfig, r.rng)
	r.rooms[code] = room
	delete(r.emptySince, code)
	return room, nil
}

// Join resolves a room code (case-insensitive) and adds userID to it.
func (r *RoomRegistry) Join(code, userID, username string, sender Sender) (*Room, error) {
	code = strings.ToUpper(code)
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if err := room.Join(userID, username, sender); err != nil {
		return nil, err
	}
	delete(r.emptySince, code)
	return room, nil
}

// RemoveUser removes userID from the named room and evicts the room
// immediately if that was its last member.
func (r *RoomRegistry) RemoveUser(code, userID string) {
	code = strings.ToUpper(code)
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return
	}
	room.Leave(userID)
	if room.MemberCount() == 0 {
		delete(r.rooms, code)
		delete(r.emptySince, code)
	}
}

// Do runs fn against the named room with the registry's write lock held,
// the only mechanism by which a Room (which holds no lock of its own) is
// ever mutated.
func (r *RoomRegistry) Do(code string, fn func(*Room) error) error {
	code = strings.ToUpper(code)
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return ErrRoomNotFound
	}
	return fn(room)
}

// View runs fn against the named room with only a read lock held; fn must
// not mutate the room.
func (r *RoomRegistry) View(code string, fn func(*Room) error) error {
	code = strings.ToUpper(code)
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[code]
	if !ok {
		return ErrRoomNotFound
	}
	return fn(room)
}

// Count reports the number of live rooms.
func (r *RoomRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
