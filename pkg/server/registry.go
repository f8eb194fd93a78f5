package server

import (
	"sync"

	"github.com/flafmg/dandelion-classic/pkg/broadcast"
	"github.com/flafmg/dandelion-classic/pkg/player"
)

// maxPlayerID is the highest allocatable player id; ids are allocated
// from [0, maxPlayerID].
const maxPlayerID = 127

// playerRegistry is the concurrent id -> *player.Player map. Insertion
// and id allocation happen atomically under the same lock so two
// sessions identifying at once can never be handed the same id.
type playerRegistry struct {
	mu      sync.RWMutex
	players map[int8]*player.Player
}

func newPlayerRegistry() *playerRegistry {
	return &playerRegistry{players: make(map[int8]*player.Player)}
}

// allocate finds the lowest free id, constructs a Player with it, and
// inserts it. It reports false if every id in [0, maxPlayerID] is taken.
func (r *playerRegistry) allocate(build func(id int8) *player.Player) (*player.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i <= maxPlayerID; i++ {
		id := int8(i)
		if _, taken := r.players[id]; !taken {
			p := build(id)
			r.players[id] = p
			return p, true
		}
	}
	return nil, false
}

// remove deletes id from the registry, reporting whether it was still
// present. A caller uses this to avoid double-broadcasting a despawn
// when the read loop and the keepalive loop race to reap the same
// session.
func (r *playerRegistry) remove(id int8) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; !ok {
		return false
	}
	delete(r.players, id)
	return true
}

func (r *playerRegistry) get(id int8) (*player.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	return p, ok
}

// snapshot returns every currently registered player, safe to range
// over after the lock is released.
func (r *playerRegistry) snapshot() []*player.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*player.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	return out
}

// recipients adapts snapshot to the broadcast.Recipient interface.
func (r *playerRegistry) recipients() []broadcast.Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]broadcast.Recipient, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	return out
}

func (r *playerRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
