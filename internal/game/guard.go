package game

import (
	"errors"
	"sync"

	"github.com/onflow/flow-go-sdk"
)

var ErrActionInFlight = errors.New("another action is already in flight for this player")

// ActionGuard admits one mutating call per player at a time. A second call
// while one is running is refused, not queued.
type ActionGuard struct {
	mu   sync.Mutex
	busy map[flow.Address]struct{}
}

func NewActionGuard() *ActionGuard {
	return &ActionGuard{busy: map[flow.Address]struct{}{}}
}

func (g *ActionGuard) Do(player flow.Address, fn func() error) error {
	g.mu.Lock()
	if _, ok := g.busy[player]; ok {
		g.mu.Unlock()
		return ErrActionInFlight
	}
	g.busy[player] = struct{}{}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.busy, player)
		g.mu.Unlock()
	}()

	return fn()
}

func (g *ActionGuard) Busy(player flow.Address) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.busy[player]
	return ok
}
