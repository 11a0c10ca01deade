// Package secret keeps the local, not-yet-revealed seeds and the reconnect
// index. Both are caches of local knowledge; the contract stays authoritative.
package secret

import (
	"context"
	"errors"
	"fmt"

	"github.com/kollektive-hackathon/pokerzk-backend/pkg/shuffle"
	"github.com/onflow/flow-go-sdk"
)

var (
	// ErrSecretUnavailable means the seed for a committed hand is gone; the
	// reveal cannot be completed from this device.
	ErrSecretUnavailable = errors.New("seed secret unavailable")
	ErrSecretExists      = errors.New("seed secret already stored for this hand")
)

type Key struct {
	GameId uint64
	Player flow.Address
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%s", k.GameId, k.Player.Hex())
}

// Store is insert-only per key: a stored seed is never replaced, only deleted
// once revealed or abandoned.
type Store interface {
	Put(ctx context.Context, key Key, secret shuffle.SeedSecret) error
	Get(ctx context.Context, key Key) (shuffle.SeedSecret, error)
	Delete(ctx context.Context, key Key) error
}
