package blockchain

import (
	"context"
	"time"

	"github.com/onflow/cadence"
	"github.com/onflow/flow-go-sdk"
)

// Simulation is the dry-run outcome of a transaction: the decoded return
// value and the authorization entries the contract will demand.
type Simulation struct {
	Result       cadence.Value
	Auth         []AuthEntry
	LatestLedger uint32
}

type Receipt struct {
	Hash   string
	Ledger uint32
	Result cadence.Value
}

type Event struct {
	Id       string
	Ledger   uint32
	ClosedAt time.Time
	Contract flow.Address
	Topic    []cadence.Value
	Value    cadence.Value
}

type EventFilter struct {
	Contract    flow.Address
	StartLedger uint32
	Limit       int
}

// Ledger is the remote contract host. Contract rejections surface as
// *ContractError, connectivity problems wrap ErrTransport.
type Ledger interface {
	Simulate(ctx context.Context, tx *Transaction) (*Simulation, error)
	Submit(ctx context.Context, tx *Transaction) (*Receipt, error)
	LatestLedger(ctx context.Context) (uint32, error)
	AccountSequence(ctx context.Context, address flow.Address) (uint64, error)
	Events(ctx context.Context, filter EventFilter) ([]Event, error)
}
