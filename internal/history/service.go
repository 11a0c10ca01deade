package history

import (
	"context"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/onflow/flow-go-sdk"
)

type Service struct {
	ledger   blockchain.Ledger
	contract flow.Address
	window   uint32
	limit    int
}

func NewService(ledger blockchain.Ledger, contract flow.Address, window uint32, limit int) *Service {
	return &Service{ledger: ledger, contract: contract, window: window, limit: limit}
}

// Recent reads the contract events of the last window ledgers.
func (s *Service) Recent(ctx context.Context) ([]model.HistoryEvent, error) {
	latest, err := s.ledger.LatestLedger(ctx)
	if err != nil {
		return nil, err
	}

	start := uint32(1)
	if latest > s.window {
		start = latest - s.window
	}

	events, err := s.ledger.Events(ctx, blockchain.EventFilter{
		Contract:    s.contract,
		StartLedger: start,
		Limit:       s.limit,
	})
	if err != nil {
		return nil, err
	}
	return Parse(events), nil
}

func (s *Service) Game(ctx context.Context, gameId uint64) ([]model.HistoryEvent, error) {
	events, err := s.Recent(ctx)
	if err != nil {
		return nil, err
	}
	return ForGame(events, gameId), nil
}
