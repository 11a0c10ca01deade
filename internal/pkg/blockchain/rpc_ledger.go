package blockchain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/onflow/flow-go-sdk"
	"github.com/rs/zerolog/log"
)

// RPCLedger talks JSON-RPC 2.0 over HTTP to a ledger gateway. Parameters go
// out positionally as a single object.
type RPCLedger struct {
	client *rpc.Client
}

func NewRPCLedger(url string, timeout time.Duration) (*RPCLedger, error) {
	client, err := rpc.DialHTTPWithClient(url, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("dialing ledger gateway: %w", err)
	}
	return &RPCLedger{client: client}, nil
}

func (l *RPCLedger) Close() {
	l.client.Close()
}

type transactionParams struct {
	Transaction string `json:"transaction"`
}

type simulateResult struct {
	Result        json.RawMessage `json:"result,omitempty"`
	Auth          []string        `json:"auth"`
	LatestLedger  uint32          `json:"latestLedger"`
	ContractError *uint32         `json:"contractError,omitempty"`
}

type sendResult struct {
	Hash          string          `json:"hash"`
	Ledger        uint32          `json:"ledger"`
	Status        string          `json:"status"`
	Result        json.RawMessage `json:"result,omitempty"`
	ContractError *uint32         `json:"contractError,omitempty"`
}

type latestLedgerResult struct {
	Sequence uint32 `json:"sequence"`
}

type accountParams struct {
	Address string `json:"address"`
}

type accountResult struct {
	Sequence uint64 `json:"sequence"`
}

type eventsParams struct {
	Contract    string `json:"contract"`
	StartLedger uint32 `json:"startLedger"`
	Limit       int    `json:"limit"`
}

type wireEvent struct {
	Id             string            `json:"id"`
	Ledger         uint32            `json:"ledger"`
	LedgerClosedAt time.Time         `json:"ledgerClosedAt"`
	Contract       string            `json:"contract"`
	Topic          []json.RawMessage `json:"topic"`
	Value          json.RawMessage   `json:"value"`
}

type eventsResult struct {
	Events []wireEvent `json:"events"`
}

func (l *RPCLedger) Simulate(ctx context.Context, tx *Transaction) (*Simulation, error) {
	encoded, err := tx.Encode()
	if err != nil {
		return nil, err
	}

	var res simulateResult
	if err := l.call(ctx, "simulateTransaction", transactionParams{Transaction: encoded}, &res); err != nil {
		return nil, err
	}
	if res.ContractError != nil {
		return nil, NewContractError(*res.ContractError)
	}

	sim := &Simulation{LatestLedger: res.LatestLedger}
	if len(res.Result) > 0 {
		if sim.Result, err = decodeValue(res.Result); err != nil {
			return nil, fmt.Errorf("decoding simulation result: %w", err)
		}
	}
	for _, artifact := range res.Auth {
		entry, err := DecodeAuthEntry(artifact)
		if err != nil {
			return nil, err
		}
		sim.Auth = append(sim.Auth, entry)
	}
	return sim, nil
}

func (l *RPCLedger) Submit(ctx context.Context, tx *Transaction) (*Receipt, error) {
	encoded, err := tx.Encode()
	if err != nil {
		return nil, err
	}

	var res sendResult
	if err := l.call(ctx, "sendTransaction", transactionParams{Transaction: encoded}, &res); err != nil {
		return nil, err
	}
	if res.ContractError != nil {
		return nil, NewContractError(*res.ContractError)
	}
	if res.Status != "SUCCESS" {
		return nil, fmt.Errorf("transaction %s finished with status %s", res.Hash, res.Status)
	}

	receipt := &Receipt{Hash: res.Hash, Ledger: res.Ledger}
	if len(res.Result) > 0 {
		if receipt.Result, err = decodeValue(res.Result); err != nil {
			return nil, fmt.Errorf("decoding transaction result: %w", err)
		}
	}
	return receipt, nil
}

func (l *RPCLedger) LatestLedger(ctx context.Context) (uint32, error) {
	var res latestLedgerResult
	if err := l.call(ctx, "getLatestLedger", nil, &res); err != nil {
		return 0, err
	}
	return res.Sequence, nil
}

func (l *RPCLedger) AccountSequence(ctx context.Context, address flow.Address) (uint64, error) {
	var res accountResult
	if err := l.call(ctx, "getAccount", accountParams{Address: address.Hex()}, &res); err != nil {
		return 0, err
	}
	return res.Sequence, nil
}

func (l *RPCLedger) Events(ctx context.Context, filter EventFilter) ([]Event, error) {
	var res eventsResult
	params := eventsParams{
		Contract:    filter.Contract.Hex(),
		StartLedger: filter.StartLedger,
		Limit:       filter.Limit,
	}
	if err := l.call(ctx, "getEvents", params, &res); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(res.Events))
	for _, we := range res.Events {
		topic, err := decodeValues(we.Topic)
		if err != nil {
			log.Warn().Err(err).Str("eventId", we.Id).Msg("Skipping event with undecodable topic")
			continue
		}
		e := Event{
			Id:       we.Id,
			Ledger:   we.Ledger,
			ClosedAt: we.LedgerClosedAt,
			Contract: flow.HexToAddress(we.Contract),
			Topic:    topic,
		}
		if len(we.Value) > 0 {
			if e.Value, err = decodeValue(we.Value); err != nil {
				log.Warn().Err(err).Str("eventId", we.Id).Msg("Skipping event with undecodable value")
				continue
			}
		}
		events = append(events, e)
	}
	return events, nil
}

func (l *RPCLedger) call(ctx context.Context, method string, params any, out any) error {
	var args []any
	if params != nil {
		args = append(args, params)
	}
	err := l.client.CallContext(ctx, out, method, args...)
	if err == nil {
		return nil
	}

	var rpcErr rpc.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &rpcErr):
		return fmt.Errorf("%s: rpc error %d: %s", method, rpcErr.ErrorCode(), rpcErr.Error())
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, rpc.ErrNoResult):
		return fmt.Errorf("%s: malformed response: %w", method, err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %s: %v", ErrTransport, method, err)
	}
}
