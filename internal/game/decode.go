package game

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/onflow/cadence"
	"github.com/onflow/flow-go-sdk"
)

// ErrUnexpectedValue marks a contract return value that does not have the
// shape the client expects.
var ErrUnexpectedValue = errors.New("unexpected contract value")

type fields map[string]cadence.Value

func unexpected(what string, v cadence.Value) error {
	if v == nil {
		return fmt.Errorf("%w: %s is missing", ErrUnexpectedValue, what)
	}
	return fmt.Errorf("%w: %s is %T", ErrUnexpectedValue, what, v)
}

// structFields flattens a contract struct (or a string-keyed dictionary)
// into named fields.
func structFields(v cadence.Value) (fields, error) {
	out := fields{}
	switch s := v.(type) {
	case cadence.Struct:
		if s.StructType == nil || len(s.StructType.Fields) != len(s.Fields) {
			return nil, unexpected("struct type", v)
		}
		for i, f := range s.StructType.Fields {
			out[f.Identifier] = s.Fields[i]
		}
	case cadence.Dictionary:
		for _, pair := range s.Pairs {
			key, ok := pair.Key.(cadence.String)
			if !ok {
				return nil, unexpected("dictionary key", pair.Key)
			}
			out[string(key)] = pair.Value
		}
	default:
		return nil, unexpected("struct", v)
	}
	return out, nil
}

func (f fields) uint64(name string) (uint64, error) {
	n, err := toUint64(f[name])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func (f fields) uint32(name string) (uint32, error) {
	n, err := toUint32(f[name])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func (f fields) int64(name string) (int64, error) {
	n, err := toInt64(f[name])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func (f fields) bool(name string) (bool, error) {
	b, ok := f[name].(cadence.Bool)
	if !ok {
		return false, fmt.Errorf("%s: %w", name, unexpected("bool", f[name]))
	}
	return bool(b), nil
}

func (f fields) address(name string) (flow.Address, error) {
	a, err := toAddress(f[name])
	if err != nil {
		return flow.EmptyAddress, fmt.Errorf("%s: %w", name, err)
	}
	return a, nil
}

func (f fields) optionalAddress(name string) (*flow.Address, error) {
	inner, ok := unwrapOptional(f[name])
	if !ok {
		return nil, nil
	}
	a, err := toAddress(inner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &a, nil
}

func (f fields) optionalBytes32(name string) (*model.Bytes32, error) {
	inner, ok := unwrapOptional(f[name])
	if !ok {
		return nil, nil
	}
	b, err := toBytes32(inner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &b, nil
}

func (f fields) optionalUint32(name string) (*uint32, error) {
	inner, ok := unwrapOptional(f[name])
	if !ok {
		return nil, nil
	}
	n, err := toUint32(inner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &n, nil
}

func (f fields) uint32s(name string) ([]uint32, error) {
	arr, ok := f[name].(cadence.Array)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, unexpected("array", f[name]))
	}
	out := make([]uint32, len(arr.Values))
	for i, v := range arr.Values {
		n, err := toUint32(v)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		out[i] = n
	}
	return out, nil
}

func (f fields) state(name string) (model.GameState, error) {
	state, err := toState(f[name])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return state, nil
}

// unwrapOptional reports the inner value of an optional. A bare non-optional
// value counts as present.
func unwrapOptional(v cadence.Value) (cadence.Value, bool) {
	switch o := v.(type) {
	case nil:
		return nil, false
	case cadence.Optional:
		if o.Value == nil {
			return nil, false
		}
		return unwrapOptional(o.Value)
	case cadence.Void:
		return nil, false
	}
	return v, true
}

func toUint64(v cadence.Value) (uint64, error) {
	switch n := v.(type) {
	case cadence.UInt8:
		return uint64(n), nil
	case cadence.UInt16:
		return uint64(n), nil
	case cadence.UInt32:
		return uint64(n), nil
	case cadence.UInt64:
		return uint64(n), nil
	case cadence.Word64:
		return uint64(n), nil
	case cadence.UInt:
		if n.Value == nil || !n.Value.IsUint64() {
			return 0, unexpected("unsigned integer", v)
		}
		return n.Value.Uint64(), nil
	case cadence.Enum:
		if len(n.Fields) == 0 {
			return 0, unexpected("enum raw value", nil)
		}
		return toUint64(n.Fields[0])
	}
	i, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, fmt.Errorf("%w: negative value %d", ErrUnexpectedValue, i)
	}
	return uint64(i), nil
}

func toUint32(v cadence.Value) (uint32, error) {
	n, err := toUint64(v)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d overflows u32", ErrUnexpectedValue, n)
	}
	return uint32(n), nil
}

func toInt64(v cadence.Value) (int64, error) {
	switch n := v.(type) {
	case cadence.Int8:
		return int64(n), nil
	case cadence.Int16:
		return int64(n), nil
	case cadence.Int32:
		return int64(n), nil
	case cadence.Int64:
		return int64(n), nil
	case cadence.Int:
		if n.Value == nil || !n.Value.IsInt64() {
			return 0, unexpected("integer", v)
		}
		return n.Value.Int64(), nil
	case cadence.Int128:
		if n.Value == nil || !n.Value.IsInt64() {
			return 0, unexpected("128-bit integer", v)
		}
		return n.Value.Int64(), nil
	case cadence.UInt8, cadence.UInt16, cadence.UInt32:
		u, err := toUint64(v)
		return int64(u), err
	case cadence.UInt64:
		if uint64(n) > math.MaxInt64 {
			return 0, unexpected("integer", v)
		}
		return int64(n), nil
	}
	return 0, unexpected("integer", v)
}

func toAddress(v cadence.Value) (flow.Address, error) {
	switch a := v.(type) {
	case cadence.Address:
		return flow.Address(a), nil
	case cadence.String:
		s := strings.TrimPrefix(string(a), "0x")
		if _, err := hex.DecodeString(s); err != nil || s == "" {
			return flow.EmptyAddress, unexpected("address", v)
		}
		return flow.HexToAddress(s), nil
	}
	return flow.EmptyAddress, unexpected("address", v)
}

func toBytes32(v cadence.Value) (model.Bytes32, error) {
	var out model.Bytes32
	switch b := v.(type) {
	case cadence.Array:
		if len(b.Values) != len(out) {
			return out, fmt.Errorf("%w: expected %d bytes, got %d", ErrUnexpectedValue, len(out), len(b.Values))
		}
		for i, x := range b.Values {
			u, ok := x.(cadence.UInt8)
			if !ok {
				return out, unexpected("byte", x)
			}
			out[i] = byte(u)
		}
		return out, nil
	case cadence.String:
		raw, err := hex.DecodeString(strings.TrimPrefix(string(b), "0x"))
		if err != nil || len(raw) != len(out) {
			return out, unexpected("32-byte hex", v)
		}
		copy(out[:], raw)
		return out, nil
	}
	return out, unexpected("bytes", v)
}

// toState accepts the state as its discriminant, its name, or an enum value.
func toState(v cadence.Value) (model.GameState, error) {
	if s, ok := v.(cadence.String); ok {
		return model.ParseGameState(string(s))
	}
	n, err := toUint64(v)
	if err != nil {
		return 0, err
	}
	state := model.GameState(n)
	if !state.Valid() {
		return 0, fmt.Errorf("%w: unknown game state %d", ErrUnexpectedValue, n)
	}
	return state, nil
}

// fieldReader reads the fields of one contract struct and keeps every failure,
// so a shape mismatch reports all offending fields at once.
type fieldReader struct {
	what   string
	fields fields
	errs   []error
}

func newFieldReader(what string, v cadence.Value) (*fieldReader, error) {
	f, err := structFields(v)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", what, err)
	}
	return &fieldReader{what: what, fields: f}, nil
}

func (r *fieldReader) keep(err error) {
	if err != nil {
		r.errs = append(r.errs, err)
	}
}

func (r *fieldReader) err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return fmt.Errorf("decoding %s: %w", r.what, errors.Join(r.errs...))
}

func (r *fieldReader) uint64(name string) uint64 {
	n, err := r.fields.uint64(name)
	r.keep(err)
	return n
}

func (r *fieldReader) uint32(name string) uint32 {
	n, err := r.fields.uint32(name)
	r.keep(err)
	return n
}

func (r *fieldReader) int64(name string) int64 {
	n, err := r.fields.int64(name)
	r.keep(err)
	return n
}

func (r *fieldReader) bool(name string) bool {
	b, err := r.fields.bool(name)
	r.keep(err)
	return b
}

func (r *fieldReader) address(name string) flow.Address {
	a, err := r.fields.address(name)
	r.keep(err)
	return a
}

func (r *fieldReader) optionalAddress(name string) *flow.Address {
	a, err := r.fields.optionalAddress(name)
	r.keep(err)
	return a
}

func (r *fieldReader) optionalBytes32(name string) *model.Bytes32 {
	b, err := r.fields.optionalBytes32(name)
	r.keep(err)
	return b
}

func (r *fieldReader) optionalUint32(name string) *uint32 {
	n, err := r.fields.optionalUint32(name)
	r.keep(err)
	return n
}

func (r *fieldReader) uint32s(name string) []uint32 {
	n, err := r.fields.uint32s(name)
	r.keep(err)
	return n
}

func (r *fieldReader) state(name string) model.GameState {
	s, err := r.fields.state(name)
	r.keep(err)
	return s
}

func decodeGame(v cadence.Value) (*model.Game, error) {
	r, err := newFieldReader("game", v)
	if err != nil {
		return nil, err
	}
	g := &model.Game{
		Id:              r.uint64("id"),
		TableId:         r.uint64("table_id"),
		State:           r.state("state"),
		Player1:         r.address("player1"),
		Player2:         r.optionalAddress("player2"),
		BuyIn:           r.int64("buy_in"),
		Pot:             r.int64("pot"),
		SmallBlind:      r.int64("small_blind"),
		BigBlind:        r.int64("big_blind"),
		DealerPosition:  r.uint32("dealer_position"),
		Board:           r.uint32s("board"),
		BoardRevealed:   r.uint32("board_revealed"),
		CurrentBetP1:    r.int64("current_bet_p1"),
		CurrentBetP2:    r.int64("current_bet_p2"),
		TotalBetP1:      r.int64("total_bet_p1"),
		TotalBetP2:      r.int64("total_bet_p2"),
		MinRaise:        r.int64("min_raise"),
		LastRaiseAmount: r.int64("last_raise_amount"),
		Actor:           r.uint32("actor"),
		Folded:          r.optionalAddress("folded"),
		SeedCommitment1: r.optionalBytes32("seed_commitment1"),
		SeedCommitment2: r.optionalBytes32("seed_commitment2"),
		SeedReveal1:     r.optionalBytes32("seed_reveal1"),
		SeedReveal2:     r.optionalBytes32("seed_reveal2"),
		FinalSeed:       r.optionalBytes32("final_seed"),
		HandCommitment1: r.optionalBytes32("hand_commitment1"),
		HandCommitment2: r.optionalBytes32("hand_commitment2"),
		HandRank1:       r.optionalUint32("hand_rank1"),
		HandRank2:       r.optionalUint32("hand_rank2"),
		Winner:          r.optionalAddress("winner"),
		CreatedAt:       r.uint64("created_at"),
		LastActionAt:    r.uint64("last_action_at"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return g, nil
}

func decodeTable(v cadence.Value) (*model.Table, error) {
	r, err := newFieldReader("table", v)
	if err != nil {
		return nil, err
	}
	t := &model.Table{
		SmallBlind: r.int64("small_blind"),
		BigBlind:   r.int64("big_blind"),
		MinBuyIn:   r.int64("min_buy_in"),
		MaxBuyIn:   r.int64("max_buy_in"),
		MaxSeats:   r.uint32("max_seats"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeWaitingSession(v cadence.Value) (*model.WaitingSession, error) {
	r, err := newFieldReader("waiting session", v)
	if err != nil {
		return nil, err
	}
	w := &model.WaitingSession{
		Player1:   r.address("player1"),
		BuyIn:     r.int64("buy_in"),
		CreatedAt: r.uint64("created_at"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return w, nil
}

func decodeSitResult(v cadence.Value) (*model.SitResult, error) {
	r, err := newFieldReader("sit result", v)
	if err != nil {
		return nil, err
	}
	sit := &model.SitResult{
		Waiting: r.bool("waiting"),
		GameId:  r.uint64("game_id"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return sit, nil
}

func decodeConfig(v cadence.Value) (*model.GameConfig, error) {
	r, err := newFieldReader("config", v)
	if err != nil {
		return nil, err
	}
	c := &model.GameConfig{
		MinBuyIn:          r.int64("min_buy_in"),
		MaxBuyIn:          r.int64("max_buy_in"),
		SmallBlind:        r.int64("small_blind"),
		BigBlind:          r.int64("big_blind"),
		RakePercentage:    r.uint32("rake_percentage"),
		RevealTimeout:     r.uint64("reveal_timeout"),
		BetTimeout:        r.uint64("bet_timeout"),
		WaitingTimeout:    r.uint64("waiting_timeout"),
		Treasury:          r.address("treasury"),
		GameHub:           r.address("game_hub"),
		PaymentController: r.optionalAddress("payment_controller"),
		ProofVerifier:     r.optionalAddress("proof_verifier"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return c, nil
}
