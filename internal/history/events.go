// Package history renders contract events for display. Events are
// best-effort: missed or duplicated events never affect game state.
package history

import (
	"strings"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/onflow/cadence"
	"github.com/onflow/flow-go-sdk"
)

const (
	TopicCreate    = "CREATE"
	TopicJoin      = "JOIN"
	TopicCommit    = "COMMIT"
	TopicReveal    = "REVEAL"
	TopicFold      = "FOLD"
	TopicAct       = "ACT"
	TopicCheck     = "CHECK"
	TopicCall      = "CALL"
	TopicRaise     = "RAISE"
	TopicShuffle   = "SHUFFLE"
	TopicNextHand  = "NEXT_HAND"
	TopicTimeout   = "TIMEOUT"
	TopicTimeoutCk = "TMOUT_CHK"
	TopicTimeoutF  = "TMOUT_F"
	TopicPayout    = "PAYOUT"
	TopicChat      = "CHAT"
	TopicTableSit  = "TBL_SIT"
	TopicTableAdd  = "TBL_ADDED"
	TopicTableGo   = "TBL_START"
	TopicTableEnd  = "TBL_CLOSE"
)

var tableTopics = map[string]bool{
	TopicTableSit: true,
	TopicTableAdd: true,
	TopicTableGo:  true,
	TopicTableEnd: true,
}

// Parse keeps the events it can read, in input order.
func Parse(events []blockchain.Event) []model.HistoryEvent {
	out := make([]model.HistoryEvent, 0, len(events))
	for _, e := range events {
		if h, ok := ParseEvent(e); ok {
			out = append(out, h)
		}
	}
	return out
}

func ParseEvent(e blockchain.Event) (model.HistoryEvent, bool) {
	if len(e.Topic) < 2 {
		return model.HistoryEvent{}, false
	}
	name, ok := symbol(e.Topic[0])
	if !ok {
		return model.HistoryEvent{}, false
	}
	id, ok := number(e.Topic[1])
	if !ok {
		return model.HistoryEvent{}, false
	}

	h := model.HistoryEvent{
		Id:       e.Id,
		Ledger:   e.Ledger,
		ClosedAt: e.ClosedAt,
		Type:     name,
	}

	if tableTopics[name] {
		h.TableId = &id
		if name == TopicTableGo && len(e.Topic) > 2 {
			if gameId, ok := number(e.Topic[2]); ok {
				h.GameId = &gameId
			}
		}
	} else {
		h.GameId = &id
	}

	switch name {
	case TopicAct:
		if len(e.Topic) > 2 {
			if code, ok := number(e.Topic[2]); ok {
				action := model.Action(code)
				if action.Valid() {
					h.Action = &action
					h.Type = strings.ToUpper(action.String())
				}
			}
		}
	case TopicReveal:
		if len(e.Topic) > 2 {
			if rank, ok := number(e.Topic[2]); ok {
				r := uint32(rank)
				h.ClaimedRank = &r
			}
		}
	case TopicChat:
		sender, message, ok := chatPayload(e.Value)
		if !ok {
			return model.HistoryEvent{}, false
		}
		h.Player = sender
		h.Message = message
		return h, true
	}

	if addr, ok := address(e.Value); ok {
		h.Player = addr
	}
	return h, true
}

// ForGame keeps the events that concern one game.
func ForGame(events []model.HistoryEvent, gameId uint64) []model.HistoryEvent {
	var out []model.HistoryEvent
	for _, e := range events {
		if e.GameId != nil && *e.GameId == gameId {
			out = append(out, e)
		}
	}
	return out
}

func symbol(v cadence.Value) (string, bool) {
	s, ok := v.(cadence.String)
	if !ok {
		return "", false
	}
	return string(s), true
}

func number(v cadence.Value) (uint64, bool) {
	switch n := v.(type) {
	case cadence.UInt64:
		return uint64(n), true
	case cadence.UInt32:
		return uint64(n), true
	case cadence.UInt8:
		return uint64(n), true
	case cadence.Int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	}
	return 0, false
}

func address(v cadence.Value) (string, bool) {
	a, ok := v.(cadence.Address)
	if !ok {
		return "", false
	}
	return flow.Address(a).Hex(), true
}

func chatPayload(v cadence.Value) (string, string, bool) {
	arr, ok := v.(cadence.Array)
	if !ok || len(arr.Values) != 2 {
		return "", "", false
	}
	sender, ok := address(arr.Values[0])
	if !ok {
		return "", "", false
	}
	message, ok := arr.Values[1].(cadence.String)
	if !ok {
		return "", "", false
	}
	return sender, string(message), true
}
