package history

import (
	"testing"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/onflow/cadence"
	"github.com/onflow/flow-go-sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = flow.HexToAddress("01")

func event(value cadence.Value, topic ...cadence.Value) blockchain.Event {
	return blockchain.Event{Id: "e", Ledger: 10, Topic: topic, Value: value}
}

func addr(a flow.Address) cadence.Address {
	return cadence.Address(a)
}

func Test_ParseEvent_GameTopics(t *testing.T) {
	h, ok := ParseEvent(event(addr(alice), cadence.String("CREATE"), cadence.UInt64(7)))
	require.True(t, ok)
	assert.Equal(t, TopicCreate, h.Type)
	require.NotNil(t, h.GameId)
	assert.Equal(t, uint64(7), *h.GameId)
	assert.Nil(t, h.TableId)
	assert.Equal(t, alice.Hex(), h.Player)
}

func Test_ParseEvent_ActCarriesAction(t *testing.T) {
	h, ok := ParseEvent(event(addr(alice), cadence.String("ACT"), cadence.UInt64(7), cadence.UInt32(3)))
	require.True(t, ok)
	require.NotNil(t, h.Action)
	assert.Equal(t, model.Raise, *h.Action)
	assert.Equal(t, "RAISE", h.Type)
}

func Test_ParseEvent_RevealRank(t *testing.T) {
	h, ok := ParseEvent(event(addr(alice), cadence.String("REVEAL"), cadence.UInt64(7), cadence.UInt32(6)))
	require.True(t, ok)
	require.NotNil(t, h.ClaimedRank)
	assert.Equal(t, uint32(6), *h.ClaimedRank)

	h, ok = ParseEvent(event(addr(alice), cadence.String("REVEAL"), cadence.UInt64(7)))
	require.True(t, ok)
	assert.Nil(t, h.ClaimedRank)
}

func Test_ParseEvent_TableStart(t *testing.T) {
	h, ok := ParseEvent(event(addr(alice), cadence.String("TBL_START"), cadence.UInt64(2), cadence.UInt64(9)))
	require.True(t, ok)
	require.NotNil(t, h.TableId)
	require.NotNil(t, h.GameId)
	assert.Equal(t, uint64(2), *h.TableId)
	assert.Equal(t, uint64(9), *h.GameId)
}

func Test_ParseEvent_Chat(t *testing.T) {
	payload := cadence.NewArray([]cadence.Value{addr(alice), cadence.String("gl hf")})
	h, ok := ParseEvent(event(payload, cadence.String("CHAT"), cadence.UInt64(7)))
	require.True(t, ok)
	assert.Equal(t, alice.Hex(), h.Player)
	assert.Equal(t, "gl hf", h.Message)
}

func Test_Parse_SkipsUnreadable(t *testing.T) {
	events := []blockchain.Event{
		event(addr(alice), cadence.String("CREATE"), cadence.UInt64(1)),
		event(addr(alice), cadence.UInt64(1)),
		event(addr(alice), cadence.UInt64(5), cadence.UInt64(1)),
		event(cadence.String("not a chat"), cadence.String("CHAT"), cadence.UInt64(1)),
		event(cadence.NewOptional(nil), cadence.String("NEXT_HAND"), cadence.UInt64(2)),
	}

	parsed := Parse(events)
	require.Len(t, parsed, 2)
	assert.Equal(t, TopicCreate, parsed[0].Type)
	assert.Equal(t, TopicNextHand, parsed[1].Type)
	assert.Empty(t, parsed[1].Player)

	assert.Len(t, ForGame(parsed, 2), 1)
}
