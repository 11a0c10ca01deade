package cosign

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain/blockchaintest"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/secret"
	"github.com/onflow/cadence"
	"github.com/onflow/flow-go-sdk"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	contractAddress = flow.HexToAddress("c0ffee")
	alice           = flow.HexToAddress("a1")
	bob             = flow.HexToAddress("b0b")
	carol           = flow.HexToAddress("ca")
)

const authLedgers = 720

// startGameContract simulates start_game the way the poker contract does:
// one address entry per player over (session_id, table_id, buy_in).
type startGameContract struct {
	mu         sync.Mutex
	order      *rand.Rand
	omit       map[flow.Address]bool
	substitute map[flow.Address]flow.Address
	extra      []blockchain.AuthEntry
	nonce      uint64
}

func newStartGameContract(seed int64) *startGameContract {
	return &startGameContract{
		order:      rand.New(rand.NewSource(seed)),
		omit:       map[flow.Address]bool{},
		substitute: map[flow.Address]flow.Address{},
	}
}

func (c *startGameContract) simulate(tx *blockchain.Transaction) (*blockchain.Simulation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	inv := tx.Invocation
	authorized := blockchain.NewInvocation(inv.Contract, StartGameFunction, inv.Args[0], inv.Args[1], inv.Args[4])

	var auth []blockchain.AuthEntry
	for _, arg := range inv.Args[2:4] {
		addr := flow.Address(arg.(cadence.Address))
		if c.omit[addr] {
			continue
		}
		if sub, ok := c.substitute[addr]; ok {
			addr = sub
		}
		c.nonce++
		auth = append(auth, blockchain.AuthEntry{
			Credentials:    blockchain.Credentials{Type: blockchain.AddressCredential, Address: addr, Nonce: c.nonce},
			RootInvocation: authorized,
		})
	}
	auth = append(auth, c.extra...)

	c.order.Shuffle(len(auth), func(i, j int) { auth[i], auth[j] = auth[j], auth[i] })
	return &blockchain.Simulation{Auth: auth}, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events map[string][]any
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: map[string][]any{}}
}

func (n *recordingNotifier) Publish(topic string, event any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[topic] = append(n.events[topic], event)
}

func (n *recordingNotifier) count(topic string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events[topic])
}

type fixture struct {
	ledger       *blockchaintest.Ledger
	contract     *startGameContract
	orchestrator *Orchestrator
	service      *Service
	notifier     *recordingNotifier
	index        *secret.MemoryGameIndex
	alice        *blockchaintest.Signer
	bob          *blockchaintest.Signer
}

func openTestDb(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDb, err := db.DB()
	require.NoError(t, err)
	sqlDb.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDb.Close() })

	require.NoError(t, db.AutoMigrate(&model.StartGameOffer{}))
	return db
}

func newFixture(t *testing.T, seed int64) *fixture {
	f := &fixture{
		ledger:   blockchaintest.NewLedger(500),
		contract: newStartGameContract(seed),
		notifier: newRecordingNotifier(),
		index:    secret.NewMemoryGameIndex(),
		alice:    blockchaintest.NewSigner(t, alice),
		bob:      blockchaintest.NewSigner(t, bob),
	}
	f.ledger.SimulateFunc = f.contract.simulate
	f.orchestrator = NewOrchestrator(f.ledger, Options{
		Contract:    contractAddress,
		Network:     blockchaintest.Network,
		AuthLedgers: authLedgers,
	})
	f.service = NewService(f.orchestrator, ServiceOptions{
		Offers:   NewOfferStore(openTestDb(t)),
		Notifier: f.notifier,
		Index:    f.index,
		Now:      func() time.Time { return time.Unix(10000, 0) },
	})
	return f
}

func startGame(sessionId uint64) StartGame {
	return StartGame{SessionId: sessionId, TableId: 3, Player2: bob, BuyIn: 500}
}

// signedArtifact signs an arbitrary invocation as alice, bypassing Prepare.
func signedArtifact(t *testing.T, signer blockchain.Signer, inv blockchain.Invocation) string {
	t.Helper()
	entry := blockchain.AuthEntry{
		Credentials:    blockchain.Credentials{Type: blockchain.AddressCredential, Address: signer.Address(), Nonce: 1},
		RootInvocation: inv,
	}
	require.NoError(t, blockchain.AuthorizeEntry(context.Background(), &entry, signer, blockchaintest.Network, 10000))
	artifact, err := blockchain.EncodeAuthEntry(entry)
	require.NoError(t, err)
	return artifact
}
