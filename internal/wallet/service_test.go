package wallet

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/keymgmt"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/pubsub"
	"github.com/onflow/flow-go-sdk"
	"github.com/onflow/flow-go-sdk/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// memoryKeys stands in for KMS with in-memory P-256 keys.
type memoryKeys struct {
	mu   sync.Mutex
	keys map[string]crypto.PrivateKey
}

func newMemoryKeys() *memoryKeys {
	return &memoryKeys{keys: map[string]crypto.PrivateKey{}}
}

func (m *memoryKeys) GenerateAsymmetricKey(_ context.Context, keyIndex, weight int) (*flow.AccountKey, *keymgmt.PrivateKey, error) {
	seed := make([]byte, crypto.MinSeedLength)
	if _, err := rand.Read(seed); err != nil {
		return nil, nil, err
	}
	pk, err := crypto.GeneratePrivateKey(crypto.ECDSA_P256, seed)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	resourceId := fmt.Sprintf("memory/%d", len(m.keys))
	m.keys[resourceId] = pk
	m.mu.Unlock()

	accountKey := flow.NewAccountKey().
		SetPublicKey(pk.PublicKey()).
		SetHashAlgo(crypto.SHA3_256).
		SetWeight(weight)
	accountKey.Index = keyIndex

	return accountKey, &keymgmt.PrivateKey{Index: keyIndex, Type: "memory", Value: resourceId}, nil
}

func (m *memoryKeys) SignerForKey(_ context.Context, resourceId string) (crypto.Signer, error) {
	m.mu.Lock()
	pk, ok := m.keys[resourceId]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no key %s", resourceId)
	}
	return crypto.NewInMemorySigner(pk, crypto.SHA3_256)
}

type recordingPublisher struct {
	messages []pubsub.Publishable
}

func (p *recordingPublisher) Publish(message pubsub.Publishable) {
	p.messages = append(p.messages, message)
}

type recordingNotifier struct {
	topics []string
}

func (n *recordingNotifier) Publish(topic string, _ any) {
	n.topics = append(n.topics, topic)
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

	require.NoError(t, db.AutoMigrate(&model.CustodialWallet{}, &model.Player{}))
	return db
}

type fixture struct {
	service   *Service
	keys      *memoryKeys
	publisher *recordingPublisher
	notifier  *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		keys:      newMemoryKeys(),
		publisher: &recordingPublisher{},
		notifier:  &recordingNotifier{},
	}
	f.service = NewService(openTestDb(t), Options{
		Keys:         f.keys,
		Publisher:    f.publisher,
		Notifier:     f.notifier,
		AccountTopic: "pokerzk.accounts.requested",
	})
	return f
}

func Test_Service_RegisterRequestsAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	profile, err := f.service.Register(ctx, "uid-1", "ann@example.com", "ann")
	require.NoError(t, err)
	assert.Equal(t, "ann", profile.Nickname)
	assert.Nil(t, profile.WalletAddress)

	require.Len(t, f.publisher.messages, 1)
	requested := f.publisher.messages[0].(AccountRequested)
	assert.Equal(t, "pokerzk.accounts.requested", requested.GetEventTopicName())
	assert.Equal(t, profile.PublicKey, requested.PublicKey)
	assert.Equal(t, flow.AccountKeyWeightThreshold, requested.Weight)

	_, err = f.service.Register(ctx, "uid-1", "ann@example.com", "ann")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func Test_Service_SignerWaitsForAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.SignerFor(ctx, "nobody")
	assert.ErrorIs(t, err, ErrWalletNotFound)

	profile, err := f.service.Register(ctx, "uid-2", "bo@example.com", "bo")
	require.NoError(t, err)

	_, err = f.service.SignerFor(ctx, "uid-2")
	assert.ErrorIs(t, err, ErrWalletPending)

	require.NoError(t, f.service.HandleAccountCreated(ctx, AccountCreated{PublicKey: profile.PublicKey, Address: "0xb0b"}))
	assert.Equal(t, []string{RegistrationTopic("uid-2")}, f.notifier.topics)

	signer, err := f.service.SignerFor(ctx, "uid-2")
	require.NoError(t, err)
	assert.Equal(t, flow.HexToAddress("b0b"), signer.Address())

	sig, err := signer.SignTransaction(ctx, []byte("payload"))
	require.NoError(t, err)
	assert.NotEmpty(t, sig)

	again, err := f.service.SignerFor(ctx, "uid-2")
	require.NoError(t, err)
	assert.Same(t, signer, again)
}

func Test_Service_UnknownAccountCreatedIsIgnored(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.service.HandleAccountCreated(context.Background(), AccountCreated{PublicKey: "0xdead", Address: "0x01"}))
	assert.Empty(t, f.notifier.topics)
}
