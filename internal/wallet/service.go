package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/keymgmt"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/pubsub"
	"github.com/onflow/flow-go-sdk"
	"github.com/onflow/flow-go-sdk/crypto"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrWalletPending     = errors.New("wallet account is not created yet")
	ErrAlreadyRegistered = errors.New("player already has a wallet")
)

type KeyProvider interface {
	GenerateAsymmetricKey(ctx context.Context, keyIndex, weight int) (*flow.AccountKey, *keymgmt.PrivateKey, error)
	SignerForKey(ctx context.Context, resourceId string) (crypto.Signer, error)
}

type Publisher interface {
	Publish(message pubsub.Publishable)
}

type Notifier interface {
	Publish(topic string, event any)
}

func RegistrationTopic(externalId string) string {
	return fmt.Sprintf("registration/%s", externalId)
}

type Profile struct {
	Id            uint64  `json:"id"`
	Email         string  `json:"email"`
	Nickname      string  `json:"nickname"`
	WalletAddress *string `json:"walletAddress"`
	PublicKey     string  `json:"publicKey"`
	ExternalId    string  `json:"-"`
	ResourceId    string  `json:"-"`
}

type Options struct {
	Keys         KeyProvider
	Publisher    Publisher
	Notifier     Notifier
	AccountTopic string
}

// Service owns the custodial wallets that sign for authenticated players.
type Service struct {
	db           *gorm.DB
	keys         KeyProvider
	publisher    Publisher
	notifier     Notifier
	accountTopic string
	signers      sync.Map
}

func NewService(db *gorm.DB, opts Options) *Service {
	return &Service{
		db:           db,
		keys:         opts.Keys,
		publisher:    opts.Publisher,
		notifier:     opts.Notifier,
		accountTopic: opts.AccountTopic,
	}
}

func (s *Service) findProfile(ctx context.Context, where string, arg any) (*Profile, error) {
	var profile Profile
	result := s.db.WithContext(ctx).
		Table("player").
		Joins("INNER JOIN custodial_wallet ON player.custodial_wallet_id = custodial_wallet.id").
		Where(where, arg).
		Select(`
			player.id,
			player.email,
			player.nickname,
			player.google_identity_id AS external_id,
			custodial_wallet.address AS wallet_address,
			custodial_wallet.public_key AS public_key,
			custodial_wallet.resource_id AS resource_id
		`).
		Limit(1).
		Scan(&profile)

	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrWalletNotFound
	}
	return &profile, nil
}

func (s *Service) Profile(ctx context.Context, externalId string) (*Profile, error) {
	return s.findProfile(ctx, "player.google_identity_id = ?", externalId)
}

// Register creates the KMS key and wallet rows, then asks for the ledger
// account. The address arrives later through HandleAccountCreated.
func (s *Service) Register(ctx context.Context, externalId, email, nickname string) (*Profile, error) {
	_, err := s.Profile(ctx, externalId)
	if err == nil {
		return nil, ErrAlreadyRegistered
	}
	if !errors.Is(err, ErrWalletNotFound) {
		return nil, err
	}

	accountKey, privateKey, err := s.keys.GenerateAsymmetricKey(ctx, 0, flow.AccountKeyWeightThreshold)
	if err != nil {
		return nil, err
	}
	publicKey := accountKey.PublicKey.String()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cw := model.CustodialWallet{
			ResourceId:  privateKey.Value,
			PublicKey:   publicKey,
			TimeCreated: time.Now().UTC(),
		}
		if result := tx.Create(&cw); result.Error != nil {
			return result.Error
		}

		player := model.Player{
			GoogleIdentityId:  externalId,
			Email:             email,
			Nickname:          nickname,
			CustodialWalletId: cw.Id,
		}
		return tx.Create(&player).Error
	})
	if err != nil {
		return nil, err
	}

	s.requestAccount(accountKey)

	return s.Profile(ctx, externalId)
}

// SignerFor resolves the signer of an authenticated identity. Signers are
// cached for the life of the process.
func (s *Service) SignerFor(ctx context.Context, externalId string) (blockchain.Signer, error) {
	if cached, ok := s.signers.Load(externalId); ok {
		return cached.(blockchain.Signer), nil
	}

	profile, err := s.Profile(ctx, externalId)
	if err != nil {
		return nil, err
	}
	if profile.WalletAddress == nil || *profile.WalletAddress == "" {
		return nil, ErrWalletPending
	}

	kmsSigner, err := s.keys.SignerForKey(ctx, profile.ResourceId)
	if err != nil {
		return nil, err
	}
	signer := blockchain.NewKeySigner(flow.HexToAddress(*profile.WalletAddress), kmsSigner)

	actual, _ := s.signers.LoadOrStore(externalId, signer)
	return actual.(blockchain.Signer), nil
}
