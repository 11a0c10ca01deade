package wallet

import (
	"context"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/onflow/flow-go-sdk"
	"github.com/rs/zerolog/log"
)

// AccountRequested asks the account provisioner to open a ledger account
// controlled by PublicKey.
type AccountRequested struct {
	Topic     string `json:"-"`
	PublicKey string `json:"publicKey"`
	SignAlgo  string `json:"signAlgo"`
	HashAlgo  string `json:"hashAlgo"`
	Weight    int    `json:"weight"`
}

func (e AccountRequested) GetEventTopicName() string {
	return e.Topic
}

type AccountCreated struct {
	PublicKey string `json:"originatingPublicKey"`
	Address   string `json:"address"`
}

func (s *Service) requestAccount(accountKey *flow.AccountKey) {
	if s.publisher == nil || s.accountTopic == "" {
		log.Warn().Msg("No account provisioner configured, wallet stays pending")
		return
	}
	s.publisher.Publish(AccountRequested{
		Topic:     s.accountTopic,
		PublicKey: accountKey.PublicKey.String(),
		SignAlgo:  accountKey.SigAlgo.String(),
		HashAlgo:  accountKey.HashAlgo.String(),
		Weight:    accountKey.Weight,
	})
}

// HandleAccountCreated stores the address the provisioner opened for a
// pending wallet and tells the registering player about it.
func (s *Service) HandleAccountCreated(ctx context.Context, created AccountCreated) error {
	address := flow.HexToAddress(created.Address).Hex()
	result := s.db.WithContext(ctx).
		Model(&model.CustodialWallet{}).
		Where("public_key = ?", created.PublicKey).
		Update("address", address)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		log.Warn().Str("publicKey", created.PublicKey).Msg("AccountCreated for an unknown wallet")
		return nil
	}

	profile, err := s.findProfile(ctx, "custodial_wallet.public_key = ?", created.PublicKey)
	if err != nil {
		log.Warn().Err(err).Msg("Cannot fetch profile on AccountCreated event")
		return nil
	}

	if s.notifier != nil {
		s.notifier.Publish(RegistrationTopic(profile.ExternalId), map[string]any{
			"type":    "ACCOUNT_CREATED",
			"payload": profile,
		})
	}
	return nil
}
