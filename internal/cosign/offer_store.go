package cosign

import (
	"context"
	"errors"
	"time"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/onflow/flow-go-sdk"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrOfferNotFound = errors.New("start game offer not found")

type OfferStore struct {
	db *gorm.DB
}

func NewOfferStore(db *gorm.DB) *OfferStore {
	return &OfferStore{db: db}
}

// Save keeps the first copy of an offer; pubsub redeliveries are no-ops.
func (s *OfferStore) Save(ctx context.Context, offer *model.StartGameOffer) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(offer).
		Error
}

func (s *OfferStore) Find(ctx context.Context, id string) (*model.StartGameOffer, error) {
	var offer model.StartGameOffer
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&offer)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrOfferNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &offer, nil
}

// Pending lists offers addressed to player2 that are still open, newest first.
func (s *OfferStore) Pending(ctx context.Context, player2 flow.Address, minLedger uint32) ([]model.StartGameOffer, error) {
	var offers []model.StartGameOffer
	result := s.db.WithContext(ctx).
		Where("player2 = ? AND time_accepted IS NULL AND expires_ledger > ?", player2.Hex(), minLedger).
		Order("time_created DESC").
		Find(&offers)
	if result.Error != nil {
		return nil, result.Error
	}
	return offers, nil
}

func (s *OfferStore) MarkSubmitted(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&model.StartGameOffer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"state":         Submitted.String(),
			"time_accepted": at,
		}).
		Error
}
