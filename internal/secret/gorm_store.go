package secret

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/pokerzk-backend/pkg/shuffle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore shares seeds between sessions of the same address. Inserts use
// ON CONFLICT DO NOTHING so the first writer for a key wins.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Put(ctx context.Context, key Key, secret shuffle.SeedSecret) error {
	record := model.SeedSecretRecord{
		GameId:        key.GameId,
		PlayerAddress: key.Player.Hex(),
		Seed:          secret.Seed[:],
		Commitment:    secret.Commitment[:],
		TimeCreated:   time.Now().UTC(),
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		return fmt.Errorf("storing seed for %s: %w", key, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSecretExists
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, key Key) (shuffle.SeedSecret, error) {
	var record model.SeedSecretRecord
	result := s.db.WithContext(ctx).
		Where("game_id = ? AND player_address = ?", key.GameId, key.Player.Hex()).
		First(&record)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return shuffle.SeedSecret{}, ErrSecretUnavailable
	}
	if result.Error != nil {
		return shuffle.SeedSecret{}, fmt.Errorf("%w: %v", ErrSecretUnavailable, result.Error)
	}

	var secret shuffle.SeedSecret
	if len(record.Seed) != len(secret.Seed) || len(record.Commitment) != len(secret.Commitment) {
		return shuffle.SeedSecret{}, fmt.Errorf("%w: stored seed for %s is corrupt", ErrSecretUnavailable, key)
	}
	copy(secret.Seed[:], record.Seed)
	copy(secret.Commitment[:], record.Commitment)
	return secret, nil
}

func (s *GormStore) Delete(ctx context.Context, key Key) error {
	return s.db.WithContext(ctx).
		Where("game_id = ? AND player_address = ?", key.GameId, key.Player.Hex()).
		Delete(&model.SeedSecretRecord{}).
		Error
}
