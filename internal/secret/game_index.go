package secret

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/onflow/flow-go-sdk"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameIndex remembers the one game each player is in, for reconnects.
type GameIndex interface {
	Set(ctx context.Context, player flow.Address, gameId uint64) error
	Get(ctx context.Context, player flow.Address) (uint64, bool, error)
	Clear(ctx context.Context, player flow.Address) error
}

type MemoryGameIndex struct {
	mu    sync.RWMutex
	games map[flow.Address]uint64
}

func NewMemoryGameIndex() *MemoryGameIndex {
	return &MemoryGameIndex{games: map[flow.Address]uint64{}}
}

func (i *MemoryGameIndex) Set(_ context.Context, player flow.Address, gameId uint64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.games[player] = gameId
	return nil
}

func (i *MemoryGameIndex) Get(_ context.Context, player flow.Address) (uint64, bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	id, ok := i.games[player]
	return id, ok, nil
}

func (i *MemoryGameIndex) Clear(_ context.Context, player flow.Address) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.games, player)
	return nil
}

type GormGameIndex struct {
	db *gorm.DB
}

func NewGormGameIndex(db *gorm.DB) *GormGameIndex {
	return &GormGameIndex{db: db}
}

func (i *GormGameIndex) Set(ctx context.Context, player flow.Address, gameId uint64) error {
	record := model.CurrentGame{
		PlayerAddress: player.Hex(),
		GameId:        gameId,
		TimeUpdated:   time.Now().UTC(),
	}
	return i.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_address"}},
			DoUpdates: clause.AssignmentColumns([]string{"game_id", "time_updated"}),
		}).
		Create(&record).
		Error
}

func (i *GormGameIndex) Get(ctx context.Context, player flow.Address) (uint64, bool, error) {
	var record model.CurrentGame
	result := i.db.WithContext(ctx).
		Where("player_address = ?", player.Hex()).
		First(&record)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if result.Error != nil {
		return 0, false, result.Error
	}
	return record.GameId, true, nil
}

func (i *GormGameIndex) Clear(ctx context.Context, player flow.Address) error {
	return i.db.WithContext(ctx).
		Where("player_address = ?", player.Hex()).
		Delete(&model.CurrentGame{}).
		Error
}
