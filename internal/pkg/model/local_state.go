package model

import "time"

// SeedSecretRecord persists a not-yet-revealed seed for one (game, player).
// The pair is unique so that concurrent sessions of the same address cannot
// replace each other's seed.
type SeedSecretRecord struct {
	GameId        uint64    `gorm:"primaryKey;autoIncrement:false"`
	PlayerAddress string    `gorm:"primaryKey"`
	Seed          []byte    `gorm:"not null"`
	Commitment    []byte    `gorm:"not null"`
	TimeCreated   time.Time `gorm:"not null"`
}

func (SeedSecretRecord) TableName() string {
	return "seed_secret"
}

// CurrentGame is the reconnect index: the game a player was last seen in.
type CurrentGame struct {
	PlayerAddress string    `gorm:"primaryKey" json:"playerAddress"`
	GameId        uint64    `gorm:"not null" json:"gameId"`
	TimeUpdated   time.Time `json:"timeUpdated"`
}

func (CurrentGame) TableName() string {
	return "current_game"
}

// StartGameOffer is a signed start_game authorization handed from the first
// player to the second out of band.
type StartGameOffer struct {
	Id            string     `gorm:"primaryKey" json:"id"`
	SessionId     uint64     `gorm:"uniqueIndex" json:"sessionId"`
	TableId       uint64     `json:"tableId"`
	BuyIn         int64      `json:"buyIn"`
	Player1       string     `gorm:"index" json:"player1"`
	Player2       string     `gorm:"index" json:"player2"`
	Artifact      string     `json:"artifact"`
	ExpiresLedger uint32     `json:"expiresLedger"`
	State         string     `json:"state"`
	TimeCreated   time.Time  `json:"timeCreated"`
	TimeAccepted  *time.Time `json:"timeAccepted,omitempty"`
}

func (StartGameOffer) TableName() string {
	return "start_game_offer"
}
