package model

import "time"

// CustodialWallet is a KMS-held signing key bound to a ledger address. The
// private key never leaves KMS; ResourceId names the key version. Address
// stays nil until the ledger account exists.
type CustodialWallet struct {
	Id          uint64    `gorm:"primaryKey" json:"id"`
	ResourceId  string    `json:"-"`
	PublicKey   string    `gorm:"uniqueIndex" json:"publicKey"`
	Address     *string   `gorm:"uniqueIndex" json:"address"`
	TimeCreated time.Time `json:"timeCreated"`
}

func (CustodialWallet) TableName() string {
	return "custodial_wallet"
}
