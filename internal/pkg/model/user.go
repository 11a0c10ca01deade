package model

// Player links an external identity to the wallet that acts for it at the table.
type Player struct {
	Id                uint64 `gorm:"primaryKey" json:"id"`
	GoogleIdentityId  string `gorm:"uniqueIndex" json:"-"`
	Email             string `json:"email"`
	Nickname          string `json:"nickname"`
	CustodialWalletId uint64 `json:"custodialWalletId"`
}

func (Player) TableName() string {
	return "player"
}
