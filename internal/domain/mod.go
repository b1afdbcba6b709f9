package domain

import "time"

// Mod is a moderator wallet added by the admin
type Mod struct {
	ID            string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	WalletAddress string    `gorm:"column:wallet_address;uniqueIndex;size:64;not null" json:"walletAddress"`
	AddedBy       string    `gorm:"column:added_by;size:64" json:"addedBy"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the table name for Mod model
func (Mod) TableName() string {
	return "mods"
}

// ModRequest names the wallet to add or remove
type ModRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
}

// PrivilegeStatus is the answer of the public admin check
type PrivilegeStatus struct {
	IsAdmin bool `json:"isAdmin"`
	IsMod   bool `json:"isMod"`
	Exempt  bool `json:"exempt"`
}

// UnarchiveRequest names the thread to restore
type UnarchiveRequest struct {
	ThreadID string `json:"threadId" binding:"required"`
}

// MaintenanceResult reports one capacity pass
type MaintenanceResult struct {
	Active   int64 `json:"active"`
	Archived int64 `json:"archived"`
}

// PurgeResult reports one purge
type PurgeResult struct {
	ThreadID     string `json:"threadId"`
	Purged       bool   `json:"purged"`
	BlobsDeleted int    `json:"blobsDeleted"`
}
