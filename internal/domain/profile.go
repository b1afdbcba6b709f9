package domain

import "time"

// UserProfile is the display identity of a wallet
type UserProfile struct {
	WalletAddress string    `gorm:"column:wallet_address;primaryKey;size:64" json:"walletAddress"`
	Username      *string   `gorm:"column:username;uniqueIndex;size:50" json:"username"`
	Location      string    `gorm:"column:location;size:100" json:"location,omitempty"`
	Bio           string    `gorm:"column:bio;size:500" json:"bio,omitempty"`
	XLink         string    `gorm:"column:x_link;size:255" json:"xLink,omitempty"`
	YouTubeLink   string    `gorm:"column:youtube_link;size:255" json:"youtubeLink,omitempty"`
	AvatarCid     string    `gorm:"column:avatar_cid;size:255" json:"avatarCid,omitempty"`
	AvatarURL     string    `gorm:"column:avatar_url;size:512" json:"avatarUrl,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for UserProfile model
func (UserProfile) TableName() string {
	return "user_profiles"
}

// UpdateProfileRequest is the upsert body for a wallet profile
type UpdateProfileRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required,max=64"`
	Username      string `json:"username" validate:"omitempty,max=50"`
	Location      string `json:"location" validate:"omitempty,max=100"`
	Bio           string `json:"bio" validate:"omitempty,max=500"`
	XLink         string `json:"xLink" validate:"omitempty,url"`
	YouTubeLink   string `json:"youtubeLink" validate:"omitempty,url"`
	AvatarCid     string `json:"avatarCid" validate:"omitempty,max=255"`
	AvatarURL     string `json:"avatarUrl" validate:"omitempty,url"`
}
