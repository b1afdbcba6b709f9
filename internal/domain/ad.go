package domain

import "time"

// AdPlacement is a bookable slot
type AdPlacement string

const (
	AdPlacementHeader AdPlacement = "header"
	AdPlacementFooter AdPlacement = "footer"
)

// Valid reports whether p names a known slot
func (p AdPlacement) Valid() bool {
	return p == AdPlacementHeader || p == AdPlacementFooter
}

// AdStatus is the booking lifecycle state
type AdStatus string

const (
	AdStatusPendingPayment AdStatus = "pending_payment"
	AdStatusActive         AdStatus = "active"
	AdStatusRejected       AdStatus = "rejected"
	AdStatusExpired        AdStatus = "expired"
)

// DateLayout is the calendar date format used by ad requests and responses
const DateLayout = "2006-01-02"

// Ad is a paid placement booking over an inclusive date range
type Ad struct {
	ID                   string      `gorm:"column:id;primaryKey;size:36" json:"id"`
	Title                string      `gorm:"column:title;size:200;not null" json:"title"`
	Link                 string      `gorm:"column:link;size:512;not null" json:"link"`
	ImageURL             string      `gorm:"column:image_url;size:512;not null" json:"imageUrl"`
	Placement            AdPlacement `gorm:"column:placement;size:16;index:idx_ads_slot,priority:1" json:"placement"`
	StartDate            time.Time   `gorm:"column:start_date;index:idx_ads_slot,priority:3" json:"startDate"`
	EndDate              time.Time   `gorm:"column:end_date" json:"endDate"`
	Amount               float64     `gorm:"column:amount" json:"amount"`
	Currency             string      `gorm:"column:currency;size:8" json:"currency"`
	Status               AdStatus    `gorm:"column:status;size:20;index:idx_ads_slot,priority:2" json:"status"`
	AdvertiserWallet     string      `gorm:"column:advertiser_wallet;size:64;index" json:"advertiserWallet"`
	Email                string      `gorm:"column:email;size:255" json:"email,omitempty"`
	TransactionSignature *string     `gorm:"column:transaction_signature;uniqueIndex;size:128" json:"transactionSignature,omitempty"`
	CreatedAt            time.Time   `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt            time.Time   `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for Ad model
func (Ad) TableName() string {
	return "ads"
}

// CreateAdRequest is the booking request body
type CreateAdRequest struct {
	Title            string  `json:"title" validate:"required,max=200"`
	Link             string  `json:"link" validate:"required,url"`
	ImageURL         string  `json:"imageUrl" validate:"required"`
	Placement        string  `json:"placement" validate:"required,oneof=header footer"`
	StartDate        string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	Duration         int     `json:"duration" validate:"required,min=1,max=365"`
	Amount           float64 `json:"amount" validate:"required,gt=0"`
	AdvertiserWallet string  `json:"advertiserWallet" validate:"required,max=64"`
	Email            string  `json:"email" validate:"omitempty,email"`
}

// VerifyAdRequest activates a pending booking
type VerifyAdRequest struct {
	AdID      string `json:"adId" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// AvailabilityResponse lists booked days of a month
type AvailabilityResponse struct {
	Placement   string   `json:"placement"`
	Month       string   `json:"month"`
	BookedDates []string `json:"bookedDates"`
}

// AdPricing is a bookable package price for a placement
type AdPricing struct {
	Days   int     `json:"days"`
	Header float64 `json:"header"`
	Footer float64 `json:"footer"`
}
