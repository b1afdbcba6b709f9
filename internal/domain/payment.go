package domain

import "time"

// PaymentPurpose is what a posting or ad payment was spent on
type PaymentPurpose string

const (
	PaymentPurposeThread PaymentPurpose = "thread"
	PaymentPurposeReply  PaymentPurpose = "reply"
	PaymentPurposeAd     PaymentPurpose = "ad"
)

// PaymentReceipt records a consumed transaction signature. The unique
// signature column makes one on-chain payment spendable once.
type PaymentReceipt struct {
	Signature string         `gorm:"column:signature;primaryKey;size:128" json:"signature"`
	Purpose   PaymentPurpose `gorm:"column:purpose;size:16" json:"purpose"`
	Wallet    string         `gorm:"column:wallet;size:64;index" json:"wallet"`
	Amount    float64        `gorm:"column:amount" json:"amount"`
	RefID     string         `gorm:"column:ref_id;size:36" json:"refId"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the table name for PaymentReceipt model
func (PaymentReceipt) TableName() string {
	return "payment_receipts"
}

// FeeQuote tells a wallet what it owes for a post
type FeeQuote struct {
	Exempt   bool    `json:"exempt"`
	Amount   float64 `json:"amount,omitempty"`
	Treasury string  `json:"treasury,omitempty"`
	Mint     string  `json:"mint,omitempty"`
}

// VerifyResult is the answer of a payment verification request
type VerifyResult struct {
	Verified  bool    `json:"verified"`
	Signature string  `json:"signature"`
	Amount    float64 `json:"amount"`
}
