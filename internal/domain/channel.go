package domain

import "time"

// Channel groups threads by topic
type Channel struct {
	ID          string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name        string    `gorm:"column:name;size:100;not null" json:"name"`
	Slug        string    `gorm:"column:slug;uniqueIndex;size:100;not null" json:"slug"`
	Description string    `gorm:"column:description;size:500" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the table name for Channel model
func (Channel) TableName() string {
	return "channels"
}
