package models

import "time"

// CartSnapshot stores one serialized cart per storage key.
type CartSnapshot struct {
	Key       string     `gorm:"column:storage_key;primaryKey"`
	Payload   string     `gorm:"column:payload;type:text;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table created by the goose migrations.
func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
