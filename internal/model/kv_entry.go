package model

import "time"

// KVEntry is a single row of the key-value table backing local persistence.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName pins the table name independently of the struct name.
func (KVEntry) TableName() string {
	return "kv_entries"
}
