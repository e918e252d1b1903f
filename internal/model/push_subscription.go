package model

import (
	"slices"
	"time"
)

// PushSubscription holds the information for a browser push subscription.
// Locations restricts alerts to the listed sites; an empty list means every site.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	Locations []string  `gorm:"serializer:json"`
	CreatedAt time.Time `gorm:"not null"`
}

// Covers reports whether the subscription wants alerts for location.
func (s PushSubscription) Covers(location string) bool {
	return len(s.Locations) == 0 || slices.Contains(s.Locations, location)
}
