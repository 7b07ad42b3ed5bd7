package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Subscriptions outlive the in-memory working copy, so they are the one
// thing the gateway persists; classroom and booking data stay upstream.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Watches []RoomWatch `gorm:"foreignKey:Endpoint;constraint:OnDelete:CASCADE"`
}

// RoomWatch marks a classroom a subscriber wants to be notified about when
// it becomes available. Only the upstream identifier is stored; the room's
// metadata lives in the working copy.
type RoomWatch struct {
	Endpoint    string `gorm:"primaryKey;size:512"`
	ClassroomID int64  `gorm:"primaryKey;index"`
}
