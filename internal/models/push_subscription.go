package models

import "time"

// PushSubscription is a Web Push registration (endpoint plus client keys).
// Deactivated when the push relay reports the endpoint permanently gone;
// deleted by the retention sweep after prolonged inactivity.
type PushSubscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Endpoint  string    `gorm:"size:512;not null;uniqueIndex" json:"endpoint"`
	P256dhKey string    `gorm:"size:255;not null" json:"p256dh_key"`
	AuthKey   string    `gorm:"size:255;not null" json:"auth_key"`
	Active    bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}
