package models

import "time"

// NotificationSetting is a per-user, per-type delivery preference. A missing row
// means both channels are enabled (opt-out, not opt-in).
type NotificationSetting struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_settings_user_type" json:"user_id"`
	Type        string    `gorm:"size:50;not null;uniqueIndex:idx_settings_user_type" json:"type"`
	Enabled     bool      `gorm:"not null;default:true" json:"enabled"`
	PushEnabled bool      `gorm:"not null;default:true" json:"push_enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (NotificationSetting) TableName() string {
	return "notification_settings"
}
