package models

import "time"

type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID uint      `gorm:"not null;index:idx_notifications_recipient_read" json:"recipient_id"`
	Type        string    `gorm:"size:50;not null;index:idx_notifications_dedup" json:"type"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Message     string    `gorm:"type:text" json:"message"`
	RelatedID   uint      `gorm:"index:idx_notifications_dedup" json:"related_id"`
	RelatedType string    `gorm:"size:50" json:"related_type"`
	IsRead      bool      `gorm:"not null;default:false;index:idx_notifications_recipient_read" json:"is_read"`
	CreatedAt   time.Time `gorm:"index:idx_notifications_dedup" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
