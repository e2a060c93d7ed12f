package repository

import (
	"time"

	"manu4/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

func (r *NotificationRepository) ListByUserID(userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	q := r.db.Where("recipient_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var list []models.Notification
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// MarkReadByID flips is_read for a single notification. Idempotent: a second
// call is a no-op update.
func (r *NotificationRepository) MarkReadByID(id uint) error {
	return r.db.Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *NotificationRepository) MarkRead(id, userID uint) error {
	return r.db.Model(&models.Notification{}).Where("id = ? AND recipient_id = ?", id, userID).Update("is_read", true).Error
}

func (r *NotificationRepository) MarkAllRead(userID uint) error {
	return r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", userID, false).Update("is_read", true).Error
}

func (r *NotificationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", userID, false).Count(&count).Error
	return count, err
}

// ExistsRecent reports whether any notification of the given type for the given
// related row was created after the cutoff. Anti-storm lookup, keyed (type, related_id).
func (r *NotificationRepository) ExistsRecent(notifType string, relatedID uint, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("type = ? AND related_id = ? AND created_at > ?", notifType, relatedID, since).
		Count(&count).Error
	return count > 0, err
}

func (r *NotificationRepository) DeleteReadBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("is_read = ? AND created_at < ?", true, cutoff).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) DeleteUnreadBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("is_read = ? AND created_at < ?", false, cutoff).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
