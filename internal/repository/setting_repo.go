package repository

import (
	"errors"

	"manu4/internal/models"

	"gorm.io/gorm"
)

type NotificationSettingRepository struct {
	db *gorm.DB
}

func NewNotificationSettingRepository(db *gorm.DB) *NotificationSettingRepository {
	return &NotificationSettingRepository{db: db}
}

// Get returns the (user, type) preference row. Absence of a row means both
// channels enabled, so a synthetic default is returned instead of an error.
func (r *NotificationSettingRepository) Get(userID uint, notifType string) (*models.NotificationSetting, error) {
	var s models.NotificationSetting
	err := r.db.Where("user_id = ? AND type = ?", userID, notifType).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NotificationSetting{
			UserID:      userID,
			Type:        notifType,
			Enabled:     true,
			PushEnabled: true,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
