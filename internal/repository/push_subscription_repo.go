package repository

import (
	"time"

	"manu4/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PushSubscriptionRepository struct {
	db *gorm.DB
}

func NewPushSubscriptionRepository(db *gorm.DB) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{db: db}
}

func (r *PushSubscriptionRepository) ListActiveByUserID(userID uint) ([]models.PushSubscription, error) {
	var list []models.PushSubscription
	err := r.db.Where("user_id = ? AND active = ?", userID, true).Find(&list).Error
	return list, err
}

// Upsert registers a subscription, reactivating and re-keying an existing row
// for the same endpoint.
func (r *PushSubscriptionRepository) Upsert(sub *models.PushSubscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh_key", "auth_key", "active", "updated_at"}),
	}).Create(sub).Error
}

// Deactivate marks a subscription dead after a permanent relay rejection. The
// row is kept so re-registration can revive the endpoint.
func (r *PushSubscriptionRepository) Deactivate(id uint) error {
	return r.db.Model(&models.PushSubscription{}).Where("id = ?", id).Update("active", false).Error
}

func (r *PushSubscriptionRepository) DeleteByEndpoint(userID uint, endpoint string) error {
	return r.db.Where("user_id = ? AND endpoint = ?", userID, endpoint).Delete(&models.PushSubscription{}).Error
}

func (r *PushSubscriptionRepository) DeleteInactiveBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("updated_at < ?", cutoff).Delete(&models.PushSubscription{})
	return res.RowsAffected, res.Error
}
