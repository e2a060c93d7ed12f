package repository

import (
	"time"

	"manu4/internal/domain"
	"manu4/internal/models"

	"gorm.io/gorm"
)

type ServiceOrderRepository struct {
	db *gorm.DB
}

func NewServiceOrderRepository(db *gorm.DB) *ServiceOrderRepository {
	return &ServiceOrderRepository{db: db}
}

// ListOverdueOpen returns open orders whose scheduled date has passed.
func (r *ServiceOrderRepository) ListOverdueOpen(now time.Time) ([]models.ServiceOrder, error) {
	var list []models.ServiceOrder
	err := r.db.Where("status = ? AND scheduled_for IS NOT NULL AND scheduled_for < ?", domain.OrderStatusOpen, now).
		Find(&list).Error
	return list, err
}
