package repository

import (
	"manu4/internal/domain"
	"manu4/internal/models"

	"gorm.io/gorm"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) ListInFailure() ([]models.Equipment, error) {
	var list []models.Equipment
	err := r.db.Where("status = ?", domain.EquipmentFailure).Find(&list).Error
	return list, err
}
