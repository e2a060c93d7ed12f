package models

import "time"

type ServiceOrder struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	EquipmentID  uint       `gorm:"not null;index" json:"equipment_id"`
	AssignedTo   *uint      `gorm:"index" json:"assigned_to"`
	Description  string     `gorm:"type:text" json:"description"`
	Status       string     `gorm:"size:20;not null;index" json:"status"` // OPEN | IN_PROGRESS | COMPLETED | CANCELLED
	ScheduledFor *time.Time `gorm:"index" json:"scheduled_for"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Equipment Equipment `gorm:"foreignKey:EquipmentID" json:"-"`
}

func (ServiceOrder) TableName() string {
	return "service_orders"
}
