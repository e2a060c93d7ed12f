package models

import "time"

// Equipment carries only the columns the scanners read; full CRUD lives in the
// asset-management service.
type Equipment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Code      string    `gorm:"uniqueIndex;size:64;not null" json:"code"`
	Location  string    `gorm:"size:255" json:"location"`
	Status    string    `gorm:"size:20;not null;index" json:"status"` // OPERATIONAL | MAINTENANCE | FAILURE | INACTIVE
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Equipment) TableName() string {
	return "equipments"
}
