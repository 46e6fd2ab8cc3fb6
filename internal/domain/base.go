package domain

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"type:TIMESTAMP with time zone;not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"type:TIMESTAMP with time zone;not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m BaseModel) GetID() uint {
	return m.ID
}

func (m *BaseModel) SetID(id uint) {
	m.ID = id
}
