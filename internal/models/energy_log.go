package models

import "time"

const (
	MinEnergyLevel = 1
	MaxEnergyLevel = 5
)

type EnergyLog struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      int64     `gorm:"not null;index"`
	Date        time.Time `gorm:"type:date;not null"`
	CycleDay    int       `gorm:"not null"`
	EnergyLevel int       `gorm:"not null"`
	CreatedAt   time.Time
}
