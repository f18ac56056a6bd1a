package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	MinAge            = 8
	MaxAge            = 60
	MinPeriodDuration = 1
	MaxPeriodDuration = 10
	MinCycleLength    = 21
	MaxCycleLength    = 45
	LutealPhaseDays   = 14
)

type UserProfile struct {
	UserID               int64     `gorm:"primaryKey;autoIncrement:false"`
	Name                 string    `gorm:"not null"`
	Age                  int       `gorm:"not null"`
	LastPeriodDate       time.Time `gorm:"type:date;not null"`
	PeriodDuration       int       `gorm:"not null"`
	CycleLength          int       `gorm:"not null"`
	OvulationDay         int       `gorm:"not null"`
	NotificationsEnabled bool      `gorm:"not null;default:false"`
	Language             string    `gorm:"not null;default:ru"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// BeforeSave keeps the derived ovulation day in step with the cycle length.
func (profile *UserProfile) BeforeSave(*gorm.DB) error {
	profile.OvulationDay = profile.CycleLength - LutealPhaseDays
	return nil
}
