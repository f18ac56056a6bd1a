package models

import "time"

const (
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
	DeliverySkipped = "skipped"
)

type NotificationDelivery struct {
	ID      string    `gorm:"primaryKey"`
	UserID  int64     `gorm:"not null;index"`
	FiredAt time.Time `gorm:"not null"`
	Status  string    `gorm:"not null"`
	Error   string
}
