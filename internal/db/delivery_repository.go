package db

import (
	"context"

	"github.com/terraincognita07/ovumcy-bot/internal/models"
	"gorm.io/gorm"
)

type DeliveryRepository struct {
	database *gorm.DB
}

func NewDeliveryRepository(database *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{database: database}
}

func (repo *DeliveryRepository) Record(ctx context.Context, delivery *models.NotificationDelivery) error {
	return repo.database.WithContext(ctx).Create(delivery).Error
}

func (repo *DeliveryRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.NotificationDelivery, error) {
	deliveries := make([]models.NotificationDelivery, 0)
	query := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("fired_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}
