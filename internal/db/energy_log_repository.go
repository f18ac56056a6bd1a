package db

import (
	"context"

	"github.com/terraincognita07/ovumcy-bot/internal/models"
	"gorm.io/gorm"
)

type EnergyLogRepository struct {
	database *gorm.DB
}

func NewEnergyLogRepository(database *gorm.DB) *EnergyLogRepository {
	return &EnergyLogRepository{database: database}
}

func (repo *EnergyLogRepository) Create(ctx context.Context, entry *models.EnergyLog) error {
	return repo.database.WithContext(ctx).Create(entry).Error
}

func (repo *EnergyLogRepository) ListByUser(ctx context.Context, userID int64) ([]models.EnergyLog, error) {
	logs := make([]models.EnergyLog, 0)
	if err := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
