package db

import (
	"context"

	"github.com/terraincognita07/ovumcy-bot/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

// FindByUserID reports found=false instead of gorm.ErrRecordNotFound for unknown users.
func (repo *ProfileRepository) FindByUserID(ctx context.Context, userID int64) (models.UserProfile, bool, error) {
	profile := models.UserProfile{}
	result := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&profile)
	if result.Error != nil {
		return models.UserProfile{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.UserProfile{}, false, nil
	}
	return profile, true, nil
}

func (repo *ProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	return repo.database.WithContext(ctx).Create(profile).Error
}

func (repo *ProfileRepository) Save(ctx context.Context, profile *models.UserProfile) error {
	return repo.database.WithContext(ctx).Save(profile).Error
}

func (repo *ProfileRepository) UpdateNotificationsEnabled(ctx context.Context, userID int64, enabled bool) error {
	return repo.database.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Update("notifications_enabled", enabled).Error
}

func (repo *ProfileRepository) ListNotificationSubscribers(ctx context.Context) ([]int64, error) {
	userIDs := make([]int64, 0)
	if err := repo.database.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("notifications_enabled = ?", true).
		Order("user_id ASC").
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}
