package store

import (
	"context"
	"errors"
	"time"

	"github.com/terraincognita07/ovumcy-bot/internal/models"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileIncomplete = errors.New("profile fields incomplete")
)

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID int64) (models.UserProfile, bool, error)
	Create(ctx context.Context, profile *models.UserProfile) error
	Save(ctx context.Context, profile *models.UserProfile) error
	UpdateNotificationsEnabled(ctx context.Context, userID int64, enabled bool) error
	ListNotificationSubscribers(ctx context.Context) ([]int64, error)
}

type EnergyLogRepository interface {
	Create(ctx context.Context, entry *models.EnergyLog) error
	ListByUser(ctx context.Context, userID int64) ([]models.EnergyLog, error)
}

// ProfileFields is a partial profile update; nil fields are left untouched.
type ProfileFields struct {
	Name           *string
	Age            *int
	LastPeriodDate *time.Time
	PeriodDuration *int
	CycleLength    *int
	Language       *string
}

func (fields ProfileFields) complete() bool {
	return fields.Name != nil &&
		fields.Age != nil &&
		fields.LastPeriodDate != nil &&
		fields.PeriodDuration != nil &&
		fields.CycleLength != nil
}

func (fields ProfileFields) applyTo(profile *models.UserProfile) {
	if fields.Name != nil {
		profile.Name = *fields.Name
	}
	if fields.Age != nil {
		profile.Age = *fields.Age
	}
	if fields.LastPeriodDate != nil {
		profile.LastPeriodDate = *fields.LastPeriodDate
	}
	if fields.PeriodDuration != nil {
		profile.PeriodDuration = *fields.PeriodDuration
	}
	if fields.CycleLength != nil {
		profile.CycleLength = *fields.CycleLength
	}
	if fields.Language != nil {
		profile.Language = *fields.Language
	}
}

// ProfileStore serialises every operation on one user behind that user's lock. Operations on
// different users never contend with each other.
type ProfileStore struct {
	profiles ProfileRepository
	energy   EnergyLogRepository
	locks    *KeyedMutex
}

func NewProfileStore(profiles ProfileRepository, energy EnergyLogRepository) *ProfileStore {
	return &ProfileStore{
		profiles: profiles,
		energy:   energy,
		locks:    NewKeyedMutex(),
	}
}

func (store *ProfileStore) Get(ctx context.Context, userID int64) (models.UserProfile, error) {
	unlock := store.locks.Lock(userID)
	defer unlock()

	return store.find(ctx, userID)
}

func (store *ProfileStore) CreateOrUpdate(ctx context.Context, userID int64, fields ProfileFields) (models.UserProfile, error) {
	unlock := store.locks.Lock(userID)
	defer unlock()

	profile, err := store.find(ctx, userID)
	switch {
	case errors.Is(err, ErrProfileNotFound):
		if !fields.complete() {
			return models.UserProfile{}, ErrProfileIncomplete
		}
		profile = models.UserProfile{UserID: userID}
		fields.applyTo(&profile)
		if err := store.profiles.Create(ctx, &profile); err != nil {
			return models.UserProfile{}, err
		}
		return profile, nil
	case err != nil:
		return models.UserProfile{}, err
	}

	fields.applyTo(&profile)
	if err := store.profiles.Save(ctx, &profile); err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

func (store *ProfileStore) AppendEnergyLog(ctx context.Context, userID int64, entry models.EnergyLog) error {
	unlock := store.locks.Lock(userID)
	defer unlock()

	if _, err := store.find(ctx, userID); err != nil {
		return err
	}
	entry.ID = 0
	entry.UserID = userID
	return store.energy.Create(ctx, &entry)
}

func (store *ProfileStore) EnergyLogs(ctx context.Context, userID int64) ([]models.EnergyLog, error) {
	unlock := store.locks.Lock(userID)
	defer unlock()

	if _, err := store.find(ctx, userID); err != nil {
		return nil, err
	}
	return store.energy.ListByUser(ctx, userID)
}

func (store *ProfileStore) SetNotificationsEnabled(ctx context.Context, userID int64, enabled bool) error {
	unlock := store.locks.Lock(userID)
	defer unlock()

	if _, err := store.find(ctx, userID); err != nil {
		return err
	}
	return store.profiles.UpdateNotificationsEnabled(ctx, userID, enabled)
}

func (store *ProfileStore) ListNotificationSubscribers(ctx context.Context) ([]int64, error) {
	return store.profiles.ListNotificationSubscribers(ctx)
}

func (store *ProfileStore) find(ctx context.Context, userID int64) (models.UserProfile, error) {
	profile, found, err := store.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return models.UserProfile{}, err
	}
	if !found {
		return models.UserProfile{}, ErrProfileNotFound
	}
	return profile, nil
}
