package api

import (
	"context"
	"errors"
	"time"

	"github.com/terraincognita07/ovumcy-bot/internal/models"
	"github.com/terraincognita07/ovumcy-bot/internal/services"
)

const apiDateLayout = "2006-01-02"

type ProfileService interface {
	Register(ctx context.Context, input services.RegistrationInput, now time.Time) (models.UserProfile, error)
	UpdateCycleSettings(ctx context.Context, userID int64, input services.CycleSettingsInput, now time.Time) (models.UserProfile, error)
	SetLanguage(ctx context.Context, userID int64, language string) (models.UserProfile, error)
	Profile(ctx context.Context, userID int64) (models.UserProfile, error)
	Status(ctx context.Context, userID int64, now time.Time) (services.CycleStatus, error)
	Recommendations(ctx context.Context, userID int64, now time.Time) (services.RecommendationBundle, error)
}

type EnergyService interface {
	LogEnergy(ctx context.Context, userID int64, level int, now time.Time) (services.EnergyLogResult, error)
	Statistics(ctx context.Context, userID int64) (services.EnergyStatistics, error)
}

type NotificationService interface {
	SetNotifications(ctx context.Context, userID int64, enabled bool) error
	NextFire(now time.Time) time.Time
}

type DeliveryHistory interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.NotificationDelivery, error)
}

// TokenParser resolves a bearer token to the Telegram user id it was issued for.
type TokenParser interface {
	Parse(token string) (int64, error)
}

type Dependencies struct {
	Profiles      ProfileService
	Energy        EnergyService
	Notifications NotificationService
	Deliveries    DeliveryHistory
	Tokens        TokenParser
	Location      *time.Location
	Now           func() time.Time
}

type Handler struct {
	profiles      ProfileService
	energy        EnergyService
	notifications NotificationService
	deliveries    DeliveryHistory
	tokens        TokenParser
	location      *time.Location
	now           func() time.Time
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Profiles == nil || deps.Energy == nil || deps.Notifications == nil || deps.Deliveries == nil {
		return nil, errors.New("api: services are required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("api: token parser is required")
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Handler{
		profiles:      deps.Profiles,
		energy:        deps.Energy,
		notifications: deps.Notifications,
		deliveries:    deps.Deliveries,
		tokens:        deps.Tokens,
		location:      deps.Location,
		now:           deps.Now,
	}, nil
}

func (handler *Handler) currentTime() time.Time {
	return handler.now().In(handler.location)
}

type profileView struct {
	UserID               int64  `json:"user_id"`
	Name                 string `json:"name"`
	Age                  int    `json:"age"`
	LastPeriodDate       string `json:"last_period_date"`
	PeriodDuration       int    `json:"period_duration"`
	CycleLength          int    `json:"cycle_length"`
	OvulationDay         int    `json:"ovulation_day"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	Language             string `json:"language"`
}

func newProfileView(profile models.UserProfile) profileView {
	return profileView{
		UserID:               profile.UserID,
		Name:                 profile.Name,
		Age:                  profile.Age,
		LastPeriodDate:       profile.LastPeriodDate.Format(apiDateLayout),
		PeriodDuration:       profile.PeriodDuration,
		CycleLength:          profile.CycleLength,
		OvulationDay:         profile.OvulationDay,
		NotificationsEnabled: profile.NotificationsEnabled,
		Language:             profile.Language,
	}
}

type deliveryView struct {
	ID      string    `json:"id"`
	FiredAt time.Time `json:"fired_at"`
	Status  string    `json:"status"`
	Error   string    `json:"error,omitempty"`
}
