package services

import (
	"context"
	"time"

	"github.com/terraincognita07/ovumcy-bot/internal/models"
	"github.com/terraincognita07/ovumcy-bot/internal/store"
)

const (
	periodSoonDays    = 3
	ovulationSoonDays = 3
)

type ProfileStore interface {
	Get(ctx context.Context, userID int64) (models.UserProfile, error)
	CreateOrUpdate(ctx context.Context, userID int64, fields store.ProfileFields) (models.UserProfile, error)
}

type ProfileService struct {
	profiles ProfileStore
	messages MessageCatalog
}

type CycleStatus struct {
	CycleDay         int          `json:"cycle_day"`
	CycleLength      int          `json:"cycle_length"`
	Phase            models.Phase `json:"phase"`
	Windows          PhaseWindows `json:"phase_windows"`
	OvulationDay     int          `json:"ovulation_day"`
	DaysToNextPeriod int          `json:"days_to_next_period"`
	NextPeriodDate   time.Time    `json:"next_period_date"`
	DaysToOvulation  *int         `json:"days_to_ovulation,omitempty"`
	PeriodSoon       bool         `json:"period_soon"`
	OvulationSoon    bool         `json:"ovulation_soon"`
}

type RecommendationBundle struct {
	Phase     models.Phase `json:"phase"`
	CycleDay  int          `json:"cycle_day"`
	Nutrition string       `json:"nutrition"`
	Exercise  string       `json:"exercise"`
	Mental    string       `json:"mental"`
}

func NewProfileService(profiles ProfileStore, messages MessageCatalog) *ProfileService {
	return &ProfileService{profiles: profiles, messages: messages}
}

func (service *ProfileService) Register(ctx context.Context, input RegistrationInput, now time.Time) (models.UserProfile, error) {
	valid, err := ValidateRegistration(input, now)
	if err != nil {
		return models.UserProfile{}, err
	}

	language := service.messages.NormalizeLanguage(valid.Language)
	return service.profiles.CreateOrUpdate(ctx, valid.UserID, store.ProfileFields{
		Name:           &valid.Name,
		Age:            &valid.Age,
		LastPeriodDate: &valid.LastPeriodDate,
		PeriodDuration: &valid.PeriodDuration,
		CycleLength:    &valid.CycleLength,
		Language:       &language,
	})
}

func (service *ProfileService) UpdateCycleSettings(ctx context.Context, userID int64, input CycleSettingsInput, now time.Time) (models.UserProfile, error) {
	valid, err := ValidateCycleSettings(input, now)
	if err != nil {
		return models.UserProfile{}, err
	}
	if _, err := service.profiles.Get(ctx, userID); err != nil {
		return models.UserProfile{}, err
	}

	return service.profiles.CreateOrUpdate(ctx, userID, store.ProfileFields{
		LastPeriodDate: valid.LastPeriodDate,
		PeriodDuration: valid.PeriodDuration,
		CycleLength:    valid.CycleLength,
	})
}

func (service *ProfileService) SetLanguage(ctx context.Context, userID int64, language string) (models.UserProfile, error) {
	if _, err := service.profiles.Get(ctx, userID); err != nil {
		return models.UserProfile{}, err
	}
	normalized := service.messages.NormalizeLanguage(language)
	return service.profiles.CreateOrUpdate(ctx, userID, store.ProfileFields{Language: &normalized})
}

func (service *ProfileService) Profile(ctx context.Context, userID int64) (models.UserProfile, error) {
	return service.profiles.Get(ctx, userID)
}

func (service *ProfileService) Status(ctx context.Context, userID int64, now time.Time) (CycleStatus, error) {
	profile, err := service.profiles.Get(ctx, userID)
	if err != nil {
		return CycleStatus{}, err
	}
	return BuildCycleStatus(profile, now), nil
}

func BuildCycleStatus(profile models.UserProfile, now time.Time) CycleStatus {
	day := CurrentCycleDay(now, profile)
	phase := ClassifyPhase(day, profile)
	ovulationDay := profileOvulationDay(profile)
	daysToNextPeriod := DaysToNextPeriod(day, profile.CycleLength)

	status := CycleStatus{
		CycleDay:         day,
		CycleLength:      profile.CycleLength,
		Phase:            phase,
		Windows:          PhaseWindowSummary(profile),
		OvulationDay:     ovulationDay,
		DaysToNextPeriod: daysToNextPeriod,
		NextPeriodDate:   DateAtLocation(now, now.Location()).AddDate(0, 0, daysToNextPeriod),
		PeriodSoon:       phase == models.PhaseLuteal && daysToNextPeriod <= periodSoonDays,
	}

	if day < ovulationDay {
		daysToOvulation := ovulationDay - day
		status.DaysToOvulation = &daysToOvulation
		status.OvulationSoon = phase == models.PhaseFollicular && daysToOvulation <= ovulationSoonDays
	}
	return status
}

func (service *ProfileService) Recommendations(ctx context.Context, userID int64, now time.Time) (RecommendationBundle, error) {
	profile, err := service.profiles.Get(ctx, userID)
	if err != nil {
		return RecommendationBundle{}, err
	}

	day := CurrentCycleDay(now, profile)
	return BuildRecommendations(service.messages, profile.Language, ClassifyPhase(day, profile), day), nil
}

func BuildRecommendations(messages MessageCatalog, language string, phase models.Phase, day int) RecommendationBundle {
	return RecommendationBundle{
		Phase:     phase,
		CycleDay:  day,
		Nutrition: messages.Translate(language, recommendationKey(phase, "nutrition")),
		Exercise:  messages.Translate(language, recommendationKey(phase, "exercise")),
		Mental:    messages.Translate(language, recommendationKey(phase, "mental")),
	}
}
