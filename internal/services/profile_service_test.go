package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/ovumcy-bot/internal/i18n"
	"github.com/terraincognita07/ovumcy-bot/internal/models"
	"github.com/terraincognita07/ovumcy-bot/internal/store"
)

func TestRegisterThenStatusStartsAtDayOne(t *testing.T) {
	t.Parallel()

	profiles := newStubProfileStore()
	service := NewProfileService(profiles, mustMessages(t))
	now := mustParseDay(t, "2026-03-01").Add(11 * time.Hour)

	profile, err := service.Register(context.Background(), RegistrationInput{
		UserID:         7,
		Name:           "Мария",
		Age:            30,
		LastPeriodDate: now,
		PeriodDuration: 5,
		CycleLength:    28,
		Language:       "en-GB",
	}, now)
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if profile.Language != i18n.LangEN {
		t.Fatalf("expected normalized language en, got %q", profile.Language)
	}

	status, err := service.Status(context.Background(), 7, now)
	if err != nil {
		t.Fatalf("Status() unexpected error: %v", err)
	}
	if status.CycleDay != 1 || status.Phase != models.PhaseMenstrual {
		t.Fatalf("expected day 1 menstrual, got day %d %s", status.CycleDay, status.Phase)
	}
	if status.DaysToNextPeriod != 28 {
		t.Fatalf("expected 28 days to next period, got %d", status.DaysToNextPeriod)
	}
	if status.DaysToOvulation == nil || *status.DaysToOvulation != 13 {
		t.Fatalf("expected 13 days to ovulation, got %v", status.DaysToOvulation)
	}
	if want := mustParseDay(t, "2026-03-29"); !status.NextPeriodDate.Equal(want) {
		t.Fatalf("expected next period %s, got %s", want, status.NextPeriodDate)
	}
}

func TestRegisterRejectsInvalidInputWithoutWriting(t *testing.T) {
	t.Parallel()

	profiles := newStubProfileStore()
	service := NewProfileService(profiles, mustMessages(t))
	now := mustParseDay(t, "2026-03-01")

	_, err := service.Register(context.Background(), RegistrationInput{
		UserID: 7, Name: "Мария", Age: 30, LastPeriodDate: now, PeriodDuration: 5, CycleLength: 50,
	}, now)
	if !errors.Is(err, ErrCycleLengthOutOfRange) {
		t.Fatalf("expected ErrCycleLengthOutOfRange, got %v", err)
	}
	if _, err := profiles.Get(context.Background(), 7); !errors.Is(err, store.ErrProfileNotFound) {
		t.Fatalf("expected no stored profile, got %v", err)
	}
}

func TestStatusForUnknownUser(t *testing.T) {
	t.Parallel()

	service := NewProfileService(newStubProfileStore(), mustMessages(t))
	if _, err := service.Status(context.Background(), 1, time.Now()); !errors.Is(err, store.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := service.Recommendations(context.Background(), 1, time.Now()); !errors.Is(err, store.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestBuildCycleStatusFlags(t *testing.T) {
	t.Parallel()

	lastPeriod := mustParseDay(t, "2026-03-01")
	profile := testProfile(1, lastPeriod, 5, 28)

	cases := []struct {
		name              string
		day               int
		wantPhase         models.Phase
		wantPeriodSoon    bool
		wantOvulationSoon bool
		wantToOvulation   int
	}{
		{name: "follicular far from ovulation", day: 6, wantPhase: models.PhaseFollicular, wantToOvulation: 8},
		{name: "follicular close to ovulation", day: 11, wantPhase: models.PhaseFollicular, wantOvulationSoon: true, wantToOvulation: 3},
		{name: "ovulation day", day: 14, wantPhase: models.PhaseOvulatory},
		{name: "early luteal", day: 20, wantPhase: models.PhaseLuteal},
		{name: "late luteal", day: 26, wantPhase: models.PhaseLuteal, wantPeriodSoon: true},
	}

	for _, testCase := range cases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			now := lastPeriod.AddDate(0, 0, testCase.day-1).Add(9 * time.Hour)
			status := BuildCycleStatus(profile, now)
			if status.CycleDay != testCase.day || status.Phase != testCase.wantPhase {
				t.Fatalf("expected day %d %s, got day %d %s", testCase.day, testCase.wantPhase, status.CycleDay, status.Phase)
			}
			if status.PeriodSoon != testCase.wantPeriodSoon {
				t.Fatalf("expected period soon %v, got %v", testCase.wantPeriodSoon, status.PeriodSoon)
			}
			if status.OvulationSoon != testCase.wantOvulationSoon {
				t.Fatalf("expected ovulation soon %v, got %v", testCase.wantOvulationSoon, status.OvulationSoon)
			}
			if testCase.wantToOvulation == 0 {
				if status.DaysToOvulation != nil {
					t.Fatalf("expected no days to ovulation, got %d", *status.DaysToOvulation)
				}
				return
			}
			if status.DaysToOvulation == nil || *status.DaysToOvulation != testCase.wantToOvulation {
				t.Fatalf("expected %d days to ovulation, got %v", testCase.wantToOvulation, status.DaysToOvulation)
			}
		})
	}
}

func TestUpdateCycleSettingsRecomputesOvulation(t *testing.T) {
	t.Parallel()

	profiles := newStubProfileStore(testProfile(3, mustParseDay(t, "2026-03-01"), 5, 28))
	service := NewProfileService(profiles, mustMessages(t))

	cycleLength := 32
	updated, err := service.UpdateCycleSettings(context.Background(), 3, CycleSettingsInput{CycleLength: &cycleLength}, mustParseDay(t, "2026-03-05"))
	if err != nil {
		t.Fatalf("UpdateCycleSettings() unexpected error: %v", err)
	}
	if updated.CycleLength != 32 || updated.OvulationDay != 18 || updated.PeriodDuration != 5 {
		t.Fatalf("unexpected updated profile %+v", updated)
	}

	if _, err := service.UpdateCycleSettings(context.Background(), 99, CycleSettingsInput{CycleLength: &cycleLength}, time.Now()); !errors.Is(err, store.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound for unknown user, got %v", err)
	}
}

func TestRecommendationsFollowPhaseAndLanguage(t *testing.T) {
	t.Parallel()

	profile := testProfile(5, mustParseDay(t, "2026-03-01"), 5, 28)
	profile.Language = i18n.LangEN
	service := NewProfileService(newStubProfileStore(profile), mustMessages(t))

	bundle, err := service.Recommendations(context.Background(), 5, mustParseDay(t, "2026-03-14"))
	if err != nil {
		t.Fatalf("Recommendations() unexpected error: %v", err)
	}
	if bundle.Phase != models.PhaseOvulatory || bundle.CycleDay != 14 {
		t.Fatalf("expected ovulatory day 14, got %s day %d", bundle.Phase, bundle.CycleDay)
	}
	if !strings.Contains(bundle.Exercise, "Peak energy") {
		t.Fatalf("expected english ovulatory exercise text, got %q", bundle.Exercise)
	}
	if bundle.Nutrition == "" || bundle.Mental == "" {
		t.Fatalf("expected all recommendation texts, got %+v", bundle)
	}
}
