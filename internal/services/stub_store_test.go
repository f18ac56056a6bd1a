package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/terraincognita07/ovumcy-bot/internal/i18n"
	"github.com/terraincognita07/ovumcy-bot/internal/models"
	"github.com/terraincognita07/ovumcy-bot/internal/store"
)

type stubProfileStore struct {
	mu       sync.Mutex
	profiles map[int64]models.UserProfile
	logs     map[int64][]models.EnergyLog
	setErr   error
}

func newStubProfileStore(profiles ...models.UserProfile) *stubProfileStore {
	stub := &stubProfileStore{
		profiles: make(map[int64]models.UserProfile),
		logs:     make(map[int64][]models.EnergyLog),
	}
	for _, profile := range profiles {
		stub.profiles[profile.UserID] = profile
	}
	return stub
}

func (stub *stubProfileStore) Get(_ context.Context, userID int64) (models.UserProfile, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	profile, ok := stub.profiles[userID]
	if !ok {
		return models.UserProfile{}, store.ErrProfileNotFound
	}
	return profile, nil
}

func (stub *stubProfileStore) CreateOrUpdate(_ context.Context, userID int64, fields store.ProfileFields) (models.UserProfile, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	profile, ok := stub.profiles[userID]
	if !ok {
		if fields.Name == nil || fields.Age == nil || fields.LastPeriodDate == nil || fields.PeriodDuration == nil || fields.CycleLength == nil {
			return models.UserProfile{}, store.ErrProfileIncomplete
		}
		profile = models.UserProfile{UserID: userID, Language: i18n.LangRU}
	}
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
	profile.OvulationDay = OvulationDay(profile.CycleLength)
	stub.profiles[userID] = profile
	return profile, nil
}

func (stub *stubProfileStore) AppendEnergyLog(_ context.Context, userID int64, entry models.EnergyLog) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if _, ok := stub.profiles[userID]; !ok {
		return store.ErrProfileNotFound
	}
	entry.ID = uint(len(stub.logs[userID]) + 1)
	stub.logs[userID] = append(stub.logs[userID], entry)
	return nil
}

func (stub *stubProfileStore) EnergyLogs(_ context.Context, userID int64) ([]models.EnergyLog, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if _, ok := stub.profiles[userID]; !ok {
		return nil, store.ErrProfileNotFound
	}
	return append([]models.EnergyLog(nil), stub.logs[userID]...), nil
}

func (stub *stubProfileStore) SetNotificationsEnabled(_ context.Context, userID int64, enabled bool) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	if stub.setErr != nil {
		return stub.setErr
	}
	profile, ok := stub.profiles[userID]
	if !ok {
		return store.ErrProfileNotFound
	}
	profile.NotificationsEnabled = enabled
	stub.profiles[userID] = profile
	return nil
}

func (stub *stubProfileStore) ListNotificationSubscribers(context.Context) ([]int64, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	ids := make([]int64, 0)
	for userID, profile := range stub.profiles {
		if profile.NotificationsEnabled {
			ids = append(ids, userID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (stub *stubProfileStore) remove(userID int64) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	delete(stub.profiles, userID)
}

func mustMessages(t *testing.T) *i18n.Manager {
	t.Helper()

	manager, err := i18n.NewManager(i18n.LangRU)
	if err != nil {
		t.Fatalf("load messages: %v", err)
	}
	return manager
}

func mustParseDay(t *testing.T, raw string) time.Time {
	t.Helper()

	parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		t.Fatalf("parse day %q: %v", raw, err)
	}
	return parsed
}

func testProfile(userID int64, lastPeriod time.Time, periodDuration int, cycleLength int) models.UserProfile {
	return models.UserProfile{
		UserID:         userID,
		Name:           "Анна",
		Age:            27,
		LastPeriodDate: lastPeriod,
		PeriodDuration: periodDuration,
		CycleLength:    cycleLength,
		OvulationDay:   OvulationDay(cycleLength),
		Language:       i18n.LangRU,
	}
}

var errStubFailure = errors.New("stub failure")
