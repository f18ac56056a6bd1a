package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/ovumcy-bot/internal/api"
	"github.com/terraincognita07/ovumcy-bot/internal/db"
	"github.com/terraincognita07/ovumcy-bot/internal/i18n"
	"github.com/terraincognita07/ovumcy-bot/internal/models"
	"github.com/terraincognita07/ovumcy-bot/internal/security"
	"github.com/terraincognita07/ovumcy-bot/internal/services"
	"github.com/terraincognita07/ovumcy-bot/internal/store"
)

type noopScheduler struct{}

func (noopScheduler) Arm(string, time.Duration, time.Duration, func()) {}
func (noopScheduler) Cancel(string) bool                               { return false }

type noopSender struct{}

func (noopSender) Send(context.Context, int64, string) error { return nil }

type emptyHistory struct{}

func (emptyHistory) ListByUser(context.Context, int64, int) ([]models.NotificationDelivery, error) {
	return nil, nil
}

func openTestStore(t *testing.T) *store.ProfileStore {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "main-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	repos := db.NewRepositories(database)
	return store.NewProfileStore(repos.Profiles, repos.EnergyLogs)
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		args        []string
		wantCommand string
		wantArgs    int
		wantErr     bool
	}{
		{name: "default", args: nil, wantCommand: "serve"},
		{name: "serve", args: []string{"serve"}, wantCommand: "serve"},
		{name: "issue token", args: []string{"issue-token", "42"}, wantCommand: "issue-token", wantArgs: 1},
		{name: "issue token without id", args: []string{"issue-token"}, wantErr: true},
		{name: "serve with extra", args: []string{"serve", "now"}, wantErr: true},
		{name: "unknown", args: []string{"reset-password"}, wantErr: true},
	}

	for _, testCase := range tests {
		command, args, err := parseCommand(testCase.args)
		if testCase.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", testCase.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", testCase.name, err)
		}
		if command != testCase.wantCommand || len(args) != testCase.wantArgs {
			t.Fatalf("%s: got %q %v", testCase.name, command, args)
		}
	}
}

func TestNewAppServesHealthAndRequestID(t *testing.T) {
	t.Parallel()

	profiles := openTestStore(t)
	messages, err := i18n.NewManager(i18n.LangRU)
	if err != nil {
		t.Fatalf("load messages: %v", err)
	}
	tokens, err := security.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}

	handler, err := api.NewHandler(api.Dependencies{
		Profiles:      services.NewProfileService(profiles, messages),
		Energy:        services.NewEnergyService(profiles),
		Notifications: services.NewNotificationService(profiles, noopScheduler{}, noopSender{}, nil, messages, services.NotificationOptions{}),
		Deliveries:    emptyHistory{},
		Tokens:        tokens,
	})
	if err != nil {
		t.Fatalf("NewHandler() unexpected error: %v", err)
	}

	app := newApp(handler)
	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
	if response.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
	payload := map[string]string{}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode health payload: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", payload)
	}

	response, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/status", nil), -1)
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", response.StatusCode)
	}
}

func TestMenuKeyboardUsesRecipientLanguage(t *testing.T) {
	t.Parallel()

	profiles := openTestStore(t)
	messages, err := i18n.NewManager(i18n.LangRU)
	if err != nil {
		t.Fatalf("load messages: %v", err)
	}

	name := "Anna"
	age := 30
	lastPeriod := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	duration := 5
	cycleLength := 28
	language := "en"
	if _, err := profiles.CreateOrUpdate(context.Background(), 8, store.ProfileFields{
		Name:           &name,
		Age:            &age,
		LastPeriodDate: &lastPeriod,
		PeriodDuration: &duration,
		CycleLength:    &cycleLength,
		Language:       &language,
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	keyboardFor := menuKeyboardFor(profiles, messages)

	english := keyboardFor(8)
	if got := english.Keyboard[0][0].Text; got != "📊 My current phase" {
		t.Fatalf("expected english menu, got %q", got)
	}
	fallback := keyboardFor(9)
	if got := fallback.Keyboard[0][0].Text; got != "📊 Моя текущая фаза" {
		t.Fatalf("expected default language menu, got %q", got)
	}
	if len(english.Keyboard) != 3 || len(english.Keyboard[2]) != 2 {
		t.Fatalf("expected 3x2 menu, got %v", english.Keyboard)
	}
}
