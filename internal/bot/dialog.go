// Package bot drives the Telegram conversation: registration, the main menu and settings.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/ovumcy-bot/internal/models"
	"github.com/terraincognita07/ovumcy-bot/internal/services"
	"github.com/terraincognita07/ovumcy-bot/internal/store"
	"github.com/terraincognita07/ovumcy-bot/internal/telegram"
)

const (
	maxNameLength = 64
	dateLayout    = "02.01.2006"
)

var dateLayouts = []string{dateLayout, "2.1.2006"}

type ProfileService interface {
	Register(ctx context.Context, input services.RegistrationInput, now time.Time) (models.UserProfile, error)
	UpdateCycleSettings(ctx context.Context, userID int64, input services.CycleSettingsInput, now time.Time) (models.UserProfile, error)
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
	Toggle(ctx context.Context, userID int64) (bool, error)
}

type TokenIssuer interface {
	Issue(userID int64) (string, time.Time, error)
}

// Catalog resolves localized texts and recognises keyboard labels in any language.
type Catalog interface {
	services.MessageCatalog
	Matches(text string, key string) bool
}

// Reply is the answer to one input. A nil Keyboard leaves the current keyboard in place.
type Reply struct {
	Text     string
	Keyboard *telegram.ReplyKeyboard
}

type registrationDraft struct {
	name           string
	age            int
	lastPeriodDate time.Time
	periodDuration int
}

type session struct {
	mu       sync.Mutex
	refs     int
	state    State
	language string
	draft    registrationDraft
}

type Options struct {
	Now func() time.Time
	// NotifyAt is shown to users when daily notifications are switched on.
	NotifyAt string
}

type Dialog struct {
	profiles      ProfileService
	energy        EnergyService
	notifications NotificationService
	tokens        TokenIssuer
	messages      Catalog
	now           func() time.Time
	notifyAt      string

	mu       sync.Mutex
	sessions map[int64]*session
}

func NewDialog(profiles ProfileService, energy EnergyService, notifications NotificationService, tokens TokenIssuer, messages Catalog, options Options) *Dialog {
	if options.Now == nil {
		options.Now = time.Now
	}
	if strings.TrimSpace(options.NotifyAt) == "" {
		options.NotifyAt = "09:00"
	}

	return &Dialog{
		profiles:      profiles,
		energy:        energy,
		notifications: notifications,
		tokens:        tokens,
		messages:      messages,
		now:           options.Now,
		notifyAt:      options.NotifyAt,
		sessions:      make(map[int64]*session),
	}
}

// Handle dispatches input through the transition table for the user's current state.
// Sessions that end in StateIdle are dropped once no other input for the user is pending.
func (dialog *Dialog) Handle(ctx context.Context, input Input) Reply {
	current := dialog.acquire(input.UserID)
	defer dialog.release(input.UserID, current)
	current.mu.Lock()
	defer current.mu.Unlock()

	if current.language == "" {
		current.language = dialog.resolveLanguage(ctx, input)
	}

	reply, next := transitions[current.state][input.Kind](dialog, ctx, current, input)
	current.state = next
	return reply
}

// State returns the conversation state of userID, StateIdle for unknown users.
func (dialog *Dialog) State(userID int64) State {
	dialog.mu.Lock()
	current, ok := dialog.sessions[userID]
	dialog.mu.Unlock()
	if !ok {
		return StateIdle
	}

	current.mu.Lock()
	defer current.mu.Unlock()
	return current.state
}

func (dialog *Dialog) acquire(userID int64) *session {
	dialog.mu.Lock()
	defer dialog.mu.Unlock()

	current, ok := dialog.sessions[userID]
	if !ok {
		current = &session{state: StateIdle}
		dialog.sessions[userID] = current
	}
	current.refs++
	return current
}

func (dialog *Dialog) release(userID int64, current *session) {
	dialog.mu.Lock()
	defer dialog.mu.Unlock()

	current.refs--
	if current.refs == 0 && current.state == StateIdle {
		delete(dialog.sessions, userID)
	}
}

func (dialog *Dialog) sessionCount() int {
	dialog.mu.Lock()
	defer dialog.mu.Unlock()
	return len(dialog.sessions)
}

func (dialog *Dialog) resolveLanguage(ctx context.Context, input Input) string {
	profile, err := dialog.profiles.Profile(ctx, input.UserID)
	if err == nil && profile.Language != "" {
		return profile.Language
	}
	return dialog.messages.NormalizeLanguage(input.LanguageCode)
}

func (dialog *Dialog) text(current *session, key string) string {
	return dialog.messages.Translate(current.language, key)
}

func (dialog *Dialog) textf(current *session, key string, args ...any) string {
	return fmt.Sprintf(dialog.text(current, key), args...)
}

func (dialog *Dialog) startRegistration(_ context.Context, current *session, _ Input) (Reply, State) {
	current.draft = registrationDraft{}
	return Reply{Text: dialog.text(current, "bot.welcome"), Keyboard: telegram.RemoveKeyboard()}, StateAwaitName
}

func (dialog *Dialog) cancel(_ context.Context, current *session, _ Input) (Reply, State) {
	current.draft = registrationDraft{}
	return Reply{Text: dialog.text(current, "bot.cancelled"), Keyboard: telegram.RemoveKeyboard()}, StateIdle
}

func (dialog *Dialog) unknownCommand(_ context.Context, current *session, _ Input) (Reply, State) {
	return Reply{Text: dialog.text(current, "bot.unknown_command")}, current.state
}

func (dialog *Dialog) beginEditLastPeriodDate(ctx context.Context, current *session, input Input) (Reply, State) {
	return dialog.beginEdit(ctx, current, input, "bot.ask_last_period", StateEditLastPeriodDate)
}

func (dialog *Dialog) beginEditPeriodDuration(ctx context.Context, current *session, input Input) (Reply, State) {
	return dialog.beginEdit(ctx, current, input, "bot.ask_period_duration", StateEditPeriodDuration)
}

func (dialog *Dialog) beginEditCycleLength(ctx context.Context, current *session, input Input) (Reply, State) {
	return dialog.beginEdit(ctx, current, input, "bot.ask_cycle_length", StateEditCycleLength)
}

func (dialog *Dialog) beginEdit(ctx context.Context, current *session, input Input, promptKey string, next State) (Reply, State) {
	if _, err := dialog.profiles.Profile(ctx, input.UserID); err != nil {
		return dialog.failure(current, input, err)
	}
	return Reply{Text: dialog.text(current, promptKey), Keyboard: telegram.RemoveKeyboard()}, next
}

func (dialog *Dialog) toggleNotifications(ctx context.Context, current *session, input Input) (Reply, State) {
	enabled, err := dialog.notifications.Toggle(ctx, input.UserID)
	if err != nil {
		return dialog.failure(current, input, err)
	}
	if enabled {
		return dialog.menuReply(current, dialog.textf(current, "bot.notifications_enabled", dialog.notifyAt)), StateMainMenu
	}
	return dialog.menuReply(current, dialog.text(current, "bot.notifications_disabled")), StateMainMenu
}

func (dialog *Dialog) issueToken(ctx context.Context, current *session, input Input) (Reply, State) {
	if dialog.tokens == nil {
		return dialog.unknownCommand(ctx, current, input)
	}
	if _, err := dialog.profiles.Profile(ctx, input.UserID); err != nil {
		return dialog.failure(current, input, err)
	}

	token, expiresAt, err := dialog.tokens.Issue(input.UserID)
	if err != nil {
		return dialog.failure(current, input, err)
	}
	return Reply{Text: dialog.textf(current, "token.issued", expiresAt.Format(dateLayout), token)}, current.state
}

func (dialog *Dialog) handleIdleText(ctx context.Context, current *session, input Input) (Reply, State) {
	if _, err := dialog.profiles.Profile(ctx, input.UserID); err != nil {
		return dialog.failure(current, input, err)
	}
	return dialog.handleMenuSelection(ctx, current, input)
}

func (dialog *Dialog) handleName(_ context.Context, current *session, input Input) (Reply, State) {
	name := strings.TrimSpace(input.Text)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return Reply{Text: dialog.text(current, "bot.name_required")}, current.state
	}
	current.draft.name = name
	return Reply{Text: dialog.textf(current, "bot.ask_age", name)}, StateAwaitAge
}

func (dialog *Dialog) handleAge(_ context.Context, current *session, input Input) (Reply, State) {
	age, err := strconv.Atoi(input.Text)
	if err != nil {
		return Reply{Text: dialog.text(current, "bot.age_not_number")}, current.state
	}
	if err := services.ValidateAge(age); err != nil {
		return Reply{Text: dialog.text(current, "bot.age_out_of_range")}, current.state
	}
	current.draft.age = age
	return Reply{Text: dialog.text(current, "bot.ask_last_period")}, StateAwaitLastPeriodDate
}

func (dialog *Dialog) handleLastPeriodDate(_ context.Context, current *session, input Input) (Reply, State) {
	date, reply, ok := dialog.parseLastPeriodDate(current, input.Text)
	if !ok {
		return reply, current.state
	}
	current.draft.lastPeriodDate = date
	return Reply{Text: dialog.text(current, "bot.ask_period_duration")}, StateAwaitPeriodDuration
}

func (dialog *Dialog) handlePeriodDuration(_ context.Context, current *session, input Input) (Reply, State) {
	duration, reply, ok := dialog.parsePeriodDuration(current, input.Text)
	if !ok {
		return reply, current.state
	}
	current.draft.periodDuration = duration
	return Reply{Text: dialog.text(current, "bot.ask_cycle_length")}, StateAwaitCycleLength
}

func (dialog *Dialog) handleCycleLength(ctx context.Context, current *session, input Input) (Reply, State) {
	cycleLength, reply, ok := dialog.parseCycleLength(current, input.Text)
	if !ok {
		return reply, current.state
	}

	profile, err := dialog.profiles.Register(ctx, services.RegistrationInput{
		UserID:         input.UserID,
		Name:           current.draft.name,
		Age:            current.draft.age,
		LastPeriodDate: current.draft.lastPeriodDate,
		PeriodDuration: current.draft.periodDuration,
		CycleLength:    cycleLength,
		Language:       current.language,
	}, dialog.now())
	if err != nil {
		return dialog.failure(current, input, err)
	}

	current.draft = registrationDraft{}
	current.language = profile.Language
	text := renderRegistrationSummary(dialog.messages, profile) + "\n\n" + dialog.text(current, "bot.ask_notifications")
	return Reply{Text: text, Keyboard: notificationChoiceKeyboard(dialog.messages, current.language)}, StateAwaitNotificationChoice
}

func (dialog *Dialog) handleNotificationChoice(ctx context.Context, current *session, input Input) (Reply, State) {
	if !dialog.messages.Matches(input.Text, "bot.notifications_yes") {
		return dialog.menuReply(current, dialog.text(current, "bot.notifications_later")), StateMainMenu
	}
	if err := dialog.notifications.SetNotifications(ctx, input.UserID, true); err != nil {
		return dialog.failure(current, input, err)
	}
	return dialog.menuReply(current, dialog.textf(current, "bot.notifications_enabled", dialog.notifyAt)), StateMainMenu
}

func (dialog *Dialog) handleMenuSelection(ctx context.Context, current *session, input Input) (Reply, State) {
	switch {
	case dialog.messages.Matches(input.Text, "menu.phase"):
		status, err := dialog.profiles.Status(ctx, input.UserID, dialog.now())
		if err != nil {
			return dialog.failure(current, input, err)
		}
		return dialog.menuReply(current, renderStatus(dialog.messages, current.language, status)), StateMainMenu
	case dialog.messages.Matches(input.Text, "menu.energy"):
		if _, err := dialog.profiles.Profile(ctx, input.UserID); err != nil {
			return dialog.failure(current, input, err)
		}
		return Reply{Text: dialog.text(current, "energy.ask"), Keyboard: energyKeyboard(dialog.messages, current.language)}, StateAwaitEnergyLevel
	case dialog.messages.Matches(input.Text, "menu.recommendations"):
		bundle, err := dialog.profiles.Recommendations(ctx, input.UserID, dialog.now())
		if err != nil {
			return dialog.failure(current, input, err)
		}
		return dialog.menuReply(current, renderRecommendations(dialog.messages, current.language, bundle)), StateMainMenu
	case dialog.messages.Matches(input.Text, "menu.stats"):
		stats, err := dialog.energy.Statistics(ctx, input.UserID)
		if errors.Is(err, services.ErrNoEnergyData) {
			return dialog.menuReply(current, dialog.text(current, "stats.no_data")), StateMainMenu
		}
		if err != nil {
			return dialog.failure(current, input, err)
		}
		return dialog.menuReply(current, renderStatistics(dialog.messages, current.language, stats)), StateMainMenu
	case dialog.messages.Matches(input.Text, "menu.settings"):
		if _, err := dialog.profiles.Profile(ctx, input.UserID); err != nil {
			return dialog.failure(current, input, err)
		}
		return dialog.menuReply(current, dialog.text(current, "settings.help")), StateMainMenu
	case dialog.messages.Matches(input.Text, "menu.notifications"):
		return dialog.toggleNotifications(ctx, current, input)
	default:
		return dialog.menuReply(current, dialog.text(current, "bot.choose_menu")), StateMainMenu
	}
}

func (dialog *Dialog) handleEnergyLevel(ctx context.Context, current *session, input Input) (Reply, State) {
	if dialog.messages.Matches(input.Text, "energy.back") {
		return dialog.menuReply(current, dialog.text(current, "energy.back_done")), StateMainMenu
	}

	level, ok := parseEnergyLevel(input.Text)
	if !ok {
		return Reply{Text: dialog.text(current, "energy.invalid"), Keyboard: energyKeyboard(dialog.messages, current.language)}, current.state
	}

	result, err := dialog.energy.LogEnergy(ctx, input.UserID, level, dialog.now())
	if err != nil {
		return dialog.failure(current, input, err)
	}
	text := dialog.textf(current, "energy.logged", energyLabel(level), dialog.text(current, services.PhaseNameKey(result.Phase)))
	return dialog.menuReply(current, text), StateMainMenu
}

func (dialog *Dialog) handleEditLastPeriodDate(ctx context.Context, current *session, input Input) (Reply, State) {
	date, reply, ok := dialog.parseLastPeriodDate(current, input.Text)
	if !ok {
		return reply, current.state
	}
	return dialog.updateSettings(ctx, current, input, services.CycleSettingsInput{LastPeriodDate: &date})
}

func (dialog *Dialog) handleEditPeriodDuration(ctx context.Context, current *session, input Input) (Reply, State) {
	duration, reply, ok := dialog.parsePeriodDuration(current, input.Text)
	if !ok {
		return reply, current.state
	}
	return dialog.updateSettings(ctx, current, input, services.CycleSettingsInput{PeriodDuration: &duration})
}

func (dialog *Dialog) handleEditCycleLength(ctx context.Context, current *session, input Input) (Reply, State) {
	cycleLength, reply, ok := dialog.parseCycleLength(current, input.Text)
	if !ok {
		return reply, current.state
	}
	return dialog.updateSettings(ctx, current, input, services.CycleSettingsInput{CycleLength: &cycleLength})
}

func (dialog *Dialog) updateSettings(ctx context.Context, current *session, input Input, settings services.CycleSettingsInput) (Reply, State) {
	now := dialog.now()
	profile, err := dialog.profiles.UpdateCycleSettings(ctx, input.UserID, settings, now)
	if err != nil {
		return dialog.failure(current, input, err)
	}

	status := services.BuildCycleStatus(profile, now)
	text := dialog.text(current, "settings.updated") + "\n\n" + renderStatus(dialog.messages, current.language, status)
	return dialog.menuReply(current, text), StateMainMenu
}

func (dialog *Dialog) parseLastPeriodDate(current *session, raw string) (time.Time, Reply, bool) {
	now := dialog.now()
	date, ok := parseDate(raw, now.Location())
	if !ok {
		return time.Time{}, Reply{Text: dialog.text(current, "bot.date_format")}, false
	}
	if date.After(services.DateAtLocation(now, now.Location())) {
		return time.Time{}, Reply{Text: dialog.text(current, "bot.date_in_future")}, false
	}
	return date, Reply{}, true
}

func (dialog *Dialog) parsePeriodDuration(current *session, raw string) (int, Reply, bool) {
	duration, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, Reply{Text: dialog.text(current, "bot.duration_not_number")}, false
	}
	if err := services.ValidatePeriodDuration(duration); err != nil {
		return 0, Reply{Text: dialog.text(current, "bot.duration_out_of_range")}, false
	}
	return duration, Reply{}, true
}

func (dialog *Dialog) parseCycleLength(current *session, raw string) (int, Reply, bool) {
	cycleLength, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, Reply{Text: dialog.text(current, "bot.cycle_not_number")}, false
	}
	if err := services.ValidateCycleLength(cycleLength); err != nil {
		return 0, Reply{Text: dialog.text(current, "bot.cycle_out_of_range")}, false
	}
	return cycleLength, Reply{}, true
}

func (dialog *Dialog) menuReply(current *session, text string) Reply {
	return Reply{Text: text, Keyboard: mainMenuKeyboard(dialog.messages, current.language)}
}

// failure turns a service error into a user facing reply. Validation errors re-prompt the
// offending step, a missing profile points the user to /start and anything else is logged.
func (dialog *Dialog) failure(current *session, input Input, err error) (Reply, State) {
	if errors.Is(err, store.ErrProfileNotFound) {
		next := StateIdle
		if current.state.registering() {
			next = current.state
		}
		return Reply{Text: dialog.text(current, "bot.register_first"), Keyboard: telegram.RemoveKeyboard()}, next
	}

	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		if step, ok := validationSteps[validationErr.Err]; ok {
			next := current.state
			if current.state == StateAwaitCycleLength && step.registration != StateIdle {
				next = step.registration
			}
			return Reply{Text: dialog.text(current, step.key)}, next
		}
	}

	log.Printf("bot: user %d in state %s: %v", input.UserID, current.state, err)
	return Reply{Text: dialog.text(current, "bot.error")}, current.state
}

type validationStep struct {
	key          string
	registration State
}

// validationSteps maps each validation failure to its message and the registration step that
// asks for the field again.
var validationSteps = map[error]validationStep{
	services.ErrNameRequired:             {key: "bot.name_required", registration: StateAwaitName},
	services.ErrAgeOutOfRange:            {key: "bot.age_out_of_range", registration: StateAwaitAge},
	services.ErrLastPeriodDateRequired:   {key: "bot.date_format", registration: StateAwaitLastPeriodDate},
	services.ErrLastPeriodInFuture:       {key: "bot.date_in_future", registration: StateAwaitLastPeriodDate},
	services.ErrPeriodDurationOutOfRange: {key: "bot.duration_out_of_range", registration: StateAwaitPeriodDuration},
	services.ErrCycleLengthOutOfRange:    {key: "bot.cycle_out_of_range", registration: StateAwaitCycleLength},
	services.ErrEnergyLevelOutOfRange:    {key: "energy.invalid"},
	services.ErrUserIDRequired:           {key: "bot.error"},
}

func parseDate(raw string, location *time.Location) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, location); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
