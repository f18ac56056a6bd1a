package bot

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/terraincognita07/ovumcy-bot/internal/models"
	"github.com/terraincognita07/ovumcy-bot/internal/services"
	"github.com/terraincognita07/ovumcy-bot/internal/telegram"
)

var energyLabels = [models.MaxEnergyLevel]string{
	"🔥 1",
	"🔥🔥 2",
	"🔥🔥🔥 3",
	"🔥🔥🔥🔥 4",
	"🔥🔥🔥🔥🔥 5",
}

func energyLabel(level int) string {
	if level < models.MinEnergyLevel || level > models.MaxEnergyLevel {
		return strconv.Itoa(level)
	}
	return energyLabels[level-1]
}

// parseEnergyLevel accepts an energy keyboard label or a bare digit.
func parseEnergyLevel(raw string) (int, bool) {
	trimmed := strings.TrimSpace(raw)
	for index, label := range energyLabels {
		if trimmed == label {
			return index + 1, true
		}
	}
	level, err := strconv.Atoi(trimmed)
	if err != nil || level < models.MinEnergyLevel || level > models.MaxEnergyLevel {
		return 0, false
	}
	return level, true
}

func mainMenuKeyboard(messages Catalog, language string) *telegram.ReplyKeyboard {
	label := func(key string) string { return messages.Translate(language, key) }
	return telegram.KeyboardRows(
		[]string{label("menu.phase"), label("menu.energy")},
		[]string{label("menu.recommendations"), label("menu.stats")},
		[]string{label("menu.settings"), label("menu.notifications")},
	)
}

// MainMenuKeyboard is attached to scheduled notifications so the menu stays available.
func MainMenuKeyboard(messages Catalog, language string) *telegram.ReplyKeyboard {
	return mainMenuKeyboard(messages, language)
}

func energyKeyboard(messages Catalog, language string) *telegram.ReplyKeyboard {
	return telegram.KeyboardRows(
		energyLabels[:],
		[]string{messages.Translate(language, "energy.back")},
	)
}

func notificationChoiceKeyboard(messages Catalog, language string) *telegram.ReplyKeyboard {
	keyboard := telegram.KeyboardRows(
		[]string{messages.Translate(language, "bot.notifications_yes")},
		[]string{messages.Translate(language, "bot.notifications_no")},
	)
	keyboard.OneTimeKeyboard = true
	return keyboard
}

func daysText(messages Catalog, language string, count int) string {
	return messages.Plural(language, "days", count)
}

func renderRegistrationSummary(messages Catalog, profile models.UserProfile) string {
	language := profile.Language
	nextPeriod := profile.LastPeriodDate.AddDate(0, 0, profile.CycleLength)
	return fmt.Sprintf(messages.Translate(language, "bot.registration_summary"),
		profile.Name,
		profile.Age,
		profile.LastPeriodDate.Format(dateLayout),
		profile.PeriodDuration, daysText(messages, language, profile.PeriodDuration),
		profile.CycleLength, daysText(messages, language, profile.CycleLength),
		services.OvulationDay(profile.CycleLength),
		nextPeriod.Format(dateLayout),
	)
}

func renderStatus(messages Catalog, language string, status services.CycleStatus) string {
	translate := func(key string) string { return messages.Translate(language, key) }

	lines := []string{
		translate("status.title"),
		"",
		fmt.Sprintf(translate("status.day"), status.CycleDay, status.CycleLength),
		fmt.Sprintf(translate("status.phase"), translate(services.PhaseNameKey(status.Phase))),
		translate("status.windows_title"),
	}
	for _, phase := range models.Phases() {
		window := status.Windows.For(phase)
		value := translate("status.window_empty")
		if !window.Empty() {
			value = fmt.Sprintf(translate("status.window_range"), window.From, window.To)
		}
		lines = append(lines, fmt.Sprintf(translate("status.window"), translate("phase."+string(phase)+".short"), value))
	}
	lines = append(lines, "", fmt.Sprintf(translate("status.next_period"), status.DaysToNextPeriod, daysText(messages, language, status.DaysToNextPeriod)))

	if status.PeriodSoon {
		lines = append(lines, "", fmt.Sprintf(translate("status.period_warning"), status.DaysToNextPeriod, daysText(messages, language, status.DaysToNextPeriod)))
	}
	if status.OvulationSoon && status.DaysToOvulation != nil {
		days := *status.DaysToOvulation
		lines = append(lines, "", fmt.Sprintf(translate("status.ovulation_soon"), days, daysText(messages, language, days)))
	}
	return strings.Join(lines, "\n")
}

func renderRecommendations(messages Catalog, language string, bundle services.RecommendationBundle) string {
	title := fmt.Sprintf(messages.Translate(language, "recommendations.title"),
		messages.Translate(language, services.PhaseNameKey(bundle.Phase)),
		bundle.CycleDay,
	)
	return title + "\n\n" + services.FormatRecommendations(messages, language, bundle)
}

func renderStatistics(messages Catalog, language string, stats services.EnergyStatistics) string {
	translate := func(key string) string { return messages.Translate(language, key) }

	lines := []string{
		translate("stats.title"),
		"",
		fmt.Sprintf(translate("stats.count"), stats.Count),
		fmt.Sprintf(translate("stats.average"), stats.Average),
		"",
		translate("stats.by_phase"),
	}
	for _, phase := range stats.Phases {
		name := translate(services.PhaseNameKey(phase.Phase))
		if phase.Count == 0 {
			lines = append(lines, fmt.Sprintf(translate("stats.phase_no_data"), name))
			continue
		}
		flames := strings.Repeat("🔥", int(math.Round(phase.Average)))
		lines = append(lines, fmt.Sprintf(translate("stats.phase_value"), name, flames, phase.Average))
	}
	return strings.Join(lines, "\n")
}
