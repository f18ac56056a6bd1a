package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/ovumcy-bot/internal/models"
)

const notificationPeriodWarningDays = 2

// ComposeDailyNotification renders the morning message for profile in the profile language.
func ComposeDailyNotification(messages MessageCatalog, profile models.UserProfile, now time.Time) string {
	language := profile.Language
	day := CurrentCycleDay(now, profile)
	phase := ClassifyPhase(day, profile)
	recommendations := BuildRecommendations(messages, language, phase, day)

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = messages.Translate(language, "notification.default_name")
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(messages.Translate(language, "notification.greeting"), name))
	builder.WriteString("\n\n")
	builder.WriteString(fmt.Sprintf(messages.Translate(language, "notification.day_phase"), day, messages.Translate(language, phaseInlineKey(phase))))
	builder.WriteString("\n\n")
	builder.WriteString(messages.Translate(language, "notification.recommendations_title"))
	builder.WriteString("\n\n")
	builder.WriteString(FormatRecommendations(messages, language, recommendations))

	if addendum := notificationAddendum(messages, profile, phase, day); addendum != "" {
		builder.WriteString("\n\n")
		builder.WriteString(addendum)
	}

	builder.WriteString("\n\n")
	builder.WriteString(messages.Translate(language, "notification.energy_reminder"))
	return builder.String()
}

// FormatRecommendations renders the three recommendation sections of a bundle.
func FormatRecommendations(messages MessageCatalog, language string, bundle RecommendationBundle) string {
	sections := []string{
		messages.Translate(language, "recommendation.label.nutrition") + "\n" + bundle.Nutrition,
		messages.Translate(language, "recommendation.label.exercise") + "\n" + bundle.Exercise,
		messages.Translate(language, "recommendation.label.mental") + "\n" + bundle.Mental,
	}
	return strings.Join(sections, "\n\n")
}

func notificationAddendum(messages MessageCatalog, profile models.UserProfile, phase models.Phase, day int) string {
	language := profile.Language
	switch {
	case phase == models.PhaseMenstrual && day == 1:
		return messages.Translate(language, "notification.first_day")
	case phase == models.PhaseOvulatory && day == profileOvulationDay(profile):
		return messages.Translate(language, "notification.ovulation_day")
	case phase == models.PhaseLuteal && profile.CycleLength-day <= notificationPeriodWarningDays:
		days := DaysToNextPeriod(day, profile.CycleLength)
		return fmt.Sprintf(messages.Translate(language, "notification.period_soon"), days, messages.Plural(language, "days", days))
	default:
		return ""
	}
}
