package services

import (
	"fmt"

	"github.com/terraincognita07/ovumcy-bot/internal/models"
)

// MessageCatalog resolves localized texts. It is satisfied by *i18n.Manager.
type MessageCatalog interface {
	Translate(language string, key string) string
	Plural(language string, key string, count int) string
	NormalizeLanguage(raw string) string
}

// PhaseNameKey is the locale key of the full phase name.
func PhaseNameKey(phase models.Phase) string {
	return fmt.Sprintf("phase.%s", phase)
}

func phaseInlineKey(phase models.Phase) string {
	return fmt.Sprintf("phase.%s.inline", phase)
}

func recommendationKey(phase models.Phase, topic string) string {
	return fmt.Sprintf("recommendation.%s.%s", phase, topic)
}
