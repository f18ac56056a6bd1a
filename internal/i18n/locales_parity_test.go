package i18n

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"testing"
)

var formatVerbPattern = regexp.MustCompile(`%[-+# 0-9.]*[a-zA-Z]`)

func TestLocaleKeysParity(t *testing.T) {
	en := mustLoadLocaleMessages(t, LangEN)
	ru := mustLoadLocaleMessages(t, LangRU)

	missingInRU := missingKeys(en, ru)
	missingInEN := missingKeys(ru, en)

	if len(missingInRU) > 0 {
		t.Errorf("keys missing in ru locale: %s", strings.Join(missingInRU, ", "))
	}
	if len(missingInEN) > 0 {
		t.Errorf("keys missing in en locale: %s", strings.Join(missingInEN, ", "))
	}
}

func TestLocaleFormatVerbsParity(t *testing.T) {
	en := mustLoadLocaleMessages(t, LangEN)
	ru := mustLoadLocaleMessages(t, LangRU)

	for key, enValue := range en {
		ruValue, ok := ru[key]
		if !ok {
			continue
		}
		enVerbs := strings.Join(formatVerbPattern.FindAllString(enValue, -1), " ")
		ruVerbs := strings.Join(formatVerbPattern.FindAllString(ruValue, -1), " ")
		if enVerbs != ruVerbs {
			t.Errorf("key %q: en verbs %q, ru verbs %q", key, enVerbs, ruVerbs)
		}
	}
}

func mustLoadLocaleMessages(t *testing.T, language string) map[string]string {
	t.Helper()

	content, err := embeddedLocales.ReadFile("locales/" + language + ".json")
	if err != nil {
		t.Fatalf("read locale %q: %v", language, err)
	}

	messages := map[string]string{}
	if err := json.Unmarshal(content, &messages); err != nil {
		t.Fatalf("parse locale %q: %v", language, err)
	}
	if len(messages) == 0 {
		t.Fatalf("locale %q is empty", language)
	}

	return messages
}

func missingKeys(source map[string]string, target map[string]string) []string {
	missing := make([]string, 0)
	for key := range source {
		if _, ok := target[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
