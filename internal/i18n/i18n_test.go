package i18n

import (
	"testing"
	"testing/fstest"
)

func TestNewManagerLoadsEmbeddedLocales(t *testing.T) {
	t.Parallel()

	manager, err := NewManager("EN-us")
	if err != nil {
		t.Fatalf("NewManager() unexpected error: %v", err)
	}
	if got := manager.DefaultLanguage(); got != LangEN {
		t.Fatalf("expected default language en, got %q", got)
	}
	if got := manager.SupportedLanguages(); len(got) != 2 || got[0] != LangEN || got[1] != LangRU {
		t.Fatalf("unexpected supported languages: %#v", got)
	}
}

func TestNewManagerFromFSRequiresBothLocales(t *testing.T) {
	t.Parallel()

	locales := fstest.MapFS{
		"ru.json": &fstest.MapFile{Data: []byte(`{"hello":"привет"}`)},
	}
	if _, err := NewManagerFromFS(LangRU, locales); err == nil {
		t.Fatal("expected error when en locale is missing")
	}
}

func TestTranslateFallsBackToDefaultThenKey(t *testing.T) {
	t.Parallel()

	locales := fstest.MapFS{
		"ru.json": &fstest.MapFile{Data: []byte(`{"hello":"привет","only.ru":"только"}`)},
		"en.json": &fstest.MapFile{Data: []byte(`{"hello":"hello","only.ru":" "}`)},
	}
	manager, err := NewManagerFromFS("", locales)
	if err != nil {
		t.Fatalf("NewManagerFromFS() unexpected error: %v", err)
	}

	tests := []struct {
		language string
		key      string
		want     string
	}{
		{language: "en", key: "hello", want: "hello"},
		{language: "ru", key: "hello", want: "привет"},
		{language: "de", key: "hello", want: "привет"},
		{language: "en", key: "only.ru", want: "только"},
		{language: "en", key: "missing", want: "missing"},
	}
	for _, tt := range tests {
		if got := manager.Translate(tt.language, tt.key); got != tt.want {
			t.Errorf("Translate(%q, %q) = %q, want %q", tt.language, tt.key, got, tt.want)
		}
	}
}

func TestPluralRules(t *testing.T) {
	t.Parallel()

	manager, err := NewManager(LangRU)
	if err != nil {
		t.Fatalf("NewManager() unexpected error: %v", err)
	}

	tests := []struct {
		language string
		count    int
		want     string
	}{
		{language: LangRU, count: 1, want: "день"},
		{language: LangRU, count: 2, want: "дня"},
		{language: LangRU, count: 5, want: "дней"},
		{language: LangRU, count: 11, want: "дней"},
		{language: LangRU, count: 12, want: "дней"},
		{language: LangRU, count: 21, want: "день"},
		{language: LangRU, count: 22, want: "дня"},
		{language: LangRU, count: 0, want: "дней"},
		{language: LangEN, count: 1, want: "day"},
		{language: LangEN, count: 2, want: "days"},
		{language: LangEN, count: 0, want: "days"},
	}
	for _, tt := range tests {
		if got := manager.Plural(tt.language, "days", tt.count); got != tt.want {
			t.Errorf("Plural(%q, days, %d) = %q, want %q", tt.language, tt.count, got, tt.want)
		}
	}
}

func TestMatchesAnyLanguage(t *testing.T) {
	t.Parallel()

	manager, err := NewManager(LangRU)
	if err != nil {
		t.Fatalf("NewManager() unexpected error: %v", err)
	}

	if !manager.Matches("📊 Моя текущая фаза", "menu.phase") {
		t.Fatal("expected russian menu label to match")
	}
	if !manager.Matches(" 📊 My current phase ", "menu.phase") {
		t.Fatal("expected english menu label to match after trimming")
	}
	if manager.Matches("📊 My current phase", "menu.stats") {
		t.Fatal("did not expect label to match another key")
	}
}
