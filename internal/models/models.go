package models

import "time"

// Language selects the caption prompt and the compositor's type metrics.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"
	LanguageThai    Language = "th"
)

// ParseLanguage maps a form value to a Language, defaulting to English.
func ParseLanguage(raw string) Language {
	switch Language(raw) {
	case LanguageChinese:
		return LanguageChinese
	case LanguageThai:
		return LanguageThai
	default:
		return LanguageEnglish
	}
}

// UsageLogEntry is one append-only record of a successful generation.
// The count of entries per identity is the only quota signal.
type UsageLogEntry struct {
	ID        int64
	Identity  string
	ImageURL  string
	Caption   string
	GroupKey  string
	CreatedAt time.Time
}

// GroupKey derives the timestamp grouping key stored with each entry.
func GroupKey(t time.Time) string {
	return t.UTC().Format("20060102")
}

type AccessCode struct {
	ID        int64
	Code      string
	MaxUses   int
	Uses      int
	CreatedAt time.Time
}
