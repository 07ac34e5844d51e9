package models

import (
	"testing"
	"time"
)

func TestParseLanguageDefaultsToEnglish(t *testing.T) {
	cases := map[string]Language{
		"en":      LanguageEnglish,
		"zh":      LanguageChinese,
		"th":      LanguageThai,
		"":        LanguageEnglish,
		"klingon": LanguageEnglish,
	}
	for raw, want := range cases {
		if got := ParseLanguage(raw); got != want {
			t.Fatalf("ParseLanguage(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestGroupKeyIsUTCDate(t *testing.T) {
	// 23:30 in UTC+8 is still the same UTC day key as 15:30 UTC.
	loc := time.FixedZone("UTC+8", 8*60*60)
	local := time.Date(2026, time.May, 1, 23, 30, 0, 0, loc)
	if got := GroupKey(local); got != "20260501" {
		t.Fatalf("GroupKey = %q, want 20260501", got)
	}
}
