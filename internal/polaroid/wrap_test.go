package polaroid

import (
	"reflect"
	"testing"
)

func TestWrapEmptyText(t *testing.T) {
	if got := Wrap("", 22); got != nil {
		t.Fatalf("empty text must produce no lines, got %v", got)
	}
	if got := Wrap("   ", 22); got != nil {
		t.Fatalf("whitespace-only text must produce no lines, got %v", got)
	}
}

func TestWrapByWords(t *testing.T) {
	got := Wrap("the snack has been located and it is mine", 20)
	want := []string{"the snack has been", "located and it is", "mine"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected wrap: %v", got)
	}
	for _, line := range got {
		if len([]rune(line)) > 20 {
			t.Fatalf("line %q exceeds wrap width", line)
		}
	}
}

func TestWrapBreaksUnspacedRuns(t *testing.T) {
	// Chinese captions arrive as one unspaced run and must still wrap.
	text := "這隻貓覺得你拍照技術很差但是罐頭可以原諒一切所以勉強配合"
	got := Wrap(text, 22)
	if len(got) < 2 {
		t.Fatalf("expected the run to break into multiple lines, got %v", got)
	}
	for _, line := range got {
		if n := len([]rune(line)); n > 22 {
			t.Fatalf("line of %d runes exceeds wrap width 22", n)
		}
	}
}

func TestWrapKeepsShortCaptionOnOneLine(t *testing.T) {
	got := Wrap("no thoughts only zoomies", 30)
	if len(got) != 1 || got[0] != "no thoughts only zoomies" {
		t.Fatalf("short caption should stay on one line, got %v", got)
	}
}
