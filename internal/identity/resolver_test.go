package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveReturnsStoredTokenUnchanged(t *testing.T) {
	for _, token := range []string{"abc", "550e8400-e29b-41d4-a716-446655440000", "x"} {
		got, isNew := Resolve(token)
		if got != token {
			t.Fatalf("expected stored token %q back, got %q", token, got)
		}
		if isNew {
			t.Fatalf("stored token %q must not be treated as new", token)
		}
	}
}

func TestResolveMintsWhenStorageEmpty(t *testing.T) {
	first, isNew := Resolve("")
	if !isNew {
		t.Fatal("empty storage must mint a new identity")
	}
	if first == "" {
		t.Fatal("minted identity must not be empty")
	}

	second, _ := Resolve("   ")
	if second == first {
		t.Fatal("two mints must not collide")
	}
}

func TestStoreRoundTripsIdentityAcrossRequests(t *testing.T) {
	store := NewStore("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess := store.Begin(req)
	if !sess.IsNew {
		t.Fatal("first contact must mint a new identity")
	}

	rec := httptest.NewRecorder()
	if err := store.Commit(rec, req, sess); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("commit must set the identity cookie")
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	again := store.Begin(next)
	if again.IsNew {
		t.Fatal("identity must survive the round trip")
	}
	if again.Identity != sess.Identity {
		t.Fatalf("identity changed across requests: %q vs %q", again.Identity, sess.Identity)
	}
}

func TestStorePersistsPremiumFlag(t *testing.T) {
	store := NewStore("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess := store.Begin(req)
	sess.Premium = true

	rec := httptest.NewRecorder()
	if err := store.Commit(rec, req, sess); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	if got := store.Begin(next); !got.Premium {
		t.Fatal("premium flag must persist across requests")
	}
}

func TestStoreTreatsTamperedCookieAsFirstVisit(t *testing.T) {
	store := NewStore("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "petos", Value: "garbage"})

	sess := store.Begin(req)
	if !sess.IsNew {
		t.Fatal("an unreadable cookie must mint a fresh identity")
	}
	if sess.Premium {
		t.Fatal("an unreadable cookie must not grant premium")
	}
}
