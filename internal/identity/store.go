package identity

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "petos"
	keyIdentity = "identity_token"
	keyPremium  = "premium_flag"

	// Multi-year expiry: the token is the only thing correlating a client's
	// usage across visits, so it has to outlive ordinary session cookies.
	cookieMaxAge = 5 * 365 * 24 * 60 * 60
)

// Session is the per-interaction view of the client-held state. It is
// resolved once at the top of a request and threaded through the whole
// cycle, so a premature re-read of the not-yet-committed cookie can never
// mint a second identity mid-interaction.
type Session struct {
	Identity string
	IsNew    bool
	Premium  bool

	raw *sessions.Session
}

// Store reads and writes the two client-persisted entries (identity token
// and premium flag) through a signed cookie.
type Store struct {
	cookies *sessions.CookieStore
}

func NewStore(secret string) *Store {
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cookies: cs}
}

// Begin resolves the client identity for this interaction, minting one when
// the cookie is absent or unreadable. A tampered cookie decodes as empty and
// is treated the same as a first visit.
func (s *Store) Begin(r *http.Request) Session {
	raw, _ := s.cookies.Get(r, sessionName)

	stored, _ := raw.Values[keyIdentity].(string)
	premium, _ := raw.Values[keyPremium].(bool)

	id, isNew := Resolve(stored)
	return Session{
		Identity: id,
		IsNew:    isNew,
		Premium:  premium,
		raw:      raw,
	}
}

// Commit writes the session back to the response. It must run before the
// response body so the Set-Cookie header goes out with the same response
// that used the identity.
func (s *Store) Commit(w http.ResponseWriter, r *http.Request, sess Session) error {
	sess.raw.Values[keyIdentity] = sess.Identity
	sess.raw.Values[keyPremium] = sess.Premium
	if err := sess.raw.Save(r, w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}
