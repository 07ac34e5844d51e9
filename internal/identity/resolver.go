package identity

import (
	"strings"

	"github.com/google/uuid"
)

// Resolve returns the stored token unchanged when present, otherwise mints a
// fresh 128-bit random identity. The caller must persist a minted identity to
// client storage before any quota check runs, and must carry the returned
// value through the rest of the interaction instead of re-reading storage:
// the cookie write only becomes visible to the client on the next request.
func Resolve(storedToken string) (identity string, isNew bool) {
	if t := strings.TrimSpace(storedToken); t != "" {
		return t, false
	}
	return uuid.NewString(), true
}
