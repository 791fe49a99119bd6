package compliment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrStoreNotConfigured = errors.New("session store not configured")
	ErrMissingSession     = errors.New("missing session id")
	ErrEmptyImage         = errors.New("missing image")
	ErrInvalidImage       = errors.New("image is not valid base64")
)

// DefaultCompliment is stored when the annotator returns nothing usable.
const DefaultCompliment = "You look wonderful today!"

// Repository is the session store. Values are plain text keyed by the
// client supplied session id. Writes are last-write-wins; Delete of an
// absent key is not an error.
type Repository interface {
	Put(ctx context.Context, sessionID, text string, ttl time.Duration) error
	// Get reports ok=false for absent or expired keys.
	Get(ctx context.Context, sessionID string) (text string, ok bool, err error)
	Delete(ctx context.Context, sessionID string) error
}

// Key namespaces a session id inside a shared store.
func Key(prefix, sessionID string) string {
	return prefix + sessionID
}
