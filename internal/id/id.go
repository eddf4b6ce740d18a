// Package id generates the bridge's event and thread identifiers: a
// 26-character, lexicographically sortable ULID (48-bit millisecond
// timestamp plus 80 random bits, Crockford base32).
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a new id stamped with the current time. Ids generated by
// concurrent callers within the same millisecond are still strictly
// increasing thanks to the monotonic entropy source, serialized here
// by a package-level mutex.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a new id stamped with t, truncated to millisecond
// precision as the spec requires.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()
	ms := ulid.Timestamp(t)
	u := ulid.MustNew(ms, entropy)
	return u.String()
}
