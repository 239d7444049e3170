package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a ULID in its canonical 26 character form. Every row the service
// creates (users, habits, threads, posts, uploads) is keyed by one, and so is
// every request id.
type ID string

// Zero is the empty ID.
const Zero ID = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	globalOnce sync.Once
	global     *generator
)

// generator hands out ULIDs from a single monotonic entropy source. The
// source is not safe for concurrent use so it sits behind a mutex.
type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func (g *generator) newAt(t time.Time) ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ID(ulid.MustNew(ulid.Timestamp(t.UTC()), g.entropy).String())
}

func initGlobal() {
	global = &generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a ULID for the current time. IDs created within the same
// millisecond still sort in creation order.
func New() ID {
	return NewAt(time.Now())
}

// NewAt returns a ULID carrying the given timestamp.
func NewAt(t time.Time) ID {
	globalOnce.Do(initGlobal)
	return global.newAt(t)
}

// Parse validates s and returns it as an ID. Surrounding whitespace is
// ignored.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}
	return ID(strings.ToUpper(s)), nil
}

// Valid reports whether s is a well formed ULID. It is used to guard values
// that end up in file system paths, such as the per-user upload directory.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil && strings.TrimSpace(s) == s
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == Zero }

// String returns the canonical string form.
func (id ID) String() string { return string(id) }

// Time extracts the embedded timestamp. Invalid or zero IDs return the zero
// time.
func (id ID) Time() time.Time {
	if id.IsZero() {
		return time.Time{}
	}
	u, err := ulid.ParseStrict(id.String())
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time()).UTC()
}

// Compare reports the lexical ordering between a and b, which for ULIDs is
// also their creation order.
func Compare(a, b ID) int {
	return strings.Compare(a.String(), b.String())
}
