package session

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MacroPower/csvdash/pkg/dataset"
	"github.com/MacroPower/csvdash/pkg/syncs"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// ErrNotFound indicates the session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarn    Level = "warning"
	LevelError   Level = "error"
)

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Level   Level
	Message string
}

// Session is the state of one dashboard user.
type Session struct {
	lastSeen time.Time

	// Table is the loaded table, or nil.
	Table *dataset.Table
	Flash *Flash

	ID string
	// Origin describes where Table came from, for display.
	Origin   string
	File     string
	Variable string
	Groups   []string
	TopN     int
	ShowRaw  bool
}

// SetTable replaces the loaded table and resets selections that referred to
// the previous one.
func (s *Session) SetTable(t *dataset.Table, origin string) {
	s.Table = t
	s.Origin = origin
	s.Variable = ""
}

// Clear drops the loaded table and its selections.
func (s *Session) Clear() {
	s.Table = nil
	s.Origin = ""
	s.File = ""
	s.Groups = nil
	s.Variable = ""
}

// Notify sets the flash message.
func (s *Session) Notify(level Level, format string, args ...any) {
	s.Flash = &Flash{Level: level, Message: fmt.Sprintf(format, args...)}
}

// TakeFlash returns and clears the flash message.
func (s *Session) TakeFlash() *Flash {
	f := s.Flash
	s.Flash = nil

	return f
}

func (s *Session) clone() Session {
	c := *s
	c.Groups = slices.Clone(s.Groups)

	if s.Flash != nil {
		f := *s.Flash
		c.Flash = &f
	}

	return c
}

// Store holds sessions in memory.
type Store struct {
	now      func() time.Time
	sessions map[string]*Session
	locks    *syncs.KeyLock
	ttl      time.Duration
	mu       sync.Mutex
}

type StoreOpt func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) StoreOpt {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a [Store] whose sessions expire after ttl of inactivity.
// A non-positive ttl uses [DefaultTTL].
func NewStore(ttl time.Duration, opts ...StoreOpt) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Store{
		now:      time.Now,
		sessions: make(map[string]*Session),
		locks:    syncs.NewKeyLock(),
		ttl:      ttl,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Ensure returns id if it names a live session, or the ID of a new session
// otherwise. The second result reports whether a session was created.
func (s *Store) Ensure(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if sess, ok := s.sessions[id]; ok {
		if !s.expired(sess, now) {
			return id, false
		}

		delete(s.sessions, id)
	}

	sess := &Session{
		ID:       uuid.NewString(),
		lastSeen: now,
	}
	s.sessions[sess.ID] = sess

	slog.Debug("session created", slog.String("session", sess.ID))

	return sess.ID, true
}

// Get returns a copy of the session.
func (s *Store) Get(id string) (Session, error) {
	var out Session

	err := s.Update(id, func(sess *Session) error {
		out = sess.clone()

		return nil
	})

	return out, err
}

// Update calls fn with exclusive access to the session and marks it as
// active. Changes made by fn are kept even if it returns an error.
func (s *Store) Update(id string, fn func(*Session) error) error {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	sess, err := s.lookup(id)
	if err != nil {
		return err
	}

	return fn(sess)
}

func (s *Store) lookup(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	if s.expired(sess, now) {
		delete(s.sessions, id)

		return nil, fmt.Errorf("%w: %q expired", ErrNotFound, id)
	}

	sess.lastSeen = now

	return sess, nil
}

// Delete removes the session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0

	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)

			removed++
		}
	}

	if removed > 0 {
		slog.Debug("sessions expired", slog.Int("count", removed))
	}

	return removed
}

// Len returns the number of stored sessions, including expired sessions
// that have not been swept yet.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// TTL returns the idle timeout.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.lastSeen) > s.ttl
}

// New creates a session and returns its ID.
func (s *Store) New() string {
	id, _ := s.Ensure("")

	return id
}
