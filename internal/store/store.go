// Package store holds the folder/task arena and commits it to a persistence
// backend.
package store

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"go-task-organizer/internal/models"
)

// Persister loads and commits full snapshots. Commit must be atomic: on
// error the previously committed snapshot stays in place.
type Persister interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Commit(ctx context.Context, snap *models.Snapshot) error
}

// ChangeEvent describes one committed transaction.
type ChangeEvent struct {
	Op      string    `json:"op"`
	Version uint64    `json:"version"`
	At      time.Time `json:"at"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSaveRetry sets how many times Save attempts a commit and the pause
// between attempts.
func WithSaveRetry(attempts int, delay time.Duration) Option {
	return func(s *Store) {
		if attempts < 1 {
			attempts = 1
		}
		s.saveAttempts = attempts
		s.saveDelay = delay
	}
}

// Store is the single owner of the arena. Mutations are serialized by a
// writer lock and applied to a staged copy, so readers never observe a
// partially applied transaction.
type Store struct {
	mu      sync.RWMutex
	st      *state
	version uint64

	saveMu       sync.Mutex
	savedVersion atomic.Uint64
	persister    Persister
	saveAttempts int
	saveDelay    time.Duration

	listenersMu sync.Mutex
	listeners   map[int]func(ChangeEvent)
	nextID      int

	logger *log.Logger
	now    func() time.Time
}

// Open loads the persisted snapshot and verifies its invariants.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("store: persister is nil")
	}
	s := &Store{
		persister:    p,
		saveAttempts: 1,
		listeners:    make(map[int]func(ChangeEvent)),
		logger:       log.New(io.Discard),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load snapshot: %w", models.ErrStorage, err)
	}
	st := stateFromSnapshot(snap)
	if err := verify(st); err != nil {
		return nil, fmt.Errorf("loaded snapshot is inconsistent: %w", err)
	}
	s.st = st
	s.logger.Info("store opened", "folders", len(st.folders), "tasks", len(st.tasks))
	return s, nil
}

// View runs fn with read access to the current state.
func (s *Store) View(fn func(r *Reader) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Reader{st: s.st})
}

// Update runs fn as a write transaction named op. The staged state replaces
// the current one only if fn and the commit checks succeed.
func (s *Store) Update(op string, fn func(tx *Tx) error) error {
	ev, err := s.apply(op, fn)
	if err != nil {
		return err
	}
	s.logger.Debug("transaction committed", "op", op, "version", ev.Version)
	s.publish(ev)
	return nil
}

func (s *Store) apply(op string, fn func(tx *Tx) error) (ChangeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.st.clone()
	tx := &Tx{Reader: &Reader{st: staged}, now: s.now().UTC()}
	if err := fn(tx); err != nil {
		s.logger.Debug("transaction rejected", "op", op, "err", err)
		return ChangeEvent{}, err
	}
	if err := commitCheck(staged); err != nil {
		s.logger.Warn("transaction violates store invariants", "op", op, "err", err)
		return ChangeEvent{}, err
	}
	s.st = staged
	s.version++
	return ChangeEvent{Op: op, Version: s.version, At: tx.now}, nil
}

// InsertFolder creates an unparented folder. Outside of a larger
// transaction this only succeeds for models.RootName while the store has
// no root.
func (s *Store) InsertFolder(name string, details *string) (*models.Folder, error) {
	var out *models.Folder
	err := s.Update("insert_folder", func(tx *Tx) error {
		f, err := tx.InsertFolder(name, details)
		if err != nil {
			return err
		}
		out = f.Clone()
		return nil
	})
	return out, err
}

// QueryFolders returns copies of every folder sorted by name.
func (s *Store) QueryFolders() []*models.Folder {
	var out []*models.Folder
	_ = s.View(func(r *Reader) error {
		for _, f := range r.Folders() {
			out = append(out, f.Clone())
		}
		return nil
	})
	return out
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.snapshot()
}

// Version returns the number of committed transactions since Open.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Dirty reports whether there are committed transactions not yet saved.
func (s *Store) Dirty() bool {
	return s.Version() != s.savedVersion.Load()
}

// Verify checks the full invariant set of the current state.
func (s *Store) Verify() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return verify(s.st)
}

// Save commits the current state to the persister. A failed commit leaves
// the in-memory state as is and the persisted state at the last successful
// save; Save may simply be called again.
func (s *Store) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	version := s.version
	snap := s.st.snapshot()
	s.mu.RUnlock()

	if version == s.savedVersion.Load() {
		return nil
	}

	var err error
	for attempt := 1; attempt <= s.saveAttempts; attempt++ {
		if err = s.persister.Commit(ctx, snap); err == nil {
			break
		}
		s.logger.Warn("save failed", "attempt", attempt, "of", s.saveAttempts, "err", err)
		if attempt == s.saveAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", models.ErrStorage, ctx.Err())
		case <-time.After(s.saveDelay):
		}
	}
	if err != nil {
		return fmt.Errorf("%w: commit snapshot: %w", models.ErrStorage, err)
	}

	s.savedVersion.Store(version)
	s.logger.Info("store saved", "version", version, "folders", len(snap.Folders), "tasks", len(snap.Tasks))
	return nil
}

// Subscribe registers fn to be called after every committed transaction.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(ChangeEvent)) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Store) publish(ev ChangeEvent) {
	s.listenersMu.Lock()
	fns := make([]func(ChangeEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
