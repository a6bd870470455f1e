// Package records persists test evidence records in a single JSON document.
//
// Every operation reads the whole document, applies its change, and writes
// the whole document back (temp file + rename). There is no cross-process
// locking: the application assumes exactly one process owns the file, and
// two processes writing at the same moment can lose an update.
//
// A document that cannot be parsed is moved aside and replaced by an empty
// database so the user is never blocked; the Notifier is told so the loss
// is visible.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/qacapture/internal/clock"
	"github.com/blackwell-systems/qacapture/internal/notify"
)

// Store provides CRUD, search and cleanup over the JSON database.
type Store struct {
	path     string
	clock    clock.Clock
	locator  Locator
	notifier notify.Notifier
	logger   zerolog.Logger

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source for timestamps and cleanup.
func WithClock(c clock.Clock) Option { return func(s *Store) { s.clock = c } }

// WithLocator sets how new records get their folder.
func WithLocator(l Locator) Option { return func(s *Store) { s.locator = l } }

// WithNotifier sets where corruption and read failures are reported.
func WithNotifier(n notify.Notifier) Option { return func(s *Store) { s.notifier = n } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Store) { s.logger = l } }

// New creates a Store backed by the JSON file at path. The file is not
// touched until the first operation or Init.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		clock:    clock.Real(),
		locator:  FlatLocator{},
		notifier: notify.Nop,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Init creates an empty database file if none exists.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat database: %w", err)
	}
	return s.save(s.emptyDatabase())
}

// Load returns the current document. It never fails: unreadable or corrupt
// content yields an empty database.
func (s *Store) Load() *TestDatabase {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, _ := s.load()
	return db
}

func (s *Store) emptyDatabase() *TestDatabase {
	return &TestDatabase{
		Tests:    []*TestRecord{},
		Settings: Settings{LastCleanup: s.now()},
	}
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}

// load reads and parses the document. Callers hold s.mu.
//
// A file that exists but cannot be read yields an empty view together with
// the read error; that view must never be saved over the file.
func (s *Store) load() (*TestDatabase, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.emptyDatabase(), nil
		}
		s.logger.Error().Err(err).Str("path", s.path).Msg("failed to read test database")
		notify.Warn(s.notifier, "Test database unavailable",
			fmt.Sprintf("Could not read %s (%v). Showing an empty test list.", s.path, err))
		return s.emptyDatabase(), err
	}

	db, err := decodeDatabase(data)
	if err != nil {
		return s.recoverCorrupt(err), nil
	}
	return db, nil
}

// decodeDatabase parses data, rejecting anything whose top level is not an
// object with the expected shape.
func decodeDatabase(data []byte) (*TestDatabase, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("top-level value is not an object")
	}

	var db TestDatabase
	if err := json.Unmarshal(trimmed, &db); err != nil {
		return nil, err
	}

	if db.Tests == nil {
		db.Tests = []*TestRecord{}
	}
	kept := db.Tests[:0]
	for _, t := range db.Tests {
		if t == nil || t.ID == "" {
			continue
		}
		if t.Screenshots == nil {
			t.Screenshots = []Screenshot{}
		}
		kept = append(kept, t)
	}
	db.Tests = kept
	return &db, nil
}

// recoverCorrupt moves the unreadable file aside and starts over empty.
func (s *Store) recoverCorrupt(cause error) *TestDatabase {
	backup := fmt.Sprintf("%s.corrupt-%s", s.path, s.now().Format("20060102-150405"))
	if err := os.Rename(s.path, backup); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("failed to move corrupt database aside")
		backup = ""
	}

	s.logger.Warn().Err(cause).Str("path", s.path).Str("backup", backup).Msg("test database was corrupt, starting empty")

	msg := "The test database could not be read and was reset. Existing records are no longer listed."
	if backup != "" {
		msg = fmt.Sprintf("The test database could not be read and was reset. The old file was kept at %s.", backup)
	}
	notify.Warn(s.notifier, "Test database reset", msg)

	db := s.emptyDatabase()
	if err := s.save(db); err != nil {
		s.logger.Error().Err(err).Msg("failed to write fresh test database")
	}
	return db
}

// save writes db atomically. Callers hold s.mu.
func (s *Store) save(db *TestDatabase) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal test database: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp database file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write test database: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write test database: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace test database: %w", err)
	}
	return nil
}

// mutate runs fn against the loaded document and saves when fn reports a
// change. found is false when fn did not find its target. Nothing runs
// when the file exists but cannot be read.
func (s *Store) mutate(fn func(db *TestDatabase) (found bool, err error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return false, fmt.Errorf("test database unavailable: %w", err)
	}
	found, err := fn(db)
	if err != nil || !found {
		return found, err
	}
	if err := s.save(db); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("failed to save test database")
		return false, err
	}
	return true, nil
}

// stamp returns a timestamp later than every UpdatedAt in db, so the most
// recent mutation always sorts first even on a coarse or stalled clock.
func (s *Store) stamp(db *TestDatabase) time.Time {
	now := s.now()
	for _, t := range db.Tests {
		if !now.After(t.UpdatedAt) {
			now = t.UpdatedAt.Add(time.Microsecond)
		}
	}
	return now
}

func find(db *TestDatabase, id string) (int, *TestRecord) {
	for i, t := range db.Tests {
		if t.ID == id {
			return i, t
		}
	}
	return -1, nil
}
