package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/qacapture/internal/records"
)

// Records is the part of the record store the watcher needs.
type Records interface {
	GetTest(id string) *records.TestRecord
	ForgetScreenshot(id, filename string) (bool, error)
}

// Watcher drops screenshot entries whose files disappear from the record's
// folder.
type Watcher struct {
	records Records
	testID  string
	folder  string
	logger  zerolog.Logger

	// OnForget, when set, is called after an entry has been dropped.
	OnForget func(filename string)

	fs     *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Watcher for the record with testID.
func New(recs Records, testID string, logger zerolog.Logger) (*Watcher, error) {
	if recs == nil {
		return nil, fmt.Errorf("records cannot be nil")
	}
	rec := recs.GetTest(testID)
	if rec == nil {
		return nil, fmt.Errorf("test %s not found", testID)
	}
	if rec.FolderPath == "" {
		return nil, fmt.Errorf("test %s has no folder", testID)
	}
	return &Watcher{
		records: recs,
		testID:  testID,
		folder:  rec.FolderPath,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Folder returns the watched directory.
func (w *Watcher) Folder() string { return w.folder }

// Start reconciles once and then follows folder events until Stop.
func (w *Watcher) Start() error {
	if _, err := Reconcile(w.records, w.testID); err != nil {
		w.logger.Warn().Err(err).Str("test", w.testID).Msg("initial reconcile failed")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create folder watcher: %w", err)
	}
	if err := fsw.Add(w.folder); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.folder, err)
	}
	w.fs = fsw

	w.wg.Add(1)
	go w.run()

	w.logger.Debug().Str("folder", w.folder).Msg("watching test folder")
	return nil
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.handleGone(filepath.Base(ev.Name))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Str("folder", w.folder).Msg("folder watch error")
		case <-w.stopCh:
			return
		}
	}
}

// handleGone drops filename if the record lists it and it is really gone.
// A rename event can also mean the file was replaced in place.
func (w *Watcher) handleGone(filename string) {
	rec := w.records.GetTest(w.testID)
	if rec == nil {
		return
	}
	if _, listed := rec.Screenshot(filename); !listed {
		return
	}
	if _, err := os.Lstat(filepath.Join(w.folder, filename)); !errors.Is(err, os.ErrNotExist) {
		return
	}

	dropped, err := w.records.ForgetScreenshot(w.testID, filename)
	if err != nil {
		w.logger.Error().Err(err).Str("test", w.testID).Str("file", filename).Msg("failed to drop missing screenshot")
		return
	}
	if dropped {
		w.logger.Info().Str("test", w.testID).Str("file", filename).Msg("screenshot removed from disk, dropped from record")
		if w.OnForget != nil {
			w.OnForget(filename)
		}
	}
}

// Stop halts the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	select {
	case <-w.stopCh:
		return nil
	default:
	}
	close(w.stopCh)

	var err error
	if w.fs != nil {
		err = w.fs.Close()
	}
	w.wg.Wait()
	return err
}
