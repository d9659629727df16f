package autosave

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/richpad/internal/codec"
	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/logging"
	"github.com/dshills/richpad/internal/notify"
)

// Delay limits.
const (
	DefaultDelay = 2 * time.Second
	MinDelay     = 500 * time.Millisecond
	MaxDelay     = 30 * time.Second
)

// ErrStale is returned when the document changed while a save was being
// prepared. The save is discarded and rescheduled.
var ErrStale = errors.New("document changed during save")

// ClampDelay limits d to [MinDelay, MaxDelay]; zero selects DefaultDelay.
func ClampDelay(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return DefaultDelay
	case d < MinDelay:
		return MinDelay
	case d > MaxDelay:
		return MaxDelay
	}
	return d
}

// Source is the editor state the saver watches.
type Source interface {
	// Snapshot returns a document the caller may keep, its file path (empty
	// when untitled) and the revision it corresponds to.
	Snapshot() (doc *document.Document, path string, rev uint64)
	// Revision returns the current revision.
	Revision() uint64
	// CommitIfCurrent runs commit only if the document is still at
	// revision rev, holding off changes until commit returns. It reports
	// whether commit ran.
	CommitIfCurrent(rev uint64, commit func() error) (bool, error)
	// MarkSaved records that revision rev was written to path.
	MarkSaved(rev uint64, path string)
	// Subscribe registers an observer for editor changes.
	Subscribe(obs notify.Observer, kinds ...notify.Kind) *notify.Subscription
}

// Saver writes the document a quiet period after the last change.
//
// A save serializes a snapshot to a temporary file next to the target and
// commits it by rename only if the revision did not move in the meantime;
// otherwise the temporary file is removed and the timer restarts. The
// revision check and the rename run under the source's lock. A replaced
// file keeps its permissions.
// Untitled documents are saved as markup to <dir>/<document id>.rpd.
type Saver struct {
	src    Source
	dir    string
	logger *logging.Logger

	deb *Debouncer
	sub *notify.Subscription

	mu       sync.Mutex
	lastPath string
	lastErr  error
	saves    int
}

// Option configures a Saver.
type Option func(*Saver)

// WithDelay sets the quiet period, clamped with ClampDelay.
func WithDelay(d time.Duration) Option {
	return func(s *Saver) {
		s.deb.SetDelay(ClampDelay(d))
	}
}

// WithDir sets the directory for untitled documents. It defaults to the
// user cache directory.
func WithDir(dir string) Option {
	return func(s *Saver) {
		s.dir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Saver) {
		s.logger = l
	}
}

// New creates a saver for src. Call Start to begin watching.
func New(src Source, opts ...Option) *Saver {
	s := &Saver{src: src, logger: logging.Null()}
	s.deb = NewDebouncer(DefaultDelay, func() {
		if err := s.save(context.Background()); err != nil && !errors.Is(err, ErrStale) {
			s.logger.Error("autosave failed: %v", err)
		}
	})
	for _, opt := range opts {
		opt(s)
	}
	if s.dir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			s.dir = filepath.Join(dir, "richpad", "autosave")
		} else {
			s.dir = os.TempDir()
		}
	}
	s.logger = s.logger.WithComponent("autosave")
	return s
}

// Start subscribes to document changes. Calling Start twice has no effect.
func (s *Saver) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		return
	}
	s.sub = s.src.Subscribe(func(notify.Change) {
		s.deb.Call()
	}, notify.ChangeEdit, notify.ChangeFormat)
}

// Stop unsubscribes and drops any pending save.
func (s *Saver) Stop() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	sub.Unsubscribe()
	s.deb.Cancel()
}

// Pending reports whether a save is scheduled.
func (s *Saver) Pending() bool {
	return s.deb.IsPending()
}

// Delay returns the quiet period.
func (s *Saver) Delay() time.Duration {
	return s.deb.Delay()
}

// Flush cancels the timer and saves now.
func (s *Saver) Flush(ctx context.Context) error {
	s.deb.Cancel()
	return s.save(ctx)
}

// LastPath returns the file written by the last successful save.
func (s *Saver) LastPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPath
}

// Saves returns the number of committed saves.
func (s *Saver) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Err returns the error of the last save attempt, if any.
func (s *Saver) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Target returns where a document with the given id and path is saved and
// in which format.
func (s *Saver) Target(id, path string) (string, codec.Format) {
	if path != "" {
		return path, codec.FormatForPath(path)
	}
	if id == "" {
		id = uuid.NewString()
	}
	return filepath.Join(s.dir, id+".rpd"), codec.FormatMarkup
}

func (s *Saver) save(ctx context.Context) (err error) {
	defer func() {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
	}()

	doc, path, rev := s.src.Snapshot()
	target, format := s.Target(doc.ID, path)

	var buf bytes.Buffer
	if err := codec.Save(&buf, doc, format); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return &codec.IOError{Op: "autosave", Err: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".richpad-*.tmp")
	if err != nil {
		return &codec.IOError{Op: "autosave", Err: err}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(fileMode(target)); err != nil {
		_ = tmp.Close()
		return &codec.IOError{Op: "autosave", Err: err}
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return &codec.IOError{Op: "autosave", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &codec.IOError{Op: "autosave", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ran, err := s.src.CommitIfCurrent(rev, func() error {
		return os.Rename(tmpName, target)
	})
	if !ran {
		cur := s.src.Revision()
		s.logger.Debug("discarding save of revision %d, document is at %d", rev, cur)
		s.deb.Call()
		return fmt.Errorf("%w: revision %d, now %d", ErrStale, rev, cur)
	}
	if err != nil {
		return &codec.IOError{Op: "autosave", Err: err}
	}
	committed = true

	if path != "" {
		s.src.MarkSaved(rev, path)
	}
	s.mu.Lock()
	s.lastPath = target
	s.saves++
	s.mu.Unlock()
	s.logger.WithField("revision", rev).Info("saved %s", target)
	return nil
}

// fileMode returns the permission bits of an existing file at path, or
// 0644 for a new one.
func fileMode(path string) os.FileMode {
	if fi, err := os.Stat(path); err == nil {
		return fi.Mode().Perm()
	}
	return 0o644
}
