package autosave

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/richpad/internal/codec"
	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/notify"
	"github.com/dshills/richpad/internal/style"
)

// fakeSource is a minimal editor: a document, a path and a revision.
type fakeSource struct {
	mu       sync.Mutex
	doc      *document.Document
	path     string
	rev      uint64
	savedRev uint64
	savedTo  string

	// moveOnCheck bumps the revision at the next commit, as if an edit
	// landed while the save was in progress.
	moveOnCheck bool

	ntf *notify.Notifier
}

func newFakeSource(t *testing.T, text, path string) *fakeSource {
	t.Helper()
	d := document.New(style.DefaultChar())
	_, err := d.InsertText(d.Start(), text)
	require.NoError(t, err)
	src := &fakeSource{doc: d, path: path, rev: 1, ntf: notify.New()}
	t.Cleanup(src.ntf.Close)
	return src
}

func (f *fakeSource) Snapshot() (*document.Document, string, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doc, f.path, f.rev
}

func (f *fakeSource) Revision() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rev
}

func (f *fakeSource) CommitIfCurrent(rev uint64, commit func() error) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moveOnCheck {
		f.moveOnCheck = false
		f.rev++
	}
	if f.rev != rev {
		return false, nil
	}
	return true, commit()
}

func (f *fakeSource) MarkSaved(rev uint64, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedRev, f.savedTo = rev, path
}

func (f *fakeSource) Subscribe(obs notify.Observer, kinds ...notify.Kind) *notify.Subscription {
	return f.ntf.SubscribeKind(obs, kinds...)
}

// edit replaces the text and publishes the change.
func (f *fakeSource) edit(t *testing.T, text string, kind notify.Kind) {
	t.Helper()
	d := document.New(style.DefaultChar())
	_, err := d.InsertText(d.Start(), text)
	require.NoError(t, err)
	f.mu.Lock()
	d.ID = f.doc.ID
	f.doc = d
	f.rev++
	rev := f.rev
	f.mu.Unlock()
	f.ntf.Notify(notify.Change{Kind: kind, Revision: rev})
}

func tempFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".richpad-*.tmp"))
	require.NoError(t, err)
	return matches
}

func TestFlushWritesNamedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	src := newFakeSource(t, "hello\nworld", path)
	s := New(src, WithDir(t.TempDir()))

	require.NoError(t, s.Flush(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", string(data))
	assert.Equal(t, uint64(1), src.savedRev)
	assert.Equal(t, path, src.savedTo)
	assert.Equal(t, path, s.LastPath())
	assert.Equal(t, 1, s.Saves())
	assert.NoError(t, s.Err())
	assert.Empty(t, tempFiles(t, dir))
}

func TestFlushKeepsFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not preserved on windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))
	require.NoError(t, os.Chmod(path, 0o640))

	src := newFakeSource(t, "new", path)
	require.NoError(t, New(src, WithDir(dir)).Flush(context.Background()))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), fi.Mode().Perm())

	untitled := newFakeSource(t, "draft", "")
	s := New(untitled, WithDir(dir))
	require.NoError(t, s.Flush(context.Background()))
	fi, err = os.Stat(s.LastPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
}

func TestUntitledGoesToAutosaveDir(t *testing.T) {
	dir := t.TempDir()
	src := newFakeSource(t, "draft", "")
	s := New(src, WithDir(dir))

	require.NoError(t, s.Flush(context.Background()))

	want := filepath.Join(dir, src.doc.ID+".rpd")
	assert.Equal(t, want, s.LastPath())
	assert.Zero(t, src.savedRev, "untitled documents stay modified")

	f, err := os.Open(want)
	require.NoError(t, err)
	defer f.Close()
	doc, err := codec.LoadMarkup(f)
	require.NoError(t, err)
	assert.Equal(t, "draft", doc.Text())
	assert.Equal(t, src.doc.ID, doc.ID)
}

func TestTarget(t *testing.T) {
	s := New(newFakeSource(t, "", ""), WithDir("/autosave"))

	p, f := s.Target("abc", "/docs/a.rpd")
	assert.Equal(t, "/docs/a.rpd", p)
	assert.Equal(t, codec.FormatMarkup, f)

	p, f = s.Target("abc", "")
	assert.Equal(t, filepath.Join("/autosave", "abc.rpd"), p)
	assert.Equal(t, codec.FormatMarkup, f)

	p, _ = s.Target("", "")
	assert.Equal(t, "/autosave", filepath.Dir(p))
	assert.NotEqual(t, filepath.Join("/autosave", ".rpd"), p)
}

func TestStaleSaveIsDiscardedAndRescheduled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	src := newFakeSource(t, "v1", path)
	s := New(src, WithDir(dir), WithDelay(time.Hour))
	t.Cleanup(s.Stop)

	src.moveOnCheck = true
	err := s.Flush(context.Background())
	require.ErrorIs(t, err, ErrStale)
	assert.ErrorIs(t, s.Err(), ErrStale)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "stale save must not reach the file")
	assert.Empty(t, tempFiles(t, dir))
	assert.Zero(t, src.savedRev)
	assert.True(t, s.Pending(), "stale save restarts the timer")

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, uint64(2), src.savedRev)
	assert.False(t, s.Pending())
}

func TestCancelledContext(t *testing.T) {
	dir := t.TempDir()
	src := newFakeSource(t, "x", filepath.Join(dir, "a.txt"))
	s := New(src, WithDir(dir))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Flush(ctx), context.Canceled)
	assert.Empty(t, tempFiles(t, dir))
}

func TestStartSavesAfterQuietPeriod(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	src := newFakeSource(t, "v1", path)
	s := New(src, WithDir(dir), WithDelay(MinDelay))
	s.Start()
	s.Start()
	t.Cleanup(s.Stop)

	assert.Equal(t, MinDelay, s.Delay())

	src.edit(t, "v2", notify.ChangeSelection)
	assert.False(t, s.Pending(), "selection changes do not schedule a save")

	src.edit(t, "v3", notify.ChangeEdit)
	src.edit(t, "v4", notify.ChangeFormat)
	assert.True(t, s.Pending())

	require.Eventually(t, func() bool { return s.Saves() == 1 }, 5*time.Second, 20*time.Millisecond)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v4", string(data))
}

func TestStopDropsPendingSave(t *testing.T) {
	dir := t.TempDir()
	src := newFakeSource(t, "v1", filepath.Join(dir, "a.txt"))
	s := New(src, WithDir(dir), WithDelay(MinDelay))
	s.Start()

	src.edit(t, "v2", notify.ChangeEdit)
	require.True(t, s.Pending())
	s.Stop()
	assert.False(t, s.Pending())

	src.edit(t, "v3", notify.ChangeEdit)
	assert.False(t, s.Pending())
}
