package engine

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/richpad/internal/codec"
	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/notify"
)

// Open loads path, choosing the format from its extension, and makes it
// the editor's file. History is cleared and the document is unmodified.
func (e *Editor) Open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return newOpError("open", path, &codec.IOError{Op: "open", Err: err})
	}
	defer f.Close()

	doc, err := codec.Load(f, codec.FormatForPath(path), e.def)
	if err != nil {
		e.logger.Error("open %s: %v", path, err)
		return newOpError("open", path, err)
	}

	e.mu.Lock()
	rev := e.replaceLocked(doc)
	e.path = path
	e.saved = rev
	e.mu.Unlock()

	e.logger.Info("opened %s", path)
	e.notifier.Notify(notify.Change{Kind: notify.ChangeLoad, Revision: rev, Description: "open", Path: path})
	return nil
}

// Load replaces the document with one read from r. The file association is
// kept and the document counts as modified.
func (e *Editor) Load(r io.Reader, f codec.Format) error {
	doc, err := codec.Load(r, f, e.def)
	if err != nil {
		return newOpError("load", f.String(), err)
	}

	e.mu.Lock()
	rev := e.replaceLocked(doc)
	e.mu.Unlock()

	e.notifier.Notify(notify.Change{Kind: notify.ChangeLoad, Revision: rev, Description: "load"})
	return nil
}

// NewDocument replaces the document with an empty, untitled one.
func (e *Editor) NewDocument() {
	e.mu.Lock()
	rev := e.replaceLocked(document.New(e.def))
	e.path = ""
	e.saved = rev
	e.mu.Unlock()

	e.notifier.Notify(notify.Change{Kind: notify.ChangeLoad, Revision: rev, Description: "new"})
}

func (e *Editor) replaceLocked(doc *document.Document) uint64 {
	e.doc = doc
	e.anchor, e.active = 0, 0
	e.typing.Reset()
	e.history.Clear()
	e.revision++
	return e.revision
}

// Write serializes the document to w.
func (e *Editor) Write(w io.Writer, f codec.Format) error {
	doc, _, _ := e.Snapshot()
	if err := codec.Save(w, doc, f); err != nil {
		return newOpError("write", f.String(), err)
	}
	return nil
}

// Save writes the document to its file.
func (e *Editor) Save() error {
	doc, path, rev := e.Snapshot()
	if path == "" {
		return newOpError("save", "", ErrNoPath)
	}
	return e.saveTo(doc, path, rev, false)
}

// SaveAs writes the document to path and makes it the editor's file.
func (e *Editor) SaveAs(path string) error {
	doc, _, rev := e.Snapshot()
	return e.saveTo(doc, path, rev, true)
}

func (e *Editor) saveTo(doc *document.Document, path string, rev uint64, adopt bool) error {
	var buf bytes.Buffer
	if err := codec.Save(&buf, doc, codec.FormatForPath(path)); err != nil {
		return newOpError("save", path, err)
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		e.logger.Error("save %s: %v", path, err)
		return newOpError("save", path, &codec.IOError{Op: "save", Err: err})
	}
	e.mu.Lock()
	if adopt {
		e.path = path
	}
	if path == e.path {
		e.saved = rev
	}
	e.mu.Unlock()

	e.logger.Info("saved %s", path)
	e.notifier.Notify(notify.Change{Kind: notify.ChangeSave, Revision: rev, Description: "save", Path: path})
	return nil
}

// MarkSaved records that revision rev was written to path. It has no
// effect if path is not the editor's file. The document reads as
// unmodified only while it is still at rev.
func (e *Editor) MarkSaved(rev uint64, path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if path != "" && path == e.path {
		e.saved = rev
	}
}

// CommitIfCurrent runs commit while holding the editor lock, provided the
// document is still at revision rev, so no change can land while it runs.
// commit must not call back into the editor. It reports whether commit ran.
func (e *Editor) CommitIfCurrent(rev uint64, commit func() error) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.revision != rev {
		return false, nil
	}
	return true, commit()
}

// fileMode returns the permission bits of an existing file at path, or
// 0644 for a new one.
func fileMode(path string) os.FileMode {
	if fi, err := os.Stat(path); err == nil {
		return fi.Mode().Perm()
	}
	return 0o644
}

// writeFile replaces path through a temporary file in the same directory,
// keeping the permissions of the file it replaces.
func writeFile(path string, data []byte) error {
	mode := fileMode(path)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".richpad-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}
