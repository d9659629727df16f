package engine

import (
	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/history"
	"github.com/dshills/richpad/internal/logging"
	"github.com/dshills/richpad/internal/notify"
	"github.com/dshills/richpad/internal/style"
)

// Option configures an Editor during creation.
type Option func(*Editor)

// WithDefaultStyle sets the ambient style of new documents and of text
// loaded from plain text files.
func WithDefaultStyle(def style.Char) Option {
	return func(e *Editor) {
		if def.Validate() == nil {
			e.def = def
		}
	}
}

// WithDocument starts the editor on an existing document. The editor takes
// ownership of doc.
func WithDocument(doc *document.Document) Option {
	return func(e *Editor) {
		e.initDoc = doc
	}
}

// WithPath sets the file the document belongs to.
func WithPath(path string) Option {
	return func(e *Editor) {
		e.path = path
	}
}

// WithMaxUndoEntries sets the undo limit.
func WithMaxUndoEntries(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.maxUndo = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithNotifier publishes changes through n instead of a private notifier.
func WithNotifier(n *notify.Notifier) Option {
	return func(e *Editor) {
		e.notifier = n
	}
}

func defaults() *Editor {
	return &Editor{
		def:     style.DefaultChar(),
		maxUndo: history.DefaultMaxEntries,
		logger:  logging.Null(),
	}
}
