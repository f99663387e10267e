package document

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by document edits.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// Document is an in-memory text buffer.
// It is not safe for concurrent use, matching the history it feeds.
type Document struct {
	text     string
	revision uint64
}

// New creates a document holding text.
func New(text string) *Document {
	return &Document{text: text}
}

// Text returns the full contents.
func (d *Document) Text() string {
	return d.text
}

// Len returns the length in bytes.
func (d *Document) Len() ByteOffset {
	return ByteOffset(len(d.text))
}

// IsEmpty returns true if the document has no text.
func (d *Document) IsEmpty() bool {
	return len(d.text) == 0
}

// Revision increases with every applied edit, including undo and redo.
func (d *Document) Revision() uint64 {
	return d.revision
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	return strings.Count(d.text, "\n") + 1
}

// TextRange returns the text in [start, end), clamped to the document.
func (d *Document) TextRange(start, end ByteOffset) string {
	if start < 0 {
		start = 0
	}
	if end > d.Len() {
		end = d.Len()
	}
	if start >= end {
		return ""
	}
	return d.text[start:end]
}

// Insert inserts text at offset and returns the recorded action.
func (d *Document) Insert(offset ByteOffset, text string) (*EditAction, error) {
	if offset < 0 || offset > d.Len() {
		return nil, fmt.Errorf("insert at %d: %w", offset, ErrOffsetOutOfRange)
	}
	return d.apply(NewInsertOperation(offset, text)), nil
}

// Delete removes [start, end) and returns the recorded action.
func (d *Document) Delete(start, end ByteOffset) (*EditAction, error) {
	r := NewRange(start, end)
	if err := d.checkRange(r); err != nil {
		return nil, fmt.Errorf("delete %s: %w", r, err)
	}
	return d.apply(NewDeleteOperation(r, d.TextRange(start, end))), nil
}

// Replace replaces [start, end) with text and returns the recorded action.
func (d *Document) Replace(start, end ByteOffset, text string) (*EditAction, error) {
	r := NewRange(start, end)
	if err := d.checkRange(r); err != nil {
		return nil, fmt.Errorf("replace %s: %w", r, err)
	}
	return d.apply(NewReplaceOperation(r, d.TextRange(start, end), text)), nil
}

func (d *Document) checkRange(r Range) error {
	if !r.IsValid() || r.End > d.Len() {
		return ErrRangeInvalid
	}
	return nil
}

func (d *Document) apply(op *Operation) *EditAction {
	d.splice(op.Range, op.NewText)
	return &EditAction{doc: d, op: op}
}

// splice replaces r with text. Callers validate r first.
func (d *Document) splice(r Range, text string) {
	d.text = d.text[:r.Start] + text + d.text[r.End:]
	d.revision++
}
