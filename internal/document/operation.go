package document

import "time"

// Operation represents a single applied edit.
// It captures all information needed to undo or redo the edit.
type Operation struct {
	Range   Range  // Range that was modified (in original document)
	OldText string // Text that was replaced (for undo)
	NewText string // Text that was inserted (for redo)

	Timestamp time.Time
}

// NewInsertOperation creates an operation for an insertion.
func NewInsertOperation(offset ByteOffset, text string) *Operation {
	return &Operation{
		Range:     Range{Start: offset, End: offset},
		NewText:   text,
		Timestamp: time.Now(),
	}
}

// NewDeleteOperation creates an operation for a deletion.
func NewDeleteOperation(r Range, deletedText string) *Operation {
	return &Operation{
		Range:     r,
		OldText:   deletedText,
		Timestamp: time.Now(),
	}
}

// NewReplaceOperation creates an operation for a replacement.
func NewReplaceOperation(r Range, oldText, newText string) *Operation {
	return &Operation{
		Range:     r,
		OldText:   oldText,
		NewText:   newText,
		Timestamp: time.Now(),
	}
}

// IsInsert returns true if this operation is a pure insertion.
func (op *Operation) IsInsert() bool {
	return op.Range.IsEmpty() && len(op.NewText) > 0
}

// IsDelete returns true if this operation is a pure deletion.
func (op *Operation) IsDelete() bool {
	return !op.Range.IsEmpty() && len(op.NewText) == 0
}

// IsReplace returns true if this operation replaces text.
func (op *Operation) IsReplace() bool {
	return !op.Range.IsEmpty() && len(op.NewText) > 0
}

// IsNoop returns true if this operation makes no changes.
func (op *Operation) IsNoop() bool {
	return op.Range.IsEmpty() && len(op.NewText) == 0
}

// BytesDelta returns the change in document length.
func (op *Operation) BytesDelta() int {
	return len(op.NewText) - int(op.Range.Len())
}

// NewRange returns the range of the text after the operation.
func (op *Operation) NewRange() Range {
	return Range{
		Start: op.Range.Start,
		End:   op.Range.Start + ByteOffset(len(op.NewText)),
	}
}

// Invert returns an operation that undoes this one.
func (op *Operation) Invert() *Operation {
	return &Operation{
		Range:     op.NewRange(),
		OldText:   op.NewText,
		NewText:   op.OldText,
		Timestamp: op.Timestamp,
	}
}
