package document

import (
	"fmt"
	"unicode/utf8"
)

// EditAction is a recorded document edit. It satisfies history.Action.
type EditAction struct {
	doc *Document
	op  *Operation
}

// Operation returns the edit this action performs.
func (a *EditAction) Operation() *Operation {
	return a.op
}

// Execute re-applies the edit.
func (a *EditAction) Execute() {
	a.mustSplice(a.op)
}

// Undo restores the replaced text.
func (a *EditAction) Undo() {
	a.mustSplice(a.op.Invert())
}

// mustSplice applies op, which must match the document. A mismatch means the
// document was edited behind the history's back, and continuing would
// corrupt it.
func (a *EditAction) mustSplice(op *Operation) {
	r := op.Range
	if a.doc.checkRange(r) != nil || a.doc.TextRange(r.Start, r.End) != op.OldText {
		panic(fmt.Sprintf("document: %s does not match %q at %s", a.Description(), op.OldText, r))
	}
	a.doc.splice(r, op.NewText)
}

// Description returns a human-readable description.
func (a *EditAction) Description() string {
	op := a.op
	switch {
	case op.IsInsert():
		return describeInsert(op.NewText)
	case op.IsDelete():
		n := utf8.RuneCountInString(op.OldText)
		if n == 1 {
			return "Delete"
		}
		return fmt.Sprintf("Delete %d characters", n)
	case op.IsReplace():
		return fmt.Sprintf("Replace %d with %d characters",
			utf8.RuneCountInString(op.OldText), utf8.RuneCountInString(op.NewText))
	default:
		return "No change"
	}
}

func describeInsert(text string) string {
	if len(text) == 1 {
		if text == "\n" {
			return "Insert newline"
		}
		if text == "\t" {
			return "Insert tab"
		}
		return fmt.Sprintf("Type '%s'", text)
	}
	if utf8.RuneCountInString(text) <= 20 {
		return fmt.Sprintf("Insert %q", text)
	}
	return fmt.Sprintf("Insert %d characters", utf8.RuneCountInString(text))
}
