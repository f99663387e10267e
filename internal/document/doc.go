// Package document provides a plain-text model and the reversible edit
// actions the history records against it.
//
// Edits are applied first and recorded second:
//
//	doc := document.New("hello")
//	act, err := doc.Insert(5, " world")
//	if err != nil {
//	    return err
//	}
//	h.Record(act)
//
// Each EditAction keeps the Operation it performed, so Undo restores the
// replaced text and Execute re-applies it.
package document
