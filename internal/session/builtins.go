package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/undotree/internal/document"
)

func registerBuiltins(r *Registry) {
	for _, cmd := range []Command{
		{Name: "insert", Usage: "<offset> <text>", Summary: "insert text at a byte offset", MinArgs: 2, MaxArgs: 2, Run: cmdInsert},
		{Name: "delete", Usage: "<start> <end>", Summary: "delete a byte range", MinArgs: 2, MaxArgs: 2, Run: cmdDelete},
		{Name: "replace", Usage: "<start> <end> <text>", Summary: "replace a byte range", MinArgs: 3, MaxArgs: 3, Run: cmdReplace},
		{Name: "append", Usage: "<text>", Summary: "insert text at the end", MinArgs: 1, MaxArgs: 1, Run: cmdAppend},
		{Name: "undo", Summary: "step to the chronologically previous state", MaxArgs: 0, Run: cmdUndo},
		{Name: "redo", Summary: "step to the chronologically next state", MaxArgs: 0, Run: cmdRedo},
		{Name: "undo-branch", Summary: "revert one action on the current branch", MaxArgs: 0, Run: cmdUndoBranch},
		{Name: "goto", Usage: "<id|root>", Summary: "move to any state along the shortest path", MinArgs: 1, MaxArgs: 1, Run: cmdGoto},
		{Name: "clear-redo", Summary: "drop every state newer than the current one", MaxArgs: 0, Run: cmdClearRedo},
		{Name: "prune", Summary: "delete the oldest state if it is safe", MaxArgs: 0, Run: cmdPrune},
		{Name: "trim", Usage: "<max>", Summary: "prune until at most max states remain", MinArgs: 1, MaxArgs: 1, Run: cmdTrim},
		{Name: "tree", Summary: "show the branch tree", MaxArgs: 0, Run: cmdTree},
		{Name: "path", Usage: "[id]", Summary: "show the branch path to a state", MaxArgs: 1, Run: cmdPath},
		{Name: "text", Summary: "print the document", MaxArgs: 0, Run: cmdText},
		{Name: "info", Summary: "show session and history status", MaxArgs: 0, Run: cmdInfo},
		{Name: "help", Summary: "list commands", MaxArgs: 0, Run: cmdHelp},
	} {
		r.Register(cmd)
	}
}

func cmdInsert(s *Session, args []string) (string, error) {
	off, err := parseOffset("offset", args[0])
	if err != nil {
		return "", err
	}
	action, err := s.doc.Insert(off, args[1])
	if err != nil {
		return "", err
	}
	return s.record(action)
}

func cmdAppend(s *Session, args []string) (string, error) {
	action, err := s.doc.Insert(s.doc.Len(), args[0])
	if err != nil {
		return "", err
	}
	return s.record(action)
}

func cmdDelete(s *Session, args []string) (string, error) {
	start, end, err := parseRange(args[0], args[1])
	if err != nil {
		return "", err
	}
	action, err := s.doc.Delete(start, end)
	if err != nil {
		return "", err
	}
	return s.record(action)
}

func cmdReplace(s *Session, args []string) (string, error) {
	start, end, err := parseRange(args[0], args[1])
	if err != nil {
		return "", err
	}
	action, err := s.doc.Replace(start, end, args[2])
	if err != nil {
		return "", err
	}
	return s.record(action)
}

func cmdUndo(s *Session, _ []string) (string, error) {
	if err := s.history.Undo(); err != nil {
		return "", err
	}
	return "at " + s.position(), nil
}

func cmdRedo(s *Session, _ []string) (string, error) {
	if err := s.history.Redo(); err != nil {
		return "", err
	}
	return "at " + s.position(), nil
}

func cmdUndoBranch(s *Session, _ []string) (string, error) {
	if err := s.history.UndoBranch(); err != nil {
		return "", err
	}
	return "at " + s.position(), nil
}

func cmdGoto(s *Session, args []string) (string, error) {
	target, err := s.lookup(args[0])
	if err != nil {
		return "", err
	}
	if err := s.history.MoveTo(target); err != nil {
		return "", err
	}
	return "at " + s.position(), nil
}

func cmdClearRedo(s *Session, _ []string) (string, error) {
	before := s.history.Len()
	s.history.ClearRedo()
	return fmt.Sprintf("dropped %d states", before-s.history.Len()), nil
}

func cmdPrune(s *Session, _ []string) (string, error) {
	before := s.history.Len()
	if !s.history.DeleteFirstState() {
		return "nothing pruned", nil
	}
	return fmt.Sprintf("pruned %d states, %d left", before-s.history.Len(), s.history.Len()), nil
}

func cmdTrim(s *Session, args []string) (string, error) {
	limit, err := strconv.Atoi(args[0])
	if err != nil || limit < 0 {
		return "", &UsageError{Command: "trim", Usage: "<max>", Reason: fmt.Sprintf("invalid max %q", args[0])}
	}
	n := s.history.TrimTo(limit)
	return fmt.Sprintf("removed %d states, %d left", n, s.history.Len()), nil
}

func cmdTree(s *Session, _ []string) (string, error) {
	return s.renderer.Tree(s.history), nil
}

func cmdPath(s *Session, args []string) (string, error) {
	target := s.history.Current()
	if len(args) == 1 {
		var err error
		if target, err = s.lookup(args[0]); err != nil {
			return "", err
		}
	}
	return s.renderer.Path(s.history, target), nil
}

func cmdText(s *Session, _ []string) (string, error) {
	return strconv.Quote(s.doc.Text()), nil
}

func cmdInfo(s *Session, _ []string) (string, error) {
	h := s.history

	var b strings.Builder
	fmt.Fprintf(&b, "session:  %s\n", s.ID)
	fmt.Fprintf(&b, "states:   %d (%d pruned)\n", h.Len(), s.pruned)
	fmt.Fprintf(&b, "current:  %s, %d edits applied\n", s.position(), h.Depth(h.Current()))
	if info, ok := h.PeekUndo(); ok {
		fmt.Fprintf(&b, "undo:     %s\n", info.Description)
	}
	if info, ok := h.PeekRedo(); ok {
		fmt.Fprintf(&b, "redo:     #%d %s\n", info.Seq, info.Description)
	}
	fmt.Fprintf(&b, "document: %d bytes, %d lines, revision %d", s.doc.Len(), s.doc.LineCount(), s.doc.Revision())
	return b.String(), nil
}

func cmdHelp(s *Session, _ []string) (string, error) {
	var b strings.Builder
	for _, cmd := range s.commands.List() {
		synopsis := cmd.Name
		if cmd.Usage != "" {
			synopsis += " " + cmd.Usage
		}
		fmt.Fprintf(&b, "  %-24s %s\n", synopsis, cmd.Summary)
	}
	fmt.Fprintf(&b, "  %-24s %s", "quit", "leave the session")
	return b.String(), nil
}

func parseOffset(name, arg string) (document.ByteOffset, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, arg, ErrUsage)
	}
	return document.ByteOffset(n), nil
}

func parseRange(startArg, endArg string) (document.ByteOffset, document.ByteOffset, error) {
	start, err := parseOffset("start", startArg)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseOffset("end", endArg)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseSeq(arg string) (uint64, error) {
	seq, err := strconv.ParseUint(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || seq == 0 {
		return 0, fmt.Errorf("state id %q: %w", arg, ErrUsage)
	}
	return seq, nil
}
