// Package session drives a document and its branching history from
// text commands, one per line.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"

	"github.com/dshills/undotree/internal/config"
	"github.com/dshills/undotree/internal/document"
	"github.com/dshills/undotree/internal/history"
	"github.com/dshills/undotree/internal/logging"
	"github.com/dshills/undotree/internal/render"
)

// Session is an editing session over one document.
type Session struct {
	ID uuid.UUID

	doc      *document.Document
	history  *history.History
	policy   config.HistoryConfig
	renderer *render.Renderer
	commands *Registry
	log      *logging.Logger

	// pruned counts states removed by pruning, reported by info.
	pruned int
}

// Option configures a Session.
type Option func(*Session)

// WithText sets the initial document text.
func WithText(text string) Option {
	return func(s *Session) {
		s.doc = document.New(text)
	}
}

// WithPolicy sets the recording policy.
func WithPolicy(p config.HistoryConfig) Option {
	return func(s *Session) {
		s.policy = p
	}
}

// WithRenderer sets the tree renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(s *Session) {
		s.renderer = r
	}
}

// WithLogger sets the session logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a session with an empty document and history.
func New(opts ...Option) *Session {
	s := &Session{
		ID:       uuid.New(),
		doc:      document.New(""),
		renderer: render.New(render.Options{}),
		commands: NewRegistry(),
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.WithComponent("session").WithField("session", s.ID.String())
	s.history = history.New(
		history.WithLogger(s.log),
		history.WithDisposer(history.DisposerFunc(s.onDeleteState)),
	)
	registerBuiltins(s.commands)
	return s
}

// FromConfig creates a session configured from cfg.
func FromConfig(cfg *config.Config, log *logging.Logger, opts ...Option) *Session {
	base := []Option{
		WithPolicy(cfg.History),
		WithRenderer(render.New(render.Options{
			Color:     cfg.Render.Color,
			Profile:   render.DetectProfile(),
			ShowTimes: cfg.Render.ShowTimes,
		})),
		WithLogger(log),
	}
	return New(append(base, opts...)...)
}

// Document returns the edited document.
func (s *Session) Document() *document.Document {
	return s.doc
}

// History returns the session history.
func (s *Session) History() *history.History {
	return s.history
}

// Commands returns the command registry, for adding commands.
func (s *Session) Commands() *Registry {
	return s.commands
}

// Exec runs a single command line. Blank lines and lines starting with #
// do nothing.
func (s *Session) Exec(line string) (string, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", nil
	}

	words, err := shellquote.Split(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", trimmed, err)
	}
	if len(words) == 0 {
		return "", nil
	}

	name, args := words[0], words[1:]
	cmd, ok := s.commands.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if len(args) < cmd.MinArgs || (cmd.MaxArgs >= 0 && len(args) > cmd.MaxArgs) {
		return "", &UsageError{Command: cmd.Name, Usage: cmd.Usage, Reason: "wrong number of arguments"}
	}

	s.log.Debug("exec %s %v", name, args)
	return cmd.Run(s, args)
}

// RunOptions configures Run.
type RunOptions struct {
	// Prompt is written before every line when set.
	Prompt string
	// StopOnError aborts on the first failing line. Otherwise errors are
	// written to the output and reading continues.
	StopOnError bool
}

// Run executes commands read from in until EOF, "quit", or ctx is done.
// Command output is written to out.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer, opts RunOptions) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.Prompt != "" {
			fmt.Fprint(out, opts.Prompt)
		}
		if !scanner.Scan() {
			break
		}
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return nil
		}

		result, err := s.Exec(line)
		if err != nil {
			if opts.StopOnError {
				return &LineError{Line: lineNo, Err: err}
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if result != "" {
			fmt.Fprintln(out, strings.TrimRight(result, "\n"))
		}
	}
	return scanner.Err()
}

// record applies the session policy around recording an edit the document
// already holds.
func (s *Session) record(action *document.EditAction) (string, error) {
	if s.policy.Linear {
		s.history.ClearRedo()
	}

	id, err := s.history.Record(action)
	if err != nil {
		// Keep the document consistent with the history.
		action.Undo()
		return "", err
	}

	result := fmt.Sprintf("recorded %s", s.renderer.Line(s.history, id))
	if s.policy.MaxStates > 0 {
		if n := s.history.TrimTo(s.policy.MaxStates); n > 0 {
			result += fmt.Sprintf("\ntrimmed %d states", n)
		}
	}
	return result, nil
}

// onDeleteState is the history disposer; it only keeps statistics.
func (s *Session) onDeleteState(id history.Handle, action history.Action) {
	s.pruned++
	s.log.Debug("pruned %s: %s", id, history.Describe(action))
}

// lookup resolves a state id argument; "root" is the pristine state.
func (s *Session) lookup(arg string) (history.Handle, error) {
	if arg == "root" {
		return history.None, nil
	}
	seq, err := parseSeq(arg)
	if err != nil {
		return history.None, err
	}
	id, ok := s.history.Lookup(seq)
	if !ok {
		return history.None, fmt.Errorf("%w: #%d", ErrUnknownState, seq)
	}
	return id, nil
}

// position describes the current state after a transition.
func (s *Session) position() string {
	return s.renderer.Label(s.history, s.history.Current())
}
