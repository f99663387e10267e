// Package render draws a history as a branch tree.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dshills/undotree/internal/history"
)

// Options configures a Renderer.
type Options struct {
	// Color enables styling. Without it the output is plain text.
	Color bool
	// Profile is the color profile used when Color is set.
	Profile termenv.Profile
	// ShowTimes appends the record time to every state.
	ShowTimes bool
	// TimeFormat formats record times. Defaults to "15:04:05".
	TimeFormat string
}

// Renderer formats histories.
type Renderer struct {
	opts Options

	root    lipgloss.Style
	id      lipgloss.Style
	current lipgloss.Style
	newest  lipgloss.Style
	branch  lipgloss.Style
	time    lipgloss.Style
}

// New creates a renderer.
func New(opts Options) *Renderer {
	if opts.TimeFormat == "" {
		opts.TimeFormat = "15:04:05"
	}

	lr := lipgloss.NewRenderer(io.Discard)
	if opts.Color {
		lr.SetColorProfile(normalizeProfile(opts.Profile))
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		opts:    opts,
		root:    lr.NewStyle().Bold(true),
		id:      lr.NewStyle().Foreground(lipgloss.Color("6")),
		current: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		newest:  lr.NewStyle().Foreground(lipgloss.Color("3")),
		branch:  lr.NewStyle().Foreground(lipgloss.Color("8")),
		time:    lr.NewStyle().Faint(true),
	}
}

func normalizeProfile(profile termenv.Profile) termenv.Profile {
	switch profile {
	case termenv.TrueColor, termenv.ANSI256, termenv.ANSI, termenv.Ascii:
		return profile
	default:
		return termenv.ANSI
	}
}

// Tree renders every state of h below a root line for the pristine model.
// Siblings appear in the order they were recorded.
func (r *Renderer) Tree(h *history.History) string {
	var b strings.Builder

	b.WriteString(r.root.Render("root"))
	if h.Current().IsNone() {
		b.WriteString(" " + r.current.Render("(current)"))
	}
	b.WriteByte('\n')

	// One pass over the chain; States is chronological, so siblings stay in
	// recording order.
	kids := make(map[history.Handle][]history.Handle)
	for _, id := range h.States() {
		parent := h.Parent(id)
		kids[parent] = append(kids[parent], id)
	}

	r.children(&b, h, kids, history.None, "")
	return b.String()
}

func (r *Renderer) children(b *strings.Builder, h *history.History, index map[history.Handle][]history.Handle, parent history.Handle, indent string) {
	kids := index[parent]
	for i, id := range kids {
		last := i == len(kids)-1

		connector, next := "├── ", "│   "
		if last {
			connector, next = "└── ", "    "
		}

		b.WriteString(r.branch.Render(indent + connector))
		b.WriteString(r.Line(h, id))
		b.WriteByte('\n')

		r.children(b, h, index, id, indent+next)
	}
}

// Label renders the id and description of a state, or "root" for None.
func (r *Renderer) Label(h *history.History, id history.Handle) string {
	info, ok := h.Info(id)
	if !ok {
		return r.root.Render("root")
	}
	return r.id.Render(fmt.Sprintf("#%d", info.Seq)) + " " + info.Description
}

// Line renders a single state with its markers but without tree decoration.
func (r *Renderer) Line(h *history.History, id history.Handle) string {
	info, ok := h.Info(id)
	if !ok {
		return r.root.Render("root")
	}

	parts := []string{r.Label(h, id)}
	if r.opts.ShowTimes {
		parts = append(parts, r.time.Render(info.Recorded.Format(r.opts.TimeFormat)))
	}
	if id == h.Current() {
		parts = append(parts, r.current.Render("(current)"))
	}
	if id == h.Last() {
		parts = append(parts, r.newest.Render("(newest)"))
	}
	return strings.Join(parts, " ")
}

// Path renders the branch path from the root to id on one line.
func (r *Renderer) Path(h *history.History, id history.Handle) string {
	parts := []string{r.root.Render("root")}
	for _, step := range h.Path(id) {
		info, _ := h.Info(step)
		parts = append(parts, r.id.Render(fmt.Sprintf("#%d", info.Seq)))
	}
	return strings.Join(parts, " → ")
}

// DetectProfile returns the color profile of standard output, honoring
// NO_COLOR and CLICOLOR_FORCE.
func DetectProfile() termenv.Profile {
	return termenv.EnvColorProfile()
}
