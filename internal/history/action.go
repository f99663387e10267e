package history

import (
	"fmt"
	"reflect"
)

// Action is a reversible unit of work on a model the history never sees.
//
// Execute followed by Undo (or the reverse) must leave the model unchanged.
// Neither method may fail, and neither may call back into the History.
type Action interface {
	// Execute applies the forward effect.
	Execute()

	// Undo applies the reverse effect.
	Undo()
}

// Describer is implemented by actions that have a human-readable label.
type Describer interface {
	Description() string
}

// Describe returns the label of a, falling back to its type name.
func Describe(a Action) string {
	if a == nil {
		return ""
	}
	if d, ok := a.(Describer); ok {
		return d.Description()
	}
	t := reflect.TypeOf(a)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// ActionFuncs adapts a pair of functions to the Action interface.
type ActionFuncs struct {
	Name string
	Do   func()
	Back func()
}

// Execute calls Do.
func (f ActionFuncs) Execute() {
	if f.Do != nil {
		f.Do()
	}
}

// Undo calls Back.
func (f ActionFuncs) Undo() {
	if f.Back != nil {
		f.Back()
	}
}

// Description returns Name.
func (f ActionFuncs) Description() string {
	return f.Name
}

// CompoundAction runs several actions as one history state.
// Actions execute in order and undo in reverse order.
type CompoundAction struct {
	Name    string
	Actions []Action
}

// NewCompoundAction creates a new compound action.
func NewCompoundAction(name string, actions ...Action) *CompoundAction {
	return &CompoundAction{
		Name:    name,
		Actions: actions,
	}
}

// Execute runs all actions in order.
func (c *CompoundAction) Execute() {
	for _, a := range c.Actions {
		a.Execute()
	}
}

// Undo reverses all actions in reverse order.
func (c *CompoundAction) Undo() {
	for i := len(c.Actions) - 1; i >= 0; i-- {
		c.Actions[i].Undo()
	}
}

// Description returns the compound action's name.
func (c *CompoundAction) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Actions) == 1 {
		return Describe(c.Actions[0])
	}
	return fmt.Sprintf("%d actions", len(c.Actions))
}

// Add appends an action.
func (c *CompoundAction) Add(a Action) {
	c.Actions = append(c.Actions, a)
}

// IsEmpty returns true if the compound action has no actions.
func (c *CompoundAction) IsEmpty() bool {
	return len(c.Actions) == 0
}
