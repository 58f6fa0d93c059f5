// Package explore runs secondary generation requests (counterfactuals and
// chemical-space exploration) for a picked prediction row.
package explore

import (
	"context"
	"errors"
	"sync"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/KaramelBytes/molscope-cli/internal/service"
	"github.com/KaramelBytes/molscope-cli/internal/table"
)

// ErrInFlight is returned when an action is triggered while its previous
// request has not finished yet.
var ErrInFlight = errors.New("request already in progress")

// Generator issues secondary requests. *service.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, action service.Action, smiles string, model service.ModelChoice) (*predictions.Envelope, error)
}

// Messages holds the user-facing texts of one action.
type Messages struct {
	Validation string
	Success    string
	Failure    string
}

// MessagesFor returns the texts of action.
func MessagesFor(action service.Action) Messages {
	switch action {
	case service.ActionChemicalSpace:
		return Messages{
			Validation: "Please select a non-sensitizer SMILES",
			Success:    "Chemical space explored successfully",
			Failure:    "Failed to explore chemical space",
		}
	default:
		return Messages{
			Validation: "Please select a sensitizer SMILES",
			Success:    "Counterfactuals generated successfully",
			Failure:    "Failed to generate counterfactuals",
		}
	}
}

// ClassFor returns the prediction class an action picks its input from.
func ClassFor(action service.Action) predictions.Class {
	if action == service.ActionChemicalSpace {
		return predictions.NonSensitizer
	}
	return predictions.Sensitizer
}

// Context is the isolated state of one action: its loading flag and its last
// successful results.
type Context struct {
	action service.Action
	gen    Generator
	notify Notifier
	msgs   Messages

	mu      sync.Mutex
	loading bool
	results []predictions.Counterfactual
	view    *table.View[predictions.Counterfactual]
}

// NewContext returns an idle context for action. A nil notifier discards
// notices.
func NewContext(action service.Action, gen Generator, notify Notifier) *Context {
	if notify == nil {
		notify = Discard
	}
	return &Context{
		action: action,
		gen:    gen,
		notify: notify,
		msgs:   MessagesFor(action),
		view:   table.NewCounterfactualView(),
	}
}

// Action returns the action this context runs.
func (c *Context) Action() service.Action { return c.action }

// Begin marks the context as loading. It fails without side effects other
// than a notice when nothing is selected, and with ErrInFlight while a
// request is pending.
func (c *Context) Begin(selected string) error {
	if selected == "" {
		err := &service.ValidationError{Field: "selected_smiles", Message: c.msgs.Validation}
		c.notify.Notify(Notice{Level: LevelError, Message: c.msgs.Validation, Err: err})
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrInFlight
	}
	c.loading = true
	return nil
}

// Finish ends a request started with Begin. On success the results replace
// the previous ones; on failure they are left untouched.
func (c *Context) Finish(env *predictions.Envelope, err error) ([]predictions.Counterfactual, error) {
	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.mu.Unlock()
		c.notify.Notify(Notice{Level: LevelError, Message: c.msgs.Failure, Err: err})
		return nil, err
	}
	results := predictions.NormalizeCounterfactuals(env)
	c.results = results
	c.view.SetRows(results)
	c.mu.Unlock()
	c.notify.Notify(Notice{Level: LevelSuccess, Message: c.msgs.Success})
	return append([]predictions.Counterfactual(nil), results...), nil
}

// Run performs the whole request for selected. It blocks until the service
// answers.
func (c *Context) Run(ctx context.Context, selected string, model service.ModelChoice) ([]predictions.Counterfactual, error) {
	if err := c.Begin(selected); err != nil {
		return nil, err
	}
	env, err := c.gen.Generate(ctx, c.action, selected, model)
	return c.Finish(env, err)
}

// Loading reports whether a request is pending.
func (c *Context) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Enabled reports whether the trigger may be used: something is selected and
// no request is pending.
func (c *Context) Enabled(selected string) bool {
	return selected != "" && !c.Loading()
}

// Results returns the last successful results.
func (c *Context) Results() []predictions.Counterfactual {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]predictions.Counterfactual(nil), c.results...)
}

// Restore replaces the results without a request, e.g. from a saved run.
func (c *Context) Restore(results []predictions.Counterfactual) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append([]predictions.Counterfactual(nil), results...)
	c.view.SetRows(c.results)
}

// View returns the table over the results. Callers must not use it
// concurrently with Finish.
func (c *Context) View() *table.View[predictions.Counterfactual] { return c.view }
