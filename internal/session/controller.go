// Package session owns the prediction rows of one result set and the views
// derived from them.
package session

import (
	"context"

	"github.com/KaramelBytes/molscope-cli/internal/explore"
	"github.com/KaramelBytes/molscope-cli/internal/export"
	"github.com/KaramelBytes/molscope-cli/internal/picker"
	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/KaramelBytes/molscope-cli/internal/service"
	"github.com/KaramelBytes/molscope-cli/internal/table"
)

// Controller is the single owner of the row sequence. The table, the pickers
// and the explore contexts only ever read from it.
type Controller struct {
	model     service.ModelChoice
	rows      []predictions.Row
	table     *table.View[predictions.Row]
	pickers   map[service.Action]*picker.List
	explorers map[service.Action]*explore.Context
}

// New returns an empty controller whose explore contexts use gen.
func New(gen explore.Generator, notify explore.Notifier) *Controller {
	c := &Controller{
		model:     service.DefaultModel,
		table:     table.NewPredictionView(),
		pickers:   map[service.Action]*picker.List{},
		explorers: map[service.Action]*explore.Context{},
	}
	for _, a := range service.Actions() {
		c.pickers[a] = picker.New(explore.ClassFor(a))
		c.explorers[a] = explore.NewContext(a, gen, notify)
	}
	return c
}

// Load replaces the row sequence wholesale and refreshes every derived view.
func (c *Controller) Load(rows []predictions.Row) {
	c.rows = append([]predictions.Row(nil), rows...)
	c.table.SetRows(c.rows)
	for _, p := range c.pickers {
		p.SetRows(c.rows)
	}
}

// LoadEnvelope normalizes env and loads the result.
func (c *Controller) LoadEnvelope(env *predictions.Envelope, groundTruth map[string]string) []predictions.Row {
	rows := predictions.Normalize(env, groundTruth)
	c.Load(rows)
	return rows
}

// Rows returns a copy of the authoritative rows.
func (c *Controller) Rows() []predictions.Row {
	return append([]predictions.Row(nil), c.rows...)
}

// Model returns the model secondary requests are made with.
func (c *Controller) Model() service.ModelChoice { return c.model }

// SetModel sets the model used for secondary requests.
func (c *Controller) SetModel(m service.ModelChoice) {
	if m != "" {
		c.model = m
	}
}

// Table returns the primary table view.
func (c *Controller) Table() *table.View[predictions.Row] { return c.table }

// Picker returns the candidate list feeding action.
func (c *Controller) Picker(a service.Action) *picker.List { return c.pickers[a] }

// Explorer returns the explore context of action.
func (c *Controller) Explorer(a service.Action) *explore.Context { return c.explorers[a] }

// Run launches action for the SMILES currently selected in its picker.
func (c *Controller) Run(ctx context.Context, a service.Action) ([]predictions.Counterfactual, error) {
	selected, _ := c.pickers[a].Selected()
	return c.explorers[a].Run(ctx, selected, c.model)
}

// ExportCSV serializes the filtered and sorted rows of the table, across all
// pages.
func (c *Controller) ExportCSV() string {
	return export.ToCSV(c.table.Filtered(), export.PredictionColumns)
}

// Export writes ExportCSV to path, or to predictions.csv when path is empty.
func (c *Controller) Export(path string) (string, error) {
	if path == "" {
		path = export.DefaultFilename
	}
	if err := export.WriteFile(path, c.ExportCSV()); err != nil {
		return "", err
	}
	return path, nil
}
