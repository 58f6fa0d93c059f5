package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/KaramelBytes/molscope-cli/internal/service"
	"github.com/KaramelBytes/molscope-cli/internal/session"
)

type fakeGenerator struct {
	calls  int
	smiles string
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, _ service.Action, smiles string, _ service.ModelChoice) (*predictions.Envelope, error) {
	f.calls++
	f.smiles = smiles
	if f.err != nil {
		return nil, f.err
	}
	return predictions.NewEnvelope().Set(predictions.FieldSMILES, predictions.NewColumn("0", smiles+"N", "1", smiles+"Cl")), nil
}

func newBrowser(t *testing.T, rows []predictions.Row, gen *fakeGenerator, opts ...Option) (*Model, *session.Controller) {
	t.Helper()
	toasts := &Toasts{}
	ctl := session.New(gen, toasts)
	ctl.Load(rows)
	return New(ctl, gen, toasts, opts...), ctl
}

func sensitizers(n int) []predictions.Row {
	rows := make([]predictions.Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, predictions.Row{
			SMILES:        fmt.Sprintf("C%dO", i),
			Prediction:    "Sensitizer",
			Confidence:    fmt.Sprintf("%d%%", i),
			Applicability: "In domain",
		})
	}
	return rows
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

// results runs cmd and the batches it expands to, returning the first
// resultMsg produced.
func results(t *testing.T, cmd tea.Cmd) resultMsg {
	t.Helper()
	require.NotNil(t, cmd)
	switch msg := cmd().(type) {
	case resultMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if r, ok := c().(resultMsg); ok {
				return r
			}
		}
	}
	t.Fatal("no result message")
	return resultMsg{}
}

func TestTablePagingSortAndSearch(t *testing.T) {
	m, ctl := newBrowser(t, sensitizers(25), &fakeGenerator{})
	view := ctl.Table()
	assert.Equal(t, 3, view.PageCount())

	press(m, "n")
	assert.Equal(t, 1, view.PageIndex())
	press(m, "p", "p")
	assert.Equal(t, 0, view.PageIndex())

	press(m, "s")
	assert.Equal(t, predictions.KeySMILES, view.State().SortKey)
	press(m, "r")
	assert.Equal(t, "desc", view.State().Direction.String())
	press(m, "S")
	assert.Empty(t, view.State().SortKey)

	press(m, "/", "C1")
	assert.True(t, m.searching)
	assert.Equal(t, "C1", view.State().Query)
	press(m, "enter")
	assert.False(t, m.searching)
	// C1O and C10O..C19O
	assert.Len(t, view.Filtered(), 11)
	assert.Contains(t, m.View(), "11 rows")
}

func TestPickerRevealsAsCursorMoves(t *testing.T) {
	m, ctl := newBrowser(t, sensitizers(60), &fakeGenerator{})
	list := ctl.Picker(service.ActionCounterfactuals)

	press(m, "tab")
	require.True(t, list.IsOpen())
	assert.Equal(t, 50, list.VisibleCount())

	for i := 0; i < 44; i++ {
		press(m, "down")
	}
	assert.Equal(t, 50, list.VisibleCount())
	press(m, "down")
	assert.Equal(t, 60, list.VisibleCount())

	press(m, "enter")
	selected, ok := list.Selected()
	require.True(t, ok)
	assert.Equal(t, "C45O", selected)
	assert.False(t, list.IsOpen())
	assert.Equal(t, "Selected C45O", m.toast)
}

func TestPickerSearch(t *testing.T) {
	m, ctl := newBrowser(t, sensitizers(30), &fakeGenerator{})
	press(m, "tab", "/", "C2")
	assert.Equal(t, 11, ctl.Picker(service.ActionCounterfactuals).Len())
	// the table filter is untouched
	assert.Empty(t, ctl.Table().State().Query)
}

func TestTriggerRunsActionAndSaves(t *testing.T) {
	gen := &fakeGenerator{}
	var saved []predictions.Counterfactual
	m, ctl := newBrowser(t, sensitizers(3), gen, WithSaveFunc(func(a service.Action, r []predictions.Counterfactual) error {
		assert.Equal(t, service.ActionCounterfactuals, a)
		saved = r
		return nil
	}))

	press(m, "tab", "down", "enter")
	cmd := press(m, "g")
	ex := ctl.Explorer(service.ActionCounterfactuals)
	assert.True(t, ex.Loading())
	assert.Contains(t, m.View(), "generating")

	// a second trigger while loading is rejected
	press(m, "g")
	assert.Equal(t, "A request is already running", m.toast)

	_, _ = m.Update(results(t, cmd))
	assert.False(t, ex.Loading())
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "C1O", gen.smiles)
	require.Len(t, saved, 2)
	assert.Equal(t, "C1ON", saved[0].SMILES)
	assert.Equal(t, "Counterfactuals generated successfully", m.toast)
	assert.False(t, m.toastErr)
	assert.Contains(t, m.View(), "C1ON")
}

func TestTriggerFailureKeepsResults(t *testing.T) {
	gen := &fakeGenerator{}
	m, ctl := newBrowser(t, sensitizers(2), gen)
	press(m, "tab", "enter")
	_, _ = m.Update(results(t, press(m, "g")))
	require.Len(t, ctl.Explorer(service.ActionCounterfactuals).Results(), 2)

	gen.err = errors.New("boom")
	_, _ = m.Update(results(t, press(m, "g")))
	assert.True(t, m.toastErr)
	assert.Contains(t, m.toast, "Failed to generate counterfactuals")
	assert.Len(t, ctl.Explorer(service.ActionCounterfactuals).Results(), 2)
}

func TestTriggerWithoutSelection(t *testing.T) {
	gen := &fakeGenerator{}
	m, _ := newBrowser(t, sensitizers(2), gen)
	press(m, "tab", "tab", "g")
	assert.Equal(t, 0, gen.calls)
	assert.True(t, m.toastErr)
	assert.Equal(t, "Please select a non-sensitizer SMILES", m.toast)
}

func TestCopySelection(t *testing.T) {
	var copied string
	m, _ := newBrowser(t, sensitizers(2), &fakeGenerator{}, WithClipboard(func(s string) error {
		copied = s
		return nil
	}))
	press(m, "tab", "y")
	assert.True(t, m.toastErr)
	assert.Empty(t, copied)

	press(m, "enter", "y")
	assert.Equal(t, "C0O", copied)
	assert.Equal(t, "Copied C0O", m.toast)
}

func TestExportWritesFilteredRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	m, _ := newBrowser(t, sensitizers(12), &fakeGenerator{}, WithExportPath(path))
	press(m, "/", "C1", "enter", "e")
	assert.Equal(t, "Exported 3 rows to "+path, m.toast)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "C11O")
	assert.NotContains(t, string(data), "C2O")
}
