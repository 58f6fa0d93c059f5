package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/molscope-cli/internal/explore"
	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/KaramelBytes/molscope-cli/internal/service"
)

type stubGenerator struct {
	got []string
}

func (s *stubGenerator) Generate(_ context.Context, a service.Action, smiles string, m service.ModelChoice) (*predictions.Envelope, error) {
	s.got = append(s.got, string(a)+"|"+smiles+"|"+string(m))
	return predictions.NewEnvelope().Set(predictions.FieldSMILES, predictions.NewColumn("0", smiles+"N")), nil
}

func sampleRows() []predictions.Row {
	return []predictions.Row{
		{SMILES: "CCO", Prediction: "Sensitizer", Confidence: "90%", Applicability: "In domain"},
		{SMILES: "CC(=O)O", Prediction: "0", Confidence: "40%", Applicability: "N/A"},
		{SMILES: "CCN", Prediction: "1", Confidence: "70%", Applicability: "Out of domain"},
	}
}

func TestLoadFeedsEveryView(t *testing.T) {
	c := New(&stubGenerator{}, nil)
	c.Load(sampleRows())

	assert.Len(t, c.Table().VisibleRows(), 3)
	assert.Equal(t, []string{"CCO", "CCN"}, c.Picker(service.ActionCounterfactuals).Candidates())
	assert.Equal(t, []string{"CC(=O)O"}, c.Picker(service.ActionChemicalSpace).Candidates())
}

func TestLoadReplacesWholesale(t *testing.T) {
	c := New(&stubGenerator{}, nil)
	c.Load(sampleRows())
	require.True(t, c.Picker(service.ActionCounterfactuals).Select("CCN"))

	c.Load([]predictions.Row{{SMILES: "CCO", Prediction: "Sensitizer"}})
	assert.Len(t, c.Rows(), 1)
	_, ok := c.Picker(service.ActionCounterfactuals).Selected()
	assert.False(t, ok, "selection of a vanished row must be cleared")
}

func TestRunUsesPickerSelection(t *testing.T) {
	gen := &stubGenerator{}
	rec := &explore.Recorder{}
	c := New(gen, rec)
	c.Load(sampleRows())
	c.SetModel(service.ModelDPRA)

	_, err := c.Run(context.Background(), service.ActionChemicalSpace)
	require.Error(t, err)
	assert.Empty(t, gen.got)

	require.True(t, c.Picker(service.ActionChemicalSpace).Select("CC(=O)O"))
	out, err := c.Run(context.Background(), service.ActionChemicalSpace)
	require.NoError(t, err)
	assert.Equal(t, []string{"chemical-space|CC(=O)O|in chemico (DPRA)"}, gen.got)
	require.Len(t, out, 1)
	assert.Equal(t, "CC(=O)ON", out[0].SMILES)
	assert.Empty(t, c.Explorer(service.ActionCounterfactuals).Results())
}

func TestExportWritesFilteredSortedRows(t *testing.T) {
	c := New(&stubGenerator{}, nil)
	c.Load(sampleRows())
	c.Table().SetFilter("domain")
	c.Table().SetSort(predictions.KeyConfidence)

	path := filepath.Join(t.TempDir(), "out.csv")
	got, err := c.Export(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "SMILES,Prediction,Confidence,Applicability\n" +
		`"CCO","Sensitizer","90%","In domain"` + "\n" +
		`"CCN","1","70%","Out of domain"`
	assert.Equal(t, want, string(b))
}
