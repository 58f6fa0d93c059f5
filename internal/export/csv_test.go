package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCSVQuotesEveryField(t *testing.T) {
	rows := []predictions.Row{
		{SMILES: "CCO", Prediction: "Sensitizer", Confidence: "90%", Applicability: "In domain", Structure: "<img>"},
		{SMILES: `C"C`, Prediction: "N/A", Confidence: "12", Applicability: "Out, of domain"},
	}
	got := ToCSV(rows, PredictionColumns)
	want := "SMILES,Prediction,Confidence,Applicability\n" +
		`"CCO","Sensitizer","90%","In domain"` + "\n" +
		`"C""C","N/A","12","Out, of domain"`
	assert.Equal(t, want, got)
	assert.False(t, strings.HasSuffix(got, "\n"))
}

func TestToCSVHeaderOnly(t *testing.T) {
	assert.Equal(t, "SMILES,Prediction,Confidence", ToCSV([]predictions.Counterfactual{}, CounterfactualColumns))
}

func TestToCSVMissingColumnIsEmpty(t *testing.T) {
	rows := []predictions.Counterfactual{{SMILES: "N", Prediction: "0", Confidence: "1"}}
	got := ToCSV(rows, []Column{{Key: predictions.KeySMILES, Title: "SMILES"}, {Key: predictions.KeyApplicability, Title: "Applicability"}})
	assert.Equal(t, "SMILES,Applicability\n\"N\",\"\"", got)
}

func TestToCSVRoundTrip(t *testing.T) {
	rows := []predictions.Row{
		{SMILES: "CC(=O)O", Prediction: `say "hi"`, Confidence: "1,000", Applicability: "plain"},
		{SMILES: "C\nC", Prediction: `""`, Confidence: "", Applicability: `a,"b",c`},
	}
	r := csv.NewReader(strings.NewReader(ToCSV(rows, PredictionColumns)))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(rows)+1)
	for i, row := range rows {
		for j, c := range PredictionColumns {
			want, _ := row.Value(c.Key)
			assert.Equal(t, want, records[i+1][j])
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, WriteFile(path, "a,b"))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b", string(b))
}
