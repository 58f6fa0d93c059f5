package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
)

func sampleRows() []predictions.Row {
	return []predictions.Row{
		{SMILES: "CCO", Prediction: "Sensitizer", Confidence: "90%", Applicability: "In domain", GroundTruth: "1"},
		{SMILES: "CCN", Prediction: "1", Confidence: "70%", Applicability: "In domain", GroundTruth: "non-sensitizer"},
		{SMILES: "CCC", Prediction: "Non-sensitizer", Confidence: "N/A", Applicability: "Out of domain", GroundTruth: "ＮＯＮ-ＳＥＮＳＩＴＩＺＥＲ"},
		{SMILES: "CCCl", Prediction: "0", Confidence: "50", Applicability: "N/A", GroundTruth: "maybe"},
		{SMILES: "CCBr", Prediction: "N/A", Confidence: "abc", Applicability: "N/A"},
	}
}

func TestBuildCounts(t *testing.T) {
	rep := Build("batch.csv", "in vivo (LLNA)", sampleRows())
	assert.Equal(t, 5, rep.Rows)
	assert.Equal(t, []CategoryCount{
		{Value: "Non-sensitizer", Count: 2},
		{Value: "Sensitizer", Count: 2},
		{Value: "N/A", Count: 1},
	}, rep.Classes)
	assert.Equal(t, CategoryCount{Value: "In domain", Count: 2}, rep.Applicability[0])

	c := rep.Confidence
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, 2, c.Missing)
	assert.InDelta(t, 50, c.Min, 1e-9)
	assert.InDelta(t, 90, c.Max, 1e-9)
	assert.InDelta(t, 70, c.Mean, 1e-9)
	assert.InDelta(t, 20, c.Std, 1e-9)
}

func TestBuildAgreement(t *testing.T) {
	rep := Build("", "", sampleRows())
	a := rep.Agreement
	require.NotNil(t, a)
	assert.Equal(t, 4, a.Labeled)
	assert.Equal(t, 3, a.Compared)
	assert.Equal(t, 2, a.Correct)
	assert.Equal(t, [2][2]int{{1, 0}, {1, 1}}, a.Confusion)
	assert.InDelta(t, 2.0/3.0, a.Accuracy(), 1e-9)
}

func TestNoGroundTruthMeansNoAgreement(t *testing.T) {
	rep := Build("", "", []predictions.Row{{SMILES: "CCO", Prediction: "Sensitizer"}})
	assert.Nil(t, rep.Agreement)
	assert.NotContains(t, rep.Markdown(), "Ground truth agreement")
}

func TestMarkdown(t *testing.T) {
	md := Build("a|b.csv", "human", sampleRows()).Markdown()
	assert.Contains(t, md, "# Prediction report")
	assert.Contains(t, md, "- Source: a/b.csv")
	assert.Contains(t, md, "| Sensitizer | 2 | 40.0% |")
	assert.Contains(t, md, "| 3 | 50 | 90 | 70 | 20 |")
	assert.Contains(t, md, "- Accuracy: 66.7%")
	assert.Contains(t, md, "| Non-sensitizer | 1 | 1 |")
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, NormalizeLabel("Sensitizer"), NormalizeLabel(" SENSITIZER "))
	assert.Equal(t, NormalizeLabel("sensitizer"), NormalizeLabel("ｓｅｎｓｉｔｉｚｅｒ"))
}
