package table

import (
	"strings"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
)

// PredictionSchema is the layout of the primary prediction table.
func PredictionSchema() Schema {
	return Schema{
		Columns: []ColumnSpec{
			{Key: predictions.KeySMILES, Title: "SMILES", Sortable: true},
			{Key: predictions.KeyGroundTruth, Title: "Ground Truth", Sortable: true, Optional: true},
			{Key: predictions.KeyPrediction, Title: "Prediction", Sortable: true},
			{Key: predictions.KeyConfidence, Title: "Confidence", Sortable: true, Numeric: true},
			{Key: predictions.KeyApplicability, Title: "Applicability", Sortable: true},
			{Key: predictions.KeyStructure, Title: "Chemical Structure"},
		},
		FilterKeys: []string{predictions.KeySMILES, predictions.KeyPrediction, predictions.KeyApplicability},
		PageSize:   PageSize,
	}
}

// CounterfactualSchema is the layout of a secondary result table.
func CounterfactualSchema() Schema {
	return Schema{
		Columns: []ColumnSpec{
			{Key: predictions.KeySMILES, Title: "SMILES", Sortable: true},
			{Key: predictions.KeyPrediction, Title: "Prediction", Sortable: true},
			{Key: predictions.KeyConfidence, Title: "Confidence", Sortable: true, Numeric: true},
		},
		FilterKeys: []string{predictions.KeySMILES, predictions.KeyPrediction},
	}
}

// NewPredictionView returns an empty primary table.
func NewPredictionView() *View[predictions.Row] {
	return New[predictions.Row](PredictionSchema())
}

// NewCounterfactualView returns an empty secondary result table.
func NewCounterfactualView() *View[predictions.Counterfactual] {
	return New[predictions.Counterfactual](CounterfactualSchema())
}

// ColumnByKey finds a column of schema by key or case-insensitive title.
func (s Schema) ColumnByKey(name string) (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if c.Key == name || strings.EqualFold(c.Title, name) || strings.EqualFold(c.Key, name) {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// Cell returns the terminal text of column key for r. Structure markup is
// replaced by a placeholder.
func Cell[R Row](r R, key string) string {
	v, _ := r.Value(key)
	if key != predictions.KeyStructure {
		return v
	}
	if v == "" {
		return "-"
	}
	return "[image]"
}
