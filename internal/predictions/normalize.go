package predictions

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	leadingNumPattern = regexp.MustCompile(`^[-+]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?`)
)

// Normalize converts a prediction envelope into rows ordered by the SMILES
// column. Missing fields degrade to placeholders; it never fails.
func Normalize(env *Envelope, groundTruth map[string]string) []Row {
	smiles := env.Field(FieldSMILES)
	if smiles.Len() == 0 {
		return []Row{}
	}
	pred := env.Field(FieldPrediction)
	conf := env.Field(FieldConfidence)
	appl := env.Field(FieldApplicability)
	structure := env.Field(FieldStructure)

	rows := make([]Row, 0, smiles.Len())
	for _, key := range smiles.Keys() {
		s, _ := smiles.Get(key)
		p, _ := pred.Get(key)
		st, _ := structure.Get(key)
		row := Row{
			SMILES:        s,
			Prediction:    orNA(StripTags(p)),
			Confidence:    lookupOrNA(conf, key),
			Applicability: lookupOrNA(appl, key),
			Structure:     st,
		}
		if gt := groundTruth[s]; gt != "" {
			row.GroundTruth = gt
		}
		rows = append(rows, row)
	}
	return rows
}

// NormalizeCounterfactuals converts a secondary-result envelope into rows.
func NormalizeCounterfactuals(env *Envelope) []Counterfactual {
	smiles := env.Field(FieldSMILES)
	if smiles.Len() == 0 {
		return []Counterfactual{}
	}
	pred := env.Field(FieldPrediction)
	conf := env.Field(FieldCounterfactualConfidence)

	out := make([]Counterfactual, 0, smiles.Len())
	for _, key := range smiles.Keys() {
		s, _ := smiles.Get(key)
		out = append(out, Counterfactual{
			SMILES:     s,
			Prediction: lookupOrNA(pred, key),
			Confidence: lookupOrNA(conf, key),
		})
	}
	return out
}

// StripTags removes markup tags, leaving the text between them.
func StripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	return tagPattern.ReplaceAllString(s, "")
}

// ParseConfidence reads the leading number of a confidence text such as
// "87%" or "12.5 %". Text without a leading number is 0.
func ParseConfidence(s string) float64 {
	f, _ := ConfidenceValue(s)
	return f
}

// ConfidenceValue is ParseConfidence that also reports whether a number was
// found.
func ConfidenceValue(s string) (float64, bool) {
	m := leadingNumPattern.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func lookupOrNA(c *Column, key string) string {
	v, _ := c.Get(key)
	return orNA(v)
}

func orNA(v string) string {
	if v == "" {
		return NotAvailable
	}
	return v
}
