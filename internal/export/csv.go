package export

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/KaramelBytes/molscope-cli/internal/utils"
)

// DefaultFilename is the name offered for downloaded prediction tables.
const DefaultFilename = "predictions.csv"

// Column maps a record key to the header written for it.
type Column struct {
	Key   string
	Title string
}

// Valuer is any record that can look up a field by column key.
type Valuer interface {
	Value(key string) (string, bool)
}

// PredictionColumns is the primary export layout. Structure markup is left out.
var PredictionColumns = []Column{
	{Key: predictions.KeySMILES, Title: "SMILES"},
	{Key: predictions.KeyPrediction, Title: "Prediction"},
	{Key: predictions.KeyConfidence, Title: "Confidence"},
	{Key: predictions.KeyApplicability, Title: "Applicability"},
}

// CounterfactualColumns is the layout for secondary results.
var CounterfactualColumns = []Column{
	{Key: predictions.KeySMILES, Title: "SMILES"},
	{Key: predictions.KeyPrediction, Title: "Prediction"},
	{Key: predictions.KeyConfidence, Title: "Confidence"},
}

// ToCSV renders rows as CSV text. Every field is quoted, lines end in \n and
// there is no trailing newline.
func ToCSV[R Valuer](rows []R, columns []Column) string {
	lines := make([]string, 0, len(rows)+1)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Title
	}
	lines = append(lines, strings.Join(header, ","))
	fields := make([]string, len(columns))
	for _, r := range rows {
		for i, c := range columns {
			v, _ := r.Value(c.Key)
			fields[i] = Quote(v)
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n")
}

// Quote wraps s in double quotes, doubling any quote inside it.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteFile writes CSV text to path atomically.
func WriteFile(path, text string) error {
	if err := utils.SafeWriteFile(path, []byte(text)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
