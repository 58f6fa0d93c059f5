// Package report summarizes a prediction result set as Markdown.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
)

// Report is a markdown-friendly summary of prediction rows.
type Report struct {
	Name          string
	Model         string
	Rows          int
	Classes       []CategoryCount
	Confidence    Stats
	Applicability []CategoryCount
	Agreement     *Agreement
}

type CategoryCount struct {
	Value string
	Count int
}

// Stats holds numeric statistics over the confidence column.
type Stats struct {
	Count          int
	Missing        int
	Min, Max, Mean float64
	Std            float64
}

// Agreement compares predictions with ground-truth labels.
type Agreement struct {
	Labeled  int
	Compared int
	Correct  int
	// Confusion[truth][predicted], indexed Sensitizer=0, Non-sensitizer=1.
	Confusion [2][2]int
}

// Accuracy is Correct/Compared, 0 when nothing was compared.
func (a *Agreement) Accuracy() float64 {
	if a == nil || a.Compared == 0 {
		return 0
	}
	return float64(a.Correct) / float64(a.Compared)
}

var classOrder = []predictions.Class{predictions.Sensitizer, predictions.NonSensitizer}

// Build summarizes rows.
func Build(name, model string, rows []predictions.Row) *Report {
	rep := &Report{Name: name, Model: model, Rows: len(rows)}

	classCounts := map[string]int{}
	applCounts := map[string]int{}
	var (
		n        int
		mean, m2 float64
	)
	lo, hi := math.Inf(1), math.Inf(-1)
	var agree Agreement
	for _, r := range rows {
		if idx, ok := classIndex(r.Prediction); ok {
			classCounts[classOrder[idx].Title]++
		} else {
			classCounts[r.Prediction]++
		}
		applCounts[r.Applicability]++

		if x, ok := predictions.ConfidenceValue(r.Confidence); ok {
			// Welford update
			n++
			lo, hi = math.Min(lo, x), math.Max(hi, x)
			delta := x - mean
			mean += delta / float64(n)
			m2 += delta * (x - mean)
		} else {
			rep.Confidence.Missing++
		}

		if !r.HasGroundTruth() {
			continue
		}
		agree.Labeled++
		truth, okT := classIndex(r.GroundTruth)
		pred, okP := classIndex(r.Prediction)
		if !okT || !okP {
			continue
		}
		agree.Compared++
		agree.Confusion[truth][pred]++
		if truth == pred {
			agree.Correct++
		}
	}

	rep.Confidence.Count = n
	if n > 0 {
		rep.Confidence.Min, rep.Confidence.Max, rep.Confidence.Mean = lo, hi, mean
		if n > 1 {
			rep.Confidence.Std = math.Sqrt(m2 / float64(n-1))
		}
	}
	rep.Classes = sortCounts(classCounts)
	rep.Applicability = sortCounts(applCounts)
	if agree.Labeled > 0 {
		rep.Agreement = &agree
	}
	return rep
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Prediction report\n\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("- Source: %s\n", safeVal(r.Name)))
	}
	if r.Model != "" {
		b.WriteString(fmt.Sprintf("- Model: %s\n", r.Model))
	}
	b.WriteString(fmt.Sprintf("- Molecules: %d\n\n", r.Rows))

	b.WriteString("## Predictions\n\n")
	writeCounts(&b, "Prediction", r.Classes, r.Rows)

	b.WriteString("\n## Confidence\n\n")
	if r.Confidence.Count == 0 {
		b.WriteString("No numeric confidence values.\n")
	} else {
		c := r.Confidence
		b.WriteString("| Count | Min | Max | Mean | Std |\n|---|---|---|---|---|\n")
		b.WriteString(fmt.Sprintf("| %d | %.4g | %.4g | %.4g | %.4g |\n", c.Count, c.Min, c.Max, c.Mean, c.Std))
		if c.Missing > 0 {
			b.WriteString(fmt.Sprintf("\n%d rows without a numeric confidence.\n", c.Missing))
		}
	}

	b.WriteString("\n## Applicability domain\n\n")
	writeCounts(&b, "Applicability", r.Applicability, r.Rows)

	if a := r.Agreement; a != nil {
		b.WriteString("\n## Ground truth agreement\n\n")
		b.WriteString(fmt.Sprintf("- Labeled rows: %d\n", a.Labeled))
		b.WriteString(fmt.Sprintf("- Compared: %d\n", a.Compared))
		b.WriteString(fmt.Sprintf("- Accuracy: %.1f%%\n\n", a.Accuracy()*100))
		b.WriteString("| Truth \\ Predicted | Sensitizer | Non-sensitizer |\n|---|---|---|\n")
		for i, c := range classOrder {
			b.WriteString(fmt.Sprintf("| %s | %d | %d |\n", c.Title, a.Confusion[i][0], a.Confusion[i][1]))
		}
	}
	return b.String()
}

func writeCounts(b *strings.Builder, title string, counts []CategoryCount, total int) {
	if len(counts) == 0 {
		b.WriteString("No rows.\n")
		return
	}
	b.WriteString(fmt.Sprintf("| %s | Count | Share |\n|---|---|---|\n", title))
	for _, c := range counts {
		share := 0.0
		if total > 0 {
			share = float64(c.Count) * 100 / float64(total)
		}
		b.WriteString(fmt.Sprintf("| %s | %d | %.1f%% |\n", safeVal(c.Value), c.Count, share))
	}
}

// NormalizeLabel folds case and compatibility forms so that labels typed by
// hand compare equal to the service's.
func NormalizeLabel(s string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}

func classIndex(label string) (int, bool) {
	key := NormalizeLabel(label)
	for i, c := range classOrder {
		for _, l := range c.Labels {
			if NormalizeLabel(l) == key {
				return i, true
			}
		}
	}
	return 0, false
}

func sortCounts(m map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(m))
	for k, v := range m {
		out = append(out, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
