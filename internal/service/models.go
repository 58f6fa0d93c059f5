package service

import (
	"fmt"
	"strings"
)

// ModelChoice names one of the prediction models the service exposes.
type ModelChoice string

const (
	ModelHCLAT        ModelChoice = "in vitro (H-CLAT)"
	ModelKeratinoSens ModelChoice = "in vitro (KeratinoSens)"
	ModelLLNA         ModelChoice = "in vivo (LLNA)"
	ModelDPRA         ModelChoice = "in chemico (DPRA)"
	ModelHuman        ModelChoice = "human"
)

// DefaultModel is used when no model is given.
const DefaultModel = ModelHCLAT

// ModelInfo describes a model choice for listings.
type ModelInfo struct {
	Choice      ModelChoice
	Alias       string
	Description string
}

var models = []ModelInfo{
	{Choice: ModelHCLAT, Alias: "hclat", Description: "human Cell Line Activation Test"},
	{Choice: ModelKeratinoSens, Alias: "keratinosens", Description: "ARE-Nrf2 luciferase reporter assay"},
	{Choice: ModelLLNA, Alias: "llna", Description: "murine Local Lymph Node Assay"},
	{Choice: ModelDPRA, Alias: "dpra", Description: "Direct Peptide Reactivity Assay"},
	{Choice: ModelHuman, Alias: "human", Description: "human patch-test data"},
}

// Models lists every model choice in display order.
func Models() []ModelInfo { return append([]ModelInfo(nil), models...) }

// ParseModelChoice accepts an exact model name or its short alias, ignoring case.
// An empty value selects DefaultModel.
func ParseModelChoice(s string) (ModelChoice, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultModel, nil
	}
	for _, m := range models {
		if strings.EqualFold(s, string(m.Choice)) || strings.EqualFold(s, m.Alias) {
			return m.Choice, nil
		}
	}
	aliases := make([]string, len(models))
	for i, m := range models {
		aliases[i] = m.Alias
	}
	return "", &ValidationError{Field: "model_choice", Message: fmt.Sprintf("unknown model %q (use one of: %s)", s, strings.Join(aliases, ", "))}
}

// Valid reports whether m is a known model.
func (m ModelChoice) Valid() bool {
	for _, info := range models {
		if info.Choice == m {
			return true
		}
	}
	return false
}
