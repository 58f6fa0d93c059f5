package predictions

// Column keys shared by table views and exports.
const (
	KeySMILES        = "SMILES"
	KeyPrediction    = "Prediction"
	KeyConfidence    = "Confidence"
	KeyApplicability = "Applicability"
	KeyStructure     = "ChemicalStructure"
	KeyGroundTruth   = "GroundTruth"
)

// NotAvailable fills text fields the service left out.
const NotAvailable = "N/A"

// Row is one normalized primary prediction.
type Row struct {
	SMILES        string `json:"smiles"`
	Prediction    string `json:"prediction"`
	Confidence    string `json:"confidence"`
	Applicability string `json:"applicability"`
	// Structure is an opaque markup fragment embedding one image.
	Structure string `json:"structure,omitempty"`
	// GroundTruth is empty when the reference file had no label for SMILES.
	GroundTruth string `json:"ground_truth,omitempty"`
}

// Value returns the field stored under a column key.
func (r Row) Value(key string) (string, bool) {
	switch key {
	case KeySMILES:
		return r.SMILES, true
	case KeyPrediction:
		return r.Prediction, true
	case KeyConfidence:
		return r.Confidence, true
	case KeyApplicability:
		return r.Applicability, true
	case KeyStructure:
		return r.Structure, true
	case KeyGroundTruth:
		return r.GroundTruth, r.GroundTruth != ""
	}
	return "", false
}

// HasGroundTruth reports whether a reference label was attached.
func (r Row) HasGroundTruth() bool { return r.GroundTruth != "" }

// Counterfactual is one row produced by a secondary generation request.
type Counterfactual struct {
	SMILES     string `json:"smiles"`
	Prediction string `json:"prediction"`
	Confidence string `json:"confidence"`
}

// Value returns the field stored under a column key.
func (c Counterfactual) Value(key string) (string, bool) {
	switch key {
	case KeySMILES:
		return c.SMILES, true
	case KeyPrediction:
		return c.Prediction, true
	case KeyConfidence:
		return c.Confidence, true
	}
	return "", false
}
