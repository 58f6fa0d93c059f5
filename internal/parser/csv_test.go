package parser_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/molscope-cli/internal/parser"
	"github.com/KaramelBytes/molscope-cli/internal/service"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestReadInputStripsGroundTruth(t *testing.T) {
	p := writeFile(t, "smiles.csv", "Name,SMILES,Ground Truth\n"+
		"ethanol,CCO,0\n"+
		"acid, CC(=O)O ,1\n"+
		"blank,,1\n")
	in, err := parser.ReadInput(p)
	if err != nil {
		t.Fatalf("read input: %v", err)
	}
	if in.Molecules != 2 {
		t.Fatalf("expected 2 molecules, got %d", in.Molecules)
	}
	if strings.Contains(string(in.Upload), "Ground Truth") {
		t.Fatalf("ground truth column must not be uploaded: %q", in.Upload)
	}
	if !strings.HasPrefix(string(in.Upload), "Name,SMILES\n") {
		t.Fatalf("unexpected upload header: %q", in.Upload)
	}
	if in.GroundTruth["CCO"] != "0" || in.GroundTruth["CC(=O)O"] != "1" {
		t.Fatalf("unexpected ground truth: %v", in.GroundTruth)
	}
	if len(in.GroundTruth) != 2 {
		t.Fatalf("empty SMILES must be skipped: %v", in.GroundTruth)
	}
}

func TestReadInputWithoutGroundTruthIsUnchanged(t *testing.T) {
	content := "SMILES\nCCO\nCCN\n"
	in, err := parser.ReadInput(writeFile(t, "plain.csv", content))
	if err != nil {
		t.Fatalf("read input: %v", err)
	}
	if string(in.Upload) != content {
		t.Fatalf("expected upload unchanged, got %q", in.Upload)
	}
	if len(in.GroundTruth) != 0 {
		t.Fatalf("expected empty lookup")
	}
}

func TestReadInputRequiresSMILESColumn(t *testing.T) {
	_, err := parser.ReadInput(writeFile(t, "bad.csv", "smiles_string,label\nCCO,1\n"))
	if !service.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = parser.ReadInput(writeFile(t, "notes.txt", "SMILES\nCCO\n"))
	if !service.IsValidation(err) {
		t.Fatalf("expected validation error for non-csv, got %v", err)
	}
}

func TestGroundTruthNeedsBothColumns(t *testing.T) {
	gt, err := parser.GroundTruth(strings.NewReader("SMILES,Label\nCCO,1\n"))
	if err != nil || len(gt) != 0 {
		t.Fatalf("expected empty lookup, got %v %v", gt, err)
	}
	gt, err = parser.ReadGroundTruthFile(writeFile(t, "ref.csv", "\xef\xbb\xbfSMILES, Ground Truth\nCCO, Sensitizer\n"))
	if err != nil || gt["CCO"] != "Sensitizer" {
		t.Fatalf("expected BOM-tolerant lookup, got %v %v", gt, err)
	}
}
