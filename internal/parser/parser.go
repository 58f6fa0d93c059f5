// Package parser reads the CSV files users submit for prediction.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/molscope-cli/internal/service"
	"github.com/dustin/go-humanize"
)

// MaxInputBytes caps the size of an uploaded CSV file.
const MaxInputBytes = 10 << 20

// Header names recognized in input files.
const (
	ColumnSMILES      = "SMILES"
	ColumnGroundTruth = "Ground Truth"
)

// Input is a CSV file prepared for upload.
type Input struct {
	Name string
	// Upload is the file content sent to the service, without the ground-truth column.
	Upload      []byte
	GroundTruth map[string]string
	Molecules   int
}

// ReadInput loads and prepares the CSV file at path.
func ReadInput(path string) (*Input, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if info.Size() > MaxInputBytes {
		return nil, &service.ValidationError{Field: "file", Message: fmt.Sprintf("%s is %s; the limit is %s", filepath.Base(path), humanize.Bytes(uint64(info.Size())), humanize.Bytes(MaxInputBytes))}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return ParseInput(filepath.Base(path), data)
}

// ParseInput prepares CSV content for upload. The header must contain a
// SMILES column.
func ParseInput(name string, data []byte) (*Input, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		return nil, &service.ValidationError{Field: "file", Message: fmt.Sprintf("%s is not a CSV file", name)}
	}
	header, records, err := readAll(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	smilesIdx := indexOf(header, ColumnSMILES)
	if smilesIdx < 0 {
		return nil, &service.ValidationError{Field: "file", Message: fmt.Sprintf("%s has no %s column", name, ColumnSMILES)}
	}
	molecules := 0
	for _, rec := range records {
		if smilesIdx < len(rec) && strings.TrimSpace(rec[smilesIdx]) != "" {
			molecules++
		}
	}
	upload, err := StripColumn(data, ColumnGroundTruth)
	if err != nil {
		return nil, err
	}
	gt, _ := GroundTruth(bytes.NewReader(data))
	return &Input{Name: name, Upload: upload, GroundTruth: gt, Molecules: molecules}, nil
}

// GroundTruth builds a SMILES → label lookup from a reference CSV. Without
// both a SMILES and a Ground Truth column the lookup is empty.
func GroundTruth(r io.Reader) (map[string]string, error) {
	out := map[string]string{}
	data, err := io.ReadAll(r)
	if err != nil {
		return out, fmt.Errorf("read ground truth: %w", err)
	}
	header, records, err := readAll(data)
	if err != nil {
		return out, nil
	}
	si, gi := indexOf(header, ColumnSMILES), indexOf(header, ColumnGroundTruth)
	if si < 0 || gi < 0 {
		return out, nil
	}
	for _, rec := range records {
		if si >= len(rec) || gi >= len(rec) {
			continue
		}
		smiles, label := strings.TrimSpace(rec[si]), strings.TrimSpace(rec[gi])
		if smiles != "" && label != "" {
			out[smiles] = label
		}
	}
	return out, nil
}

// StripColumn removes the named column from CSV content. Content without that
// column is returned unchanged.
func StripColumn(data []byte, column string) ([]byte, error) {
	header, records, err := readAll(data)
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	idx := indexOf(header, column)
	if idx < 0 {
		return data, nil
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(without(header, idx)); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(without(rec, idx)); err != nil {
			return nil, fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func readAll(data []byte) ([]string, [][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	return header, records, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func without(rec []string, idx int) []string {
	if idx >= len(rec) {
		return rec
	}
	out := make([]string, 0, len(rec)-1)
	out = append(out, rec[:idx]...)
	return append(out, rec[idx+1:]...)
}
