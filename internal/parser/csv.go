package parser

import (
	"fmt"
	"os"
)

// ReadGroundTruthFile loads a separate reference CSV. A file lacking the
// expected columns yields an empty lookup.
func ReadGroundTruthFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ground truth: %w", err)
	}
	defer f.Close()
	return GroundTruth(f)
}
