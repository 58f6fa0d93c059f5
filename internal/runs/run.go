// Package runs persists prediction result sets so later commands can browse,
// export and explore them.
package runs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/KaramelBytes/molscope-cli/internal/service"
	"github.com/KaramelBytes/molscope-cli/internal/utils"
	"github.com/google/uuid"
)

const runFileName = "run.json"

// Results maps a secondary action to its latest results.
type Results map[service.Action][]predictions.Counterfactual

// Run is one primary prediction result plus any secondary results obtained
// from it.
type Run struct {
	ID        string              `json:"id"`
	Model     service.ModelChoice `json:"model"`
	Source    string              `json:"source"`
	CreatedAt time.Time           `json:"created_at"`
	Rows      []predictions.Row   `json:"rows"`
	Secondary Results             `json:"secondary,omitempty"`

	// directory holding run.json, set by Load and Save
	dir string
}

// NewRun constructs an in-memory run with a fresh ID. Persist it with
// Store.Save.
func NewRun(model service.ModelChoice, source string, rows []predictions.Row) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Model:     model,
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Rows:      rows,
		Secondary: Results{},
	}
}

// Dir returns the on-disk run directory, empty before the first save.
func (r *Run) Dir() string { return r.dir }

// ShortID is the first eight characters of the ID.
func (r *Run) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}

// SetSecondary stores the latest results of action, replacing earlier ones.
func (r *Run) SetSecondary(action service.Action, results []predictions.Counterfactual) {
	if r.Secondary == nil {
		r.Secondary = Results{}
	}
	r.Secondary[action] = results
}

// LoadRun reads run.json from dir.
func LoadRun(dir string) (*Run, error) {
	path := filepath.Join(dir, runFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("run not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read run: %w", err)
	}
	var r Run
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse run: %w", err)
	}
	r.dir = dir
	return &r, nil
}

func (r *Run) save(dir string) error {
	if err := utils.EnsureDir(dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(r)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(filepath.Join(dir, runFileName), data); err != nil {
		return err
	}
	r.dir = dir
	return nil
}
