package runs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/KaramelBytes/molscope-cli/internal/runs"
	"github.com/KaramelBytes/molscope-cli/internal/service"
)

func openStore(t *testing.T) *runs.Store {
	t.Helper()
	s, err := runs.Open(filepath.Join(t.TempDir(), "runs"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndLoadRun(t *testing.T) {
	s := openStore(t)
	r := runs.NewRun(service.ModelLLNA, "batch.csv", []predictions.Row{
		{SMILES: "CCO", Prediction: "Sensitizer", Confidence: "91%", Applicability: "In domain", GroundTruth: "1"},
	})
	r.SetSecondary(service.ActionCounterfactuals, []predictions.Counterfactual{{SMILES: "CCN", Prediction: "0", Confidence: "55"}})
	require.NoError(t, s.Save(r))

	_, err := os.Stat(filepath.Join(s.Dir(), r.ID, "run.json"))
	require.NoError(t, err)

	got, err := s.Load(r.ShortID())
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, service.ModelLLNA, got.Model)
	assert.Equal(t, r.Rows, got.Rows)
	assert.Equal(t, "CCN", got.Secondary[service.ActionCounterfactuals][0].SMILES)
	assert.Equal(t, filepath.Join(s.Dir(), r.ID), got.Dir())
}

func TestListNewestFirstAndLatest(t *testing.T) {
	s := openStore(t)
	older := runs.NewRun(service.DefaultModel, "CCO", nil)
	older.CreatedAt = time.Now().Add(-time.Hour).UTC()
	newer := runs.NewRun(service.ModelDPRA, "CCN", []predictions.Row{{SMILES: "CCN"}})
	require.NoError(t, s.Save(older))
	require.NoError(t, s.Save(newer))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, 1, list[0].Rows)
	assert.Equal(t, service.ModelDPRA, list[0].Model)

	id, err := s.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, id)

	// re-saving must not duplicate the index entry
	newer.SetSecondary(service.ActionChemicalSpace, nil)
	require.NoError(t, s.Save(newer))
	list, err = s.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRemoveRun(t *testing.T) {
	s := openStore(t)
	r := runs.NewRun(service.DefaultModel, "CCO", nil)
	require.NoError(t, s.Save(r))

	id, err := s.Remove(r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, id)

	_, err = s.Load(r.ID)
	assert.True(t, errors.Is(err, runs.ErrNotFound))
	_, err = os.Stat(filepath.Join(s.Dir(), r.ID))
	assert.True(t, os.IsNotExist(err))
}

func TestResolveEmptyStore(t *testing.T) {
	s := openStore(t)
	_, err := s.Resolve("latest")
	assert.ErrorIs(t, err, runs.ErrNotFound)
	_, err = s.Resolve("deadbeef")
	assert.ErrorIs(t, err, runs.ErrNotFound)
}
