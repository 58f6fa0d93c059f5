package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
	"github.com/KaramelBytes/molscope-cli/internal/testutil"
)

const predictBody = `{"predictions": {
	"SMILES": {"1": "CC(=O)O", "0": "CCO"},
	"Prediction": {"0": "Sensitizer", "1": "Non-sensitizer"},
	"Confidence (%)": {"0": "91%", "1": "63%"},
	"Applicability": {"0": "In domain"},
	"Chemical structure": {}
}}`

func TestPredictSendsMultipartSMILES(t *testing.T) {
	var calls int32
	srv := testutil.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost || r.URL.Path != "/api/predict" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("model_choice"); got != string(ModelLLNA) {
			t.Errorf("model_choice = %q", got)
		}
		if got := r.FormValue("smiles"); got != "CCO" {
			t.Errorf("smiles = %q", got)
		}
		_, _ = io.WriteString(w, predictBody)
	}))

	c := NewClient(srv.URL+"/api/", 2*time.Second)
	env, err := c.Predict(context.Background(), PredictRequest{Model: ModelLLNA, SMILES: " CCO "})
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
	rows := predictions.Normalize(env, nil)
	if len(rows) != 2 || rows[0].SMILES != "CC(=O)O" || rows[1].Applicability != "In domain" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected exactly one call, got %d", calls)
	}
}

func TestPredictUploadsFile(t *testing.T) {
	srv := testutil.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		if hdr.Filename != "batch.csv" || string(b) != "SMILES\nCCO\n" {
			t.Errorf("unexpected upload %s %q", hdr.Filename, b)
		}
		if r.FormValue("smiles") != "" {
			t.Errorf("smiles should not be sent with a file")
		}
		_, _ = io.WriteString(w, predictBody)
	}))

	c := NewClient(srv.URL, 2*time.Second)
	_, err := c.Predict(context.Background(), PredictRequest{Model: DefaultModel, FileName: "batch.csv", File: []byte("SMILES\nCCO\n")})
	if err != nil {
		t.Fatalf("Predict returned error: %v", err)
	}
}

func TestPredictValidationSkipsNetwork(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	cases := []PredictRequest{
		{Model: DefaultModel},
		{Model: "bogus", SMILES: "CCO"},
		{Model: DefaultModel, SMILES: "CCO", File: []byte("SMILES\n")},
		{Model: DefaultModel, FileName: "x.csv"},
	}
	for _, req := range cases {
		_, err := c.Predict(context.Background(), req)
		if !IsValidation(err) {
			t.Fatalf("expected validation error for %+v, got %v", req, err)
		}
	}
}

func TestPredictMissingPredictionsIsShapeError(t *testing.T) {
	for _, body := range []string{`{"result": {}}`, `{"predictions": {"Prediction": {}}}`, `not json`} {
		srv := testutil.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		}))
		c := NewClient(srv.URL, 2*time.Second)
		_, err := c.Predict(context.Background(), PredictRequest{Model: DefaultModel, SMILES: "CCO"})
		var shape *ShapeError
		if !errors.As(err, &shape) {
			t.Fatalf("body %q: expected ShapeError, got %v", body, err)
		}
	}
}

func TestErrorIncludesRequestIDAndMessage(t *testing.T) {
	srv := testutil.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "req_test_123")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "Failed to fetch predictions"})
	}))

	c := NewClient(srv.URL, 2*time.Second)
	_, err := c.Predict(context.Background(), PredictRequest{Model: DefaultModel, SMILES: "CCO"})
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got %T %v", err, err)
	}
	if !strings.Contains(err.Error(), "req_test_123") || !strings.Contains(err.Error(), "Failed to fetch predictions") {
		t.Fatalf("expected request id and message in error, got: %v", err)
	}
}

func TestFailureIsNotRetried(t *testing.T) {
	var calls int32
	srv := testutil.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	c := NewClient(srv.URL, 2*time.Second)
	_, err := c.Generate(context.Background(), ActionCounterfactuals, "CCO", DefaultModel)
	if err == nil {
		t.Fatalf("expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected one attempt, got %d", n)
	}
}

func TestGeneratePostsJSON(t *testing.T) {
	srv := testutil.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/explore-chemical-space" {
			http.NotFound(w, r)
			return
		}
		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.SelectedSMILES != "CCN" || req.ModelChoice != string(ModelDPRA) {
			t.Errorf("unexpected body %+v", req)
		}
		_, _ = io.WriteString(w, `{"CounterfactualPrediction": {"SMILES": {"0": "CCCN"}, "Confidence": {"0": "70"}, "Prediction": {"0": "0"}}}`)
	}))

	c := NewClient(srv.URL, 2*time.Second)
	env, err := c.Generate(context.Background(), ActionChemicalSpace, "CCN", ModelDPRA)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := predictions.NormalizeCounterfactuals(env)
	if len(out) != 1 || out[0].SMILES != "CCCN" || out[0].Confidence != "70" {
		t.Fatalf("unexpected results %+v", out)
	}
}

func TestGenerateWithoutResultKeyIsEmpty(t *testing.T) {
	srv := testutil.NewIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	c := NewClient(srv.URL, 2*time.Second)
	env, err := c.Generate(context.Background(), ActionCounterfactuals, "CCO", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(predictions.NormalizeCounterfactuals(env)) != 0 {
		t.Fatalf("expected no rows")
	}
}

func TestGenerateRequiresSMILES(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	if _, err := c.Generate(context.Background(), ActionCounterfactuals, "  ", DefaultModel); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUnreachableService(t *testing.T) {
	srv := testutil.NewIPv4Server(t, http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := NewClient(url, time.Second)
	_, err := c.Predict(context.Background(), PredictRequest{Model: DefaultModel, SMILES: "CCO"})
	var ue *UnreachableError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnreachableError, got %T %v", err, err)
	}
}

func TestParseModelChoice(t *testing.T) {
	cases := map[string]ModelChoice{
		"":                  ModelHCLAT,
		"LLNA":              ModelLLNA,
		"in chemico (DPRA)": ModelDPRA,
		"Human":             ModelHuman,
		"keratinosens":      ModelKeratinoSens,
	}
	for in, want := range cases {
		got, err := ParseModelChoice(in)
		if err != nil || got != want {
			t.Fatalf("ParseModelChoice(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseModelChoice("rat"); !IsValidation(err) {
		t.Fatalf("expected validation error for unknown model")
	}
}
