package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/KaramelBytes/molscope-cli/internal/predictions"
)

// Action is a secondary generation request launched from a picked row.
type Action string

const (
	ActionCounterfactuals Action = "counterfactuals"
	ActionChemicalSpace   Action = "chemical-space"
)

// Path returns the endpoint path of the action, without slashes.
func (a Action) Path() string {
	switch a {
	case ActionCounterfactuals:
		return "generate-counterfactuals"
	case ActionChemicalSpace:
		return "explore-chemical-space"
	}
	return ""
}

// Actions lists the secondary actions.
func Actions() []Action { return []Action{ActionCounterfactuals, ActionChemicalSpace} }

// ParseAction resolves an action name.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions() {
		if strings.EqualFold(s, string(a)) || strings.EqualFold(s, a.Path()) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Client talks to the prediction API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// NewClient returns a client for the API rooted at baseURL. A zero timeout
// means requests wait for the service indefinitely.
func NewClient(baseURL string, httpTimeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: httpTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// PredictRequest is a primary prediction submission: one SMILES string or
// one CSV file.
type PredictRequest struct {
	Model    ModelChoice
	SMILES   string
	FileName string
	File     []byte
}

// Validate checks the request before anything is sent.
func (r PredictRequest) Validate() error {
	if !r.Model.Valid() {
		return &ValidationError{Field: "model_choice", Message: "Please select a dataset"}
	}
	hasSMILES := strings.TrimSpace(r.SMILES) != ""
	hasFile := r.File != nil
	switch {
	case hasSMILES && hasFile:
		return &ValidationError{Field: "smiles", Message: "provide either a SMILES string or a CSV file, not both"}
	case !hasSMILES && !hasFile:
		if r.FileName != "" {
			return &ValidationError{Field: "file", Message: "Please upload a CSV file"}
		}
		return &ValidationError{Field: "smiles", Message: "Please enter a SMILES string"}
	}
	return nil
}

// Predict submits a prediction request and returns the response envelope.
func (c *Client) Predict(ctx context.Context, req PredictRequest) (*predictions.Envelope, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model_choice", string(req.Model)); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if req.File != nil {
		name := req.FileName
		if name == "" {
			name = "smiles.csv"
		}
		fw, err := mw.CreateFormFile("file", name)
		if err != nil {
			return nil, fmt.Errorf("build form: %w", err)
		}
		if _, err := fw.Write(req.File); err != nil {
			return nil, fmt.Errorf("build form: %w", err)
		}
	} else if err := mw.WriteField("smiles", strings.TrimSpace(req.SMILES)); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	var out *predictions.PredictionResponse
	err := c.post(ctx, "/predict", mw.FormDataContentType(), &body, func(resp *http.Response) error {
		decoded, err := predictions.DecodePredictionResponse(resp.Body)
		if err != nil {
			return &ShapeError{Err: err, RequestID: extractRequestID(resp)}
		}
		if decoded.Predictions == nil || decoded.Predictions.Field(predictions.FieldSMILES) == nil {
			return &ShapeError{Err: ErrMissingPredictions, RequestID: extractRequestID(resp)}
		}
		out = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out.Predictions, nil
}

// GenerateRequest is the JSON body of a secondary generation request.
type GenerateRequest struct {
	SelectedSMILES string `json:"selected_smiles"`
	ModelChoice    string `json:"model_choice"`
}

// Generate runs a secondary action for smiles. A response without the
// CounterfactualPrediction key yields an empty envelope.
func (c *Client) Generate(ctx context.Context, action Action, smiles string, model ModelChoice) (*predictions.Envelope, error) {
	if action.Path() == "" {
		return nil, fmt.Errorf("unknown action %q", action)
	}
	if strings.TrimSpace(smiles) == "" {
		return nil, &ValidationError{Field: "selected_smiles", Message: "SMILES string must be provided"}
	}
	if model == "" {
		model = DefaultModel
	}
	payload, err := json.Marshal(GenerateRequest{SelectedSMILES: smiles, ModelChoice: string(model)})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	env := predictions.NewEnvelope()
	err = c.post(ctx, "/"+action.Path(), "application/json", bytes.NewReader(payload), func(resp *http.Response) error {
		decoded, err := predictions.DecodeCounterfactualResponse(resp.Body)
		if err != nil {
			return &ShapeError{Err: err, RequestID: extractRequestID(resp)}
		}
		if decoded.CounterfactualPrediction != nil {
			env = decoded.CounterfactualPrediction
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return env, nil
}

// post sends one request. There is no retry: a failure is returned as-is.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, onOK func(*http.Response) error) error {
	endpoint := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if isConnErr(err) {
			return &UnreachableError{URL: c.baseURL, Err: err}
		}
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	c.logger.Debug("service response", "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ReadAPIError(resp)
	}
	return onOK(resp)
}

func isConnErr(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
