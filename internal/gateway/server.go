// Package gateway serves the /api endpoints and forwards them to the model
// service.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/KaramelBytes/molscope-cli/internal/explore"
	"github.com/KaramelBytes/molscope-cli/internal/parser"
	"github.com/KaramelBytes/molscope-cli/internal/service"
)

const maxUpstreamBody = 32 << 20

// Server forwards API requests to the model service.
type Server struct {
	modelURL   string
	httpClient *http.Client
	logger     *slog.Logger
	mux        *http.ServeMux
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the logger for request and upstream errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHTTPClient replaces the client used for upstream calls.
func WithHTTPClient(h *http.Client) Option {
	return func(s *Server) {
		if h != nil {
			s.httpClient = h
		}
	}
}

// New returns a gateway for the model service at modelURL.
func New(modelURL string, opts ...Option) *Server {
	s := &Server{
		modelURL:   strings.TrimRight(modelURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		mux:        http.NewServeMux(),
	}
	for _, o := range opts {
		o(s)
	}
	s.mux.HandleFunc("POST /api/predict", s.handlePredict)
	for _, a := range service.Actions() {
		s.mux.HandleFunc("POST /api/"+a.Path(), s.handleGenerate(a))
	}
	return s
}

// Handler returns the HTTP handler of the gateway.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	const failure = "Failed to fetch predictions"
	body := http.MaxBytesReader(w, r.Body, parser.MaxInputBytes+(1<<20))
	data, err := io.ReadAll(body)
	if err != nil {
		s.logger.Error("predict: read request", "err", err)
		writeError(w, http.StatusInternalServerError, failure)
		return
	}
	out, err := s.forward(r.Context(), "/predict/", r.Header.Get("Content-Type"), bytes.NewReader(data))
	if err != nil {
		s.logger.Error("predict error", "err", err)
		writeError(w, http.StatusInternalServerError, failure)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGenerate(action service.Action) http.HandlerFunc {
	failure := explore.MessagesFor(action).Failure
	return func(w http.ResponseWriter, r *http.Request) {
		var req service.GenerateRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			s.logger.Error(string(action)+" error", "err", err)
			writeError(w, http.StatusInternalServerError, failure)
			return
		}
		if req.SelectedSMILES == "" {
			writeError(w, http.StatusBadRequest, "SMILES string must be provided")
			return
		}
		if req.ModelChoice == "" {
			req.ModelChoice = string(service.DefaultModel)
		}

		var form bytes.Buffer
		mw := multipart.NewWriter(&form)
		_ = mw.WriteField("smiles", req.SelectedSMILES)
		_ = mw.WriteField("model_choice", req.ModelChoice)
		if err := mw.Close(); err != nil {
			writeError(w, http.StatusInternalServerError, failure)
			return
		}

		out, err := s.forward(r.Context(), "/"+action.Path()+"/", mw.FormDataContentType(), &form)
		if err != nil {
			s.logger.Error(string(action)+" error", "err", err)
			writeError(w, http.StatusInternalServerError, failure)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// forward posts body to the model service and returns its JSON answer.
func (s *Server) forward(ctx context.Context, path, contentType string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.modelURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()
	s.logger.Debug("upstream response", "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream status: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, fmt.Errorf("read upstream: %w", err)
	}
	if !json.Valid(data) {
		return nil, errors.New("upstream returned invalid json")
	}
	return json.RawMessage(data), nil
}

func writeJSON(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	b, _ := json.Marshal(map[string]string{"error": msg})
	writeJSON(w, status, b)
}
