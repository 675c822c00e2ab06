package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/fluidc/pkg/buildinfo"
	"github.com/matzehuels/fluidc/pkg/errors"
	"github.com/matzehuels/fluidc/pkg/graph"
	"github.com/matzehuels/fluidc/pkg/history"
	"github.com/matzehuels/fluidc/pkg/pipeline"
)

// DetectRequest is the body of POST /v1/detect. Exactly one of dataset,
// graph or edge_list names the input.
type DetectRequest struct {
	pipeline.Input
	Options pipeline.Options `json:"options"`
	Format  string           `json:"format,omitempty"` // json by default
}

// TrialsRequest is the body of POST /v1/trials.
type TrialsRequest struct {
	pipeline.Input
	Options  pipeline.Options `json:"options"`
	Trials   int              `json:"trials,omitempty"` // pipeline.DefaultTrials by default
	Parallel int              `json:"parallel,omitempty"`
}

// TrialSummary is one entry of a trials response. Labels are omitted; fetch
// the best run from /v1/runs for its assignment.
type TrialSummary struct {
	Seed        uint64  `json:"seed"`
	Modularity  float64 `json:"modularity"`
	Rounds      int     `json:"rounds"`
	Converged   bool    `json:"converged"`
	Communities int     `json:"communities"`
	Sizes       []int   `json:"sizes"`
}

// TrialsResponse is the body returned by POST /v1/trials.
type TrialsResponse struct {
	GraphHash  string         `json:"graph_hash"`
	Trials     []TrialSummary `json:"trials"`
	CacheHit   bool           `json:"cache_hit"`
	DurationMS int64          `json:"duration_ms"`
}

// DatasetInfo describes a built-in dataset.
type DatasetInfo struct {
	Name  string `json:"name"`
	Nodes int    `json:"nodes"`
	Edges int    `json:"edges"`
	K     int    `json:"k"`
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatYAML: "application/yaml",
	pipeline.FormatCSV:  "text/csv; charset=utf-8",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) detect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Format == "" {
		req.Format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(req.Format); err != nil {
		s.writeError(w, err)
		return
	}

	g, opts, err := s.prepare(req.Input, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.runner.Detect(r.Context(), g, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, err := pipeline.Render(r.Context(), g, res, req.Format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[req.Format])
	if res.RunID != "" {
		w.Header().Set("X-Run-ID", res.RunID)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) trials(w http.ResponseWriter, r *http.Request) {
	var req TrialsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Trials == 0 {
		req.Trials = pipeline.DefaultTrials
	}

	g, opts, err := s.prepare(req.Input, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out, err := s.runner.Trials(r.Context(), g, opts, pipeline.TrialsOptions{Trials: req.Trials, Parallel: req.Parallel})
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := TrialsResponse{
		GraphHash:  out.GraphHash,
		Trials:     make([]TrialSummary, len(out.Trials)),
		CacheHit:   out.CacheHit,
		DurationMS: out.Duration.Milliseconds(),
	}
	for i, t := range out.Trials {
		resp.Trials[i] = TrialSummary{
			Seed:        t.Seed,
			Modularity:  t.Modularity,
			Rounds:      t.Partition.Rounds,
			Converged:   t.Partition.Converged,
			Communities: t.Partition.NonEmpty(),
			Sizes:       t.Sizes,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// prepare loads the graph and completes the options of a request.
func (s *Server) prepare(in pipeline.Input, opts pipeline.Options) (*graph.Graph, pipeline.Options, error) {
	g, err := pipeline.Load(in)
	if err != nil {
		return nil, opts, err
	}
	if s.opts.ApplyDefaults != nil {
		s.opts.ApplyDefaults(&opts)
	}
	if opts.K == 0 {
		opts.K = in.DefaultK()
	}
	opts.Source = in.Source()
	opts.Logger = s.logger
	opts.OnRound = nil
	return g, opts, nil
}

func (s *Server) datasets(w http.ResponseWriter, r *http.Request) {
	var out []DatasetInfo
	for _, name := range graph.Datasets() {
		g, k, err := graph.Dataset(name)
		if err != nil {
			continue
		}
		out = append(out, DatasetInfo{Name: name, Nodes: g.Size(), Edges: g.EdgeCount(), K: k})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "run history is disabled"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	runs, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*history.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "run history is disabled"))
		return
	}
	id := chi.URLParam(r, "id")
	if err := errors.ValidateRunID(id); err != nil {
		s.writeError(w, err)
		return
	}
	run, err := s.history.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "run history is disabled"))
		return
	}
	id := chi.URLParam(r, "id")
	if err := errors.ValidateRunID(id); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.history.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Encoding helpers
// =============================================================================

// decode reads a JSON body into v, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return false
	}
	return true
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusCode maps an error code to an HTTP status.
func statusCode(err error) int {
	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusCode(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: string(code), Message: errors.UserMessage(err)}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
