// Package httpapi exposes the engine over HTTP, grounded on the original
// implementation's sim-api/http.rs: the same route table, request/response
// shape and error-code taxonomy, rebuilt on github.com/go-chi/chi/v5
// (the teacher's ambient-stack choice for small JSON APIs) instead of axum.
package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/go-spice/engine/internal/consts"
	"github.com/go-spice/engine/pkg/circuit"
	"github.com/go-spice/engine/pkg/engine"
	"github.com/go-spice/engine/pkg/netlist"
	"github.com/go-spice/engine/pkg/psf"
	"github.com/go-spice/engine/pkg/result"
)

// Server holds the shared, mutex-guarded state every handler reads and
// writes: the run-result store and the most recently elaborated circuit
// (spec.md §5's single-mutex concurrency model — no intra-solve
// parallelism, one lock around both).
type Server struct {
	mu          sync.Mutex
	store       *result.Store
	lastCircuit *circuit.Circuit
}

// NewServer returns a Server with an empty result store.
func NewServer() *Server {
	return &Server{store: result.NewStore()}
}

// Router builds the chi router with every route from spec.md §6.2.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/v1/run/op", s.handleRunOp)
	r.Post("/v1/run/dc", s.handleRunDc)
	r.Post("/v1/run/tran", s.handleRunTran)
	r.Get("/v1/runs", s.handleListRuns)
	r.Get("/v1/runs/{id}", s.handleGetRun)
	r.Post("/v1/runs/{id}/export", s.handleExportRun)
	r.Get("/v1/summary", s.handleSummary)
	r.Get("/v1/nodes", s.handleNodes)
	return r
}

type runOpRequest struct {
	Netlist *string `json:"netlist"`
	Path    *string `json:"path"`
}

type runDcRequest struct {
	Netlist *string  `json:"netlist"`
	Path    *string  `json:"path"`
	Source  *string  `json:"source"`
	Start   *float64 `json:"start"`
	Stop    *float64 `json:"stop"`
	Step    *float64 `json:"step"`
}

type runTranRequest struct {
	Netlist *string  `json:"netlist"`
	Path    *string  `json:"path"`
	TStep   *float64 `json:"tstep"`
	TStop   *float64 `json:"tstop"`
	TStart  *float64 `json:"tstart"`
	TMax    *float64 `json:"tmax"`
}

type exportRequest struct {
	Path string `json:"path"`
}

type runResponse struct {
	RunID      int       `json:"run_id"`
	Analysis   string    `json:"analysis"`
	Status     string    `json:"status"`
	Iterations int       `json:"iterations"`
	Nodes      []string  `json:"nodes"`
	Solution   []float64 `json:"solution"`
	Message    string    `json:"message,omitempty"`
}

type runSummary struct {
	RunID      int    `json:"run_id"`
	Analysis   string `json:"analysis"`
	Status     string `json:"status"`
	Iterations int    `json:"iterations"`
}

type runsResponse struct {
	Runs []runSummary `json:"runs"`
}

type nodesResponse struct {
	Nodes []string `json:"nodes"`
}

type summaryResponse struct {
	NodeCount   int `json:"node_count"`
	DeviceCount int `json:"device_count"`
	ModelCount  int `json:"model_count"`
}

type errorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string, details []string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message, Details: details}})
}

func runToResponse(id int, run result.Run) runResponse {
	return runResponse{
		RunID:      id,
		Analysis:   string(run.Analysis),
		Status:     string(run.Status),
		Iterations: run.Iterations,
		Nodes:      run.NodeNames,
		Solution:   run.Solution,
		Message:    run.Message,
	}
}

// selectInput resolves a request's netlist text, preferring an inline
// "netlist" body over a "path" on disk.
func selectInput(netlistText, path *string) (string, bool, string) {
	if netlistText != nil {
		return *netlistText, true, ""
	}
	if path != nil {
		data, err := os.ReadFile(*path)
		if err != nil {
			return "", false, err.Error()
		}
		return string(data), true, ""
	}
	return "", false, "missing netlist or path"
}

func (s *Server) elaborate(w http.ResponseWriter, netlistText, path *string) (*engine.Engine, bool) {
	text, ok, errMsg := selectInput(netlistText, path)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", errMsg, nil)
		return nil, false
	}
	ckt, err := netlist.Parse(text)
	if err != nil {
		writeError(w, http.StatusBadRequest, "PARSE_ERROR", "netlist parse failed", []string{err.Error()})
		return nil, false
	}
	eng, err := engine.New(ckt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ELAB_ERROR", "netlist elaboration failed", []string{err.Error()})
		return nil, false
	}

	s.mu.Lock()
	s.lastCircuit = ckt
	s.mu.Unlock()
	return eng, true
}

func (s *Server) runAndRespond(w http.ResponseWriter, eng *engine.Engine, dir circuit.Directive) {
	s.mu.Lock()
	id, err := eng.RunWithStore(dir, consts.TNominal, s.store)
	run, found := s.store.Get(id)
	s.mu.Unlock()

	if err != nil {
		writeError(w, http.StatusInternalServerError, "RUN_ERROR", err.Error(), nil)
		return
	}
	if !found {
		writeError(w, http.StatusInternalServerError, "RUN_NOT_FOUND", "run result not found", nil)
		return
	}
	status := http.StatusOK
	if run.Status != result.Converged {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, runToResponse(id, run))
}

func (s *Server) handleRunOp(w http.ResponseWriter, r *http.Request) {
	var req runOpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed JSON body", nil)
		return
	}
	eng, ok := s.elaborate(w, req.Netlist, req.Path)
	if !ok {
		return
	}
	s.runAndRespond(w, eng, circuit.Directive{Kind: circuit.DirectiveOp})
}

func (s *Server) handleRunDc(w http.ResponseWriter, r *http.Request) {
	var req runDcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed JSON body", nil)
		return
	}
	eng, ok := s.elaborate(w, req.Netlist, req.Path)
	if !ok {
		return
	}

	if req.Source != nil || req.Start != nil || req.Stop != nil || req.Step != nil {
		if req.Source == nil || req.Start == nil || req.Stop == nil || req.Step == nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "dc sweep needs source, start, stop and step together", nil)
			return
		}
		s.runAndRespond(w, eng, circuit.Directive{
			Kind: circuit.DirectiveDC, DCSource: *req.Source,
			DCStart: *req.Start, DCStop: *req.Stop, DCStep: *req.Step,
		})
		return
	}

	if dir, ok := findDirective(eng.Circuit, circuit.DirectiveDC); ok {
		s.runAndRespond(w, eng, dir)
		return
	}
	writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "dc analysis parameters not provided and not found in netlist", nil)
}

func (s *Server) handleRunTran(w http.ResponseWriter, r *http.Request) {
	var req runTranRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed JSON body", nil)
		return
	}
	eng, ok := s.elaborate(w, req.Netlist, req.Path)
	if !ok {
		return
	}

	if req.TStep != nil || req.TStop != nil {
		if req.TStep == nil || req.TStop == nil {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "transient analysis needs tstep and tstop together", nil)
			return
		}
		dir := circuit.Directive{Kind: circuit.DirectiveTran, TranStep: *req.TStep, TranStop: *req.TStop}
		if req.TStart != nil {
			dir.TranStart = *req.TStart
		}
		dir.TranMax = dir.TranStep
		if req.TMax != nil {
			dir.TranMax = *req.TMax
		}
		s.runAndRespond(w, eng, dir)
		return
	}

	if dir, ok := findDirective(eng.Circuit, circuit.DirectiveTran); ok {
		s.runAndRespond(w, eng, dir)
		return
	}
	writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "tran analysis parameters not provided and not found in netlist", nil)
}

func findDirective(ckt *circuit.Circuit, kind circuit.DirectiveKind) (circuit.Directive, bool) {
	for _, d := range ckt.Directives {
		if d.Kind == kind {
			return d, true
		}
	}
	return circuit.Directive{}, false
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	runs := s.store.List()
	s.mu.Unlock()

	resp := runsResponse{}
	for i, run := range runs {
		resp.Runs = append(resp.Runs, runSummary{
			RunID: i, Analysis: string(run.Analysis), Status: string(run.Status), Iterations: run.Iterations,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) parseRunID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "run id must be an integer", nil)
		return 0, false
	}
	return id, true
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseRunID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	run, found := s.store.Get(id)
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "RUN_NOT_FOUND", "run_id not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, runToResponse(id, run))
}

func (s *Server) handleExportRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseRunID(w, r)
	if !ok {
		return
	}
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "missing export path", nil)
		return
	}

	s.mu.Lock()
	run, found := s.store.Get(id)
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "RUN_NOT_FOUND", "run_id not found", nil)
		return
	}
	if err := psf.WriteFile(run, 6, req.Path); err != nil {
		writeError(w, http.StatusInternalServerError, "EXPORT_ERROR", "export failed: "+err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, runToResponse(id, run))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ckt := s.lastCircuit
	s.mu.Unlock()
	if ckt == nil {
		writeError(w, http.StatusBadRequest, "NO_ACTIVE_CIRCUIT", "no circuit is available yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		NodeCount:   ckt.NodeCount(),
		DeviceCount: len(ckt.Instances),
		ModelCount:  len(ckt.Models),
	})
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ckt := s.lastCircuit
	s.mu.Unlock()
	if ckt == nil {
		writeError(w, http.StatusBadRequest, "NO_ACTIVE_CIRCUIT", "no circuit is available yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, nodesResponse{Nodes: append([]string(nil), ckt.Nodes...)})
}
