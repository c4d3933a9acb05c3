package debug

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/thamindumk/jasminegraph/internal/glog"
	"github.com/thamindumk/jasminegraph/internal/httpserver"
	"github.com/thamindumk/jasminegraph/status"
	"github.com/thamindumk/jasminegraph/triangles"
)

// Server wraps httpserver.Server with this worker's three debug
// endpoints: GET /topology/:queryID, GET /status, GET /triangles/:graphID.
type Server struct {
	http *httpserver.Server

	registry  *Registry
	statusBuf *status.Buffer
	engine    *triangles.Engine
	log       glog.Logger
}

// New builds a Server listening on config.Addr once Start is called.
// Any of registry, statusBuf, engine may be nil, in which case the
// corresponding endpoint answers 503.
func New(config httpserver.Config, registry *Registry, statusBuf *status.Buffer, engine *triangles.Engine, log glog.Logger) *Server {
	s := &Server{
		http:      httpserver.New(config),
		registry:  registry,
		statusBuf: statusBuf,
		engine:    engine,
		log:       log,
	}
	s.http.AddHandler(http.MethodGet, "/topology/:queryID", s.handleTopology)
	s.http.AddHandler(http.MethodGet, "/status", s.handleStatus)
	s.http.AddHandler(http.MethodGet, "/triangles/:graphID", s.handleTriangles)
	return s
}

// Start serves until Close is called, the Go shape of http.Server's
// ListenAndServe/Shutdown pair httpserver.Server wraps.
func (s *Server) Start() error { return s.http.Start() }

// Close shuts the debug server down, waiting for in-flight requests per ctx.
func (s *Server) Close(ctx context.Context) error { return s.http.Close(ctx) }

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request, ps httpserver.Params) {
	if s.registry == nil {
		http.Error(w, "topology registry unavailable", http.StatusServiceUnavailable)
		return
	}

	queryID := ps.ByName("queryID")
	exec, ok := s.registry.Lookup(queryID)
	if !ok {
		http.Error(w, "unknown query id", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(exec.DotGraph()))
}

type statusResponse struct {
	Progress int `json:"progress"`
	Success  int `json:"success"`
	Error    int `json:"error"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, ps httpserver.Params) {
	if s.statusBuf == nil {
		http.Error(w, "status buffer unavailable", http.StatusServiceUnavailable)
		return
	}

	counts := s.statusBuf.Counts()
	resp := statusResponse{
		Progress: counts[status.PROGRESS],
		Success:  counts[status.SUCCESS],
		Error:    counts[status.ERROR],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type triangleWatermarkResponse struct {
	GraphID              string `json:"graphId"`
	LocalRelationCount   int64  `json:"localRelationCount"`
	CentralRelationCount int64  `json:"centralRelationCount"`
}

func (s *Server) handleTriangles(w http.ResponseWriter, r *http.Request, ps httpserver.Params) {
	if s.engine == nil {
		http.Error(w, "triangle engine unavailable", http.StatusServiceUnavailable)
		return
	}

	graphID := ps.ByName("graphID")
	wm, ok := s.engine.LastWatermark(graphID)
	if !ok {
		http.Error(w, "no triangle count recorded for this graph id", http.StatusNotFound)
		return
	}

	resp := triangleWatermarkResponse{
		GraphID:              graphID,
		LocalRelationCount:   wm.LocalRelationCount,
		CentralRelationCount: wm.CentralRelationCount,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
