package debug

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thamindumk/jasminegraph/internal/glog"
	"github.com/thamindumk/jasminegraph/internal/httpserver"
	"github.com/thamindumk/jasminegraph/operator"
	"github.com/thamindumk/jasminegraph/status"
	"github.com/thamindumk/jasminegraph/triangles"
)

func TestHandleTopologyUnknownQueryID(t *testing.T) {
	s := New(httpserver.Config{}, NewRegistry(), status.NewBuffer(8), triangles.New(glog.New()), glog.New())

	req := httptest.NewRequest(http.MethodGet, "/topology/does-not-exist", nil)
	rec := httptest.NewRecorder()
	s.http.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTopologyKnownQueryID(t *testing.T) {
	registry := NewRegistry()
	exec := &operator.Exec{Ctx: context.Background()}
	registry.Register("q1", exec)

	s := New(httpserver.Config{}, registry, status.NewBuffer(8), triangles.New(glog.New()), glog.New())

	req := httptest.NewRequest(http.MethodGet, "/topology/q1", nil)
	rec := httptest.NewRecorder()
	s.http.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "digraph plan")
}

func TestHandleStatusReportsCounts(t *testing.T) {
	buf := status.NewBuffer(8)
	buf.Push(status.Message{WorkerID: 1, Type: status.PROGRESS, Message: "step 1"})
	buf.Push(status.Message{WorkerID: 1, Type: status.SUCCESS, Message: "done"})

	s := New(httpserver.Config{}, NewRegistry(), buf, triangles.New(glog.New()), glog.New())

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.http.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"progress":1`)
	assert.Contains(t, rec.Body.String(), `"success":1`)
}

func TestHandleTrianglesNoWatermarkYet(t *testing.T) {
	s := New(httpserver.Config{}, NewRegistry(), status.NewBuffer(8), triangles.New(glog.New()), glog.New())

	req := httptest.NewRequest(http.MethodGet, "/triangles/g1", nil)
	rec := httptest.NewRecorder()
	s.http.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
