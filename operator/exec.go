package operator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	jg "github.com/thamindumk/jasminegraph"
	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/internal/config"
	"github.com/thamindumk/jasminegraph/internal/glog"
	"github.com/thamindumk/jasminegraph/status"
	"github.com/thamindumk/jasminegraph/store"
)

// MasterClient is the subset of master.Client that ExpandAll and
// CartesianProduct need: resolving a node's owning partition and
// running a templated sub-plan there. Defined here, the consumer, so
// that master (which needs *Node to implement RunSubPlan) doesn't have
// to be imported by this package — see master/client.go's doc comment.
type MasterClient interface {
	PartitionOf(ctx context.Context, graphID string, nodeID int64) (int, error)
	RunSubPlan(ctx context.Context, graphID string, partition int, plan *Node) (*buffer.Buffer, error)
}

// Exec is the runtime context threaded through every operator
// invocation — the interpreter's equivalent of the teacher's *Context,
// generalized from "stream + node + childrens" to "graph config, store,
// master client, status sink".
type Exec struct {
	Ctx        context.Context
	WorkerID   int
	GraphID    string
	Config     config.GraphConfig
	Store      store.GraphReader
	Master     MasterClient
	Status     *status.Buffer
	Partitions int
	Log        glog.Logger

	wg      sync.WaitGroup
	trailMu sync.Mutex
	trail   []string
}

// Trail returns, in dispatch order, the operator tags Run has invoked
// on this Exec so far — the debug package's data source for rendering
// the currently running operator tree.
func (e *Exec) Trail() []string {
	e.trailMu.Lock()
	defer e.trailMu.Unlock()
	out := make([]string, len(e.trail))
	copy(out, e.trail)
	return out
}

func (e *Exec) recordStep(tag string) {
	e.trailMu.Lock()
	e.trail = append(e.trail, tag)
	e.trailMu.Unlock()
}

// DotGraph renders the dispatch trail recorded so far as a DOT digraph
// chain, consumed by the debug package's /topology/:queryID endpoint.
func (e *Exec) DotGraph() string {
	trail := e.Trail()

	var sb strings.Builder
	sb.WriteString("digraph plan {\n")
	for i, tag := range trail {
		fmt.Fprintf(&sb, "  n%d [label=%q];\n", i, tag)
		if i > 0 {
			fmt.Fprintf(&sb, "  n%d -> n%d;\n", i-1, i)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Wait blocks until every operator goroutine spawned via Child across
// the whole tree has returned, the Go shape of joins propagating
// upward to ProduceResult in spec.md §4.2.
func (e *Exec) Wait() { e.wg.Wait() }

// Child spawns node's operator into a freshly allocated buffer and
// returns that buffer plus a join function yielding the operator's
// error, mirroring std::thread + .join() in the original executor.
func (e *Exec) Child(node *Node) (*buffer.Buffer, func() error) {
	out := buffer.New(buffer.DefaultCapacity)
	errCh := make(chan error, 1)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		errCh <- Run(e, node, out)
	}()

	join := func() error { return <-errCh }
	return out, join
}

// Run dispatches node to its registered Executor, writing its output
// (terminated by the tuple sentinel) into out.
func Run(e *Exec, node *Node, out *buffer.Buffer) error {
	if node == nil {
		return jg.Wrap(jg.PlanMalformed, "operator.Run", fmt.Errorf("nil plan node"))
	}

	exec, ok := lookup(node.Operator)
	if !ok {
		return jg.Wrap(jg.PlanMalformed, "operator.Run",
			fmt.Errorf("unregistered operator %q", node.Operator))
	}
	e.recordStep(node.Operator)
	return exec(e, node, out)
}
