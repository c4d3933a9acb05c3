package operator

import (
	"runtime"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/dgryski/go-jump"

	"github.com/thamindumk/jasminegraph/buffer"
)

func init() {
	Register("Distinct", execDistinct)
}

// dedupSet is a canonical-row set sharded across runtime.NumCPU()
// mutex-guarded buckets, the seen-set keyed by jump.Hash(xxhash.Sum64(canon),
// buckets) — the same consistent-hash idea the teacher's task.go
// (forwardFrom) uses to route records to per-task buffers, repurposed
// here to spread lock contention across dedup buckets instead of
// worker goroutines.
type dedupSet struct {
	buckets []dedupBucket
}

type dedupBucket struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newDedupSet() *dedupSet {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	s := &dedupSet{buckets: make([]dedupBucket, n)}
	for i := range s.buckets {
		s.buckets[i].seen = make(map[string]struct{})
	}
	return s
}

// addIfAbsent reports whether canon was not previously seen, recording
// it if so.
func (s *dedupSet) addIfAbsent(canon string) bool {
	idx := jump.Hash(xxhash.Sum64String(canon), int32(len(s.buckets)))
	b := &s.buckets[idx]

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.seen[canon]; exists {
		return false
	}
	b.seen[canon] = struct{}{}
	return true
}

// execDistinct has the same wire-level shape as Projection — it
// reuses the same project() extras — but additionally suppresses
// duplicate output rows keyed on the projected row's canonical
// serialization, fixing the source bug where Distinct never actually
// deduplicated (spec.md §9).
func execDistinct(e *Exec, node *Node, out *buffer.Buffer) error {
	var extra projectionExtra
	if err := node.extra(&extra); err != nil {
		return planMalformed("Distinct", err)
	}

	child, err := node.Child()
	if err != nil {
		return planMalformed("Distinct", err)
	}
	in, join := e.Child(child)

	seen := newDedupSet()

	for {
		t, err := in.Get(e.Ctx)
		if err != nil {
			return err
		}
		if t.IsSentinel() {
			if err := out.Add(e.Ctx, t); err != nil {
				return err
			}
			return join()
		}

		projected, err := project(t, extra.Project)
		if err != nil {
			_ = join()
			return err
		}

		if !seen.addIfAbsent(projected.Canon()) {
			continue
		}
		if err := out.Add(e.Ctx, projected); err != nil {
			_ = join()
			return err
		}
	}
}
