package operator

import (
	"context"
	"sync"

	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/tuple"
)

func init() {
	Register("CartesianProduct", execCartesianProduct)
}

// execCartesianProduct computes the outer product of Left and Right.
// For each left tuple it opens a fresh right stream: the local right
// operator plus one RunSubPlan fan-out per remote partition, merged
// into a single buffer. It merges each right tuple into the current
// left tuple and emits. Completion requires observing all e.Partitions
// sentinels on the merged right stream — the source bug fixed per
// spec.md §9 (the original never counted sentinels and spun forever).
func execCartesianProduct(e *Exec, node *Node, out *buffer.Buffer) error {
	leftNode, err := node.LeftNode()
	if err != nil {
		return planMalformed("CartesianProduct", err)
	}
	rightNode, err := node.RightNode()
	if err != nil {
		return planMalformed("CartesianProduct", err)
	}

	left, joinLeft := e.Child(leftNode)

	for {
		lt, err := left.Get(e.Ctx)
		if err != nil {
			return err
		}
		if lt.IsSentinel() {
			if err := out.Add(e.Ctx, lt); err != nil {
				return err
			}
			return joinLeft()
		}

		if err := e.fanRight(out, rightNode, lt); err != nil {
			_ = joinLeft()
			return err
		}
	}
}

// fanRight drains one fresh right-hand stream for the given left
// tuple, merging every right row into it and emitting the combined
// tuple, stopping once e.Partitions sentinels have been observed.
func (e *Exec) fanRight(out *buffer.Buffer, rightNode *Node, left tuple.Tuple) error {
	merged := buffer.New(buffer.DefaultCapacity)
	ctx, cancel := context.WithCancel(e.Ctx)
	defer cancel()

	total := e.Partitions
	if total < 1 {
		total = 1
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		local, join := e.Child(rightNode)
		pumpUntilSentinel(ctx, local, merged)
		_ = join()
	}()

	for p := 0; p < total && e.Master != nil; p++ {
		if p == e.Config.PartitionID {
			continue
		}
		partition := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub, err := e.Master.RunSubPlan(ctx, e.GraphID, partition, rightNode)
			if err != nil {
				return
			}
			pumpUntilSentinel(ctx, sub, merged)
		}()
	}

	go func() {
		wg.Wait()
	}()

	seenSentinels := 0
	for seenSentinels < total {
		rt, err := merged.Get(e.Ctx)
		if err != nil {
			return err
		}
		if rt.IsSentinel() {
			seenSentinels++
			continue
		}

		combined := left.Clone()
		for k, v := range rt {
			combined[k] = v
		}
		if err := out.Add(e.Ctx, combined); err != nil {
			return err
		}
	}
	return nil
}

// pumpUntilSentinel copies tuples from src to dst, stopping after
// forwarding src's own sentinel — the connector-thread shape from
// spec.md §4.3 ("copies tuples until it receives -1, then terminates").
func pumpUntilSentinel(ctx context.Context, src, dst *buffer.Buffer) {
	for {
		t, err := src.Get(ctx)
		if err != nil {
			return
		}
		if err := dst.Add(ctx, t); err != nil {
			return
		}
		if t.IsSentinel() {
			return
		}
	}
}
