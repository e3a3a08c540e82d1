package makamail

import (
	"context"

	"github.com/quentin/makamail/internal/document"
	"github.com/quentin/makamail/internal/pipeline"
)

// taskResult carries one task's outcome over its own buffered channel.
type taskResult struct {
	part *pipeline.Part
	err  error
}

// embedImages runs the resolve+transform stage, one task per image, and
// collects the finished parts in scan order.
//
// Tasks share no mutable state: each exclusively owns its document node and
// its staging namespace (files named by its identifier), so no locking is
// needed. Dispatch happens up front; results are then awaited strictly in
// scan order, which fixes only the order results are observed, not the
// order tasks run. The first failure encountered in scan order is the one
// reported, even if a later-ordered task failed earlier in wall-clock time.
// On that failure the shared context is cancelled, so outstanding siblings
// (blocked in external tool invocations) terminate and their results are
// discarded.
func (c *Composer) embedImages(ctx context.Context, refs []*document.ImageRef, baseDir, staging string) ([]*pipeline.Part, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resolver := &pipeline.Resolver{Prober: c.prober}
	transformer := &pipeline.Transformer{
		Resizer:    c.resizer,
		Dims:       c.dims,
		StagingDir: staging,
	}

	var sem chan struct{}
	if c.cfg.workers > 0 {
		sem = make(chan struct{}, c.cfg.workers)
	}

	results := make([]chan taskResult, len(refs))
	for i, ref := range refs {
		ch := make(chan taskResult, 1)
		results[i] = ch

		go func(ref *document.ImageRef) {
			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					ch <- taskResult{err: ctx.Err()}
					return
				}
			}
			ch <- runTask(ctx, resolver, transformer, ref, baseDir)
		}(ref)
	}

	parts := make([]*pipeline.Part, len(refs))
	for i, ch := range results {
		res := <-ch
		if res.err != nil {
			return nil, res.err
		}
		parts[i] = res.part
	}
	return parts, nil
}

// runTask executes the per-image pipeline: classify, transform, then
// rewrite the owned node to its cid: reference. The rewrite happens only
// after the part exists, so a node is never left half-rewritten.
func runTask(ctx context.Context, resolver *pipeline.Resolver, transformer *pipeline.Transformer, ref *document.ImageRef, baseDir string) taskResult {
	src, err := resolver.Resolve(ctx, ref, baseDir)
	if err != nil {
		return taskResult{err: err}
	}

	part, err := transformer.Transform(ctx, ref, src)
	if err != nil {
		return taskResult{err: err}
	}

	ref.SetSource(part.ID)
	return taskResult{part: part}
}
