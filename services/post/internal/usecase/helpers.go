package usecase

import (
	"context"

	"snappoint/services/post/internal/entity"
)

// wrap passes caller-facing errors through and turns anything else into an
// InternalError.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if entity.IsDomainError(err) {
		return err
	}
	return entity.NewInternalError(op, err)
}

// invalidate runs after commit. Failures only leave stale entries until the TTL.
func (uc *postUseCase) invalidate(ctx context.Context, keys []string) {
	keys = distinct(len(keys), func(i int) string { return keys[i] })
	if err := uc.gateway.Delete(context.WithoutCancel(ctx), keys...); err != nil {
		uc.logger.Warn("[CACHE] Failed to invalidate %d keys: %v", len(keys), err)
	}
}

func (uc *postUseCase) publishSummary(ctx context.Context, post entity.Post, blocks []entity.Block) {
	if uc.summary == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := uc.summary.PublishPost(ctx, post, blocks); err != nil {
			uc.logger.Error("[POST] Failed to publish summary event for post %s: %v", post.ID, err)
		}
	}()
}

// distinct returns the non-empty values of key(0..n-1) in first-seen order.
func distinct(n int, key func(int) string) []string {
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		k := key(i)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func blockIDs(blocks []entity.Block) []string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	return ids
}

func flatten[T any](groups [][]T) []T {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]T, 0, total)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
