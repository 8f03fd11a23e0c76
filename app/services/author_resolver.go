package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"postfeed/app/apperr"
	"postfeed/app/gateway"
	"postfeed/app/logger"
	"postfeed/app/models"
)

// DefaultAuthorWorkers bounds in-flight author fetches across all callers.
const DefaultAuthorWorkers = 10

// AuthorResolver fetches the authors referenced by a batch of posts.
type AuthorResolver struct {
	gateway gateway.Gateway
	workers *semaphore.Weighted
	log     *logger.Logger
}

// NewAuthorResolver creates a resolver whose worker budget is shared by every
// concurrent ResolveAuthors call.
func NewAuthorResolver(gw gateway.Gateway, workers int, log *logger.Logger) *AuthorResolver {
	if workers <= 0 {
		workers = DefaultAuthorWorkers
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthorResolver{
		gateway: gw,
		workers: semaphore.NewWeighted(int64(workers)),
		log:     log.With("component", "author_resolver"),
	}
}

// ResolveAuthors fetches every distinct id once and returns them keyed by id.
// The first failure cancels outstanding fetches: a NotFound becomes
// UnresolvedAuthor, anything else is returned unchanged.
func (r *AuthorResolver) ResolveAuthors(ctx context.Context, ids []int) (map[int]*models.User, error) {
	unique := dedupe(ids)
	authors := make(map[int]*models.User, len(unique))
	if len(unique) == 0 {
		return authors, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	var dispatchErr error
	for _, id := range unique {
		if err := r.workers.Acquire(gctx, 1); err != nil {
			dispatchErr = err
			break
		}
		id := id
		g.Go(func() error {
			defer r.workers.Release(1)

			user, err := r.gateway.GetUser(gctx, id)
			if err != nil {
				if apperr.Is(err, apperr.NotFound) {
					r.log.Warn("author not found", "author_id", id)
					return apperr.NewUnresolvedAuthor(id, err)
				}
				return err
			}
			if user.ID != id {
				return apperr.NewServiceUnavailable(apperr.ResourceUser,
					fmt.Errorf("requested user %d, got %d", id, user.ID))
			}

			mu.Lock()
			authors[id] = user
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.log.Error("author resolution failed", "authors", len(unique), "error", err)
		return nil, err
	}
	if dispatchErr != nil {
		return nil, dispatchErr
	}

	r.log.Debug("authors resolved", "authors", len(authors))
	return authors, nil
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
