package main

import (
	"context"
	"net/http"
	"sync"
)

// resource wraps one admin collection: the fetch/mutate hooks against the
// content API plus a guarded snapshot of the last successful list. Handlers
// never mutate the snapshot directly; every write goes upstream first and is
// followed by a refetch, so the cache only ever holds server-confirmed state.
type resource[T adminRecord] struct {
	path string

	listFn   func(ctx context.Context) ([]T, error)
	createFn func(ctx context.Context, payload map[string]any) error
	updateFn func(ctx context.Context, id string, payload map[string]any) error
	deleteFn func(ctx context.Context, id string) error

	mu     sync.Mutex
	items  []T
	loaded bool
}

func newResource[T adminRecord](u *upstreamClient, path string) *resource[T] {
	r := &resource[T]{path: path}
	r.listFn = func(ctx context.Context) ([]T, error) {
		return listUpstream[T](ctx, u, path)
	}
	r.createFn = func(ctx context.Context, payload map[string]any) error {
		return u.do(ctx, http.MethodPost, path, payload, nil)
	}
	r.updateFn = func(ctx context.Context, id string, payload map[string]any) error {
		return u.do(ctx, http.MethodPut, path+"/"+id, payload, nil)
	}
	r.deleteFn = func(ctx context.Context, id string) error {
		return u.do(ctx, http.MethodDelete, path+"/"+id, nil, nil)
	}
	return r
}

// refetch replaces the snapshot with a fresh upstream list. On failure the
// previous snapshot stays in place.
func (r *resource[T]) refetch(ctx context.Context) ([]T, error) {
	items, err := r.listFn(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.items = items
	r.loaded = true
	r.mu.Unlock()
	return items, nil
}

// ensureLoaded returns the cached snapshot, fetching it first if this
// resource has never loaded successfully.
func (r *resource[T]) ensureLoaded(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	if r.loaded {
		items := r.items
		r.mu.Unlock()
		return items, nil
	}
	r.mu.Unlock()
	return r.refetch(ctx)
}

func (r *resource[T]) find(ctx context.Context, id string) (T, bool, error) {
	var zero T
	items, err := r.ensureLoaded(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, item := range items {
		if item.recordID() == id {
			return item, true, nil
		}
	}
	return zero, false, nil
}
