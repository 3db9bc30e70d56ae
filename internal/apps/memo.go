package apps

import (
	"context"
	"sync"

	"github.com/goliatone/go-feincms/internal/pages"
)

// requestMemo holds the application mounts seen by one request. The first
// successful fetch wins for the rest of the request.
type requestMemo struct {
	mu     sync.Mutex
	loaded bool
	mounts []pages.AppMount
}

func (m *requestMemo) load(fetch func() ([]pages.AppMount, error)) ([]pages.AppMount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return m.mounts, nil
	}
	mounts, err := fetch()
	if err != nil {
		return nil, err
	}
	m.mounts = mounts
	m.loaded = true
	return mounts, nil
}

func (m *requestMemo) reset() {
	m.mu.Lock()
	m.loaded = false
	m.mounts = nil
	m.mu.Unlock()
}

type memoKey struct{}

// BeginRequest attaches an empty application memo to ctx. The returned
// finish func must run when the request completes; it clears the memo so
// nothing leaks into later work sharing the context.
func BeginRequest(ctx context.Context) (context.Context, func()) {
	memo := &requestMemo{}
	return context.WithValue(ctx, memoKey{}, memo), memo.reset
}

func memoFromContext(ctx context.Context) *requestMemo {
	if ctx == nil {
		return nil
	}
	memo, _ := ctx.Value(memoKey{}).(*requestMemo)
	return memo
}
