package di

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/pages"
)

// contentClonerProxy routes page clone and delete cascades to the content
// service. The page service is built before the content service exists, so
// the target is bound once both are wired.
type contentClonerProxy struct {
	mu     sync.RWMutex
	target pages.ContentCloner
}

var _ pages.ContentCloner = (*contentClonerProxy)(nil)

func newContentClonerProxy() *contentClonerProxy {
	return &contentClonerProxy{}
}

func (p *contentClonerProxy) swap(target pages.ContentCloner) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if target != nil {
		p.target = target
	}
}

func (p *contentClonerProxy) current() pages.ContentCloner {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.target
}

func (p *contentClonerProxy) ReplaceContent(ctx context.Context, sourceID, targetID uuid.UUID) error {
	target := p.current()
	if target == nil {
		return pages.ErrContentClonerMissing
	}
	return target.ReplaceContent(ctx, sourceID, targetID)
}

func (p *contentClonerProxy) DeleteContent(ctx context.Context, pageID uuid.UUID) error {
	target := p.current()
	if target == nil {
		return nil
	}
	return target.DeleteContent(ctx, pageID)
}
