package pages

import (
	"context"
	"errors"
	"testing"
)

func TestCloneCopiesFieldsAndContent(t *testing.T) {
	cloner := &recordingCloner{}
	f := newFixture(t, WithContentCloner(cloner))
	home := f.save(t, &Page{Title: "Home"})
	source := f.save(t, &Page{Title: "Source", Slug: "source", ParentID: ref(home.ID), Menu: "main"})
	target := f.save(t, &Page{Title: "Target", Slug: "target", ParentID: ref(home.ID)})

	cloned, err := f.svc.Clone(context.Background(), ClonePageRequest{
		SourceID:       source.ID,
		TargetID:       target.ID,
		Fields:         []string{"title", "menu"},
		ReplaceContent: true,
	})
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if cloned.Title != "Source" || cloned.Menu != "main" || cloned.Slug != "target" {
		t.Fatalf("unexpected cloned page %+v", cloned)
	}
	if len(cloner.replaced) != 1 || cloner.replaced[0][0] != source.ID || cloner.replaced[0][1] != target.ID {
		t.Fatalf("expected content replacement source->target, got %v", cloner.replaced)
	}
}

func TestCloneRejectsInvalidRequests(t *testing.T) {
	f := newFixture(t)
	home := f.save(t, &Page{Title: "Home"})
	a := f.save(t, &Page{Title: "A", Slug: "a", ParentID: ref(home.ID)})

	if _, err := f.svc.Clone(context.Background(), ClonePageRequest{SourceID: a.ID, TargetID: a.ID}); !errors.Is(err, ErrCloneSameTarget) {
		t.Fatalf("expected ErrCloneSameTarget, got %v", err)
	}
	if _, err := f.svc.Clone(context.Background(), ClonePageRequest{SourceID: home.ID, TargetID: a.ID, Fields: []string{"slug"}}); !errors.Is(err, ErrCloneFieldUnknown) {
		t.Fatalf("expected ErrCloneFieldUnknown, got %v", err)
	}
	if _, err := f.svc.Clone(context.Background(), ClonePageRequest{SourceID: home.ID, TargetID: a.ID, ReplaceContent: true}); !errors.Is(err, ErrContentClonerMissing) {
		t.Fatalf("expected ErrContentClonerMissing, got %v", err)
	}
}
