package content

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/internal/pages"
	payloadschema "github.com/goliatone/go-feincms/internal/validation"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

const orderingStep = 10

// Service manages the content items of pages. It implements
// pages.ContentCloner.
type Service interface {
	// Add stores a new item. Items without an ID get a generated one and
	// items without an ordering go after the last item of their region.
	Add(ctx context.Context, item *Item) (*Item, error)
	Update(ctx context.Context, item *Item) (*Item, error)
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListForPage(ctx context.Context, pageID uuid.UUID) ([]*Item, error)
	ListForRegion(ctx context.Context, pageID uuid.UUID, region string) ([]*Item, error)
	ReplaceContent(ctx context.Context, sourceID, targetID uuid.UUID) error
	DeleteContent(ctx context.Context, pageID uuid.UUID) error
}

// PageLookup resolves the page owning an item and its region set.
type PageLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*pages.Page, error)
	Types() *pages.Types
}

// PluginTypes reports whether a plugin type can be rendered.
type PluginTypes interface {
	Has(pluginType string) bool
}

// ServiceOption configures the content service.
type ServiceOption func(*service)

// WithPages enables page and region checks on write.
func WithPages(lookup PageLookup) ServiceOption {
	return func(s *service) {
		s.pages = lookup
	}
}

// WithPluginTypes rejects items whose type is not registered.
func WithPluginTypes(types PluginTypes) ServiceOption {
	return func(s *service) {
		s.plugins = types
	}
}

// WithSchemas validates payloads against plugin schemas.
func WithSchemas(schemas *payloadschema.Schemas) ServiceOption {
	return func(s *service) {
		s.schemas = schemas
	}
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides item id generation.
func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.newID = generator
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo    Repository
	pages   PageLookup
	plugins PluginTypes
	schemas *payloadschema.Schemas
	logger  interfaces.Logger
	now     func() time.Time
	newID   func() uuid.UUID
}

// NewService constructs the content service.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		logger: logging.NoOp(),
		now:    time.Now,
		newID:  newItemID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func newItemID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

func (s *service) Add(ctx context.Context, item *Item) (*Item, error) {
	if item == nil {
		return nil, ErrItemRequired
	}
	record := item.Clone()
	if record.ID == uuid.Nil {
		record.ID = s.newID()
	}
	normalize(record)
	if err := s.validate(ctx, record); err != nil {
		return nil, err
	}
	if record.Ordering <= 0 {
		ordering, err := s.nextOrdering(ctx, record)
		if err != nil {
			return nil, err
		}
		record.Ordering = ordering
	}
	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("content.item.created", "item_id", created.ID, "page_id", created.PageID, "region", created.Region, "type", created.Type)
	return created, nil
}

func (s *service) Update(ctx context.Context, item *Item) (*Item, error) {
	if item == nil {
		return nil, ErrItemRequired
	}
	existing, err := s.repo.Get(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	record := item.Clone()
	normalize(record)
	if err := s.validate(ctx, record); err != nil {
		return nil, err
	}
	if record.Ordering <= 0 {
		record.Ordering = existing.Ordering
	}
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = s.now()
	return s.repo.Update(ctx, record)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) ListForPage(ctx context.Context, pageID uuid.UUID) ([]*Item, error) {
	return s.repo.ListForPage(ctx, pageID)
}

func (s *service) ListForRegion(ctx context.Context, pageID uuid.UUID, region string) ([]*Item, error) {
	return s.repo.ListForRegion(ctx, pageID, region)
}

// ReplaceContent deletes the items of targetID and stores copies of the
// items of sourceID on it. The source rows are not touched.
func (s *service) ReplaceContent(ctx context.Context, sourceID, targetID uuid.UUID) error {
	source, err := s.repo.ListForPage(ctx, sourceID)
	if err != nil {
		return err
	}
	now := s.now()
	copies := make([]*Item, 0, len(source))
	for _, item := range source {
		cloned := item.Clone()
		cloned.ID = s.newID()
		cloned.PageID = targetID
		cloned.CreatedAt = now
		cloned.UpdatedAt = now
		copies = append(copies, cloned)
	}
	if err := s.repo.ReplaceForPage(ctx, targetID, copies); err != nil {
		return err
	}
	s.logger.Info("content.replaced", "source_id", sourceID, "target_id", targetID, "items", len(copies))
	return nil
}

func (s *service) DeleteContent(ctx context.Context, pageID uuid.UUID) error {
	return s.repo.DeleteForPage(ctx, pageID)
}

func normalize(item *Item) {
	item.Region = strings.TrimSpace(item.Region)
	item.Type = strings.TrimSpace(item.Type)
	item.Section = strings.TrimSpace(item.Section)
}

func (s *service) validate(ctx context.Context, item *Item) error {
	errs := validation.Errors{}
	err := validation.ValidateStruct(item,
		validation.Field(&item.PageID, validation.By(func(any) error {
			if item.PageID == uuid.Nil {
				return errors.New("cannot be blank")
			}
			return nil
		})),
		validation.Field(&item.Region, validation.Required),
		validation.Field(&item.Type, validation.Required),
	)
	var fieldErrs validation.Errors
	switch {
	case errors.As(err, &fieldErrs):
		for key, value := range fieldErrs {
			errs[key] = value
		}
	case err != nil:
		return err
	}

	if _, failed := errs["type"]; !failed && s.plugins != nil && !s.plugins.Has(item.Type) {
		errs["type"] = errors.New("plugin type " + item.Type + " is not registered")
	}
	if _, failed := errs["page_id"]; !failed && s.pages != nil {
		if err := s.checkRegion(ctx, item, errs); err != nil {
			return err
		}
	}
	if s.schemas != nil && item.Type != "" {
		if err := s.schemas.Validate(item.Type, item.Payload); err != nil {
			messages := make([]string, 0)
			for _, issue := range payloadschema.Issues(err) {
				location := issue.Location
				if location == "" {
					location = "#"
				}
				messages = append(messages, location+" "+issue.Message)
			}
			errs["payload"] = errors.New(strings.Join(messages, "; "))
		}
	}
	return validationFailure(errs)
}

func (s *service) checkRegion(ctx context.Context, item *Item, errs validation.Errors) error {
	page, err := s.pages.Get(ctx, item.PageID)
	switch {
	case pages.IsNotFound(err):
		errs["page_id"] = errors.New("page does not exist")
		return nil
	case err != nil:
		return err
	}
	if _, failed := errs["region"]; failed {
		return nil
	}
	for _, region := range s.pages.Types().RegionsFor(page) {
		if region.Key == item.Region {
			return nil
		}
	}
	errs["region"] = errors.New("region " + item.Region + " is not declared by page type " + page.PageType)
	return nil
}

func (s *service) nextOrdering(ctx context.Context, item *Item) (int, error) {
	siblings, err := s.repo.ListForRegion(ctx, item.PageID, item.Region)
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, sibling := range siblings {
		highest = max(highest, sibling.Ordering)
	}
	return highest + orderingStep, nil
}
