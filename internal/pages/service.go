package pages

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-feincms/internal/logging"
	"github.com/goliatone/go-feincms/pkg/interfaces"
)

const positionStep = 10

// Service maintains the page tree. Save is the only write path that keeps
// paths, active flags and namespaces consistent.
type Service interface {
	Save(ctx context.Context, page *Page) (*Page, error)
	Get(ctx context.Context, id uuid.UUID) (*Page, error)
	GetByPath(ctx context.Context, path string) (*Page, error)
	// List returns every page in depth-first tree order.
	List(ctx context.Context) ([]*Page, error)
	Children(ctx context.Context, parentID *uuid.UUID) ([]*Page, error)
	Ancestors(ctx context.Context, id uuid.UUID, includeSelf bool) ([]*Page, error)
	Descendants(ctx context.Context, id uuid.UUID, includeSelf bool) ([]*Page, error)
	Translations(ctx context.Context, id uuid.UUID) ([]*Page, error)
	MenuPages(ctx context.Context, menu, language string) ([]*Page, error)
	ActiveApplications(ctx context.Context) ([]AppMount, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Move(ctx context.Context, req MovePageRequest) (*Page, error)
	Clone(ctx context.Context, req ClonePageRequest) (*Page, error)
	Types() *Types
}

// NamespaceResolver derives the application namespace of a page and checks
// application specific constraints before the page is persisted.
type NamespaceResolver interface {
	NamespaceFor(page *Page) string
	Validate(ctx context.Context, page *Page) error
}

// ContentCloner manages the content rows owned by pages.
type ContentCloner interface {
	ReplaceContent(ctx context.Context, sourceID, targetID uuid.UUID) error
	DeleteContent(ctx context.Context, pageID uuid.UUID) error
}

// ServiceOption configures the page service.
type ServiceOption func(*service)

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the identifier generator used for new pages.
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

// DefaultLanguage is the primary language when none is configured.
const DefaultLanguage = "en"

// WithLanguages restricts page languages. The primary language is the one
// translations point to. An empty primary falls back to the first code.
func WithLanguages(primary string, codes ...string) ServiceOption {
	return func(s *service) {
		s.primaryLanguage = strings.TrimSpace(primary)
		s.languages = append([]string(nil), codes...)
	}
}

// WithMenus restricts the menu keys a page may be assigned to.
func WithMenus(keys ...string) ServiceOption {
	return func(s *service) {
		s.menus = append([]string(nil), keys...)
	}
}

// WithNamespaceResolver plugs the application namespace resolver in.
func WithNamespaceResolver(resolver NamespaceResolver) ServiceOption {
	return func(s *service) {
		s.resolver = resolver
	}
}

// WithContentCloner wires content cleanup on delete and content copy on clone.
func WithContentCloner(cloner ContentCloner) ServiceOption {
	return func(s *service) {
		s.content = cloner
	}
}

type service struct {
	repo            PageRepository
	types           *Types
	resolver        NamespaceResolver
	content         ContentCloner
	logger          interfaces.Logger
	now             func() time.Time
	newID           func() uuid.UUID
	primaryLanguage string
	languages       []string
	menus           []string
}

// NewService constructs the page service.
func NewService(repo PageRepository, types *Types, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		types:  types,
		logger: logging.NoOp(),
		now:    time.Now,
		newID:  uuid.New,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.primaryLanguage == "" {
		s.primaryLanguage = DefaultLanguage
		if len(s.languages) > 0 {
			s.primaryLanguage = s.languages[0]
		}
	}
	return s
}

func (s *service) Types() *Types {
	return s.types
}

func (s *service) Save(ctx context.Context, page *Page) (*Page, error) {
	return s.save(ctx, page, nil)
}

// save runs the full pipeline. siblings are extra rows persisted in the same
// transaction, used by Move to renumber positions.
func (s *service) save(ctx context.Context, input *Page, siblings []*Page) (*Page, error) {
	if input == nil {
		return nil, ErrPageRequired
	}
	page := input.Clone()

	var existing *Page
	if page.ID == uuid.Nil {
		page.ID = s.newID()
	} else {
		found, err := s.repo.GetByID(ctx, page.ID)
		switch {
		case err == nil:
			existing = found
		case !IsNotFound(err):
			return nil, err
		}
	}
	isNew := existing == nil

	s.normalize(page)
	errs := validation.Errors{}

	var descendants []*Page
	if !isNew {
		found, err := s.repo.Descendants(ctx, page.ID)
		if err != nil {
			return nil, err
		}
		descendants = found
	}

	var parent *Page
	if page.ParentID != nil {
		found, err := s.repo.GetByID(ctx, *page.ParentID)
		switch {
		case err == nil:
			parent = found
		case IsNotFound(err):
			errs["parent_id"] = errors.New("parent page does not exist")
		default:
			return nil, err
		}
	}
	if parent != nil && (parent.ID == page.ID || containsID(descendants, parent.ID)) {
		errs["parent_id"] = errors.New("a page cannot be its own ancestor")
		parent = nil
	}

	if page.Slug == "" && page.ParentID != nil {
		if derived, err := slug.Normalize(page.Title); err == nil {
			page.Slug = derived
		}
	}
	if page.Slug != "" && !slug.IsValid(page.Slug) {
		errs["slug"] = errors.New("slug may only contain lowercase letters, numbers and hyphens")
	}
	if page.Slug == "" && page.ParentID != nil {
		errs["slug"] = errors.New("slug is required for pages below the root")
	}

	if page.Position <= 0 {
		position, err := s.nextPosition(ctx, page)
		if err != nil {
			return nil, err
		}
		page.Position = position
	}

	if page.StaticPath {
		if !strings.HasPrefix(page.Path, "/") || !strings.HasSuffix(page.Path, "/") {
			errs["path"] = errors.New("static paths must start and end with a slash")
		}
	} else {
		page.Path = computePath(parent, page)
	}

	if parent != nil && !parent.IsActive {
		page.IsActive = false
	}

	page.AppNamespace = s.namespaceFor(page)

	if err := s.validateFields(page, errs); err != nil {
		return nil, err
	}
	if err := s.validatePath(ctx, page, errs); err != nil {
		return nil, err
	}
	if err := s.validateTranslation(ctx, page, errs); err != nil {
		return nil, err
	}
	if err := s.validateRedirect(ctx, page, isNew, errs); err != nil {
		return nil, err
	}

	cascade := cascadeDescendants(page, descendants)
	if err := s.validateCascade(ctx, page, descendants, cascade, errs); err != nil {
		return nil, err
	}

	if len(errs) > 0 {
		return nil, ValidationFailure(errs)
	}
	if s.resolver != nil {
		if err := s.resolver.Validate(ctx, page); err != nil {
			return nil, err
		}
	}

	now := s.now()
	page.UpdatedAt = now
	if isNew {
		page.CreatedAt = now
	} else {
		page.CreatedAt = existing.CreatedAt
	}
	related := make([]*Page, 0, len(cascade)+len(siblings))
	for _, rel := range cascade {
		rel.UpdatedAt = now
		related = append(related, rel)
	}
	related = append(related, siblings...)

	saved, err := s.repo.SaveTree(ctx, page, isNew, related)
	if err != nil {
		return nil, err
	}

	logging.WithPageContext(s.logger, saved.Path, saved.LanguageCode, saved.AppNamespace).
		Debug("pages.save", "page_id", saved.ID, "created", isNew, "cascaded", len(cascade))
	return saved, nil
}

func (s *service) normalize(page *Page) {
	page.Title = strings.TrimSpace(page.Title)
	page.Slug = strings.TrimSpace(page.Slug)
	page.Menu = strings.TrimSpace(page.Menu)
	page.RedirectToURL = strings.TrimSpace(page.RedirectToURL)
	page.LanguageCode = strings.TrimSpace(page.LanguageCode)
	if page.LanguageCode == "" {
		page.LanguageCode = s.primaryLanguage
	}
	if strings.TrimSpace(page.PageType) == "" {
		page.PageType = s.types.Default().TypeKey()
	}
}

func (s *service) namespaceFor(page *Page) string {
	if s.resolver != nil {
		return s.resolver.NamespaceFor(page)
	}
	if app, ok := s.types.Lookup(page.PageType).(ApplicationType); ok {
		return app.Namespace(page)
	}
	return ""
}

func (s *service) nextPosition(ctx context.Context, page *Page) (int, error) {
	siblings, err := s.repo.ListChildren(ctx, page.ParentID)
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, sibling := range siblings {
		if sibling.ID != page.ID {
			highest = max(highest, sibling.Position)
		}
	}
	return highest + positionStep, nil
}

func (s *service) validateFields(page *Page, errs validation.Errors) error {
	languages := toAny(s.languages)
	menus := toAny(s.menus)
	err := validation.ValidateStruct(page,
		validation.Field(&page.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&page.LanguageCode,
			validation.Required,
			validation.When(len(languages) > 0, validation.In(languages...).Error("language is not configured")),
		),
		validation.Field(&page.Menu,
			validation.When(len(menus) > 0, validation.In(menus...).Error("menu is not configured")),
		),
		validation.Field(&page.RedirectToURL, validation.By(validateRedirectURL)),
	)
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for key, value := range fieldErrs {
		errs[key] = value
	}
	return nil
}

func validateRedirectURL(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return nil
	}
	return errors.New("redirect url must be absolute or start with a slash")
}

func (s *service) validatePath(ctx context.Context, page *Page, errs validation.Errors) error {
	if _, failed := errs["path"]; failed {
		return nil
	}
	clash, err := s.repo.GetByPath(ctx, page.Path)
	switch {
	case err == nil && clash.ID != page.ID:
		errs["path"] = errors.New("another page already uses this path")
	case err != nil && !IsNotFound(err):
		return err
	}
	return nil
}

func (s *service) validateTranslation(ctx context.Context, page *Page, errs validation.Errors) error {
	if page.TranslationOfID == nil {
		return nil
	}
	if *page.TranslationOfID == page.ID {
		errs["translation_of_id"] = errors.New("a page cannot be a translation of itself")
		return nil
	}
	if s.primaryLanguage != "" && page.LanguageCode == s.primaryLanguage {
		errs["translation_of_id"] = errors.New("pages in the primary language cannot be a translation of another page")
		return nil
	}
	original, err := s.repo.GetByID(ctx, *page.TranslationOfID)
	switch {
	case IsNotFound(err):
		errs["translation_of_id"] = errors.New("translated page does not exist")
	case err != nil:
		return err
	case s.primaryLanguage != "" && original.LanguageCode != s.primaryLanguage:
		errs["translation_of_id"] = errors.New("only pages in the primary language can be translated")
	}
	return nil
}

func (s *service) validateRedirect(ctx context.Context, page *Page, isNew bool, errs validation.Errors) error {
	if page.RedirectToURL != "" && page.RedirectToPageID != nil {
		errs["redirect_to_url"] = errors.New("set either a redirect url or a redirect page, not both")
		return nil
	}
	if page.RedirectToPageID != nil {
		if *page.RedirectToPageID == page.ID {
			errs["redirect_to_page_id"] = errors.New("a page cannot redirect to itself")
			return nil
		}
		target, err := s.repo.GetByID(ctx, *page.RedirectToPageID)
		switch {
		case IsNotFound(err):
			errs["redirect_to_page_id"] = errors.New("redirect target does not exist")
			return nil
		case err != nil:
			return err
		case target.Redirects():
			errs["redirect_to_page_id"] = errors.New("redirect target must not redirect itself")
			return nil
		}
	}
	if page.Redirects() && !isNew {
		referrers, err := s.repo.ListRedirectingTo(ctx, page.ID)
		if err != nil {
			return err
		}
		if len(referrers) > 0 {
			field := "redirect_to_url"
			if page.RedirectToPageID != nil {
				field = "redirect_to_page_id"
			}
			errs[field] = errors.New("other pages redirect here, this page cannot redirect as well")
		}
	}
	return nil
}

func (s *service) validateCascade(ctx context.Context, page *Page, descendants, cascade []*Page, errs validation.Errors) error {
	if len(cascade) == 0 {
		return nil
	}
	subtree := map[uuid.UUID]bool{page.ID: true}
	for _, d := range descendants {
		subtree[d.ID] = true
	}
	for _, rel := range cascade {
		clash, err := s.repo.GetByPath(ctx, rel.Path)
		switch {
		case err == nil && !subtree[clash.ID]:
			errs["path"] = errors.New("moving this page would give descendant " + rel.Path + " a path that is already taken")
			return nil
		case err != nil && !IsNotFound(err):
			return err
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Page, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByPath(ctx context.Context, path string) (*Page, error) {
	return s.repo.GetByPath(ctx, path)
}

func (s *service) List(ctx context.Context) ([]*Page, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return orderTree(records), nil
}

func (s *service) Children(ctx context.Context, parentID *uuid.UUID) ([]*Page, error) {
	return s.repo.ListChildren(ctx, parentID)
}

func (s *service) Ancestors(ctx context.Context, id uuid.UUID, includeSelf bool) ([]*Page, error) {
	chain, err := s.repo.Ancestors(ctx, id)
	if err != nil {
		return nil, err
	}
	if !includeSelf {
		return chain, nil
	}
	self, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	self.TreeDepth = len(chain)
	return append(chain, self), nil
}

func (s *service) Descendants(ctx context.Context, id uuid.UUID, includeSelf bool) ([]*Page, error) {
	subtree, err := s.repo.Descendants(ctx, id)
	if err != nil {
		return nil, err
	}
	if !includeSelf {
		return subtree, nil
	}
	self, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	self.TreeDepth = 0
	return append([]*Page{self}, subtree...), nil
}

// Translations returns the primary page and all its translations, including
// the given page, ordered by configured language.
func (s *service) Translations(ctx context.Context, id uuid.UUID) ([]*Page, error) {
	page, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	primary := page
	if page.TranslationOfID != nil {
		if primary, err = s.repo.GetByID(ctx, *page.TranslationOfID); err != nil {
			return nil, err
		}
	}
	translations, err := s.repo.ListTranslationsOf(ctx, primary.ID)
	if err != nil {
		return nil, err
	}
	out := append([]*Page{primary}, translations...)
	slices.SortStableFunc(out, func(a, b *Page) int {
		return cmp.Compare(s.languageIndex(a.LanguageCode), s.languageIndex(b.LanguageCode))
	})
	return out, nil
}

func (s *service) languageIndex(code string) int {
	if idx := slices.Index(s.languages, code); idx >= 0 {
		return idx
	}
	return len(s.languages)
}

func (s *service) MenuPages(ctx context.Context, menu, language string) ([]*Page, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Page
	for _, page := range all {
		if page.IsActive && page.Menu == menu && (language == "" || page.LanguageCode == language) {
			out = append(out, page)
		}
	}
	return out, nil
}

// ActiveApplications returns the mount tuples of every active application
// page, ordered by path, type, namespace and language.
func (s *service) ActiveApplications(ctx context.Context) ([]AppMount, error) {
	keys := s.types.ApplicationKeys()
	if len(keys) == 0 {
		return nil, nil
	}
	records, err := s.repo.ListActiveByTypes(ctx, keys)
	if err != nil {
		return nil, err
	}
	mounts := make([]AppMount, 0, len(records))
	for _, record := range records {
		mounts = append(mounts, AppMount{
			Path:         record.Path,
			PageType:     record.PageType,
			Namespace:    record.AppNamespace,
			LanguageCode: record.LanguageCode,
		})
	}
	return mounts, nil
}

// Delete removes the page, its subtree and their content. References from
// other pages to removed pages are cleared.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	page, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	subtree, err := s.repo.Descendants(ctx, id)
	if err != nil {
		return err
	}

	ids := []uuid.UUID{page.ID}
	removed := map[uuid.UUID]bool{page.ID: true}
	for _, d := range subtree {
		ids = append(ids, d.ID)
		removed[d.ID] = true
	}

	touched := map[uuid.UUID]*Page{}
	var order []uuid.UUID
	unlink := func(refs []*Page) {
		for _, ref := range refs {
			if removed[ref.ID] {
				continue
			}
			current, ok := touched[ref.ID]
			if !ok {
				current = ref
				touched[ref.ID] = current
				order = append(order, ref.ID)
			}
			if current.RedirectToPageID != nil && removed[*current.RedirectToPageID] {
				current.RedirectToPageID = nil
			}
			if current.TranslationOfID != nil && removed[*current.TranslationOfID] {
				current.TranslationOfID = nil
			}
		}
	}
	for _, removedID := range ids {
		redirecting, err := s.repo.ListRedirectingTo(ctx, removedID)
		if err != nil {
			return err
		}
		unlink(redirecting)
		translations, err := s.repo.ListTranslationsOf(ctx, removedID)
		if err != nil {
			return err
		}
		unlink(translations)
	}
	related := make([]*Page, 0, len(order))
	for _, refID := range order {
		related = append(related, touched[refID])
	}

	if err := s.repo.DeleteTree(ctx, ids, related); err != nil {
		return err
	}
	// Content goes only once the pages are gone. A failure here leaves
	// orphaned rows, never pages without their content.
	if s.content != nil {
		for _, removedID := range ids {
			if err := s.content.DeleteContent(ctx, removedID); err != nil {
				return fmt.Errorf("pages: delete content of %s: %w", removedID, err)
			}
		}
	}
	logging.WithPageContext(s.logger, page.Path, page.LanguageCode, page.AppNamespace).
		Info("pages.delete", "page_id", page.ID, "removed", len(ids))
	return nil
}

func toAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
