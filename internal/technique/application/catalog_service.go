package technique

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/zjrosen/mise/internal/cachemanager"
	"github.com/zjrosen/mise/internal/log"
	"github.com/zjrosen/mise/internal/recipe"
	technique "github.com/zjrosen/mise/internal/technique/domain"
)

// CatalogService errors
var (
	ErrTemplateNotFound = errors.New("template not found")
)

// UnknownTechniqueError is returned when a key names no technique.
type UnknownTechniqueError struct {
	Key string
}

func (e *UnknownTechniqueError) Error() string {
	return fmt.Sprintf("unknown technique %q", e.Key)
}

// Is makes errors.Is(err, technique.ErrNotFound) match.
func (e *UnknownTechniqueError) Is(target error) bool { return target == technique.ErrNotFound }

// ServiceConfig configures a CatalogService.
type ServiceConfig struct {
	UserBaseDir  string        // root holding a techniques/ directory; empty disables user techniques
	CacheTTL     time.Duration // lifetime of parsed templates; zero uses the cache default
	DisableCache bool          // parse templates on every render
}

// CatalogService serves the technique catalog and renders instructions.
// It is safe for concurrent use.
type CatalogService struct {
	mu        sync.RWMutex
	catalog   *technique.Catalog
	builtinFS fs.FS
	userFS    fs.FS
	userDir   string

	cache     *cachemanager.InMemoryCacheManager[string, *template.Template]
	templates *cachemanager.ReadThroughCache[string, *template.Template, *technique.Technique]
	ttl       time.Duration
}

// NewCatalogService loads the built-in catalog from builtinFS and merges the
// user catalog over it. A user technique replaces a built-in one with the same key.
func NewCatalogService(builtinFS fs.FS, cfg ServiceConfig) (*CatalogService, error) {
	s := &CatalogService{
		builtinFS: builtinFS,
		userDir:   cfg.UserBaseDir,
		ttl:       cfg.CacheTTL,
		cache: cachemanager.NewInMemoryCacheManager[string, *template.Template](
			"technique-templates", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval),
	}
	s.templates = cachemanager.NewReadThroughCache[string, *template.Template, *technique.Technique](
		s.cache, s.parse, cfg.DisableCache)

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CatalogService) load() error {
	builtins, err := LoadCatalogFromYAML(s.builtinFS)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	catalog := technique.NewCatalog()
	for _, t := range builtins {
		if err := catalog.Add(t); err != nil {
			return fmt.Errorf("technique %q: %w", t.Key(), err)
		}
	}

	userTechniques, userFS, err := LoadUserCatalogFromDir(s.userDir)
	if err != nil {
		return fmt.Errorf("load user catalog: %w", err)
	}
	for _, t := range userTechniques {
		replaced, err := catalog.Put(t)
		if err != nil {
			return fmt.Errorf("user technique %q: %w", t.Key(), err)
		}
		if replaced {
			log.Warn(log.CatTechnique, "user technique overrides built-in", "key", t.Key())
		}
	}

	s.mu.Lock()
	s.catalog = catalog
	s.userFS = userFS
	s.mu.Unlock()
	return nil
}

// Reload re-reads both catalogs and drops every parsed template.
func (s *CatalogService) Reload(ctx context.Context) error {
	if err := s.load(); err != nil {
		return err
	}
	return s.templates.Invalidate(ctx)
}

// List returns all techniques
func (s *CatalogService) List() []*technique.Technique {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.List()
}

// GetByKey returns a technique by key
func (s *CatalogService) GetByKey(key string) (*technique.Technique, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.catalog.GetByKey(key)
	if err != nil {
		return nil, &UnknownTechniqueError{Key: key}
	}
	return t, nil
}

// GetByLabels returns techniques matching all specified labels (AND logic)
func (s *CatalogService) GetByLabels(labels ...string) []*technique.Technique {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.GetByLabels(labels...)
}

// Labels returns all labels in use, sorted
func (s *CatalogService) Labels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Labels()
}

// Technique returns the technique bound to this service's renderer, ready
// to be used in recipe instructions.
func (s *CatalogService) Technique(key string) (recipe.Technique, error) {
	t, err := s.GetByKey(key)
	if err != nil {
		return nil, err
	}
	return &Bound{service: s, technique: t}, nil
}

// Render renders parameters with the technique named key.
func (s *CatalogService) Render(ctx context.Context, key string, p recipe.Parameters) (string, error) {
	t, err := s.GetByKey(key)
	if err != nil {
		return "", err
	}
	return s.render(ctx, t, p)
}

// CacheStats reports template cache usage.
func (s *CatalogService) CacheStats() cachemanager.Stats {
	return s.cache.Stats()
}

func (s *CatalogService) render(ctx context.Context, t *technique.Technique, p recipe.Parameters) (string, error) {
	tmpl, err := s.templates.Get(ctx, cacheKey(t), t, s.ttl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, NewTemplateContext(p)); err != nil {
		return "", fmt.Errorf("execute template %s: %w", t.Template(), err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// parse loads and parses a technique template. It is the cache loader.
func (s *CatalogService) parse(_ context.Context, t *technique.Technique) (*template.Template, error) {
	fsys := s.fsFor(t)
	if fsys == nil {
		return nil, fmt.Errorf("read template %s: %w", t.Template(), ErrTemplateNotFound)
	}

	content, err := fs.ReadFile(fsys, t.Template())
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", t.Template(), ErrTemplateNotFound)
	}

	tmpl, err := template.New(t.Key()).Funcs(templateFuncs).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", t.Template(), err)
	}

	log.Debug(log.CatTechnique, "parsed template", "key", t.Key(), "path", t.Template())
	return tmpl, nil
}

func (s *CatalogService) fsFor(t *technique.Technique) fs.FS {
	if t.Source() == technique.SourceUser {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.userFS
	}
	return s.builtinFS
}

func cacheKey(t *technique.Technique) string {
	return t.Source().String() + ":" + t.Key()
}

// Bound is a catalog technique that renders through its CatalogService.
// It implements recipe.Technique.
type Bound struct {
	service   *CatalogService
	technique *technique.Technique
}

var _ recipe.Technique = (*Bound)(nil)

// Key returns the technique key.
func (b *Bound) Key() string { return b.technique.Key() }

// Technique returns the catalog entry.
func (b *Bound) Technique() *technique.Technique { return b.technique }

// EvalTemplate renders the parameters with the technique's template.
func (b *Bound) EvalTemplate(p recipe.Parameters) (string, error) {
	return b.service.render(context.Background(), b.technique, p)
}
