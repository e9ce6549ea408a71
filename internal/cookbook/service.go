// Package cookbook is the application layer: it loads recipe documents,
// derives them, renders them and hands them to storage and export.
package cookbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/mise/internal/blob"
	"github.com/zjrosen/mise/internal/log"
	"github.com/zjrosen/mise/internal/metrics"
	"github.com/zjrosen/mise/internal/presentation"
	"github.com/zjrosen/mise/internal/recipe"
	"github.com/zjrosen/mise/internal/recipefile"
	"github.com/zjrosen/mise/internal/tracing"
)

// Errors
var (
	ErrNoRepository = errors.New("no recipe store configured")
	ErrNoBlobStore  = errors.New("no export store configured")
)

// Config wires a Service. Only Techniques is required.
type Config struct {
	Techniques recipefile.TechniqueLookup
	Policy     recipe.ConflictPolicy
	Repository Repository
	Blobs      blob.Store
	Tracer     trace.Tracer
	Metrics    *metrics.Recorder
}

// Service coordinates the recipe workflow.
type Service struct {
	techniques recipefile.TechniqueLookup
	policy     recipe.ConflictPolicy
	repo       Repository
	blobs      blob.Store
	tracer     trace.Tracer
	metrics    *metrics.Recorder
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	return &Service{
		techniques: cfg.Techniques,
		policy:     cfg.Policy,
		repo:       cfg.Repository,
		blobs:      cfg.Blobs,
		tracer:     cfg.Tracer,
		metrics:    cfg.Metrics,
	}
}

// Loaded is a derived recipe together with the document it came from.
type Loaded struct {
	Recipe *recipe.Recipe
	Source []byte
	Path   string
}

// LoadFile reads and derives the document at path.
func (s *Service) LoadFile(ctx context.Context, path string) (*Loaded, error) {
	src, err := os.ReadFile(path) // #nosec G304 -- user supplied recipe path
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	loaded, err := s.Load(ctx, path, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return loaded, nil
}

// Load parses src and builds the recipe, which runs the first derivation.
func (s *Service) Load(ctx context.Context, name string, src []byte) (_ *Loaded, err error) {
	_, span := tracing.Start(ctx, s.tracer, tracing.SpanLoad, attribute.String(tracing.AttrSourcePath, name))
	defer func() { tracing.End(span, err) }()

	start := time.Now()
	r, err := recipefile.Load(bytes.NewReader(src), s.techniques, s.policy)
	if err != nil {
		s.metrics.ObserveDerivation(metrics.Derivation{Outcome: metrics.OutcomeFailed, Elapsed: time.Since(start)})
		return nil, err
	}

	span.SetAttributes(
		attribute.String(tracing.AttrRecipeID, r.ID()),
		attribute.String(tracing.AttrRecipeName, r.Name()),
	)
	s.observe(span, r.LastDerivation(), time.Since(start))
	return &Loaded{Recipe: r, Source: src, Path: name}, nil
}

// Derive re-runs derivation on a recipe that was edited since it was loaded.
// A clean recipe is skipped.
func (s *Service) Derive(ctx context.Context, r *recipe.Recipe) (recipe.Derivation, error) {
	_, span := tracing.Start(ctx, s.tracer, tracing.SpanDerive, attribute.String(tracing.AttrRecipeID, r.ID()))

	start := time.Now()
	d, err := r.Update()
	if err != nil {
		s.metrics.ObserveDerivation(metrics.Derivation{Outcome: metrics.OutcomeFailed, Elapsed: time.Since(start)})
		tracing.End(span, err)
		return d, err
	}
	s.observe(span, d, time.Since(start))
	tracing.End(span, nil)
	return d, nil
}

func (s *Service) observe(span trace.Span, d recipe.Derivation, elapsed time.Duration) {
	outcome := metrics.OutcomeDerived
	if d.Skipped {
		outcome = metrics.OutcomeSkipped
	}
	s.metrics.ObserveDerivation(metrics.Derivation{
		Outcome:    outcome,
		Created:    len(d.Created),
		Warnings:   len(d.Warnings),
		Unresolved: len(d.Unresolved),
		Elapsed:    elapsed,
	})

	span.SetAttributes(
		attribute.Bool(tracing.AttrSkipped, d.Skipped),
		attribute.Int(tracing.AttrCreated, len(d.Created)),
		attribute.Int(tracing.AttrWarnings, len(d.Warnings)),
		attribute.Int(tracing.AttrUnresolved, len(d.Unresolved)),
	)
	for _, w := range d.Warnings {
		span.AddEvent(tracing.EventWarning, trace.WithAttributes(attribute.String("key", w.Key)))
		log.Warn(log.CatRecipe, "derivation warning", "warning", w.String())
	}
	for _, u := range d.Unresolved {
		log.Debug(log.CatRecipe, "unresolved reference",
			"step", u.Index+1, "field", u.Field, "value", fmt.Sprint(u.Value))
	}
}

// Render writes r in format. Formatter options control width, JSON
// indentation and markdown styling.
func (s *Service) Render(ctx context.Context, w io.Writer, r *recipe.Recipe, format string, opts ...presentation.Option) (err error) {
	_, span := tracing.Start(ctx, s.tracer, tracing.SpanRender,
		attribute.String(tracing.AttrRecipeID, r.ID()),
		attribute.String(tracing.AttrFormat, format),
	)
	defer func() { tracing.End(span, err) }()

	dto := presentation.FromRecipe(r)
	span.SetAttributes(attribute.Int(tracing.AttrSteps, len(dto.Steps)))
	if err := presentation.NewFormatter(w, opts...).FormatRecipe(dto, format); err != nil {
		return err
	}
	s.metrics.ObserveRender(format)
	return nil
}

// RenderString is Render into a string.
func (s *Service) RenderString(ctx context.Context, r *recipe.Recipe, format string, opts ...presentation.Option) (string, error) {
	var buf bytes.Buffer
	if err := s.Render(ctx, &buf, r, format, opts...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Save stores the source document and the derived JSON under the recipe id.
func (s *Service) Save(ctx context.Context, l *Loaded) (_ *StoredRecipe, err error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	_, span := tracing.Start(ctx, s.tracer, tracing.SpanStore+"save", attribute.String(tracing.AttrRecipeID, l.Recipe.ID()))
	defer func() { tracing.End(span, err) }()

	derived, err := json.Marshal(l.Recipe)
	if err != nil {
		return nil, fmt.Errorf("encode recipe: %w", err)
	}
	stored := &StoredRecipe{
		ID:      l.Recipe.ID(),
		Name:    l.Recipe.Name(),
		Author:  l.Recipe.Author(),
		Source:  l.Source,
		Derived: derived,
	}
	if err := s.repo.Save(ctx, stored); err != nil {
		return nil, err
	}
	log.Info(log.CatStore, "saved recipe", "id", stored.ID)
	return stored, nil
}

// Stored returns a saved recipe.
func (s *Service) Stored(ctx context.Context, id string) (*StoredRecipe, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.FindByID(ctx, id)
}

// StoredAll lists saved recipes.
func (s *Service) StoredAll(ctx context.Context) ([]*StoredRecipe, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.List(ctx)
}

// Delete removes a saved recipe.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.repo == nil {
		return ErrNoRepository
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info(log.CatStore, "deleted recipe", "id", id)
	return nil
}

// Reload rebuilds a saved recipe from its stored source document.
func (s *Service) Reload(ctx context.Context, id string) (*Loaded, error) {
	stored, err := s.Stored(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, "store:"+id, stored.Source)
}

// Export writes the derived JSON of l to the blob store.
func (s *Service) Export(ctx context.Context, l *Loaded) (_ blob.Info, err error) {
	if s.blobs == nil {
		return blob.Info{}, ErrNoBlobStore
	}
	key := blob.RecipeKey(l.Recipe.ID())
	_, span := tracing.Start(ctx, s.tracer, tracing.SpanExport,
		attribute.String(tracing.AttrBlobDriver, string(s.blobs.Driver())),
		attribute.String(tracing.AttrBlobKey, key),
	)
	defer func() { tracing.End(span, err) }()

	data, err := json.MarshalIndent(l.Recipe, "", "  ")
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode recipe: %w", err)
	}
	info, err := s.blobs.Put(ctx, key, bytes.NewReader(data), "application/json")
	if err != nil {
		return blob.Info{}, fmt.Errorf("export %s: %w", key, err)
	}
	log.Info(log.CatBlob, "exported recipe", "key", key, "driver", string(s.blobs.Driver()))
	return info, nil
}
