package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Rol3ert99/CookbookAPP-backend/internal/logger"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/prompt"
	"github.com/Rol3ert99/CookbookAPP-backend/internal/recipe"
)

// IdeasService turns ingredient lists into validated dish suggestions
type IdeasService struct {
	builder   *prompt.Builder
	completer Completer
	validator *recipe.Validator
	images    recipe.ImageGenerator
	cache     Cache
	tracer    trace.Tracer
	log       *logger.Logger
}

// IdeasOption configures optional IdeasService collaborators
type IdeasOption func(*IdeasService)

// WithImages enables image generation for every suggested dish
func WithImages(gen recipe.ImageGenerator) IdeasOption {
	return func(s *IdeasService) { s.images = gen }
}

// WithCache stores validated responses and serves repeats from the cache
func WithCache(c Cache) IdeasOption {
	return func(s *IdeasService) { s.cache = c }
}

// NewIdeasService creates a new IdeasService instance
func NewIdeasService(builder *prompt.Builder, completer Completer, validator *recipe.Validator, log *logger.Logger, opts ...IdeasOption) (*IdeasService, error) {
	if builder == nil || completer == nil || validator == nil {
		return nil, errors.New("builder, completer and validator are required")
	}
	s := &IdeasService{
		builder:   builder,
		completer: completer,
		validator: validator,
		tracer:    otel.Tracer("github.com/Rol3ert99/CookbookAPP-backend/internal/service"),
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ImagesEnabled reports whether suggestions get generated images
func (s *IdeasService) ImagesEnabled() bool {
	return s.images != nil
}

// Suggest asks the model for dishes that can be made from ingredients. The
// result is validated against the vocabulary policy and, when images are
// enabled, every dish carries an image URL instead of a description.
func (s *IdeasService) Suggest(ctx context.Context, ingredients []string) (*recipe.IdeasResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ideas.suggest",
		trace.WithAttributes(attribute.Int("ideas.ingredients", len(ingredients))))
	defer span.End()

	text, err := s.builder.Ideas(ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to build ideas prompt: %w", err)
	}

	key := ideasKey(text, s.ImagesEnabled())
	if resp, ok := cached[recipe.IdeasResponse](ctx, s, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.log.Debug("serving ideas from cache", "key", key)
		return resp, nil
	}

	raw, err := s.completer.Complete(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to complete ideas prompt: %w", err)
	}

	resp, err := recipe.ParseIdeas(raw)
	if err != nil {
		s.logRejected(err)
		return nil, fmt.Errorf("failed to parse ideas: %w", err)
	}

	warnings, err := s.validator.Apply(resp)
	for _, w := range warnings {
		s.log.Warn("dish outside vocabulary", "dish", w.Index, "field", w.Field, "value", w.Value, "policy", string(s.validator.Policy()))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to validate ideas: %w", err)
	}

	if s.images != nil {
		dishes, err := recipe.AttachImages(ctx, resp.Dishes, s.images)
		if err != nil {
			return nil, fmt.Errorf("failed to attach images: %w", err)
		}
		resp.Dishes = dishes
	}

	span.SetAttributes(attribute.Int("ideas.dishes", len(resp.Dishes)))
	s.store(ctx, key, resp)
	return resp, nil
}

// Steps asks the model for ordered preparation steps of a named dish
func (s *IdeasService) Steps(ctx context.Context, name string, ingredients []string) (*recipe.StepsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ideas.steps",
		trace.WithAttributes(attribute.Int("ideas.ingredients", len(ingredients))))
	defer span.End()

	text, err := s.builder.Steps(name, ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to build steps prompt: %w", err)
	}

	key := stepsKey(text)
	if resp, ok := cached[recipe.StepsResponse](ctx, s, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return resp, nil
	}

	raw, err := s.completer.Complete(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to complete steps prompt: %w", err)
	}

	resp, err := recipe.ParseSteps(raw)
	if err != nil {
		s.logRejected(err)
		return nil, fmt.Errorf("failed to parse steps: %w", err)
	}

	s.store(ctx, key, resp)
	return resp, nil
}

func (s *IdeasService) logRejected(err error) {
	var parseErr *recipe.ParseError
	if errors.As(err, &parseErr) {
		s.log.Debug("model output rejected", "kind", string(recipe.KindOf(err)), "snippet", parseErr.Snippet)
		return
	}
	s.log.Debug("model output rejected", "kind", string(recipe.KindOf(err)), "error", err)
}
