package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/catalogmind/attribute-engine/pkg/cache"
	"github.com/catalogmind/attribute-engine/pkg/config"
	"github.com/catalogmind/attribute-engine/pkg/llm"
	"github.com/catalogmind/attribute-engine/pkg/logging"
	"github.com/catalogmind/attribute-engine/pkg/models"
	"github.com/catalogmind/attribute-engine/pkg/prompts"
)

// AttributeGenerationService generates descriptive attributes for every
// subcategory in a category hierarchy.
type AttributeGenerationService interface {
	// Generate returns one AttributeSet per subcategory, sorted ascending by
	// category id. The call is all-or-nothing: any per-subcategory failure
	// fails the whole batch, and no partial list is returned.
	Generate(ctx context.Context, groups []models.CategoryGroup) ([]models.AttributeSet, error)
}

type attributeGenerationService struct {
	client llm.CompletionClient
	pool   *llm.WorkerPool
	cache  *cache.AttributeCache
	cfg    config.GenerationConfig
	logger *zap.Logger
}

// NewAttributeGenerationService creates the attribute generation service.
// The cache instance is owned by the caller so tests can inject a fresh one.
func NewAttributeGenerationService(
	client llm.CompletionClient,
	pool *llm.WorkerPool,
	attributeCache *cache.AttributeCache,
	cfg config.GenerationConfig,
	logger *zap.Logger,
) AttributeGenerationService {
	return &attributeGenerationService{
		client: client,
		pool:   pool,
		cache:  attributeCache,
		cfg:    cfg,
		logger: logger.Named("attribute-generation"),
	}
}

var _ AttributeGenerationService = (*attributeGenerationService)(nil)

// generationFailure pairs a failed subcategory with its error for
// deterministic error selection.
type generationFailure struct {
	subcategory models.Subcategory
	err         error
}

// Generate flattens the hierarchy, resolves cache hits synchronously, fans
// cache misses out over the bounded worker pool, and reassembles all
// outcomes into one ordered list.
func (s *attributeGenerationService) Generate(ctx context.Context, groups []models.CategoryGroup) ([]models.AttributeSet, error) {
	start := time.Now()

	flattened := s.flatten(groups)
	if len(flattened) == 0 {
		s.logger.Info("no subcategories to generate attributes for")
		return []models.AttributeSet{}, nil
	}

	results := make([]models.AttributeSet, 0, len(flattened))
	var misses []models.Subcategory
	for _, sc := range flattened {
		if attrs, ok := s.cache.Get(cache.Key(sc.ID, sc.Name)); ok {
			results = append(results, models.AttributeSet{CategoryID: sc.ID, Attributes: attrs})
			continue
		}
		misses = append(misses, sc)
	}
	hits := len(flattened) - len(misses)
	s.logger.Debug("cache consulted",
		zap.Int("hits", hits),
		zap.Int("misses", len(misses)))

	var failures []generationFailure
	if len(misses) > 0 {
		subcategoryByID := make(map[string]models.Subcategory, len(misses))
		items := make([]llm.WorkItem[models.AttributeSet], 0, len(misses))
		for _, sc := range misses {
			id := strconv.Itoa(sc.ID)
			subcategoryByID[id] = sc
			items = append(items, llm.WorkItem[models.AttributeSet]{
				ID: id,
				Execute: func(ctx context.Context) (models.AttributeSet, error) {
					return s.generateOne(ctx, sc)
				},
			})
		}

		outcomes := llm.Process(ctx, s.pool, items, func(completed, total int) {
			s.logger.Debug("attribute generation progress",
				zap.Int("completed", completed),
				zap.Int("total", total))
		})

		for _, outcome := range outcomes {
			if outcome.Err != nil {
				failures = append(failures, generationFailure{
					subcategory: subcategoryByID[outcome.ID],
					err:         outcome.Err,
				})
				continue
			}
			results = append(results, outcome.Result)
		}
	}

	// All-or-nothing: observed cancellation discards partial results, though
	// anything already cached stays cached for the next call.
	if err := ctx.Err(); err != nil {
		s.logger.Warn("attribute generation cancelled",
			zap.Int("completed", len(results)),
			zap.Int("total", len(flattened)))
		return nil, fmt.Errorf("attribute generation cancelled: %w", err)
	}

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool {
			return failures[i].subcategory.ID < failures[j].subcategory.ID
		})
		first := failures[0]
		if llm.IsCancelled(first.err) {
			return nil, fmt.Errorf("attribute generation cancelled: %w", first.err)
		}
		s.logger.Error("attribute generation failed",
			zap.Int("failed", len(failures)),
			zap.Int("succeeded", len(results)),
			zap.Int("category_id", first.subcategory.ID),
			zap.String("error", logging.SanitizeError(first.err)))
		return nil, fmt.Errorf("subcategory %d (%q): %w",
			first.subcategory.ID, first.subcategory.SanitizedName(), first.err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CategoryID < results[j].CategoryID
	})

	s.logger.Info("attribute generation completed",
		zap.Int("subcategories", len(results)),
		zap.Int("cache_hits", hits),
		zap.Duration("elapsed", time.Since(start)))

	return results, nil
}

// flatten collects all subcategories in group order, logging and skipping
// empty groups.
func (s *attributeGenerationService) flatten(groups []models.CategoryGroup) []models.Subcategory {
	var flattened []models.Subcategory
	for _, group := range groups {
		if len(group.Subcategories) == 0 {
			s.logger.Info("skipping empty category group", zap.String("group", group.Name))
			continue
		}
		flattened = append(flattened, group.Subcategories...)
	}
	return flattened
}

// generateOne handles a single cache miss: completion call, normalization,
// then cache write. Failed results are never cached.
func (s *attributeGenerationService) generateOne(ctx context.Context, sc models.Subcategory) (models.AttributeSet, error) {
	if err := ctx.Err(); err != nil {
		return models.AttributeSet{}, err
	}

	userPrompt := prompts.BuildCategoryAttributesPrompt(s.cfg.UserPromptTemplate, sc.Name)

	raw, err := s.client.Complete(ctx, s.cfg.SystemPrompt, userPrompt)
	if err != nil {
		return models.AttributeSet{}, err
	}

	attrs, err := NormalizeAttributes(raw)
	if err != nil {
		return models.AttributeSet{}, err
	}

	s.cache.Set(cache.Key(sc.ID, sc.Name), attrs, s.cfg.CacheTTL())

	return models.AttributeSet{CategoryID: sc.ID, Attributes: attrs}, nil
}
