package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/cache"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/constants"
	coreEntity "github.com/AndyVoronov/ObschiySbor-sub000/core/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/category/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/category/repository"
)

// CategoryService is the schema registry lookup used when events are
// created. Schemas change rarely, so reads go through the redis cache.
type CategoryService struct {
	repo  repository.CategoryRepositoryInterface
	cache *cache.Cache
}

type CategoryServiceInterface interface {
	List(ctx context.Context) ([]entity.CategorySchema, *errors.AppError)
	ValidatePayload(ctx context.Context, category entity.Category, payload coreEntity.JSONB) *errors.AppError
}

func NewCategoryService(repo repository.CategoryRepositoryInterface, c *cache.Cache) CategoryServiceInterface {
	return &CategoryService{repo: repo, cache: c}
}

func (s *CategoryService) List(ctx context.Context) ([]entity.CategorySchema, *errors.AppError) {
	schemas, err := s.repo.ListSchemas(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load categories", err)
	}
	return schemas, nil
}

func (s *CategoryService) getSchema(ctx context.Context, category entity.Category) (*entity.CategorySchema, error) {
	key := constants.RedisKeyCategorySchema + string(category)

	var cached entity.CategorySchema
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	schema, err := s.repo.GetSchema(ctx, category)
	if err != nil {
		return nil, err
	}
	if schema != nil {
		s.cache.SetJSON(ctx, key, schema, constants.CategorySchemaCacheTTL*time.Second)
	}
	return schema, nil
}

// ValidatePayload checks that payload matches the declared category's
// registered shape. A category without a registered schema accepts any
// payload; the event core treats category_data as opaque beyond this check.
func (s *CategoryService) ValidatePayload(ctx context.Context, category entity.Category, payload coreEntity.JSONB) *errors.AppError {
	if !category.Valid() {
		return errors.NewAppError(errors.ErrInvalidInput,
			fmt.Sprintf("Unknown category %q", category), nil)
	}

	schema, err := s.getSchema(ctx, category)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to load category schema", err)
	}
	if schema == nil {
		return nil
	}

	for field, kindRaw := range schema.Fields {
		kind, _ := kindRaw.(string)
		value, present := payload[field]
		if !present {
			return errors.NewAppError(errors.ErrInvalidInput,
				fmt.Sprintf("category_data is missing required field %q", field), nil)
		}
		if !matchesKind(value, kind) {
			return errors.NewAppError(errors.ErrInvalidInput,
				fmt.Sprintf("category_data field %q must be of type %s", field, kind), nil)
		}
	}
	return nil
}

func matchesKind(value any, kind string) bool {
	switch kind {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		switch value.(type) {
		case float64, int, int64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	default:
		// Unknown kind in the registry: accept, do not guess.
		return true
	}
}
