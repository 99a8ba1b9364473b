package repository

import (
	"context"
	"database/sql"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/database"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/category/entity"
)

// CategoryRepository reads the category schema registry. The registry is an
// external lookup as far as the event core is concerned; events only carry
// the payload opaquely.
type CategoryRepository struct {
	DB database.Database
}

func NewCategoryRepository(db database.Database) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

type CategoryRepositoryInterface interface {
	GetSchema(ctx context.Context, category entity.Category) (*entity.CategorySchema, error)
	ListSchemas(ctx context.Context) ([]entity.CategorySchema, error)
}

func (r *CategoryRepository) GetSchema(ctx context.Context, category entity.Category) (*entity.CategorySchema, error) {
	query := `
		SELECT id, category, fields, created_at, updated_at
		FROM category_schemas WHERE category = $1
	`

	var schema entity.CategorySchema
	err := r.DB.GetContext(ctx, &schema, query, category)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("CategoryRepository:GetSchema", err)
		return nil, err
	}

	return &schema, nil
}

func (r *CategoryRepository) ListSchemas(ctx context.Context) ([]entity.CategorySchema, error) {
	query := `
		SELECT id, category, fields, created_at, updated_at
		FROM category_schemas ORDER BY category
	`

	var schemas []entity.CategorySchema
	err := r.DB.SelectContext(ctx, &schemas, query)
	if err != nil {
		logger.Error("CategoryRepository:ListSchemas", err)
		return nil, err
	}

	return schemas, nil
}
