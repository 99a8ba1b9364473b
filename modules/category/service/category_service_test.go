package service

import (
	"context"
	"testing"

	coreEntity "github.com/AndyVoronov/ObschiySbor-sub000/core/entity"
	appErrors "github.com/AndyVoronov/ObschiySbor-sub000/core/errors"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/category/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSchemaRepo struct {
	schemas map[entity.Category]*entity.CategorySchema
}

func (f *fakeSchemaRepo) GetSchema(ctx context.Context, category entity.Category) (*entity.CategorySchema, error) {
	return f.schemas[category], nil
}

func (f *fakeSchemaRepo) ListSchemas(ctx context.Context) ([]entity.CategorySchema, error) {
	var out []entity.CategorySchema
	for _, s := range f.schemas {
		out = append(out, *s)
	}
	return out, nil
}

func newCategoryFixture(schemas map[entity.Category]*entity.CategorySchema) CategoryServiceInterface {
	// nil cache degrades to a pass-through; schema reads hit the repo.
	return NewCategoryService(&fakeSchemaRepo{schemas: schemas}, nil)
}

func TestValidatePayloadUnknownCategory(t *testing.T) {
	svc := newCategoryFixture(nil)

	appErr := svc.ValidatePayload(context.Background(), "knitting_contest", coreEntity.JSONB{})
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrInvalidInput, appErr.Code)
}

func TestValidatePayloadNoSchemaAcceptsAnything(t *testing.T) {
	svc := newCategoryFixture(nil)

	appErr := svc.ValidatePayload(context.Background(), entity.CategoryHiking, coreEntity.JSONB{
		"difficulty": "hard",
		"whatever":   42,
	})
	assert.Nil(t, appErr)
}

func TestValidatePayloadEnforcesFieldKinds(t *testing.T) {
	schemas := map[entity.Category]*entity.CategorySchema{
		entity.CategoryBoardGames: {
			Category: entity.CategoryBoardGames,
			Fields: coreEntity.JSONB{
				"min_players": "number",
				"game_name":   "string",
				"beginner_ok": "boolean",
			},
		},
	}
	svc := newCategoryFixture(schemas)

	appErr := svc.ValidatePayload(context.Background(), entity.CategoryBoardGames, coreEntity.JSONB{
		"min_players": float64(2),
		"game_name":   "Carcassonne",
		"beginner_ok": true,
	})
	assert.Nil(t, appErr)

	// Missing field.
	appErr = svc.ValidatePayload(context.Background(), entity.CategoryBoardGames, coreEntity.JSONB{
		"min_players": float64(2),
		"game_name":   "Carcassonne",
	})
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrInvalidInput, appErr.Code)

	// Wrong type.
	appErr = svc.ValidatePayload(context.Background(), entity.CategoryBoardGames, coreEntity.JSONB{
		"min_players": "two",
		"game_name":   "Carcassonne",
		"beginner_ok": true,
	})
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrInvalidInput, appErr.Code)
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, entity.CategoryYoga.Valid())
	assert.True(t, entity.Category("football").Valid())
	assert.False(t, entity.Category("").Valid())
	assert.False(t, entity.Category("underwater_basket_weaving").Valid())
}
