package controller

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/controller"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/category/service"

	"github.com/labstack/echo/v4"
)

type CategoryController struct {
	controller.BaseController
	service service.CategoryServiceInterface
}

func NewCategoryController(service service.CategoryServiceInterface) *CategoryController {
	return &CategoryController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

// ListCategories returns every category together with its registered
// category_data schema.
func (c *CategoryController) ListCategories(ctx echo.Context) error {
	schemas, err := c.service.List(ctx.Request().Context())
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, schemas, "Categories retrieved")
}
