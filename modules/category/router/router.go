package router

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/category/controller"

	"github.com/labstack/echo/v4"
)

type CategoryRouter struct {
	CategoryController *controller.CategoryController
}

func NewCategoryRouter(categoryController *controller.CategoryController) *CategoryRouter {
	return &CategoryRouter{CategoryController: categoryController}
}

func (r *CategoryRouter) Setup(e *echo.Echo) {
	v1 := e.Group("/api/v1")
	v1.GET("/categories", r.CategoryController.ListCategories)
}
