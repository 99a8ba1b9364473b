package category

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/cache"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/database"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/category/controller"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/category/repository"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/category/router"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/category/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the category module and returns the registry service for
// use by the event module.
func Init(e *echo.Echo, db database.Database, c *cache.Cache) service.CategoryServiceInterface {
	repo := repository.NewCategoryRepository(db)
	svc := service.NewCategoryService(repo, c)
	ctrl := controller.NewCategoryController(svc)
	router.NewCategoryRouter(ctrl).Setup(e)
	return svc
}
