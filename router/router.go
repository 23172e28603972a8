package router

import (
	"github.com/labstack/echo/v4"

	authCtrl "seasonplan/pkg/auth/controller"
	cropCtrl "seasonplan/pkg/crop/controller"
	"seasonplan/pkg/middleware"
	pbCtrl "seasonplan/pkg/pricebook/controller"
	productCtrl "seasonplan/pkg/product/controller"
)

// New registers every route on e. With devLogin the grower falls back to the
// dev default; otherwise requests must name their grower.
func New(
	e *echo.Echo,
	devLogin bool,
	crops cropCtrl.CropController,
	products productCtrl.ProductController,
	prices pbCtrl.PriceBookController,
	auth authCtrl.AuthController,
	healthCtrl interface{ Health(echo.Context) error },
) *echo.Echo {
	e.GET("/health", healthCtrl.Health)

	api := e.Group("")
	if devLogin {
		api.Use(middleware.DevLogin())
		api.GET("/devlogin", auth.DevLogin)
	} else {
		api.Use(middleware.RequireGrower())
	}
	api.GET("/whoami", auth.WhoAmI)

	api.POST("/crops", crops.Create)
	api.GET("/crops", crops.List)
	api.GET("/crops/:id", crops.Get)
	api.DELETE("/crops/:id", crops.Delete)
	api.POST("/crops/:id/timings", crops.AddTiming)
	api.POST("/crops/:id/applications", crops.AddApplication)
	api.PATCH("/applications/:app_id", crops.PatchApplication)
	api.DELETE("/applications/:app_id", crops.DeleteApplication)
	api.GET("/crops/:id/summary", crops.SeasonSummary)
	api.GET("/crops/:id/timings/:timing_id/summary", crops.PassSummary)

	api.POST("/products", products.Create)
	api.GET("/products", products.List)
	api.GET("/products/:id", products.Get)
	api.GET("/products/:id/price", products.Price)
	api.POST("/products/:id/offerings", products.AddOffering)
	api.PATCH("/offerings/:id", products.PatchOffering)
	api.POST("/vendors", products.CreateVendor)
	api.GET("/vendors", products.ListVendors)
	api.POST("/product-masters", products.CreateMaster)
	api.GET("/product-masters", products.ListMasters)

	api.POST("/pricebook", prices.Create)
	api.GET("/pricebook", prices.List)
	api.DELETE("/pricebook/:id", prices.Delete)
	api.POST("/pricebook/import", prices.Import)
	api.POST("/pricebook/import/url", prices.ImportURL)
	api.GET("/pricebook/export", prices.Export)
	return e
}
