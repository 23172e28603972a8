package controller

import "github.com/labstack/echo/v4"

type ProductController interface {
	Create(c echo.Context) error
	List(c echo.Context) error
	Get(c echo.Context) error
	Price(c echo.Context) error
	AddOffering(c echo.Context) error
	PatchOffering(c echo.Context) error
	CreateVendor(c echo.Context) error
	ListVendors(c echo.Context) error
	CreateMaster(c echo.Context) error
	ListMasters(c echo.Context) error
}
