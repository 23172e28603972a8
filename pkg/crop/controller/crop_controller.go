package controller

import "github.com/labstack/echo/v4"

type CropController interface {
	Create(c echo.Context) error
	List(c echo.Context) error
	Get(c echo.Context) error
	Delete(c echo.Context) error
	AddTiming(c echo.Context) error
	AddApplication(c echo.Context) error
	PatchApplication(c echo.Context) error
	DeleteApplication(c echo.Context) error
	SeasonSummary(c echo.Context) error
	PassSummary(c echo.Context) error
}
