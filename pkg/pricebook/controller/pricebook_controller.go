package controller

import "github.com/labstack/echo/v4"

type PriceBookController interface {
	Create(c echo.Context) error
	List(c echo.Context) error
	Delete(c echo.Context) error
	Import(c echo.Context) error
	ImportURL(c echo.Context) error
	Export(c echo.Context) error
}
