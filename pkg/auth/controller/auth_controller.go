package controller

import "github.com/labstack/echo/v4"

// AuthController exposes the grower identity resolved by the grower middleware.
type AuthController interface {
	DevLogin(c echo.Context) error
	WhoAmI(c echo.Context) error
}
