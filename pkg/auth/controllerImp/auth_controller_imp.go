package controllerImp

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"seasonplan/pkg/auth/controller"
	"seasonplan/pkg/middleware"
)

type authCtrl struct{}

func NewAuthController() controller.AuthController { return &authCtrl{} }

// DevLogin switches the grower cookie to ?grower= (or the default grower).
func (h *authCtrl) DevLogin(c echo.Context) error {
	g := strings.TrimSpace(c.QueryParam(middleware.GrowerQuery))
	if g == "" {
		g = middleware.DefaultGrower
	}
	c.SetCookie(&http.Cookie{Name: middleware.GrowerCookie, Value: g, Path: "/"})
	return c.JSON(http.StatusOK, echo.Map{"grower_id": g})
}

func (h *authCtrl) WhoAmI(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"grower_id": middleware.Grower(c)})
}
