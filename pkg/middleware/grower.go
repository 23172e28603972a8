package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	GrowerHeader  = "X-Grower-Id"
	GrowerCookie  = "GROWER_ID"
	GrowerQuery   = "grower"
	DefaultGrower = "G_DEV_DEFAULT"
	growerCtxKey  = "grower"
)

// Grower returns the grower id stored on c by DevLogin or RequireGrower.
func Grower(c echo.Context) string {
	g, _ := c.Get(growerCtxKey).(string)
	return g
}

func lookup(c echo.Context) string {
	if h := strings.TrimSpace(c.Request().Header.Get(GrowerHeader)); h != "" {
		return h
	}
	if ck, err := c.Cookie(GrowerCookie); err == nil && strings.TrimSpace(ck.Value) != "" {
		return strings.TrimSpace(ck.Value)
	}
	return ""
}

// DevLogin resolves the grower from header, cookie or ?grower= and falls back to
// DefaultGrower. The chosen id is remembered in a cookie.
func DevLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			g := lookup(c)
			if g == "" {
				g = strings.TrimSpace(c.QueryParam(GrowerQuery))
				if g == "" {
					g = DefaultGrower
				}
				c.SetCookie(&http.Cookie{Name: GrowerCookie, Value: g, Path: "/"})
			}
			c.Set(growerCtxKey, g)
			return next(c)
		}
	}
}

// RequireGrower rejects requests that carry no grower header or cookie.
// Paths in skip pass through untouched.
func RequireGrower(skip ...string) echo.MiddlewareFunc {
	open := map[string]bool{}
	for _, p := range skip {
		open[p] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if open[c.Path()] {
				return next(c)
			}
			g := lookup(c)
			if g == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "grower id required"})
			}
			c.Set(growerCtxKey, g)
			return next(c)
		}
	}
}
