package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"seasonplan/pkg/cache"
)

var appStart = time.Now()

type HealthCtrl struct {
	db    *gorm.DB
	cache cache.Cache
}

// NewHealthCtrl reports on db and, when it is not nil, the summary cache.
func NewHealthCtrl(db *gorm.DB, c cache.Cache) *HealthCtrl { return &HealthCtrl{db: db, cache: c} }

type sub struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

func (h *HealthCtrl) checkDB(ctx context.Context) sub {
	if h.db == nil {
		return sub{Err: "gorm db is nil"}
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return sub{Err: "db.DB(): " + err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return sub{Err: "ping: " + err.Error()}
	}
	return sub{OK: true}
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	checks := map[string]sub{"database": h.checkDB(ctx)}
	if h.cache != nil {
		s := sub{OK: true}
		if err := h.cache.Ping(ctx); err != nil {
			s = sub{Err: "ping: " + err.Error()}
		}
		checks["cache"] = s
	}

	allOK := true
	for _, s := range checks {
		allOK = allOK && s.OK
	}
	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}

	resp := map[string]any{
		"status":     map[string]any{"ok": allOK},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks":     checks,
		"time":       time.Now().Format(time.RFC3339),
	}
	return c.JSON(status, resp)
}
