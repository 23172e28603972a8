package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"seasonplan/config"
	"seasonplan/database"
	"seasonplan/pkg/cache"
	"seasonplan/pkg/logging"
	"seasonplan/router"

	// Auth
	authCtrlImp "seasonplan/pkg/auth/controllerImp"

	// Crop plans
	cropCtrlImp "seasonplan/pkg/crop/controllerImp"
	cropRepoImp "seasonplan/pkg/crop/repositoryImp"
	cropSvcImp "seasonplan/pkg/crop/serviceImp"

	// Catalog
	productCtrlImp "seasonplan/pkg/product/controllerImp"
	productRepoImp "seasonplan/pkg/product/repositoryImp"

	// Price book
	pbCtrlImp "seasonplan/pkg/pricebook/controllerImp"
	pbRepoImp "seasonplan/pkg/pricebook/repositoryImp"
	pbSvcImp "seasonplan/pkg/pricebook/serviceImp"

	// Health
	healthCtrlImp "seasonplan/pkg/health/controllerImp"
)

func main() {
	// 1) Config + logger
	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, cfg.IsDev())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// 2) DB (sqlite) + automigrate
	db := database.OpenSQLite(cfg.DBPath, logger)

	// 3) Summary cache: redis when configured, otherwise in-process
	var summaries cache.Cache = cache.NewMemory()
	if cfg.CacheAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		rc, err := cache.NewRedis(ctx, cfg.CacheAddr)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, using memory cache", zap.String("addr", cfg.CacheAddr), zap.Error(err))
		} else {
			summaries = rc
		}
	}

	// 4) Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(logging.RequestLogger(logger))

	// 5) Repos/Services/Controllers
	pRepo := productRepoImp.New(db)
	pbRepo := pbRepoImp.New(db)
	cRepo := cropRepoImp.New(db)

	cSvc := cropSvcImp.New(cRepo, pRepo, pbRepo, summaries, logger.Named("crop"),
		cropSvcImp.Options{CacheTTL: cfg.CacheTTL, DefaultSeason: cfg.SeasonYear})
	pbSvc := pbSvcImp.New(pbRepo, pRepo, logger.Named("pricebook"))

	cCtrl := cropCtrlImp.New(cSvc)
	prCtrl := productCtrlImp.New(pRepo, pbRepo, cfg.SeasonYear)
	pbCtrl := pbCtrlImp.New(pbSvc, pbCtrlImp.Options{
		DefaultSeason: cfg.SeasonYear,
		AllowedHosts:  cfg.PriceSheetAllowedHosts,
		MaxBytes:      cfg.PriceSheetMaxBytes,
	})
	authCtrl := authCtrlImp.NewAuthController()
	hCtrl := healthCtrlImp.NewHealthCtrl(db, summaries)

	// 6) Router
	r := router.New(e, cfg.DevLogin, cCtrl, prCtrl, pbCtrl, authCtrl, hCtrl)

	// 7) Start + graceful shutdown
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port), zap.Int("season_year", cfg.SeasonYear))
		if err := r.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
