package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	_ "fleetreport/docs"
	"fleetreport/internal/auth"
	"fleetreport/internal/cache"
	"fleetreport/internal/config"
	"fleetreport/internal/db"
	"fleetreport/internal/handler"
	"fleetreport/internal/model"
	"fleetreport/internal/repository"
	"fleetreport/internal/router"
	"fleetreport/internal/service"
)

// @title Fleet Reporting API
// @version 1.0
// @description JWT-authenticated fleet revenue reporting backend with bulk CSV/XLSX import and styled workbook export.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.User{}, &model.FleetRecord{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	recordRepo := repository.NewFleetRecordRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenLifetime())
	limiter := auth.NewLoginLimiter(cacheClient)

	reportBuilder := service.NewReportBuilder()
	authService := service.NewAuthService(userRepo, jwtService)
	fleetService := service.NewFleetService(recordRepo, cacheClient)
	importService := service.NewImportService(recordRepo, cacheClient)
	analyticsService := service.NewAnalyticsService(recordRepo, reportBuilder, cacheClient)

	authHandler := handler.NewAuthHandler(authService, limiter)
	fleetHandler := handler.NewFleetHandler(fleetService)
	fileHandler := handler.NewFileHandler(importService, reportBuilder)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, jwtService, authHandler, fleetHandler, fileHandler, analyticsHandler)

	if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}
