package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/meridian/internal/config"
	"github.com/example/meridian/internal/database"
	"github.com/example/meridian/internal/metrics"
	"github.com/example/meridian/internal/routes"
	"github.com/example/meridian/internal/storeerr"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	m := metrics.New()
	if cfg.MetricsEnabled {
		ctx := context.Background()
		initialized, provider, err := metrics.Init(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
		if err != nil {
			log.Printf("metrics init failed, continuing without exporter: %v", err)
		} else {
			m = initialized
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := provider.Shutdown(shutdownCtx); err != nil {
					log.Printf("metrics shutdown: %v", err)
				}
			}()
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "Meridian Storefront",
		ErrorHandler: storeerr.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, m)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
