package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/swagger"

	"github.com/alfredflix/alfredflix/app/repository"
	"github.com/alfredflix/alfredflix/internal/pkg/cache"
	"github.com/alfredflix/alfredflix/internal/pkg/database"
	"github.com/alfredflix/alfredflix/internal/pkg/env"
	"github.com/alfredflix/alfredflix/internal/pkg/jobqueue"
	"github.com/alfredflix/alfredflix/internal/pkg/router"
	"github.com/alfredflix/alfredflix/internal/pkg/statistics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	app := NewApplication()

	// Stop queue workers before the process exits so in-flight
	// provisioning jobs are not left in the processing list.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		jobqueue.GetManager().Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	if err := repository.GetGlobalFactory().GetSettingRepository().Reload(); err != nil {
		log.Printf("settings load failed, using defaults: %v", err)
	}

	jobqueue.GetManager().Start()
	if err := statistics.UpdateStatisticsCache(); err != nil {
		log.Printf("statistics cache warmup failed: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName: "AlfredFlix",
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}
