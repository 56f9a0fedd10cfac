package main

import (
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"kanbanly/config"
	"kanbanly/middleware"
	"kanbanly/routes"
)

func main() {
	if err := config.LoadConfig(); err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	if dsn := config.AppConfig.SentryDSN; dsn != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Environment: config.AppConfig.Environment,
		})
		if err != nil {
			logrus.WithError(err).Warn("sentry initialization failed")
		}
	}

	if err := config.ConnectDB(); err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	app := fiber.New(fiber.Config{
		AppName: "Kanbanly API",
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   []string{config.AppConfig.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           3600,
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Kanban Board API Server is running!"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := config.DB.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.SetupRoutes(app, config.DB)

	addr := ":" + config.AppConfig.ServerPort
	logrus.WithField("addr", addr).Info("server listening")
	if err := app.Listen(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
