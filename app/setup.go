package app

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sahilchouksey/course-market-api/api"
	"github.com/sahilchouksey/course-market-api/config"
	"github.com/sahilchouksey/course-market-api/database"
	"github.com/sahilchouksey/course-market-api/router"
	"github.com/sahilchouksey/course-market-api/services/cron"
	"github.com/sahilchouksey/course-market-api/utils/auth"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Cron jobs (enabled unless explicitly turned off)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" {
		blacklist := auth.NewBlacklistService(store.GetDB())
		cronManager = cron.NewCronManager(store.GetDB(), blacklist)
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
			// Don't fail the app, just log the warning
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Attach Middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Setup Routes
	router.SetupRoutes(app, store)

	// Get the PORT & Start the Server
	return server.Run()
}
