package main

import (
	"log"

	"learnhub/config"
	controllers "learnhub/controllers/course"
	"learnhub/database"
	courseRoutes "learnhub/routers/courseRoutes"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()
	utils.InitGradingClient()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve rendered certificates and uploaded submission files
	app.Static("/", "./public")

	courseRoutes.SetupCourseRoutes(app)

	// Retry submissions that missed grading while the AI service was down
	regradeCron := controllers.InitializeRegradeScheduler()
	defer regradeCron.Stop()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
