package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"motortax-web/internal/config"
)

func Setup(app *fiber.App, db *sqlx.DB, redis *redis.Client, cfg *config.Config) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"app":    cfg.AppName,
		})
	})

	// Web routes (HTML)
	web := app.Group("")
	setupWebRoutes(web, cfg)

	// API routes (JSON)
	api := app.Group("/api/v1")
	SetupAPIRoutes(api, db, redis, cfg)
}

func setupWebRoutes(router fiber.Router, cfg *config.Config) {
	// Authentication pages
	router.Get("/login", func(c *fiber.Ctx) error {
		return c.Render("auth/login", fiber.Map{
			"Title": "Login",
		})
	})

	router.Get("/register", func(c *fiber.Ctx) error {
		return c.Render("auth/register", fiber.Map{
			"Title": "Register",
		})
	})

	// Dashboard
	router.Get("/", func(c *fiber.Ctx) error {
		return c.Render("dashboard/index", fiber.Map{
			"Title": "Dashboard",
			"Year":  cfg.DefaultTaxYear,
		})
	})

	// Taxpayer pages
	router.Get("/taxpayers", func(c *fiber.Ctx) error {
		return c.Render("taxpayers/index", fiber.Map{
			"Title": "Taxpayers",
		})
	})

	router.Get("/taxpayers/:id", func(c *fiber.Ctx) error {
		return c.Render("taxpayers/detail", fiber.Map{
			"Title": "Taxpayer Detail",
		})
	})

	// Declaration pages
	router.Get("/declarations", func(c *fiber.Ctx) error {
		return c.Render("declarations/index", fiber.Map{
			"Title": "Declarations",
		})
	})

	router.Get("/declarations/:id", func(c *fiber.Ctx) error {
		return c.Render("declarations/detail", fiber.Map{
			"Title": "Declaration Detail",
		})
	})
}
