package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/meridian/internal/config"
	"github.com/example/meridian/internal/handlers"
	"github.com/example/meridian/internal/metrics"
	"github.com/example/meridian/internal/middleware"
	"github.com/example/meridian/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, m *metrics.StoreMetrics) {
	notifier := services.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	engine := services.NewFulfillmentEngine(db, services.NewMockCardGate(), notifier, m)

	authHandler := handlers.NewAuthHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	checkoutHandler := handlers.NewCheckoutHandler(db, engine)
	orderHandler := handlers.NewOrderHandler(db)
	favoritesHandler := handlers.NewFavoritesHandler(db)
	profileHandler := handlers.NewProfileHandler(db)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Public catalog
	api.Get("/cities", catalogHandler.ListCities)

	categories := api.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)

	products := api.Group("/products")
	productHandler.RegisterProductRoutes(products)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	cart := protected.Group("/cart")
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/lines", cartHandler.AddLine)
	cart.Put("/lines/:id", cartHandler.UpdateLine)
	cart.Delete("/lines/:id", cartHandler.RemoveLine)
	cart.Delete("/", cartHandler.ClearCart)

	protected.Get("/delivery-estimate", checkoutHandler.DeliveryEstimate)
	protected.Post("/checkout", checkoutHandler.Checkout)

	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)

	protected.Get("/favorites", favoritesHandler.ListFavorites)
	protected.Post("/favorites/:productID", favoritesHandler.AddFavorite)
	protected.Delete("/favorites/:productID", favoritesHandler.RemoveFavorite)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Get("/profile/addresses", profileHandler.ListAddresses)
	protected.Post("/profile/addresses", profileHandler.CreateAddress)
	protected.Delete("/profile/addresses/:id", profileHandler.DeleteAddress)

	// Admin routes
	admin := protected.Group("/admin", middleware.AdminMiddleware(db))
	admin.Get("/orders", adminHandler.ListOrders)
	admin.Put("/orders/:id/delivery-status", adminHandler.UpdateDeliveryStatus)
	admin.Put("/orders/:id/payment-status", adminHandler.UpdatePaymentStatus)
	admin.Get("/stats", adminHandler.DashboardStats)

	adminCategories := admin.Group("/categories")
	adminCategories.Post("/", catalogHandler.CreateCategory)
	adminCategories.Put("/:id", catalogHandler.UpdateCategory)
	adminCategories.Delete("/:id", catalogHandler.DeleteCategory)

	adminProducts := admin.Group("/products")
	productHandler.RegisterAdminProductRoutes(adminProducts)
}
