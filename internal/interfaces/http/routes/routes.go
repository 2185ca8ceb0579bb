// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/infrastructure/storage"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// Dependencies groups the collaborators the route handlers need
type Dependencies struct {
	DB           *gorm.DB
	Config       *config.Config
	ImageStore   storage.ImageStore
	EmailService *email.EmailService
	Logger       *logrus.Logger
}

// SetupRoutes registers every API route group
func SetupRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	setupAuthRoutes(rg, deps)
	setupProductRoutes(rg, deps)
	setupSizeRoutes(rg, deps)
	setupCartRoutes(rg, deps)
	setupOrderRoutes(rg, deps)
}

func setupAuthRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.DB, deps.Config, deps.EmailService, deps.Logger)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/verify-email", authHandler.VerifyEmail)
		auth.POST("/resend-otp", authHandler.ResendOTP)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Config))
		{
			protected.GET("/me", authHandler.GetProfile)
		}
	}
}

func setupProductRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	productHandler := handlers.NewProductHandler(deps.DB, deps.Config, deps.ImageStore, deps.Logger)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)

		admin := products.Group("")
		admin.Use(middleware.AuthMiddleware(deps.Config), middleware.AdminMiddleware())
		{
			admin.POST("", productHandler.Create)
			admin.PUT("/:id", productHandler.Update)
			admin.DELETE("/:id", productHandler.Delete)
		}
	}
}

func setupSizeRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	sizeHandler := handlers.NewSizeHandler(deps.DB, deps.Config)

	sizes := rg.Group("/sizes")
	{
		sizes.GET("", sizeHandler.List)
		sizes.GET("/:id", sizeHandler.Get)

		admin := sizes.Group("")
		admin.Use(middleware.AuthMiddleware(deps.Config), middleware.AdminMiddleware())
		{
			admin.POST("", sizeHandler.Create)
			admin.DELETE("/:id", sizeHandler.Delete)
		}
	}
}

func setupCartRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	cartHandler := handlers.NewCartHandler(deps.DB, deps.Logger)

	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(deps.Config))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddItem)
		cart.PUT("/items/:productId/:sizeId", cartHandler.UpdateItem)
		cart.DELETE("/items/:productId/:sizeId", cartHandler.RemoveItem)
		cart.DELETE("", cartHandler.ClearCart)
	}
}

func setupOrderRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	orderHandler := handlers.NewOrderHandler(deps.DB, deps.Config, deps.Logger)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(deps.Config))
	{
		orders.POST("", orderHandler.Checkout)
		orders.GET("/myorders", orderHandler.GetMyOrders)
		orders.GET("/:id", orderHandler.GetOrder)

		admin := orders.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("", orderHandler.GetAllOrders)
			admin.PUT("/:id/pay", orderHandler.MarkPaid)
			admin.PUT("/:id/deliver", orderHandler.MarkDelivered)
			admin.PUT("/:id/cancel", orderHandler.Cancel)
		}
	}
}
