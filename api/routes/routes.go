package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/reachpoint/crm-backend/internal/config"
	"github.com/reachpoint/crm-backend/internal/handlers"
	"github.com/reachpoint/crm-backend/internal/middleware"
)

// HandlerDependencies bundles the handlers the router wires up
type HandlerDependencies struct {
	AuthHandler     *handlers.AuthHandler
	CustomerHandler *handlers.CustomerHandler
	OrderHandler    *handlers.OrderHandler
	CampaignHandler *handlers.CampaignHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		customers := protected.Group("/customers")
		{
			customers.GET("", deps.CustomerHandler.GetAllCustomers)
			customers.GET("/count", deps.CustomerHandler.GetCustomerCount)
			customers.GET("/:id", deps.CustomerHandler.GetCustomerByID)
			customers.POST("", deps.CustomerHandler.CreateCustomer)
			customers.POST("/bulk", deps.CustomerHandler.CreateCustomers)
			customers.PUT("/:id", deps.CustomerHandler.UpdateCustomer)
			customers.DELETE("/:id", deps.CustomerHandler.DeleteCustomer)
		}

		orders := protected.Group("/orders")
		{
			orders.GET("", deps.OrderHandler.GetAllOrders)
			orders.GET("/count", deps.OrderHandler.GetOrderCount)
			orders.GET("/:id", deps.OrderHandler.GetOrderByID)
			orders.GET("/customer/:id", deps.OrderHandler.GetOrdersByCustomer)
			orders.POST("", deps.OrderHandler.CreateOrder)
			orders.PUT("/:id", deps.OrderHandler.UpdateOrder)
			orders.DELETE("/:id", deps.OrderHandler.DeleteOrder)
		}

		campaigns := protected.Group("/campaigns")
		{
			campaigns.GET("", deps.CampaignHandler.GetAllCampaigns)
			campaigns.GET("/count", deps.CampaignHandler.GetCampaignCount)
			campaigns.GET("/:id", deps.CampaignHandler.GetCampaignByID)
			campaigns.GET("/:id/audience", deps.CampaignHandler.GetCampaignAudience)
			campaigns.POST("", deps.CampaignHandler.CreateCampaign)
			campaigns.POST("/preview-audience", deps.CampaignHandler.PreviewAudience)
			campaigns.POST("/generate-message", deps.CampaignHandler.GenerateMessage)
			campaigns.POST("/:id/send", deps.CampaignHandler.SendCampaign)
			campaigns.PUT("/:id", deps.CampaignHandler.UpdateCampaign)
			campaigns.DELETE("/:id", deps.CampaignHandler.DeleteCampaign)
		}
	}

	return router
}
