package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/reachpoint/crm-backend/api/routes"
	"github.com/reachpoint/crm-backend/internal/config"
	"github.com/reachpoint/crm-backend/internal/handlers"
	"github.com/reachpoint/crm-backend/internal/repositories"
	mongorepo "github.com/reachpoint/crm-backend/internal/repositories/mongodb"
	"github.com/reachpoint/crm-backend/internal/services"
	"github.com/reachpoint/crm-backend/pkg/mailer"
	"github.com/reachpoint/crm-backend/pkg/mongodb"
	"github.com/reachpoint/crm-backend/pkg/textgen"
)

func main() {
	// Load .env if present, then the layered configuration
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to MongoDB
	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	var customerRepo repositories.CustomerRepository = mongorepo.NewCustomerRepository(db)
	var orderRepo repositories.OrderRepository = mongorepo.NewOrderRepository(db)
	var campaignRepo repositories.CampaignRepository = mongorepo.NewCampaignRepository(db)
	var adminUserRepo repositories.AdminUserRepository = mongorepo.NewAdminUserRepository(db)

	// Outbound mail gateway: opened at startup, health-checked, closed at
	// shutdown, and handed to the dispatcher rather than held globally.
	var mailGateway mailer.Mailer
	if cfg.Mail.MockMail {
		mailGateway = mailer.NewMockGateway()
	} else {
		mailGateway = mailer.NewHTTPGateway(cfg)
	}
	defer func() {
		if err := mailGateway.Close(); err != nil {
			log.Printf("Error closing mail gateway: %v", err)
		}
	}()
	healthCtx, cancelHealth := context.WithTimeout(context.Background(), 10*time.Second)
	if err := mailGateway.HealthCheck(healthCtx); err != nil {
		log.Printf("Mail gateway health check failed: %v", err)
	}
	cancelHealth()

	var generator textgen.Generator
	if cfg.TextGen.MockAPI {
		generator = textgen.NewMockClient()
	} else {
		generator = textgen.NewClient(cfg)
	}

	// Services
	authService := services.NewAuthService(adminUserRepo, cfg)
	customerService := services.NewCustomerService(customerRepo, orderRepo)
	orderService := services.NewOrderService(orderRepo, customerRepo)
	resolver := services.NewAudienceResolver(customerRepo, orderRepo)
	dispatcher := services.NewBatchDispatcher(mailGateway, cfg)
	campaignService := services.NewCampaignService(campaignRepo, resolver, dispatcher, generator)

	// Handlers
	handlerDeps := routes.HandlerDependencies{
		AuthHandler:     handlers.NewAuthHandler(authService),
		CustomerHandler: handlers.NewCustomerHandler(customerService),
		OrderHandler:    handlers.NewOrderHandler(orderService),
		CampaignHandler: handlers.NewCampaignHandler(campaignService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)

	// Run server in a goroutine so that it doesn't block
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
