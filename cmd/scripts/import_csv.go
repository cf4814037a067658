package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/reachpoint/crm-backend/internal/config"
	mongorepo "github.com/reachpoint/crm-backend/internal/repositories/mongodb"
	"github.com/reachpoint/crm-backend/internal/utils"
	"github.com/reachpoint/crm-backend/pkg/mongodb"
)

// Bulk customer import from a CSV file, e.g.:
//
//	go run ./cmd/scripts -file customers.csv
func main() {
	filePath := flag.String("file", "customers.csv", "path to the customer CSV file")
	flag.Parse()

	_ = godotenv.Load()
	uri := config.GetEnv("MONGODB_URI", "mongodb://localhost:27017")
	database := config.GetEnv("MONGODB_DATABASE", "reachpoint-crm")

	mongoClient, err := mongodb.NewClient(uri)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())

	db := mongoClient.Database(database)
	customerRepo := mongorepo.NewCustomerRepository(db)
	importer := utils.NewCSVImporter(customerRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	summary, err := importer.ImportCustomers(ctx, *filePath)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Imported %d customers, skipped %d rows", summary.Imported, summary.Skipped)
	for _, msg := range summary.Errors {
		log.Printf("  %s", msg)
	}
}
