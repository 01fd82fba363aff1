package main

import (
	"fmt"
	"log"

	"github.com/xelth-com/pantrywms/internal/config"
	"github.com/xelth-com/pantrywms/internal/database"
	"go.uber.org/zap"
)

func main() {
	fmt.Println("Pantry demo reference data seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db.DB); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	summary, err := database.SeedReference(db.DB, database.DemoReference())
	if err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}

	fmt.Printf("Locations: %d\n", summary.Locations)
	fmt.Printf("Products:  %d\n", summary.Products)
	fmt.Printf("Box types: %d\n", summary.BoxTypes)
	fmt.Println("Done. Existing rows were left untouched.")
}
