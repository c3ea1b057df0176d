package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ampvending/amp-backend/internal/catalog"
	"github.com/ampvending/amp-backend/internal/config"
	"github.com/ampvending/amp-backend/internal/database"
	"github.com/ampvending/amp-backend/internal/logger"
	"github.com/ampvending/amp-backend/internal/repository"
)

// seed-catalog loads the bundled static catalog into PostgreSQL. Machines are
// keyed by slug and products by name, so running it twice changes nothing.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, database.Required, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	static, err := catalog.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load static catalog")
	}

	machineRepo := repository.NewMachineRepository(pool)
	productRepo := repository.NewProductRepository(pool)

	fmt.Println("=== Seeding Catalog ===")

	var images int
	for _, m := range static.Machines() {
		if err := machineRepo.Upsert(ctx, &m); err != nil {
			log.Fatal().Err(err).Str("slug", m.Slug).Msg("Failed to upsert machine")
		}

		existing, err := machineRepo.ListImages(ctx, m.ID)
		if err != nil {
			log.Fatal().Err(err).Str("slug", m.Slug).Msg("Failed to list machine images")
		}
		// Images edited in the dashboard are left alone.
		if len(existing) > 0 {
			continue
		}
		for _, img := range m.Images {
			img.MachineID = m.ID
			if err := machineRepo.AddImage(ctx, &img); err != nil {
				log.Fatal().Err(err).Str("slug", m.Slug).Msg("Failed to add machine image")
			}
			images++
		}
	}

	products := static.Products()
	for _, p := range products {
		if err := productRepo.Upsert(ctx, &p); err != nil {
			log.Fatal().Err(err).Str("name", p.Name).Msg("Failed to upsert product")
		}
	}

	fmt.Printf("Seeded %d machines (%d new images) and %d products\n", len(static.Machines()), images, len(products))
}
