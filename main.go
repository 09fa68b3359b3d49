package main

import (
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/handlers"
	"catalog/internal/logging"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/server"
	"catalog/internal/services"
	"catalog/pkg/rabbitmq"

	"github.com/rs/zerolog"
)

// @title Products REST API
// @version 1.0.0
// @description CRUD API for products with request validation.
// @BasePath /
// @tag.name Products
// @tag.description API operations related to products
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("info", "console")
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// --- Persistence ---
	var (
		productRepo repositories.ProductRepository
		dbHealth    server.HealthChecker
	)
	if cfg.DBDriver == config.DriverMemory {
		memRepo := repositories.NewMemoryProductRepository()
		seedProducts(memRepo, log)
		productRepo = memRepo
	} else {
		conn := database.Connect(cfg, logging.Named(log, "database"))
		if conn.DB == nil {
			log.Fatal().Str("driver", cfg.DBDriver).Msg("database driver could not be initialised")
		}
		productRepo = repositories.NewGORMProductRepository(conn.DB)
		dbHealth = conn.EnsureSchema
	}

	// --- Product events ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqLog := logging.Named(log, "rabbitmq")
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, mqLog)
		if err != nil {
			log.Error().Err(err).Msg("product events disabled")
		} else {
			defer mqClient.Close()
			publisher = mqClient
			if err := mqClient.ConsumeProductEvents(func(ev rabbitmq.ProductEvent) error {
				mqLog.Info().Str("event", ev.Type).Int("product_id", ev.ProductID).Str("id", ev.ID).Msg("product event received")
				return nil
			}); err != nil {
				log.Error().Err(err).Msg("failed to start product event consumer")
			}
		}
	}

	productService := services.NewProductService(productRepo, publisher, logging.Named(log, "products"))
	productHandler := handlers.NewProductHandler(productService, logging.Named(log, "http"))

	app := server.New(server.Options{
		Config:         cfg,
		ProductHandler: productHandler,
		Log:            logging.Named(log, "http"),
		DatabaseHealth: dbHealth,
		SchemaGuard:    dbHealth,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")

	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during fiber shutdown")
	}
	log.Info().Msg("server stopped")
}

// seedProducts populates the in-memory repository with demo data.
func seedProducts(repo repositories.ProductRepository, log zerolog.Logger) {
	products := []models.Product{
		{Name: "Curved Monitor", Price: 300, Availability: true},
		{Name: "Mechanical Keyboard", Price: 75, Availability: true},
		{Name: "Wireless Mouse", Price: 25, Availability: true},
	}

	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Error().Err(err).Str("name", products[i].Name).Msg("error seeding product")
			continue
		}
		log.Debug().Str("name", products[i].Name).Int("id", products[i].ID).Msg("seeded product")
	}
}
