package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/transactions"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/almacen-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/almacen-api/internal/interfaces/http"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Cache opcional de snapshots: sin REDIS_ADDR la app lee siempre de PostgreSQL.
	var snapCache inventory.SnapshotCache
	var invalidator transactions.SnapshotInvalidator
	if cfg.Redis.Addr != "" {
		cache, err := infraredis.NewSnapshotCache(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer cache.Close()
		snapCache = cache
		invalidator = cache
		log.Info().Str("addr", cfg.Redis.Addr).Msg("cache de snapshots habilitado")
	}

	trxRepo := postgres.NewTransactionRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	articleRepo := postgres.NewArticleRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	transactionUC := transactions.NewUseCase(txRunner, trxRepo, invalidator)
	inventoryUC := inventory.NewUseCase(productRepo, articleRepo, ledgerRepo, balanceRepo, trxRepo, snapCache)
	articleUC := usecase.NewArticleUseCase(articleRepo, productRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacén API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		TransactionUC: transactionUC,
		InventoryUC:   inventoryUC,
		ArticleUC:     articleUC,
		ProductUC:     productUC,
		WarehouseUC:   warehouseUC,
		AuthUC:        authUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
