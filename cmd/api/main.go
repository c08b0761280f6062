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

	_ "github.com/jhoicas/Inventario-shipments/docs"
	"github.com/jhoicas/Inventario-shipments/internal/application/auth"
	"github.com/jhoicas/Inventario-shipments/internal/application/fulfillment"
	"github.com/jhoicas/Inventario-shipments/internal/domain/repository"
	"github.com/jhoicas/Inventario-shipments/internal/domain/shipment"
	infrapdf "github.com/jhoicas/Inventario-shipments/internal/infrastructure/pdf"
	"github.com/jhoicas/Inventario-shipments/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-shipments/internal/infrastructure/tryton"
	httpRouter "github.com/jhoicas/Inventario-shipments/internal/interfaces/http"
	"github.com/jhoicas/Inventario-shipments/pkg/config"
	"github.com/jhoicas/Inventario-shipments/pkg/i18n"
	"github.com/jhoicas/Inventario-shipments/pkg/logger"
)

// @title                       Inventario Shipments API
// @version                     1.0
// @description                 Escaneo y despacho de envíos internos contra Tryton.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("tryton", cfg.Tryton.URL).
		Msg("iniciando aplicación")

	mode, err := shipment.ParseQuantityMode(cfg.Scan.QuantityMode)
	if err != nil {
		log.Fatal().Err(err).Msg("SCAN_QUANTITY_MODE")
	}

	ctx := context.Background()

	// Diario de escaneo en PostgreSQL. Sin base de datos la API sigue funcionando sin diario.
	var journal repository.ScanEventRepository
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Warn().Err(err).Msg("conexión a PostgreSQL; diario de escaneo deshabilitado")
	} else {
		defer pool.Close()
		repo := postgres.NewScanEventRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("crear tabla scan_events")
		}
		journal = repo
	}

	backend := tryton.NewClient(tryton.Config{
		URL:      cfg.Tryton.URL,
		Database: cfg.Tryton.Database,
		Timeout:  cfg.Tryton.Timeout,
	})

	registry := fulfillment.NewRegistry(backend, journal, log, fulfillment.RegistryConfig{
		Session: fulfillment.SessionConfig{
			ProductCodeThreshold: cfg.Scan.ProductCodeThreshold,
			QuantityMode:         mode,
		},
		IdleTimeout: cfg.Session.IdleTimeout,
	})
	defer registry.Close()

	slips := infrapdf.NewSlipGenerator(cfg.App.Name)
	shipmentsUC := fulfillment.NewShipmentUseCase(backend, journal, slips, registry, log)
	authUC := auth.NewAuthUseCase(backend, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Tryton.Timeout * 4,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Shipments API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "sessions": registry.Len()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		Shipments:  shipmentsUC,
		Registry:   registry,
		Translator: i18n.New(cfg.App.Lang),
		JWTSecret:  cfg.JWT.Secret,
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

	log.Info().Int("sesiones_abiertas", registry.Len()).Msg("aplicación detenida")
}
