package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-shipments/internal/application/auth"
	"github.com/jhoicas/Inventario-shipments/internal/application/fulfillment"
	"github.com/jhoicas/Inventario-shipments/pkg/i18n"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	Shipments  *fulfillment.ShipmentUseCase
	Registry   *fulfillment.Registry
	Translator *i18n.Translator
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", Locale(deps.Translator))

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	shipments := protected.Group("/shipments")
	shipmentHandler := NewShipmentHandler(deps.Shipments, deps.Registry)
	shipments.Get("/", shipmentHandler.List)
	shipments.Get("/:id", shipmentHandler.Get)
	shipments.Delete("/:id", shipmentHandler.Delete)
	shipments.Get("/:id/slip", shipmentHandler.Slip)
	shipments.Get("/:id/events", shipmentHandler.Events)
	shipments.Post("/:id/session", shipmentHandler.OpenSession)

	sessions := protected.Group("/sessions")
	sessionHandler := NewSessionHandler(deps.Registry, deps.Translator)
	sessions.Get("/:sid", sessionHandler.Get)
	sessions.Post("/:sid/input", sessionHandler.Input)
	sessions.Post("/:sid/save", sessionHandler.Save)
	sessions.Post("/:sid/next-stage", sessionHandler.NextStage)
	sessions.Delete("/:sid/pending", sessionHandler.ResetPending)
	sessions.Delete("/:sid", sessionHandler.Leave)
}
