package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/mesa-api/internal/application/auth"
	"github.com/jhoicas/mesa-api/internal/application/cart"
	"github.com/jhoicas/mesa-api/internal/application/session"
	"github.com/jhoicas/mesa-api/internal/application/table"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	Sessions  *session.Manager
	CartSvc   *cart.Service
	TableUC   *table.UseCase
	JWTSecret string
	AppName   string

	// BreakerState estado del circuit breaker del backend para /health; opcional.
	BreakerState func() string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		out := fiber.Map{"status": "ok", "service": deps.AppName}
		if deps.BreakerState != nil {
			out["backend_breaker"] = deps.BreakerState()
		}
		return c.JSON(out)
	})

	// Entrada del token del proveedor (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.JWTSecret)
	app.Get("/auth/:token", authHandler.FromPath)
	app.Get("/loading/:tableId", authHandler.Loading)

	api := app.Group("/api")
	api.Post("/auth/token", authHandler.Exchange)

	// Rutas de mesa (requieren sesión autenticada de esa mesa)
	tables := api.Group("/tables/:tableId", SessionMiddleware(deps.JWTSecret, deps.Sessions))

	sessionHandler := NewSessionHandler(deps.Sessions)
	tables.Get("/session", sessionHandler.Get)
	tables.Post("/session/logout", sessionHandler.Logout)
	tables.Put("/session/credit-line", sessionHandler.UpdateCreditLine)

	tableHandler := NewTableHandler(deps.TableUC)
	tables.Get("/dashboard", tableHandler.Dashboard)
	tables.Get("/menu", tableHandler.Menu)
	tables.Post("/orders", tableHandler.PlaceOrder)
	tables.Get("/orders/:number", tableHandler.Receipt)
	tables.Get("/orders/:number/receipt.pdf", tableHandler.ReceiptPDF)
	tables.Post("/waiter", tableHandler.CallWaiter)
	tables.Delete("/waiter", tableHandler.CancelWaiterCall)

	cartHandler := NewCartHandler(deps.CartSvc)
	cartGroup := tables.Group("/cart")
	cartGroup.Get("/", cartHandler.Get)
	cartGroup.Delete("/", cartHandler.Clear)
	cartGroup.Post("/items", cartHandler.AddItem)
	cartGroup.Put("/items/:id", cartHandler.SetItemQuantity)
	cartGroup.Delete("/items/:id", cartHandler.RemoveItem)
	cartGroup.Post("/offers", cartHandler.AddOffer)
	cartGroup.Put("/offers/:id", cartHandler.SetOfferQuantity)
	cartGroup.Delete("/offers/:id", cartHandler.RemoveOffer)
	cartGroup.Put("/notes", cartHandler.SetNotes)
	cartGroup.Put("/payment-method", cartHandler.SetPaymentMethod)
}
