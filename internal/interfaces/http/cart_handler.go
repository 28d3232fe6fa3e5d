package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/mesa-api/internal/application/cart"
	"github.com/jhoicas/mesa-api/internal/application/dto"
)

// CartHandler carrito de la sesión (protegido). Todas las rutas responden el resumen actualizado.
type CartHandler struct {
	svc *cart.Service
}

// NewCartHandler construye el handler.
func NewCartHandler(svc *cart.Service) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) respond(c *fiber.Ctx, out *dto.CartSummaryDTO, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// Get godoc
// @Summary      Ver carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Param        tableId  path  string  true  "Mesa"
// @Success      200  {object}  dto.CartSummaryDTO
// @Router       /api/tables/{tableId}/cart [get]
func (h *CartHandler) Get(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.UserContext(), GetSessionID(c))
	return h.respond(c, out, err)
}

// Clear godoc
// @Summary      Vaciar carrito (conserva el método de pago)
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Param        tableId  path  string  true  "Mesa"
// @Success      200  {object}  dto.CartSummaryDTO
// @Router       /api/tables/{tableId}/cart [delete]
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	out, err := h.svc.Clear(c.UserContext(), GetSessionID(c))
	return h.respond(c, out, err)
}

// AddItem godoc
// @Summary      Agregar producto
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        tableId  path  string              true  "Mesa"
// @Param        body     body  dto.AddItemRequest  true  "Producto y cantidad"
// @Success      200  {object}  dto.CartSummaryDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/tables/{tableId}/cart/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.svc.AddItem(c.UserContext(), GetSessionID(c), in.ProductID, in.Quantity)
	return h.respond(c, out, err)
}

// SetItemQuantity godoc
// @Summary      Cambiar cantidad de un producto (0 lo quita)
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        tableId  path  string                  true  "Mesa"
// @Param        id       path  string                  true  "ID del producto"
// @Param        body     body  dto.SetQuantityRequest  true  "Cantidad"
// @Success      200  {object}  dto.CartSummaryDTO
// @Router       /api/tables/{tableId}/cart/items/{id} [put]
func (h *CartHandler) SetItemQuantity(c *fiber.Ctx) error {
	var in dto.SetQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.svc.SetItemQuantity(c.UserContext(), GetSessionID(c), c.Params("id"), in.Quantity)
	return h.respond(c, out, err)
}

// RemoveItem godoc
// @Summary      Quitar producto
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Param        tableId  path  string  true  "Mesa"
// @Param        id       path  string  true  "ID del producto"
// @Success      200  {object}  dto.CartSummaryDTO
// @Router       /api/tables/{tableId}/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	out, err := h.svc.RemoveItem(c.UserContext(), GetSessionID(c), c.Params("id"))
	return h.respond(c, out, err)
}

// AddOffer godoc
// @Summary      Agregar promoción
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        tableId  path  string               true  "Mesa"
// @Param        body     body  dto.AddOfferRequest  true  "Promoción y cantidad"
// @Success      200  {object}  dto.CartSummaryDTO
// @Router       /api/tables/{tableId}/cart/offers [post]
func (h *CartHandler) AddOffer(c *fiber.Ctx) error {
	var in dto.AddOfferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.svc.AddOffer(c.UserContext(), GetSessionID(c), in.OfferID, in.Quantity)
	return h.respond(c, out, err)
}

// SetOfferQuantity godoc
// @Summary      Cambiar cantidad de una promoción (0 la quita)
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        tableId  path  string                  true  "Mesa"
// @Param        id       path  string                  true  "ID de la promoción"
// @Param        body     body  dto.SetQuantityRequest  true  "Cantidad"
// @Success      200  {object}  dto.CartSummaryDTO
// @Router       /api/tables/{tableId}/cart/offers/{id} [put]
func (h *CartHandler) SetOfferQuantity(c *fiber.Ctx) error {
	var in dto.SetQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.svc.SetOfferQuantity(c.UserContext(), GetSessionID(c), c.Params("id"), in.Quantity)
	return h.respond(c, out, err)
}

// RemoveOffer godoc
// @Summary      Quitar promoción
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Param        tableId  path  string  true  "Mesa"
// @Param        id       path  string  true  "ID de la promoción"
// @Success      200  {object}  dto.CartSummaryDTO
// @Router       /api/tables/{tableId}/cart/offers/{id} [delete]
func (h *CartHandler) RemoveOffer(c *fiber.Ctx) error {
	out, err := h.svc.RemoveOffer(c.UserContext(), GetSessionID(c), c.Params("id"))
	return h.respond(c, out, err)
}

// SetNotes godoc
// @Summary      Notas del pedido
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        tableId  path  string            true  "Mesa"
// @Param        body     body  dto.NotesRequest  true  "Notas"
// @Success      200  {object}  dto.CartSummaryDTO
// @Router       /api/tables/{tableId}/cart/notes [put]
func (h *CartHandler) SetNotes(c *fiber.Ctx) error {
	var in dto.NotesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.svc.SetNotes(c.UserContext(), GetSessionID(c), in.Notes)
	return h.respond(c, out, err)
}

// SetPaymentMethod godoc
// @Summary      Método de pago (credit | mercado_pago | cash)
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        tableId  path  string                    true  "Mesa"
// @Param        body     body  dto.PaymentMethodRequest  true  "Método"
// @Success      200  {object}  dto.CartSummaryDTO
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/tables/{tableId}/cart/payment-method [put]
func (h *CartHandler) SetPaymentMethod(c *fiber.Ctx) error {
	var in dto.PaymentMethodRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.svc.SetPaymentMethod(c.UserContext(), GetSessionID(c), in.PaymentMethod)
	return h.respond(c, out, err)
}
