package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/mesa-api/internal/application/dto"
	"github.com/jhoicas/mesa-api/internal/application/table"
)

// TableHandler dashboard, menú, órdenes y mesero (protegido).
type TableHandler struct {
	uc *table.UseCase
}

// NewTableHandler construye el handler.
func NewTableHandler(uc *table.UseCase) *TableHandler {
	return &TableHandler{uc: uc}
}

// Dashboard godoc
// @Summary      Órdenes pendientes, promociones y crédito
// @Tags         table
// @Security     Bearer
// @Produce      json
// @Param        tableId  path  string  true  "Mesa"
// @Success      200  {object}  dto.DashboardDTO
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/tables/{tableId}/dashboard [get]
func (h *TableHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.uc.Dashboard(c.UserContext(), GetSessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Menu godoc
// @Summary      Categorías, productos y promociones
// @Tags         table
// @Security     Bearer
// @Produce      json
// @Param        tableId  path  string  true  "Mesa"
// @Success      200  {object}  dto.MenuDTO
// @Router       /api/tables/{tableId}/menu [get]
func (h *TableHandler) Menu(c *fiber.Ctx) error {
	out, err := h.uc.Menu(c.UserContext(), GetSessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PlaceOrder godoc
// @Summary      Confirmar pedido con el carrito actual
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        tableId  path  string  true  "Mesa"
// @Success      201  {object}  dto.ReceiptDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/tables/{tableId}/orders [post]
func (h *TableHandler) PlaceOrder(c *fiber.Ctx) error {
	out, err := h.uc.PlaceOrder(c.UserContext(), GetSessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Receipt godoc
// @Summary      Comprobante de una orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        tableId  path  string  true  "Mesa"
// @Param        number   path  int     true  "Número de orden"
// @Success      200  {object}  dto.ReceiptDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tables/{tableId}/orders/{number} [get]
func (h *TableHandler) Receipt(c *fiber.Ctx) error {
	number, ok := orderNumber(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ORDER_NUMBER", Message: "número de orden inválido"})
	}
	out, err := h.uc.Receipt(c.UserContext(), GetSessionID(c), number)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReceiptPDF godoc
// @Summary      Comprobante imprimible
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        tableId  path  string  true  "Mesa"
// @Param        number   path  int     true  "Número de orden"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tables/{tableId}/orders/{number}/receipt.pdf [get]
func (h *TableHandler) ReceiptPDF(c *fiber.Ctx) error {
	number, ok := orderNumber(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ORDER_NUMBER", Message: "número de orden inválido"})
	}
	doc, err := h.uc.ReceiptPDF(c.UserContext(), GetSessionID(c), number)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="orden-%d.pdf"`, number))
	return c.Send(doc)
}

// CallWaiter godoc
// @Summary      Llamar al mesero
// @Tags         table
// @Security     Bearer
// @Produce      json
// @Param        tableId  path  string  true  "Mesa"
// @Success      200  {object}  dto.WaiterCallDTO
// @Router       /api/tables/{tableId}/waiter [post]
func (h *TableHandler) CallWaiter(c *fiber.Ctx) error {
	out, err := h.uc.CallWaiter(c.UserContext(), GetSessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CancelWaiterCall godoc
// @Summary      Cancelar llamado al mesero
// @Tags         table
// @Security     Bearer
// @Produce      json
// @Param        tableId  path  string  true  "Mesa"
// @Success      200  {object}  dto.WaiterCallDTO
// @Router       /api/tables/{tableId}/waiter [delete]
func (h *TableHandler) CancelWaiterCall(c *fiber.Ctx) error {
	out, err := h.uc.CancelWaiterCall(c.UserContext(), GetSessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func orderNumber(c *fiber.Ctx) (int64, bool) {
	n, err := strconv.ParseInt(c.Params("number"), 10, 64)
	return n, err == nil && n > 0
}
