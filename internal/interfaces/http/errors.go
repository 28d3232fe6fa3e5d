package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/mesa-api/internal/application/auth"
	"github.com/jhoicas/mesa-api/internal/application/dto"
	"github.com/jhoicas/mesa-api/internal/domain"
)

// errorMapping orden de evaluación: el primero que coincide gana (ErrOrderSubmission envuelve
// al error de transporte, por eso va antes).
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrNotAuthenticated, fiber.StatusUnauthorized, "NOT_AUTHENTICATED"},
	{domain.ErrMissingToken, fiber.StatusUnauthorized, "MISSING_TOKEN"},
	{domain.ErrTokenDecode, fiber.StatusUnauthorized, "INVALID_TOKEN"},
	{domain.ErrTokenExpired, fiber.StatusUnauthorized, "TOKEN_EXPIRED"},
	{domain.ErrValidationInFlight, fiber.StatusConflict, "VALIDATION_IN_FLIGHT"},
	{domain.ErrOrderInFlight, fiber.StatusConflict, "ORDER_IN_FLIGHT"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrEmptyCart, fiber.StatusUnprocessableEntity, "EMPTY_CART"},
	{domain.ErrCreditLimitExceeded, fiber.StatusUnprocessableEntity, "CREDIT_LIMIT_EXCEEDED"},
	{domain.ErrOrderSubmission, fiber.StatusBadGateway, "ORDER_SUBMISSION_FAILED"},
	{domain.ErrBackendRejected, fiber.StatusBadGateway, "BACKEND_REJECTED"},
	{domain.ErrTransport, fiber.StatusServiceUnavailable, "BACKEND_UNAVAILABLE"},
}

// statusFor devuelve status HTTP y código para un error de dominio; 500/INTERNAL si no se reconoce.
func statusFor(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError único punto de traducción de errores a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	resp := dto.ErrorResponse{Code: code, Message: err.Error()}
	if status == fiber.StatusUnauthorized {
		if tableID := c.Params("tableId"); tableID != "" {
			resp.Redirect = auth.LoadingRoute(tableID)
		}
	}
	if status == fiber.StatusInternalServerError {
		// sin detalles internos hacia el cliente
		resp.Message = "error interno"
		requestLogger(c).Error().Err(err).Msg("error no mapeado")
	}
	return c.Status(status).JSON(resp)
}
