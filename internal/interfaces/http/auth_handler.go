package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/mesa-api/internal/application/auth"
	"github.com/jhoicas/mesa-api/internal/application/dto"
	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/pkg/jwt"
)

// DefaultTableID mesa asignada cuando el token llega por /auth/:token sin ?table_id.
const DefaultTableID = "general"

// AuthHandler intercambio del token del proveedor por la sesión de mesa (público).
type AuthHandler struct {
	uc        *auth.AuthUseCase
	jwtSecret string
}

// NewAuthHandler construye el handler.
func NewAuthHandler(uc *auth.AuthUseCase, jwtSecret string) *AuthHandler {
	return &AuthHandler{uc: uc, jwtSecret: jwtSecret}
}

// Exchange godoc
// @Summary      Intercambiar token de Adecash por sesión de mesa
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TokenExchangeRequest  true  "Token del proveedor y mesa"
// @Success      200   {object}  dto.TokenExchangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.TokenExchangeResponse
// @Failure      409   {object}  dto.TokenExchangeResponse
// @Router       /api/auth/token [post]
func (h *AuthHandler) Exchange(c *fiber.Ctx) error {
	var in dto.TokenExchangeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return h.exchange(c, in)
}

// FromPath godoc
// @Summary      Autenticar con el token de Adecash en la URL
// @Tags         auth
// @Produce      json
// @Param        token     path   string  true   "Token del proveedor"
// @Param        table_id  query  string  false  "Mesa (por defecto general)"
// @Success      200  {object}  dto.TokenExchangeResponse
// @Failure      401  {object}  dto.TokenExchangeResponse
// @Router       /auth/{token} [get]
func (h *AuthHandler) FromPath(c *fiber.Ctx) error {
	tableID := c.Query("table_id", DefaultTableID)
	return h.exchange(c, dto.TokenExchangeRequest{Token: c.Params("token"), TableID: tableID})
}

// Loading godoc
// @Summary      Autenticar una mesa con ?token=
// @Tags         auth
// @Produce      json
// @Param        tableId  path   string  true  "Mesa"
// @Param        token    query  string  true  "Token del proveedor"
// @Success      200  {object}  dto.TokenExchangeResponse
// @Failure      401  {object}  dto.TokenExchangeResponse
// @Router       /loading/{tableId} [get]
func (h *AuthHandler) Loading(c *fiber.Ctx) error {
	return h.exchange(c, dto.TokenExchangeRequest{Token: c.Query("token"), TableID: c.Params("tableId")})
}

func (h *AuthHandler) exchange(c *fiber.Ctx, in dto.TokenExchangeRequest) error {
	// si el navegador ya tiene sesión para la mesa se reutiliza
	current := ""
	if tok := bearerToken(c); tok != "" {
		if claims, err := jwt.Parse(h.jwtSecret, tok); err == nil {
			current = claims.SessionID
		}
	}

	out, err := h.uc.Exchange(c.UserContext(), in, current)
	if err == nil {
		return c.JSON(out)
	}
	if out == nil {
		return writeError(c, err)
	}

	status := fiber.StatusUnauthorized
	switch {
	case errors.Is(err, domain.ErrValidationInFlight):
		status = fiber.StatusConflict
	case errors.Is(err, context.Canceled):
		status = fiber.StatusRequestTimeout
	}
	requestLogger(c).Warn().Err(err).Str("table_id", in.TableID).Msg("autenticación fallida")
	return c.Status(status).JSON(out)
}
