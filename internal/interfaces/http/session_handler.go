package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/mesa-api/internal/application/dto"
	"github.com/jhoicas/mesa-api/internal/application/session"
)

// SessionHandler estado de la sesión de mesa (protegido).
type SessionHandler struct {
	sessions *session.Manager
}

// NewSessionHandler construye el handler.
func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Get godoc
// @Summary      Sesión actual
// @Tags         session
// @Security     Bearer
// @Produce      json
// @Param        tableId  path  string  true  "Mesa"
// @Success      200  {object}  dto.SessionResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/tables/{tableId}/session [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	s, err := h.sessions.Get(c.UserContext(), GetSessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(session.ToResponse(s))
}

// Logout godoc
// @Summary      Cerrar sesión (limpia tokens e identidad)
// @Tags         session
// @Security     Bearer
// @Produce      json
// @Param        tableId  path  string  true  "Mesa"
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/tables/{tableId}/session/logout [post]
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	s, err := h.sessions.Logout(c.UserContext(), GetSessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(session.ToResponse(s))
}

// UpdateCreditLine godoc
// @Summary      Actualizar crédito disponible
// @Tags         session
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        tableId  path  string                 true  "Mesa"
// @Param        body     body  dto.CreditLineRequest  true  "Crédito disponible"
// @Success      200  {object}  dto.SessionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/tables/{tableId}/session/credit-line [put]
func (h *SessionHandler) UpdateCreditLine(c *fiber.Ctx) error {
	var in dto.CreditLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	s, err := h.sessions.UpdateCreditLine(c.UserContext(), GetSessionID(c), in.RemainingCreditLine)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(session.ToResponse(s))
}
