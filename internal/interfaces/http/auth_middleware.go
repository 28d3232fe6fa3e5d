package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/mesa-api/internal/application/auth"
	"github.com/jhoicas/mesa-api/internal/application/dto"
	"github.com/jhoicas/mesa-api/internal/application/session"
	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/pkg/jwt"
)

// Locals keys para la sesión de mesa en Fiber.
const (
	LocalSessionID = "session_id"
	LocalTableID   = "table_id"
)

// bearerToken extrae el token del header Authorization; "" si no hay o el formato es otro.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// SessionMiddleware valida el token de sesión del navegador, que sea de la mesa de la ruta y que
// la sesión siga autenticada. En cualquier fallo responde 401 con la ruta de carga de la mesa.
func SessionMiddleware(jwtSecret string, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tableID := c.Params("tableId")
		unauthorized := func(code, msg string) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:     code,
				Message:  msg,
				Redirect: auth.LoadingRoute(tableID),
			})
		}

		if c.Get("Authorization") == "" {
			return unauthorized("MISSING_TOKEN", "Authorization header requerido")
		}
		tokenString := bearerToken(c)
		if tokenString == "" {
			return unauthorized("INVALID_TOKEN", "formato: Bearer <token>")
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return unauthorized("INVALID_TOKEN", "token inválido o expirado")
		}
		if claims.TableID != tableID {
			return unauthorized("TABLE_MISMATCH", "el token no corresponde a esta mesa")
		}

		s, err := sessions.RequireAuthenticated(c.UserContext(), claims.SessionID)
		if err != nil {
			if errors.Is(err, domain.ErrNotAuthenticated) {
				msg := "sesión no autenticada"
				if s != nil && s.LastError != "" {
					msg = s.LastError
				}
				return unauthorized("NOT_AUTHENTICATED", msg)
			}
			return writeError(c, err)
		}

		c.Locals(LocalSessionID, s.ID)
		c.Locals(LocalTableID, s.TableID)
		return c.Next()
	}
}

// GetSessionID devuelve el id de sesión del contexto (después de SessionMiddleware).
func GetSessionID(c *fiber.Ctx) string {
	v := c.Locals(LocalSessionID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// GetTableID devuelve la mesa de la sesión (después de SessionMiddleware).
func GetTableID(c *fiber.Ctx) string {
	v := c.Locals(LocalTableID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
