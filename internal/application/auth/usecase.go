package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/mesa-api/internal/application/dto"
	"github.com/jhoicas/mesa-api/internal/application/session"
	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/pkg/jwt"
)

// ErrorRoute pantalla de error del front.
const ErrorRoute = "/error"

// DashboardRoute destino tras autenticar.
func DashboardRoute(tableID string) string { return "/dashboard/" + tableID }

// LoadingRoute pantalla de carga donde se vuelve a presentar el token.
func LoadingRoute(tableID string) string { return "/loading/" + tableID }

// JWTConfig configuración para generación de tokens de sesión del navegador.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase intercambia el token del proveedor por una sesión de mesa y su token de navegador.
type AuthUseCase struct {
	sessions *session.Manager
	jwtCfg   JWTConfig
	log      zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(sessions *session.Manager, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{sessions: sessions, jwtCfg: jwtCfg, log: log}
}

// Exchange valida el token externo para la mesa. Si currentSessionID pertenece a la misma mesa
// se reutiliza (el carrito sobrevive); si no, se abre una sesión nueva.
// En error la respuesta igualmente trae el mensaje y la ruta /error.
func (uc *AuthUseCase) Exchange(ctx context.Context, in dto.TokenExchangeRequest, currentSessionID string) (*dto.TokenExchangeResponse, error) {
	if in.TableID == "" {
		return nil, fmt.Errorf("%w: table_id requerido", domain.ErrInvalidInput)
	}

	sessionID := ""
	if currentSessionID != "" {
		if s, err := uc.sessions.Get(ctx, currentSessionID); err == nil && s.TableID == in.TableID {
			sessionID = s.ID
		}
	}
	if sessionID == "" {
		s, err := uc.sessions.Start(ctx, in.TableID)
		if err != nil {
			return nil, err
		}
		sessionID = s.ID
	}

	s, err := uc.sessions.Authenticate(ctx, sessionID, in.Token)
	if err != nil {
		resp := &dto.TokenExchangeResponse{Redirect: ErrorRoute, Session: session.ToResponse(s)}
		resp.Error = err.Error()
		if s != nil && s.LastError != "" {
			resp.Error = s.LastError
		}
		if errors.Is(err, domain.ErrValidationInFlight) {
			resp.Redirect = LoadingRoute(in.TableID)
		}
		return resp, err
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, s.ID, s.TableID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.TokenExchangeResponse{
		SessionToken: token,
		ExpiresIn:    uc.jwtCfg.ExpMinutes * 60,
		Session:      session.ToResponse(s),
		Redirect:     DashboardRoute(s.TableID),
	}, nil
}
