// Package session orquesta la autenticación de un comensal: validar el token del proveedor,
// intercambiarlo por el token interno y confirmarlo con el backend del restaurante.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/mesa-api/internal/application/guard"
	"github.com/jhoicas/mesa-api/internal/application/ports"
	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/internal/domain/entity"
	"github.com/jhoicas/mesa-api/internal/domain/repository"
	"github.com/jhoicas/mesa-api/internal/domain/token"
)

// staleValidation pasado este tiempo una validación sin confirmar ya no bloquea una nueva.
const staleValidation = 2 * time.Minute

// Manager dueño del estado de autenticación de cada sesión.
type Manager struct {
	sessions repository.SessionRepository
	codec    *token.Codec
	backend  ports.RestaurantBackend
	locks    *guard.KeyedMutex
	flight   singleflight.Group
	log      zerolog.Logger
	now      func() time.Time
}

// NewManager construye el manager. locks se comparte con el carrito y las órdenes.
func NewManager(
	sessions repository.SessionRepository,
	codec *token.Codec,
	backend ports.RestaurantBackend,
	locks *guard.KeyedMutex,
	log zerolog.Logger,
) *Manager {
	return &Manager{
		sessions: sessions,
		codec:    codec,
		backend:  backend,
		locks:    locks,
		log:      log,
		now:      time.Now,
	}
}

// Start crea una sesión vacía para una mesa.
func (m *Manager) Start(ctx context.Context, tableID string) (*entity.Session, error) {
	if tableID == "" {
		return nil, fmt.Errorf("%w: mesa requerida", domain.ErrInvalidInput)
	}
	now := m.now()
	s := &entity.Session{
		ID:        uuid.NewString(),
		TableID:   tableID,
		State:     entity.SessionUnauthenticated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.sessions.Save(ctx, s); err != nil {
		return nil, err
	}
	m.log.Info().Str("session_id", s.ID).Str("table_id", tableID).Msg("sesión creada")
	return s, nil
}

// Get carga la sesión. Una sesión autenticada cuyo token externo ya expiró pasa a fallida.
func (m *Manager) Get(ctx context.Context, sessionID string) (*entity.Session, error) {
	unlock := m.locks.Lock(sessionID)
	defer unlock()
	return m.load(ctx, sessionID)
}

// RequireAuthenticated para rutas protegidas.
func (m *Manager) RequireAuthenticated(ctx context.Context, sessionID string) (*entity.Session, error) {
	s, err := m.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	if !s.IsAuthenticated() {
		return s, domain.ErrNotAuthenticated
	}
	return s, nil
}

// load debe llamarse con el lock de la sesión tomado.
func (m *Manager) load(ctx context.Context, sessionID string) (*entity.Session, error) {
	s, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	restored := s.ExternalToken != "" && s.InternalToken != "" && s.User != nil
	switch {
	case restored && m.codec.IsExpired(s.ExternalToken):
		s.Fail(entity.FailureExpired)
		if err := m.save(ctx, s); err != nil {
			return nil, err
		}
		m.log.Info().Str("session_id", s.ID).Msg("token expirado al recargar la sesión")
	case restored && s.State != entity.SessionAuthenticated && !s.IsValidating:
		s.State = entity.SessionAuthenticated
	}
	return s, nil
}

func (m *Manager) save(ctx context.Context, s *entity.Session) error {
	s.UpdatedAt = m.now()
	return m.sessions.Save(ctx, s)
}

// BeginValidation verifica expiración y decodifica la identidad del token externo.
// En cualquier fallo la sesión queda en failed con el mensaje para el usuario y se devuelve el error.
func (m *Manager) BeginValidation(ctx context.Context, sessionID, externalToken string) (*entity.Session, error) {
	unlock := m.locks.Lock(sessionID)
	defer unlock()

	s, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.IsValidating && m.now().Sub(s.UpdatedAt) < staleValidation {
		return s, domain.ErrValidationInFlight
	}

	fail := func(reason entity.FailureReason, cause error) (*entity.Session, error) {
		s.Fail(reason)
		if err := m.save(ctx, s); err != nil {
			return nil, err
		}
		m.log.Warn().Str("session_id", s.ID).Str("reason", reason.Code).Err(cause).Msg("validación rechazada")
		return s, cause
	}

	if externalToken == "" {
		return fail(entity.FailureMissingToken, domain.ErrMissingToken)
	}
	if m.codec.IsExpired(externalToken) {
		return fail(entity.FailureExpired, domain.ErrTokenExpired)
	}
	user, err := m.codec.DecodeExternal(externalToken)
	if err != nil {
		return fail(entity.FailureInvalidPayload, err)
	}

	s.ExternalToken = externalToken
	s.InternalToken = ""
	s.User = user
	s.State = entity.SessionValidating
	s.IsValidating = true
	s.LastError = ""
	s.FailureCode = ""
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ConfirmWithBackend genera el token interno y lo confirma con el backend.
// Se puede repetir después de una autenticación exitosa. Las confirmaciones concurrentes de
// una misma sesión comparten una sola ida al backend y reciben el mismo resultado.
func (m *Manager) ConfirmWithBackend(ctx context.Context, sessionID string) (*entity.Session, error) {
	v, err, shared := m.flight.Do("confirm:"+sessionID, func() (interface{}, error) {
		return m.confirm(ctx, sessionID)
	})
	if shared {
		m.log.Debug().Str("session_id", sessionID).Msg("confirmación compartida")
	}
	s, _ := v.(*entity.Session)
	return s, err
}

func (m *Manager) confirm(ctx context.Context, sessionID string) (*entity.Session, error) {
	unlock := m.locks.Lock(sessionID)
	s, err := m.load(ctx, sessionID)
	if err != nil {
		unlock()
		return nil, err
	}
	if s.User == nil || (s.State != entity.SessionValidating && s.State != entity.SessionAuthenticated) {
		unlock()
		return s, domain.ErrNotAuthenticated
	}
	internal, err := m.codec.EncodeInternal(*s.User)
	if err != nil {
		unlock()
		return nil, err
	}
	validated := s.ExternalToken
	s.IsValidating = true
	if err := m.save(ctx, s); err != nil {
		unlock()
		return nil, err
	}
	unlock()

	// el lock no se mantiene durante la llamada de red
	valid, callErr := m.backend.ValidateSession(ctx, internal)

	unlock = m.locks.Lock(sessionID)
	defer unlock()
	s, err = m.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.ExternalToken != validated || s.User == nil {
		// logout u otro token mientras se esperaba al backend
		return s, domain.ErrNotAuthenticated
	}

	switch {
	case callErr != nil && errors.Is(callErr, domain.ErrBackendRejected):
		s.Fail(entity.FailureServerRejected)
	case callErr != nil:
		s.Fail(entity.FailureConnection)
	case !valid:
		s.Fail(entity.FailureServerRejected)
		callErr = domain.ErrBackendRejected
	default:
		s.InternalToken = internal
		s.State = entity.SessionAuthenticated
		s.IsValidating = false
		s.LastError = ""
		s.FailureCode = ""
	}
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}

	if callErr != nil {
		m.log.Warn().Str("session_id", s.ID).Str("reason", s.FailureCode).Err(callErr).Msg("confirmación con el backend fallida")
		return s, callErr
	}
	m.log.Info().Str("session_id", s.ID).Str("table_id", s.TableID).Str("tenant", s.User.Tenant).Msg("sesión autenticada")
	return s, nil
}

// Authenticate ejecuta BeginValidation + ConfirmWithBackend. Llamadas concurrentes con la misma
// sesión y el mismo token comparten una sola ida al backend.
func (m *Manager) Authenticate(ctx context.Context, sessionID, externalToken string) (*entity.Session, error) {
	key := sessionID + "\x00" + externalToken
	v, err, shared := m.flight.Do(key, func() (interface{}, error) {
		s, err := m.BeginValidation(ctx, sessionID, externalToken)
		if err != nil {
			return s, err
		}
		return m.ConfirmWithBackend(ctx, sessionID)
	})
	if shared {
		m.log.Debug().Str("session_id", sessionID).Msg("validación compartida")
	}
	s, _ := v.(*entity.Session)
	return s, err
}

// UpdateCreditLine reemplaza el crédito disponible sin revalidar.
func (m *Manager) UpdateCreditLine(ctx context.Context, sessionID string, remaining decimal.Decimal) (*entity.Session, error) {
	if remaining.IsNegative() {
		return nil, fmt.Errorf("%w: el crédito disponible no puede ser negativo", domain.ErrInvalidInput)
	}
	unlock := m.locks.Lock(sessionID)
	defer unlock()

	s, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.IsAuthenticated() {
		return s, domain.ErrNotAuthenticated
	}
	s.User.RemainingCreditLine = remaining
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Logout limpia credenciales, identidad y error sin condiciones.
func (m *Manager) Logout(ctx context.Context, sessionID string) (*entity.Session, error) {
	unlock := m.locks.Lock(sessionID)
	defer unlock()

	s, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.Reset()
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	m.log.Info().Str("session_id", s.ID).Msg("logout")
	return s, nil
}
