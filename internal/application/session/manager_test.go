package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/mesa-api/internal/application/apptest"
	"github.com/jhoicas/mesa-api/internal/application/guard"
	"github.com/jhoicas/mesa-api/internal/application/session"
	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/internal/domain/entity"
	"github.com/jhoicas/mesa-api/internal/domain/token"
	"github.com/jhoicas/mesa-api/internal/infrastructure/memory"
	"github.com/jhoicas/mesa-api/internal/infrastructure/storage"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	mgr      *session.Manager
	backend  *apptest.FakeBackend
	sessions *storage.SessionRepo
	codec    *token.Codec
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	backend := apptest.NewFakeBackend()
	sessions := storage.NewSessionRepository(memory.NewKVStore(), 0)
	codec := token.NewCodec("core-secret")
	mgr := session.NewManager(sessions, codec, backend, guard.NewKeyedMutex(), zerolog.Nop())
	return fixture{mgr: mgr, backend: backend, sessions: sessions, codec: codec}
}

func (f fixture) start(t *testing.T) *entity.Session {
	t.Helper()
	s, err := f.mgr.Start(context.Background(), "mesa-4")
	require.NoError(t, err)
	return s
}

func assertCleared(t *testing.T, s *entity.Session) {
	t.Helper()
	assert.Empty(t, s.ExternalToken)
	assert.Empty(t, s.InternalToken)
	assert.Nil(t, s.User)
	assert.False(t, s.IsValidating)
}

// ──────────────────────────────────────────────────────────────────────────────
// BeginValidation
// ──────────────────────────────────────────────────────────────────────────────

func TestBeginValidation_TokenFaltante(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)

	got, err := f.mgr.BeginValidation(context.Background(), s.ID, "")
	assert.ErrorIs(t, err, domain.ErrMissingToken)
	assert.Equal(t, entity.SessionFailed, got.State)
	assert.Equal(t, "No se encontró token de Adecash en la URL", got.LastError)
}

func TestBeginValidation_TokenExpirado(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	claims := apptest.Claims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()

	got, err := f.mgr.BeginValidation(context.Background(), s.ID, apptest.ExternalToken(t, claims))
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.Equal(t, entity.SessionFailed, got.State)
	assert.Equal(t, "Token expirado", got.LastError)
	assertCleared(t, got)
}

// Escenario: token con tres segmentos pero sin curp → falla, nunca llega a autenticada.
func TestBeginValidation_FaltaCurp(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	claims := apptest.Claims()
	delete(claims, "curp")

	got, err := f.mgr.BeginValidation(context.Background(), s.ID, apptest.ExternalToken(t, claims))
	assert.ErrorIs(t, err, domain.ErrTokenDecode)
	assert.Equal(t, entity.SessionFailed, got.State)
	assert.Equal(t, "Token de Adecash inválido", got.LastError)
	assertCleared(t, got)

	stored, err := f.sessions.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionFailed, stored.State, "el fallo se persiste")
	assert.Equal(t, int32(0), f.backend.ValidateCalls.Load())
}

func TestBeginValidation_GuardaIdentidad(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)

	got, err := f.mgr.BeginValidation(context.Background(), s.ID, apptest.ValidToken(t))
	require.NoError(t, err)
	assert.Equal(t, entity.SessionValidating, got.State)
	assert.True(t, got.IsValidating)
	require.NotNil(t, got.User)
	assert.Equal(t, "LOPA800101MDFXXX01", got.User.CURP)
	assert.Empty(t, got.InternalToken)

	_, err = f.mgr.BeginValidation(context.Background(), s.ID, apptest.ValidToken(t))
	assert.ErrorIs(t, err, domain.ErrValidationInFlight)
}

func TestBeginValidation_SesionInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.BeginValidation(context.Background(), "nope", apptest.ValidToken(t))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// ConfirmWithBackend
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirmWithBackend_Exito(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	ctx := context.Background()
	_, err := f.mgr.BeginValidation(ctx, s.ID, apptest.ValidToken(t))
	require.NoError(t, err)

	got, err := f.mgr.ConfirmWithBackend(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionAuthenticated, got.State)
	assert.False(t, got.IsValidating)
	assert.NotEmpty(t, got.InternalToken)
	assert.Equal(t, got.InternalToken, f.backend.LastToken, "el token interno viaja como bearer")

	// repetible después del éxito
	got, err = f.mgr.ConfirmWithBackend(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAuthenticated())
	assert.Equal(t, int32(2), f.backend.ValidateCalls.Load())
}

func TestConfirmWithBackend_Rechazo(t *testing.T) {
	f := newFixture(t)
	f.backend.Valid = false
	s := f.start(t)
	ctx := context.Background()
	_, err := f.mgr.BeginValidation(ctx, s.ID, apptest.ValidToken(t))
	require.NoError(t, err)

	got, err := f.mgr.ConfirmWithBackend(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrBackendRejected)
	assert.Equal(t, entity.SessionFailed, got.State)
	assert.Equal(t, "Error de validación con el servidor", got.LastError)
	assertCleared(t, got)
}

func TestConfirmWithBackend_ErrorDeConexion(t *testing.T) {
	f := newFixture(t)
	f.backend.ValidateErr = domain.ErrTransport
	s := f.start(t)
	ctx := context.Background()
	_, err := f.mgr.BeginValidation(ctx, s.ID, apptest.ValidToken(t))
	require.NoError(t, err)

	got, err := f.mgr.ConfirmWithBackend(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, "Error de conexión con el servidor", got.LastError)
	assertCleared(t, got)
}

func TestConfirmWithBackend_SinIdentidad(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	_, err := f.mgr.ConfirmWithBackend(context.Background(), s.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Equal(t, int32(0), f.backend.ValidateCalls.Load())
}

// Un logout mientras se espera al backend descarta el resultado.
func TestConfirmWithBackend_LogoutDuranteLaLlamada(t *testing.T) {
	f := newFixture(t)
	f.backend.ValidateGate = make(chan struct{})
	s := f.start(t)
	ctx := context.Background()
	_, err := f.mgr.BeginValidation(ctx, s.ID, apptest.ValidToken(t))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := f.mgr.ConfirmWithBackend(ctx, s.ID)
		done <- err
	}()

	require.Eventually(t, func() bool { return f.backend.ValidateCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	_, err = f.mgr.Logout(ctx, s.ID)
	require.NoError(t, err)
	close(f.backend.ValidateGate)

	assert.ErrorIs(t, <-done, domain.ErrNotAuthenticated)
	got, err := f.mgr.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionUnauthenticated, got.State)
}

// ──────────────────────────────────────────────────────────────────────────────
// Authenticate
// ──────────────────────────────────────────────────────────────────────────────

// Dos confirmaciones simultáneas de la misma sesión hacen una sola llamada al backend.
func TestConfirmWithBackend_ConcurrentesUnaSolaLlamada(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	ctx := context.Background()
	_, err := f.mgr.BeginValidation(ctx, s.ID, apptest.ValidToken(t))
	require.NoError(t, err)
	f.backend.ValidateGate = make(chan struct{})

	const callers = 2
	var wg sync.WaitGroup
	results := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.mgr.ConfirmWithBackend(ctx, s.ID)
		}(i)
	}
	require.Eventually(t, func() bool { return f.backend.ValidateCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(f.backend.ValidateGate)
	wg.Wait()

	for _, err := range results {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.backend.ValidateCalls.Load())

	got, err := f.mgr.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAuthenticated())
}

func TestAuthenticate_LlamadasConcurrentesCompartenValidacion(t *testing.T) {
	f := newFixture(t)
	f.backend.ValidateGate = make(chan struct{})
	s := f.start(t)
	tok := apptest.ValidToken(t)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.mgr.Authenticate(context.Background(), s.ID, tok)
		}(i)
	}
	require.Eventually(t, func() bool { return f.backend.ValidateCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// margen para que el resto se sume al vuelo en curso
	time.Sleep(20 * time.Millisecond)
	close(f.backend.ValidateGate)
	wg.Wait()

	for _, err := range results {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.backend.ValidateCalls.Load())
}

func TestAuthenticate_OtroTokenMientrasValida(t *testing.T) {
	f := newFixture(t)
	f.backend.ValidateGate = make(chan struct{})
	s := f.start(t)
	ctx := context.Background()

	first := apptest.ValidToken(t)
	go func() { _, _ = f.mgr.Authenticate(ctx, s.ID, first) }()
	require.Eventually(t, func() bool { return f.backend.ValidateCalls.Load() == 1 }, time.Second, 5*time.Millisecond)

	claims := apptest.Claims()
	claims["first_name"] = "Otro"
	_, err := f.mgr.Authenticate(ctx, s.ID, apptest.ExternalToken(t, claims))
	assert.ErrorIs(t, err, domain.ErrValidationInFlight)
	close(f.backend.ValidateGate)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mutadores y carga
// ──────────────────────────────────────────────────────────────────────────────

func authenticated(t *testing.T, f fixture) *entity.Session {
	t.Helper()
	s := f.start(t)
	got, err := f.mgr.Authenticate(context.Background(), s.ID, apptest.ValidToken(t))
	require.NoError(t, err)
	return got
}

func TestUpdateCreditLine(t *testing.T) {
	f := newFixture(t)
	s := authenticated(t, f)
	ctx := context.Background()

	got, err := f.mgr.UpdateCreditLine(ctx, s.ID, decimal.RequireFromString("50"))
	require.NoError(t, err)
	assert.Equal(t, "50", got.User.RemainingCreditLine.String())
	assert.Equal(t, "1000", got.User.MaxCreditLine.String())
	assert.Equal(t, int32(1), f.backend.ValidateCalls.Load(), "no revalida")

	_, err = f.mgr.UpdateCreditLine(ctx, s.ID, decimal.RequireFromString("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateCreditLine_SinAutenticar(t *testing.T) {
	f := newFixture(t)
	s := f.start(t)
	_, err := f.mgr.UpdateCreditLine(context.Background(), s.ID, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestLogout_LimpiaTodo(t *testing.T) {
	f := newFixture(t)
	s := authenticated(t, f)

	got, err := f.mgr.Logout(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionUnauthenticated, got.State)
	assertCleared(t, got)
	assert.Empty(t, got.LastError)

	_, err = f.mgr.RequireAuthenticated(context.Background(), s.ID)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

// Una sesión persistida con token, identidad y token interno vigentes se restaura autenticada.
func TestGet_RestauraSesionPersistida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, err := f.codec.DecodeExternal(apptest.ValidToken(t))
	require.NoError(t, err)
	internal, err := f.codec.EncodeInternal(*user)
	require.NoError(t, err)

	require.NoError(t, f.sessions.Save(ctx, &entity.Session{
		ID: "s1", TableID: "mesa-1", State: entity.SessionUnauthenticated,
		ExternalToken: apptest.ValidToken(t), InternalToken: internal, User: user,
	}))

	got, err := f.mgr.RequireAuthenticated(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.IsAuthenticated())
}

func TestGet_TokenPersistidoExpirado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := apptest.Claims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	tok := apptest.ExternalToken(t, claims)

	require.NoError(t, f.sessions.Save(ctx, &entity.Session{
		ID: "s1", State: entity.SessionAuthenticated,
		ExternalToken: tok, InternalToken: "x", User: &entity.UserIdentity{CURP: "C"},
	}))

	got, err := f.mgr.RequireAuthenticated(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Equal(t, "Token expirado", got.LastError)
	assertCleared(t, got)
}

func TestRequireAuthenticated_SesionInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.RequireAuthenticated(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestStart_RequiereMesa(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.Start(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
