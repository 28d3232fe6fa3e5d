package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/mesa-api/internal/application/apptest"
	"github.com/jhoicas/mesa-api/internal/application/auth"
	"github.com/jhoicas/mesa-api/internal/application/cart"
	"github.com/jhoicas/mesa-api/internal/application/dto"
	"github.com/jhoicas/mesa-api/internal/application/guard"
	"github.com/jhoicas/mesa-api/internal/application/session"
	"github.com/jhoicas/mesa-api/internal/application/table"
	"github.com/jhoicas/mesa-api/internal/domain/token"
	"github.com/jhoicas/mesa-api/internal/infrastructure/memory"
	"github.com/jhoicas/mesa-api/internal/infrastructure/pdf"
	"github.com/jhoicas/mesa-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/mesa-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "mesa-api-test"
	testExpMin    = 60
	testTable     = "mesa-4"
)

type harness struct {
	app      *fiber.App
	backend  *apptest.FakeBackend
	sessions *session.Manager
}

// newHarness arma la API completa sobre stores en memoria y un backend falso.
func newHarness(t *testing.T) *harness {
	t.Helper()
	kv := memory.NewKVStore()
	backend := apptest.NewFakeBackend()
	locks := guard.NewKeyedMutex()
	log := zerolog.Nop()

	sessions := session.NewManager(storage.NewSessionRepository(kv, 0), token.NewCodec("core"), backend, locks, log)
	carts := storage.NewCartRepository(kv, 0)
	authUC := auth.NewAuthUseCase(sessions, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, log)
	tableUC := table.NewUseCase(table.Deps{
		Sessions: sessions,
		Carts:    carts,
		Receipts: storage.NewReceiptRepository(kv, 0),
		Backend:  backend,
		PDF:      pdf.NewMarotoPDFGenerator("Comedor Norte"),
		Locks:    locks,
		Log:      log,
	})

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(apphttp.AccessLog(log))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:       authUC,
		Sessions:     sessions,
		CartSvc:      cart.NewService(carts, sessions, backend, locks, log),
		TableUC:      tableUC,
		JWTSecret:    testJWTSecret,
		AppName:      "mesa-api",
		BreakerState: func() string { return "closed" },
	})
	return &harness{app: app, backend: backend, sessions: sessions}
}

// do lanza la petición; body se serializa a JSON si no es nil.
func (h *harness) do(t *testing.T, method, path, bearer string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// login intercambia un token válido y devuelve el token de sesión del navegador.
func (h *harness) login(t *testing.T, table string) dto.TokenExchangeResponse {
	t.Helper()
	resp := h.do(t, http.MethodPost, "/api/auth/token", "", dto.TokenExchangeRequest{Token: apptest.ValidToken(t), TableID: table})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.TokenExchangeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.SessionToken)
	return out
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (h *harness) logout(t *testing.T, sessionID string) {
	t.Helper()
	_, err := h.sessions.Logout(context.Background(), sessionID)
	require.NoError(t, err)
}
