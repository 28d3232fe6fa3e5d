package http_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/mesa-api/internal/application/dto"
	pkgjwt "github.com/jhoicas/mesa-api/pkg/jwt"
)

const sessionPath = "/api/tables/" + testTable + "/session"

// ──────────────────────────────────────────────────────────────────────────────
// Tests SessionMiddleware
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: token de la mesa y sesión autenticada → pasa (HTTP 200).
func TestSessionMiddleware_SesionValida(t *testing.T) {
	h := newHarness(t)
	login := h.login(t, testTable)

	resp := h.do(t, http.MethodGet, sessionPath, login.SessionToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[dto.SessionResponse](t, resp)
	assert.Equal(t, "authenticated", body.State)
	assert.Equal(t, testTable, body.TableID)
	require.NotNil(t, body.User)
	assert.Equal(t, "LOPA800101MDFXXX01", body.User.CURP)
}

// Caso 2: sin header Authorization → 401 MISSING_TOKEN con redirect a la pantalla de carga.
func TestSessionMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, sessionPath, "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "MISSING_TOKEN", body.Code)
	assert.Equal(t, "/loading/"+testTable, body.Redirect)
}

// Caso 3: token malformado o firmado con otro secreto → 401 INVALID_TOKEN.
func TestSessionMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, sessionPath, "token.invalido.aqui", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	other, err := pkgjwt.Generate("otro-secreto", "sid", testTable, testIssuer, testExpMin)
	require.NoError(t, err)
	resp = h.do(t, http.MethodGet, sessionPath, other, nil)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

// Caso 4: token emitido para otra mesa → 401 TABLE_MISMATCH.
func TestSessionMiddleware_OtraMesa_Retorna401(t *testing.T) {
	h := newHarness(t)
	login := h.login(t, "mesa-9")

	resp := h.do(t, http.MethodGet, sessionPath, login.SessionToken, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "TABLE_MISMATCH", decode[dto.ErrorResponse](t, resp).Code)
}

// Caso 5: token firmado correcto pero la sesión ya no está autenticada → 401.
func TestSessionMiddleware_SesionCerrada_Retorna401(t *testing.T) {
	h := newHarness(t)
	login := h.login(t, testTable)
	h.logout(t, login.Session.SessionID)

	resp := h.do(t, http.MethodGet, sessionPath, login.SessionToken, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "NOT_AUTHENTICATED", body.Code)
	assert.Equal(t, "/loading/"+testTable, body.Redirect)
}

// Caso 6: sesión inexistente en el store (token de otra instancia) → 401.
func TestSessionMiddleware_SesionInexistente_Retorna401(t *testing.T) {
	h := newHarness(t)
	tok, err := pkgjwt.Generate(testJWTSecret, "no-existe", testTable, testIssuer, testExpMin)
	require.NoError(t, err)

	resp := h.do(t, http.MethodGet, sessionPath, tok, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests JWT pkg: integridad del generate/parse con sesión y mesa
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse_ConMesa(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, "sid-1", testTable, testIssuer, testExpMin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.Equal(t, testTable, claims.TableID)
	assert.Equal(t, testIssuer, claims.Issuer)
}
