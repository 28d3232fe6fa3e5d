package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/internal/domain/entity"
	"github.com/jhoicas/mesa-api/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{
		BaseURL:          srv.URL,
		Timeout:          2 * time.Second,
		BreakerFailures:  2,
		BreakerOpenFor:   time.Minute,
		BreakerHalfOpenN: 1,
	}, zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ──────────────────────────────────────────────────────────────────────────────
// ValidateSession
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateSession_EnviaBearer(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, pathValidateJWT, r.URL.Path)
		assert.Equal(t, "Bearer core-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
	}))

	ok, err := c.ValidateSession(context.Background(), "core-token")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateSession_FalseYRechazo(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer malo" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"valid": false})
	}))

	ok, err := c.ValidateSession(context.Background(), "t")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.ValidateSession(context.Background(), "malo")
	assert.ErrorIs(t, err, domain.ErrBackendRejected)
	assert.NotErrorIs(t, err, domain.ErrTransport)
}

func TestValidateSession_ErrorDeTransporte(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(config.BackendConfig{BaseURL: url, Timeout: time.Second, BreakerFailures: 5}, zerolog.Nop())
	_, err := c.ValidateSession(context.Background(), "t")
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestValidateSession_JSONInvalido(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	}))
	_, err := c.ValidateSession(context.Background(), "t")
	assert.ErrorIs(t, err, domain.ErrTransport)
}

// ──────────────────────────────────────────────────────────────────────────────
// Circuit breaker
// ──────────────────────────────────────────────────────────────────────────────

func TestCircuitBreaker_SeAbreConErrores5xx(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	for i := 0; i < 2; i++ {
		_, err := c.Products(context.Background(), "t")
		assert.ErrorIs(t, err, domain.ErrTransport)
	}
	assert.Equal(t, "open", c.BreakerState())

	_, err := c.Products(context.Background(), "t")
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, int32(2), calls.Load(), "con el circuito abierto no se llama al backend")
}

func TestCircuitBreaker_RechazosNoAbren(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	for i := 0; i < 5; i++ {
		_, err := c.CreateOrder(context.Background(), "t", entity.OrderRequest{})
		assert.ErrorIs(t, err, domain.ErrBackendRejected)
	}
	assert.Equal(t, "closed", c.BreakerState())
}

// ──────────────────────────────────────────────────────────────────────────────
// Endpoints
// ──────────────────────────────────────────────────────────────────────────────

func TestCatalogo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(pathProducts, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"uuid":"p1","name":"Taco","price":"12.50","description":"","stock":4}]`)
	})
	mux.HandleFunc(pathOffers, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"uuid":"o1","name":"Combo","price":45,"products":[]}]`)
	})
	mux.HandleFunc(pathMenuCategories, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"c1","name":"Bebidas","description":"","tenant":"t1"}]`)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	products, err := c.Products(ctx, "t")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "12.5", products[0].Price.String())
	assert.Equal(t, 4, products[0].Stock)

	offers, err := c.Offers(ctx, "t")
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "45", offers[0].Price.String())

	cats, err := c.MenuCategories(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "Bebidas", cats[0].Name)
}

func TestUnpaidOrders_QueryCurp(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CURP1", r.URL.Query().Get("curp"))
		_, _ = io.WriteString(w, `{"user_curp":"CURP1","user_name":"Ana","orders":[],"total_amount_owed":"120.00","unpaid_orders_count":2}`)
	}))

	res, err := c.UnpaidOrders(context.Background(), "t", "CURP1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.UnpaidOrdersCount)
	assert.Equal(t, "120", res.TotalAmountOwed.String())
}

func TestWaiter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(pathCallWaiter, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CURP1", body["user_curp"])
		writeJSON(w, http.StatusOK, map[string]bool{"calling": true})
	})
	mux.HandleFunc(pathCancelWaiterCall, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"calling": false})
	})
	c := newTestClient(t, mux)

	res, err := c.CallWaiter(context.Background(), "t", "CURP1")
	require.NoError(t, err)
	assert.True(t, res.Calling)

	res, err = c.CancelWaiterCall(context.Background(), "t", "CURP1")
	require.NoError(t, err)
	assert.False(t, res.Calling)
}

func TestCreateOrder_Payload(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathOrders, r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "credit", body["payment_method"])
		assert.NotContains(t, body, "notes", "notas vacías no se envían")
		assert.Len(t, body["order_products"], 1)
		writeJSON(w, http.StatusCreated, map[string]any{"order_number": 1042, "order_take_away_code": "QX7"})
	}))

	cart := entity.NewCart()
	cart.AddItem(entity.Product{ID: "p1"}, 2)
	req := entity.NewOrderRequest(entity.UserIdentity{CURP: "C", Tenant: "T"}, cart)

	res, err := c.CreateOrder(context.Background(), "t", req)
	require.NoError(t, err)
	assert.Equal(t, int64(1042), res.OrderNumber)
	assert.Equal(t, "QX7", res.TakeAwayCode)
}
