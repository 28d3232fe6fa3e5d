// Package backend cliente HTTP de la API del restaurante, protegido por un circuit breaker.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/jhoicas/mesa-api/internal/application/ports"
	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/internal/domain/entity"
	"github.com/jhoicas/mesa-api/pkg/config"
)

var _ ports.RestaurantBackend = (*Client)(nil)

const (
	pathValidateJWT      = "/api/auth/validate-jwt/"
	pathUnpaidOrders     = "/api/orders/unpaid/"
	pathProducts         = "/api/products/"
	pathOffers           = "/api/offers/"
	pathMenuCategories   = "/api/menu-categories/"
	pathCallWaiter       = "/api/tables/call-waiter/"
	pathCancelWaiterCall = "/api/tables/cancel-waiter-call/"
	pathOrders           = "/api/orders/"

	maxBodyBytes = 1 << 20
)

// StatusError respuesta HTTP no exitosa del backend.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s %s: HTTP %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Is: 4xx es un rechazo; 5xx se trata como falla de transporte.
func (e *StatusError) Is(target error) bool {
	if e.Code >= 500 {
		return target == domain.ErrTransport
	}
	return target == domain.ErrBackendRejected
}

// Client adaptador net/http de RestaurantBackend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]byte]
	log        zerolog.Logger
}

// Option configura el Client.
type Option func(*Client)

// WithHTTPClient reemplaza el http.Client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient construye el cliente a partir de la configuración.
func NewClient(cfg config.BackendConfig, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
	failures := uint32(max(cfg.BreakerFailures, 1))
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "restaurant-backend",
		MaxRequests: uint32(max(cfg.BreakerHalfOpenN, 1)),
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cambio de estado del circuit breaker")
		},
		IsSuccessful: func(err error) bool {
			// un rechazo del backend no indica que esté caído
			return err == nil || errors.Is(err, domain.ErrBackendRejected)
		},
	})
	for _, o := range opts {
		o(c)
	}
	return c
}

// BreakerState estado actual del circuit breaker (para /health).
func (c *Client) BreakerState() string {
	return c.cb.State().String()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("backend: serializar request: %w", err)
		}
		body = b
	}

	raw, err := c.cb.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, query, token, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrTransport, method, path, err)
	}
	return raw, err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, token string, body []byte) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("backend: crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: timeout o cancelación: %v", domain.ErrTransport, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta: %v", domain.ErrTransport, err)
	}
	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).Msg("backend")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: truncate(string(raw), 200)}
	}
	return raw, nil
}

func decode[T any](raw []byte, path string) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: respuesta inválida de %s: %v", domain.ErrTransport, path, err)
	}
	return v, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// ── Endpoints ────────────────────────────────────────────────────────────────

func (c *Client) ValidateSession(ctx context.Context, token string) (bool, error) {
	raw, err := c.do(ctx, http.MethodPost, pathValidateJWT, nil, token, map[string]string{})
	if err != nil {
		return false, err
	}
	res, err := decode[struct {
		Valid bool `json:"valid"`
	}](raw, pathValidateJWT)
	if err != nil {
		return false, err
	}
	return res.Valid, nil
}

func (c *Client) UnpaidOrders(ctx context.Context, token, curp string) (*entity.UnpaidOrders, error) {
	raw, err := c.do(ctx, http.MethodGet, pathUnpaidOrders, url.Values{"curp": {curp}}, token, nil)
	if err != nil {
		return nil, err
	}
	res, err := decode[entity.UnpaidOrders](raw, pathUnpaidOrders)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Products(ctx context.Context, token string) ([]entity.Product, error) {
	raw, err := c.do(ctx, http.MethodGet, pathProducts, nil, token, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]entity.Product](raw, pathProducts)
}

func (c *Client) Offers(ctx context.Context, token string) ([]entity.Offer, error) {
	raw, err := c.do(ctx, http.MethodGet, pathOffers, nil, token, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]entity.Offer](raw, pathOffers)
}

func (c *Client) MenuCategories(ctx context.Context, token string) ([]entity.MenuCategory, error) {
	raw, err := c.do(ctx, http.MethodGet, pathMenuCategories, nil, token, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]entity.MenuCategory](raw, pathMenuCategories)
}

type waiterRequest struct {
	UserCURP string `json:"user_curp"`
}

func (c *Client) CallWaiter(ctx context.Context, token, curp string) (*entity.WaiterCall, error) {
	return c.waiter(ctx, pathCallWaiter, token, curp)
}

func (c *Client) CancelWaiterCall(ctx context.Context, token, curp string) (*entity.WaiterCall, error) {
	return c.waiter(ctx, pathCancelWaiterCall, token, curp)
}

func (c *Client) waiter(ctx context.Context, path, token, curp string) (*entity.WaiterCall, error) {
	raw, err := c.do(ctx, http.MethodPost, path, nil, token, waiterRequest{UserCURP: curp})
	if err != nil {
		return nil, err
	}
	res, err := decode[entity.WaiterCall](raw, path)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateOrder(ctx context.Context, token string, req entity.OrderRequest) (*entity.OrderResult, error) {
	raw, err := c.do(ctx, http.MethodPost, pathOrders, nil, token, req)
	if err != nil {
		return nil, err
	}
	res, err := decode[entity.OrderResult](raw, pathOrders)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
