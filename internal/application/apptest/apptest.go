// Package apptest dobles de prueba compartidos por los tests de la capa de aplicación y HTTP.
package apptest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/mesa-api/internal/application/ports"
	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/internal/domain/entity"
)

var _ ports.RestaurantBackend = (*FakeBackend)(nil)

// Claims devuelve un juego completo y válido de claims del proveedor.
func Claims() map[string]any {
	return map[string]any{
		"first_name":            "Ana",
		"last_name":             "López",
		"curp":                  "LOPA800101MDFXXX01",
		"contractor":            "ctr-1",
		"email":                 "ana@example.com",
		"company":               "ACME",
		"max_credit_line":       1000,
		"remaining_credit_line": 200,
		"ademozo_tenant_name":   "Comedor Norte",
		"ademozo_tenant":        "tenant-7",
	}
}

// ExternalToken arma un token de tres segmentos con los claims dados (firma sin verificar).
func ExternalToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." + enc.EncodeToString(payload) + ".sig"
}

// ValidToken token con claims completos y exp dentro de una hora.
func ValidToken(t *testing.T) string {
	c := Claims()
	c["exp"] = time.Now().Add(time.Hour).Unix()
	return ExternalToken(t, c)
}

// FakeBackend backend en memoria configurable por test.
type FakeBackend struct {
	mu sync.Mutex

	Valid       bool
	ValidateErr error

	// ValidateGate si no es nil, ValidateSession espera a que se cierre.
	ValidateGate chan struct{}

	Catalog    []entity.Product
	OfferList  []entity.Offer
	Categories []entity.MenuCategory
	Unpaid     *entity.UnpaidOrders
	CatalogErr error
	OrderErr   error
	OrderGate  chan struct{}
	NextOrder  int64
	WaiterErr  error
	Calling    bool
	LastOrder  *entity.OrderRequest
	LastToken  string

	ValidateCalls atomic.Int32
	OrderCalls    atomic.Int32
}

// NewFakeBackend backend que valida y con un catálogo mínimo.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		Valid: true,
		Catalog: []entity.Product{
			{ID: "p1", Name: "Taco", Price: decimal.RequireFromString("10.00"), Stock: 5},
			{ID: "p2", Name: "Agua", Price: decimal.RequireFromString("25.00"), Stock: 100},
		},
		OfferList: []entity.Offer{
			{ID: "o1", Name: "Combo", Price: decimal.RequireFromString("15.00")},
		},
		Categories: []entity.MenuCategory{{ID: "c1", Name: "Comida", Tenant: "tenant-7"}},
		NextOrder:  1000,
	}
}

func (f *FakeBackend) ValidateSession(ctx context.Context, token string) (bool, error) {
	f.ValidateCalls.Add(1)
	if f.ValidateGate != nil {
		select {
		case <-f.ValidateGate:
		case <-ctx.Done():
			return false, domain.ErrTransport
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastToken = token
	return f.Valid, f.ValidateErr
}

func (f *FakeBackend) UnpaidOrders(_ context.Context, _ string, curp string) (*entity.UnpaidOrders, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CatalogErr != nil {
		return nil, f.CatalogErr
	}
	if f.Unpaid != nil {
		return f.Unpaid, nil
	}
	return &entity.UnpaidOrders{UserCURP: curp, Orders: []entity.Order{}}, nil
}

func (f *FakeBackend) Products(context.Context, string) ([]entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Catalog, f.CatalogErr
}

func (f *FakeBackend) Offers(context.Context, string) ([]entity.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.OfferList, f.CatalogErr
}

func (f *FakeBackend) MenuCategories(context.Context, string) ([]entity.MenuCategory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Categories, f.CatalogErr
}

func (f *FakeBackend) CallWaiter(context.Context, string, string) (*entity.WaiterCall, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WaiterErr != nil {
		return nil, f.WaiterErr
	}
	f.Calling = true
	return &entity.WaiterCall{Calling: true}, nil
}

func (f *FakeBackend) CancelWaiterCall(context.Context, string, string) (*entity.WaiterCall, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WaiterErr != nil {
		return nil, f.WaiterErr
	}
	f.Calling = false
	return &entity.WaiterCall{Calling: false}, nil
}

func (f *FakeBackend) CreateOrder(ctx context.Context, _ string, req entity.OrderRequest) (*entity.OrderResult, error) {
	f.OrderCalls.Add(1)
	if f.OrderGate != nil {
		select {
		case <-f.OrderGate:
		case <-ctx.Done():
			return nil, domain.ErrTransport
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.OrderErr != nil {
		return nil, f.OrderErr
	}
	f.LastOrder = &req
	f.NextOrder++
	return &entity.OrderResult{OrderNumber: f.NextOrder, TakeAwayCode: "QX7"}, nil
}
