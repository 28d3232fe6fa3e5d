package ports

import (
	"context"

	"github.com/jhoicas/mesa-api/internal/domain/entity"
)

// RestaurantBackend puerto de salida hacia la API del restaurante.
// token es siempre el token interno de la sesión; se envía como Bearer.
// Errores: domain.ErrBackendRejected si el backend responde pero rechaza,
// domain.ErrTransport si no hubo respuesta utilizable.
type RestaurantBackend interface {
	// ValidateSession confirma el token interno; false sin error = rechazo explícito.
	ValidateSession(ctx context.Context, token string) (bool, error)
	UnpaidOrders(ctx context.Context, token, curp string) (*entity.UnpaidOrders, error)
	Products(ctx context.Context, token string) ([]entity.Product, error)
	Offers(ctx context.Context, token string) ([]entity.Offer, error)
	MenuCategories(ctx context.Context, token string) ([]entity.MenuCategory, error)
	CallWaiter(ctx context.Context, token, curp string) (*entity.WaiterCall, error)
	CancelWaiterCall(ctx context.Context, token, curp string) (*entity.WaiterCall, error)
	CreateOrder(ctx context.Context, token string, req entity.OrderRequest) (*entity.OrderResult, error)
}
