package repository

import (
	"context"

	"github.com/jhoicas/mesa-api/internal/domain/entity"
)

// SessionRepository persistencia del estado de autenticación (registro auth-storage).
type SessionRepository interface {
	// Get devuelve domain.ErrNotFound si la sesión no existe.
	Get(ctx context.Context, sessionID string) (*entity.Session, error)
	Save(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, sessionID string) error
}

// CartRepository persistencia del carrito (registro cart-storage), independiente de la sesión.
type CartRepository interface {
	// Get devuelve un carrito vacío si no hay nada guardado.
	Get(ctx context.Context, sessionID string) (*entity.Cart, error)
	Save(ctx context.Context, sessionID string, cart *entity.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// ReceiptRepository comprobantes de órdenes confirmadas.
type ReceiptRepository interface {
	Save(ctx context.Context, receipt *entity.Receipt) error
	// Get devuelve domain.ErrNotFound si no hay comprobante para esa orden.
	Get(ctx context.Context, sessionID string, orderNumber int64) (*entity.Receipt, error)
}
