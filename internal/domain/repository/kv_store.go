package repository

import (
	"context"
	"time"
)

// KVStore puerto de almacenamiento clave/valor donde se persisten sesión, carrito y comprobantes.
// Get devuelve domain.ErrNotFound si la clave no existe o expiró. ttl <= 0 significa sin expiración.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
