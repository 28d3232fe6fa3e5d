// Package storage persiste sesión, carrito y comprobantes como JSON sobre cualquier KVStore.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/internal/domain/entity"
	"github.com/jhoicas/mesa-api/internal/domain/repository"
)

// Espacios de nombres de los registros persistidos.
const (
	AuthNamespace    = "auth-storage"
	CartNamespace    = "cart-storage"
	ReceiptNamespace = "receipt-storage"
)

func AuthKey(sessionID string) string { return AuthNamespace + ":" + sessionID }
func CartKey(sessionID string) string { return CartNamespace + ":" + sessionID }
func ReceiptKey(sessionID string, orderNumber int64) string {
	return fmt.Sprintf("%s:%s:%d", ReceiptNamespace, sessionID, orderNumber)
}

var (
	_ repository.SessionRepository = (*SessionRepo)(nil)
	_ repository.CartRepository    = (*CartRepo)(nil)
	_ repository.ReceiptRepository = (*ReceiptRepo)(nil)
)

func load(ctx context.Context, kv repository.KVStore, key string, dst any) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decodificar %s: %w", key, err)
	}
	return nil
}

func save(ctx context.Context, kv repository.KVStore, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("serializar %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw, ttl)
}

// SessionRepo registro auth-storage.
type SessionRepo struct {
	kv  repository.KVStore
	ttl time.Duration
}

func NewSessionRepository(kv repository.KVStore, ttl time.Duration) *SessionRepo {
	return &SessionRepo{kv: kv, ttl: ttl}
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*entity.Session, error) {
	var s entity.Session
	if err := load(ctx, r.kv, AuthKey(sessionID), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) Save(ctx context.Context, s *entity.Session) error {
	if s.ID == "" {
		return fmt.Errorf("%w: sesión sin id", domain.ErrInvalidInput)
	}
	return save(ctx, r.kv, AuthKey(s.ID), s, r.ttl)
}

func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	return r.kv.Delete(ctx, AuthKey(sessionID))
}

// CartRepo registro cart-storage. Sin registro guardado devuelve un carrito vacío.
type CartRepo struct {
	kv  repository.KVStore
	ttl time.Duration
}

func NewCartRepository(kv repository.KVStore, ttl time.Duration) *CartRepo {
	return &CartRepo{kv: kv, ttl: ttl}
}

func (r *CartRepo) Get(ctx context.Context, sessionID string) (*entity.Cart, error) {
	c := entity.NewCart()
	err := load(ctx, r.kv, CartKey(sessionID), c)
	if errors.Is(err, domain.ErrNotFound) {
		return entity.NewCart(), nil
	}
	if err != nil {
		return nil, err
	}
	if c.PaymentMethod == "" {
		c.PaymentMethod = entity.PaymentCredit
	}
	return c, nil
}

func (r *CartRepo) Save(ctx context.Context, sessionID string, c *entity.Cart) error {
	return save(ctx, r.kv, CartKey(sessionID), c, r.ttl)
}

func (r *CartRepo) Delete(ctx context.Context, sessionID string) error {
	return r.kv.Delete(ctx, CartKey(sessionID))
}

// ReceiptRepo registro receipt-storage por orden.
type ReceiptRepo struct {
	kv  repository.KVStore
	ttl time.Duration
}

func NewReceiptRepository(kv repository.KVStore, ttl time.Duration) *ReceiptRepo {
	return &ReceiptRepo{kv: kv, ttl: ttl}
}

func (r *ReceiptRepo) Save(ctx context.Context, rc *entity.Receipt) error {
	return save(ctx, r.kv, ReceiptKey(rc.SessionID, rc.OrderNumber), rc, r.ttl)
}

func (r *ReceiptRepo) Get(ctx context.Context, sessionID string, orderNumber int64) (*entity.Receipt, error) {
	var rc entity.Receipt
	if err := load(ctx, r.kv, ReceiptKey(sessionID, orderNumber), &rc); err != nil {
		return nil, err
	}
	return &rc, nil
}
