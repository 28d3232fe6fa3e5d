// Package memory implementa el almacenamiento clave/valor en memoria del proceso.
// Se usa en desarrollo y en los tests de servicios y handlers.
package memory

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/internal/domain/repository"
)

var _ repository.KVStore = (*KVStore)(nil)

// KVStore caché con TTL por clave (ttlcache); las expiradas se purgan en segundo plano.
type KVStore struct {
	cache *ttlcache.Cache[string, []byte]
}

// NewKVStore crea un store vacío y arranca la purga de expiradas. Close la detiene.
func NewKVStore() *KVStore {
	cache := ttlcache.New[string, []byte](
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go cache.Start()
	return &KVStore{cache: cache}
}

// Get devuelve una copia del valor; una clave expirada es domain.ErrNotFound.
func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	it := s.cache.Get(key)
	if it == nil {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), it.Value()...), nil
}

// Set guarda una copia del valor; ttl <= 0 no expira.
func (s *KVStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	s.cache.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Delete es idempotente.
func (s *KVStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Len cantidad de claves vigentes.
func (s *KVStore) Len() int {
	return s.cache.Len()
}

// Close detiene la purga en segundo plano.
func (s *KVStore) Close() {
	s.cache.Stop()
}
