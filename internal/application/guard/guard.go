// Package guard serializa las mutaciones por sesión y marca operaciones en curso.
package guard

import (
	"sync"

	"github.com/moby/locker"
)

// KeyedMutex un mutex por clave; moby/locker libera la entrada cuando nadie la usa.
type KeyedMutex struct {
	l *locker.Locker
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{l: locker.New()}
}

// Lock bloquea la clave y devuelve la función para liberarla.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.l.Lock(key)
	return func() {
		// solo falla si la clave no está tomada, y aquí siempre lo está
		_ = k.l.Unlock(key)
	}
}

// InFlight conjunto de claves con una operación en curso.
type InFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{keys: make(map[string]struct{})}
}

// TryAcquire marca la clave; false si ya estaba en curso.
func (f *InFlight) TryAcquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.keys[key]; busy {
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *InFlight) Release(key string) {
	f.mu.Lock()
	delete(f.keys, key)
	f.mu.Unlock()
}

func (f *InFlight) Busy(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.keys[key]
	return busy
}
