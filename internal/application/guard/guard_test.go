package guard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializaPorClave(t *testing.T) {
	k := NewKeyedMutex()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("s1")
			defer unlock()
			c := counter
			c++
			counter = c
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)

	// liberada, la clave se puede volver a tomar
	unlock := k.Lock("s1")
	unlock()
}

func TestKeyedMutex_ClavesIndependientes(t *testing.T) {
	k := NewKeyedMutex()
	unlockA := k.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := k.Lock("b")
		unlock()
		close(done)
	}()
	<-done
}

func TestInFlight(t *testing.T) {
	f := NewInFlight()
	assert.True(t, f.TryAcquire("s1"))
	assert.False(t, f.TryAcquire("s1"))
	assert.True(t, f.Busy("s1"))
	assert.True(t, f.TryAcquire("s2"))

	f.Release("s1")
	assert.False(t, f.Busy("s1"))
	assert.True(t, f.TryAcquire("s1"))
}
