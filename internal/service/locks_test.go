package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCardLocks_ReleasesEntries(t *testing.T) {
	var l cardLocks
	a, b := uuid.New(), uuid.New()

	unlockA := l.lock(a)
	unlockB := l.lock(b)
	assert.Equal(t, 2, l.held())

	unlockA()
	unlockB()
	assert.Equal(t, 0, l.held())
}

func TestCardLocks_SerializesSameCard(t *testing.T) {
	var (
		l       cardLocks
		id      = uuid.New()
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock(id)
			defer unlock()

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, l.held())
}
