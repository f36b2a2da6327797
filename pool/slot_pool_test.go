package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	name string
	n    int
}

func TestSlotPool_AcquireRelease(t *testing.T) {
	p := NewSlotPool[payload]()
	s, gen := p.Acquire()
	s.Value = payload{name: "x", n: 1}
	assert.Equal(t, int64(1), p.Stats().InUse)

	require.True(t, p.Release(s, gen))
	assert.Equal(t, payload{}, s.Value, "released slot is zeroed")
	assert.Equal(t, gen+1, s.Generation())

	stats := p.Stats()
	assert.Equal(t, uint64(1), stats.Acquired)
	assert.Equal(t, uint64(1), stats.Released)
	assert.Equal(t, int64(0), stats.InUse)
}

func TestSlotPool_StaleReleaseRefused(t *testing.T) {
	p := NewSlotPool[payload]()
	s, gen := p.Acquire()
	require.True(t, p.Release(s, gen))
	assert.False(t, p.Release(s, gen))
	assert.Equal(t, uint64(1), p.Stats().Released)
}

func TestSlotPool_Concurrent(t *testing.T) {
	p := NewSlotPool[payload]()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				s, gen := p.Acquire()
				s.Value.n = j
				if !p.Release(s, gen) {
					t.Error("fresh acquisition must release")
					return
				}
			}
		}()
	}
	wg.Wait()
	stats := p.Stats()
	assert.Equal(t, uint64(8000), stats.Acquired)
	assert.Equal(t, int64(0), stats.InUse)
}
