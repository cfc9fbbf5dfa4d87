package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRing_RoundsToPowerOfTwo(t *testing.T) {
	tests := []struct {
		requested int
		expected  int
	}{
		{0, 2},
		{1, 2},
		{3, 4},
		{64, 64},
		{100, 128},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NewRing[int](tt.requested).Capacity(), "requested %d", tt.requested)
	}
}

func TestRing_FIFO(t *testing.T) {
	r := NewRing[int](8)
	for i := range 5 {
		require.True(t, r.Push(i))
	}
	assert.Equal(t, 5, r.Available())

	for i := range 5 {
		v, ok := r.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := r.Pop()
	assert.False(t, ok)
}

func TestRing_DropsWhenFull(t *testing.T) {
	r := NewRing[int](4)
	for i := range 4 {
		require.True(t, r.Push(i))
	}
	assert.False(t, r.Push(99))
	assert.Equal(t, uint64(1), r.Dropped())

	// The rejected item must not overwrite queued ones.
	var got []int
	r.Drain(func(v int) { got = append(got, v) })
	assert.Equal(t, []int{0, 1, 2, 3}, got)
}

func TestRing_Wraparound(t *testing.T) {
	r := NewRing[int](4)
	next := 0
	for round := range 10 {
		for range 3 {
			require.True(t, r.Push(next))
			next++
		}
		for i := range 3 {
			v, ok := r.Pop()
			require.True(t, ok)
			assert.Equal(t, round*3+i, v)
		}
	}
}

func TestRing_NoAllocation(t *testing.T) {
	type event struct {
		amp  float64
		x, y int
	}
	r := NewRing[event](16)
	allocs := testing.AllocsPerRun(100, func() {
		r.Push(event{amp: 0.9, x: 3, y: 4})
		r.Pop()
	})
	assert.Zero(t, allocs)
}

// TestRing_ConcurrentProducerConsumer checks ordering with one writer and one reader.
func TestRing_ConcurrentProducerConsumer(t *testing.T) {
	const total = 100000
	r := NewRing[int](64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if r.Push(i) {
				i++
			}
		}
	}()

	expected := 0
	for expected < total {
		if v, ok := r.Pop(); ok {
			if v != expected {
				t.Fatalf("out of order: got %d, want %d", v, expected)
			}
			expected++
		}
	}
	wg.Wait()
	// Failed pushes are retried by the producer above, so drops are counted
	// but nothing is lost.
	assert.Equal(t, 0, r.Available())
}
