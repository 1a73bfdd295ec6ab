package bot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDialogProgression(t *testing.T) {
	s := NewStore()

	_, ok := s.Get(1)
	assert.False(t, ok)

	s.Begin(1)
	req, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, StateVisaType, req.State)

	updated := s.Update(1, func(r *Request) {
		r.VisaType = "Шенген виза"
		r.State = StateCity
	})
	assert.True(t, updated)

	req, _ = s.Get(1)
	assert.Equal(t, "Шенген виза", req.VisaType)
	assert.Equal(t, StateCity, req.State)
}

func TestStoreUpdateMissingUser(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Update(99, func(r *Request) { r.City = "Минск" }))
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Begin(1)

	req, _ := s.Get(1)
	req.City = "Брест"

	again, _ := s.Get(1)
	assert.Empty(t, again.City, "mutating the returned copy must not leak into the store")
}

func TestStoreDrop(t *testing.T) {
	s := NewStore()
	s.Begin(1)
	s.Drop(1)
	_, ok := s.Get(1)
	assert.False(t, ok)

	s.Drop(2)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.Begin(id)
			s.Update(id, func(r *Request) { r.State = StateReady })
			s.Get(id)
		}(int64(i))
	}
	wg.Wait()

	req, ok := s.Get(7)
	require.True(t, ok)
	assert.Equal(t, StateReady, req.State)
}
