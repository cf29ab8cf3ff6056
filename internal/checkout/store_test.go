package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "co-1")
	assert.ErrorIs(t, err, ErrResumeNotFound)

	require.NoError(t, s.Set(ctx, "co-1", &ResumeState{AddressID: "addr-1", Phone: "254712345678"}))

	got, err := s.Get(ctx, "co-1")
	require.NoError(t, err)
	assert.Equal(t, "addr-1", got.AddressID)
	assert.Equal(t, "254712345678", got.Phone)

	require.NoError(t, s.Delete(ctx, "co-1"))
	_, err = s.Get(ctx, "co-1")
	assert.ErrorIs(t, err, ErrResumeNotFound)
}

func TestMemoryStore_CopiesOnRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "co-1", &ResumeState{AddressID: "addr-1"}))

	got, _ := s.Get(ctx, "co-1")
	got.AddressID = "mutated"

	again, _ := s.Get(ctx, "co-1")
	assert.Equal(t, "addr-1", again.AddressID)
}
