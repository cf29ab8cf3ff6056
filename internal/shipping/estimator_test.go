package shipping

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dawakart/internal/address"
	"dawakart/internal/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func karenAddress() address.Address {
	return address.Address{ID: "addr-1", Area: "Karen", City: "Nairobi"}
}

func TestEstimate_MissingAddressID(t *testing.T) {
	e := NewEstimator(backend.NewClient("store", "http://localhost", "", nil))

	_, err := e.Estimate(context.Background(), address.Address{}, 1000, "")
	assert.ErrorIs(t, err, ErrMissingAddress)
}

func TestEstimate_RemotePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "addr-1", r.URL.Query().Get("addressId"))
		w.Write([]byte(`[
			{"id":"std","name":"Standard","cost":300,"eta":"1-2 days","minFreeThreshold":5000,"available":false},
			{"id":"exp","name":"Express","cost":500,"eta":"Today","minFreeThreshold":5000,"available":true}
		]`))
	}))
	defer srv.Close()

	e := NewEstimator(backend.NewClient("store", srv.URL, "", srv.Client()))

	quote, err := e.Estimate(context.Background(), karenAddress(), 1000, "")
	require.NoError(t, err)
	assert.Equal(t, SourceRemote, quote.Source)
	assert.Equal(t, "exp", quote.SelectedID, "first available option selected")
	assert.Equal(t, 500.0, quote.Cost)
	assert.False(t, quote.IsFree)
}

func TestEstimate_RemoteKeepsPreferredSelection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":"std","name":"Standard","cost":300,"eta":"1-2 days","minFreeThreshold":5000,"available":true},
			{"id":"exp","name":"Express","cost":500,"eta":"Today","minFreeThreshold":5000,"available":true}
		]`))
	}))
	defer srv.Close()

	e := NewEstimator(backend.NewClient("store", srv.URL, "", srv.Client()))

	quote, err := e.Estimate(context.Background(), karenAddress(), 1000, "exp")
	require.NoError(t, err)
	assert.Equal(t, "exp", quote.SelectedID)
}

func TestEstimate_FallbackOnRemoteFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}},
		{"empty option set", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			e := NewEstimator(backend.NewClient("store", srv.URL, "", srv.Client()))

			quote, err := e.Estimate(context.Background(), karenAddress(), 1000, "")
			require.NoError(t, err, "remote failures never escape")
			assert.Equal(t, SourceFallback, quote.Source)
			assert.Equal(t, 350.0, quote.Cost, "Karen is outer Nairobi")
		})
	}
}

func TestEstimate_FallbackDeterministic(t *testing.T) {
	e := NewEstimator(backend.NewClient("store", "http://127.0.0.1:1", "", nil))
	addr := address.Address{ID: "addr-2", Area: "Industrial Area", City: "Nairobi"}

	first, err := e.Estimate(context.Background(), addr, 500, "")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := e.Estimate(context.Background(), addr, 500, "")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	assert.Equal(t, SourceFallback, first.Source)
	assert.Equal(t, 400.0, first.Cost, "unmatched area uses default zone")
}

func TestEstimate_FreeShippingBoundary(t *testing.T) {
	e := NewEstimator(backend.NewClient("store", "http://127.0.0.1:1", "", nil))
	addr := karenAddress() // outer zone, threshold 3500

	below, err := e.Estimate(context.Background(), addr, 3499.99, "")
	require.NoError(t, err)
	assert.False(t, below.IsFree)
	assert.Equal(t, 350.0, below.Cost)

	at, err := e.Estimate(context.Background(), addr, 3500, "")
	require.NoError(t, err)
	assert.True(t, at.IsFree)
	assert.Equal(t, 0.0, at.Cost)

	above, err := e.Estimate(context.Background(), addr, 4000, "")
	require.NoError(t, err)
	assert.True(t, above.IsFree)
	assert.Equal(t, 0.0, above.Cost)
}

func TestZoneFor(t *testing.T) {
	tests := []struct {
		area string
		city string
		want string
	}{
		{"CBD", "Nairobi", "CBD"},
		{"Upper Hill", "Nairobi", "CBD"},
		{"upper hill towers", "", "CBD"},
		{"Westlands", "Nairobi", "Inner Nairobi"},
		{"Karen", "Nairobi", "Outer Nairobi"},
		{"Industrial Area", "Nairobi", "Standard"},
		{"", "", "Standard"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, zoneFor(tt.area, tt.city).Name, "area %q", tt.area)
	}
}
