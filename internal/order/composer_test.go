package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"dawakart/internal/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	return Draft{
		Items:         []CartLine{{ProductID: "p1", Quantity: 2, UnitPrice: 450}},
		AddressID:     "addr-1",
		PaymentMethod: MethodOnDelivery,
		ShippingCost:  350,
		Subtotal:      900,
		Total:         1250,
	}
}

func newComposer(t *testing.T, handler http.HandlerFunc) (*Composer, *int64) {
	t.Helper()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewComposer(backend.NewClient("store", srv.URL, "", srv.Client())), &calls
}

func TestSubmit_PreconditionsBlockWithoutNetwork(t *testing.T) {
	c, calls := newComposer(t, func(w http.ResponseWriter, r *http.Request) {})

	empty := validDraft()
	empty.Items = nil
	_, err := c.Submit(context.Background(), empty)
	assert.ErrorIs(t, err, ErrEmptyCart)

	noAddr := validDraft()
	noAddr.AddressID = ""
	_, err = c.Submit(context.Background(), noAddr)
	assert.ErrorIs(t, err, ErrMissingAddress)

	noPhone := validDraft()
	noPhone.PaymentMethod = MethodMobileMoney
	noPhone.ContactPhone = ""
	_, err = c.Submit(context.Background(), noPhone)
	assert.ErrorIs(t, err, ErrPhoneRequired)

	badPhone := validDraft()
	badPhone.PaymentMethod = MethodMobileMoney
	badPhone.ContactPhone = "12345"
	_, err = c.Submit(context.Background(), badPhone)
	assert.ErrorIs(t, err, ErrPhoneRequired)

	assert.EqualValues(t, 0, atomic.LoadInt64(calls), "no network call on precondition failure")
}

func TestSubmit_CanonicalizesContactPhone(t *testing.T) {
	var gotPhone string
	c, _ := newComposer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		readJSON(t, r, &body)
		gotPhone, _ = body["contactPhone"].(string)
		w.Write([]byte(`{"orderId":"ORD-1"}`))
	})

	draft := validDraft()
	draft.PaymentMethod = MethodMobileMoney
	draft.ContactPhone = "0712 345 678"

	ref, err := c.Submit(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", ref.ID)
	assert.Equal(t, "254712345678", gotPhone)
}

func TestSubmit_IDExtractionShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"top-level id", `{"id":"ORD-77"}`, "ORD-77"},
		{"orderId", `{"orderId":"ORD-78"}`, "ORD-78"},
		{"snake case", `{"order_id":"ORD-79"}`, "ORD-79"},
		{"nested order.id", `{"order":{"id":"ORD-80"}}`, "ORD-80"},
		{"data envelope", `{"data":{"orderId":"ORD-81"}}`, "ORD-81"},
		{"double nested", `{"data":{"order":{"id":"ORD-82"}}}`, "ORD-82"},
		{"numeric id", `{"success":true,"data":{"id":4521}}`, "4521"},
		{"deep scan by key", `{"meta":{"created":{"orderNumber":"8841"}}}`, "8841"},
		{"deep scan by value shape", `{"result":{"reference":"ORD-20240117-8841"}}`, "ORD-20240117-8841"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newComposer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			ref, err := c.Submit(context.Background(), validDraft())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref.ID)
			assert.False(t, ref.Synthesized)
		})
	}
}

func TestSubmit_SoftSuccessSynthesizesID(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
	}{
		{"success flag, no id", http.StatusOK, `{"success":true}`},
		{"created status, no id", http.StatusCreated, `{"note":"queued"}`},
		{"created status, empty body", http.StatusCreated, ``},
		{"status string", http.StatusOK, `{"status":"created"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newComposer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			c.now = func() time.Time { return time.UnixMilli(1700000000000) }

			ref, err := c.Submit(context.Background(), validDraft())
			require.NoError(t, err)
			assert.True(t, ref.Synthesized)
			assert.Equal(t, "ORD-1700000000000", ref.ID)
		})
	}
}

func TestSubmit_RejectionCarriesBackendMessage(t *testing.T) {
	c, _ := newComposer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"prescription required"}`))
	})

	_, err := c.Submit(context.Background(), validDraft())
	var rejected *BackendRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "prescription required", rejected.Message)
}

func TestSubmit_AmbiguousOKWithoutSignalIsRejected(t *testing.T) {
	c, _ := newComposer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"note":"received"}`)) // 200 but no flag, no id
	})

	_, err := c.Submit(context.Background(), validDraft())
	var rejected *BackendRejectedError
	assert.ErrorAs(t, err, &rejected)
}

func TestSubmit_ServerErrorIsTransientNotRejection(t *testing.T) {
	c, _ := newComposer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Submit(context.Background(), validDraft())
	require.Error(t, err)

	var rejected *BackendRejectedError
	assert.False(t, errors.As(err, &rejected), "an outage is not a decline")

	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

func TestSubmit_NetworkError(t *testing.T) {
	c := NewComposer(backend.NewClient("store", "http://127.0.0.1:1", "", nil))

	_, err := c.Submit(context.Background(), validDraft())
	require.Error(t, err)
	var rejected *BackendRejectedError
	assert.False(t, errors.As(err, &rejected), "transport errors are not rejections")
}

func readJSON(t *testing.T, r *http.Request, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r.Body).Decode(out))
}

func TestCartSubtotal(t *testing.T) {
	cart := Cart{Lines: []CartLine{
		{ProductID: "p1", Quantity: 2, UnitPrice: 450},
		{ProductID: "p2", Quantity: 1, UnitPrice: 1200},
	}}
	assert.Equal(t, 2100.0, cart.Subtotal())
	assert.False(t, cart.IsEmpty())
	assert.True(t, Cart{}.IsEmpty())
}
