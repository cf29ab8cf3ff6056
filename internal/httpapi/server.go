// Package httpapi exposes the checkout controller's operations as a
// small JSON surface for the storefront UI.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"dawakart/internal/address"
	"dawakart/internal/backend"
	"dawakart/internal/checkout"
	"dawakart/internal/order"
	"dawakart/internal/payment"
	"dawakart/internal/phone"
	"dawakart/internal/shipping"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Server struct {
	deps checkout.Deps

	mu        sync.Mutex
	checkouts map[string]*checkout.Controller
}

func NewServer(deps checkout.Deps) *Server {
	return &Server{deps: deps, checkouts: make(map[string]*checkout.Controller)}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger)

	r.Post("/checkout", s.createCheckout)
	r.Route("/checkout/{checkoutID}", func(r chi.Router) {
		r.Get("/", s.getState)
		r.Post("/address", s.selectAddress)
		r.Post("/shipping", s.selectShipping)
		r.Post("/payment-method", s.choosePaymentMethod)
		r.Post("/phone", s.providePhone)
		r.Post("/instructions", s.setInstructions)
		r.Post("/cart/refresh", s.refreshCart)
		r.Delete("/payment", s.cancelPayment)

		r.Group(func(r chi.Router) {
			r.Use(StrictRateLimit)
			r.Post("/submit", s.submitOrder)
			r.Post("/payment/retry", s.retryPayment)
		})
	})
	return r
}

// ----------------- handlers -----------------

func (s *Server) createCheckout(w http.ResponseWriter, r *http.Request) {
	var req createCheckoutRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	c := checkout.NewController(uuid.NewString(), s.deps)
	if len(req.Items) > 0 {
		c.SetCart(order.Cart{Lines: req.Items})
	} else if err := c.RefreshCart(r.Context()); err != nil {
		writeError(w, "could not load cart", http.StatusBadGateway)
		return
	}

	s.mu.Lock()
	s.checkouts[c.ID()] = c
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, toSnapshotDTO(c.Snapshot()))
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(r)
	if !ok {
		writeError(w, "checkout not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(c.Snapshot()))
}

func (s *Server) selectAddress(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(r)
	if !ok {
		writeError(w, "checkout not found", http.StatusNotFound)
		return
	}

	var req selectAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, "address id is required", http.StatusBadRequest)
		return
	}

	_, err := c.SelectAddress(r.Context(), address.Address{
		ID:     req.ID,
		Street: req.Street,
		City:   req.City,
		Area:   req.Area,
		Zip:    req.Zip,
		Phone:  req.Phone,
	})
	if err != nil {
		s.writeDomainError(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(c.Snapshot()))
}

func (s *Server) selectShipping(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(r)
	if !ok {
		writeError(w, "checkout not found", http.StatusNotFound)
		return
	}

	var req selectShippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OptionID == "" {
		writeError(w, "option id is required", http.StatusBadRequest)
		return
	}

	if err := c.SelectShipping(r.Context(), req.OptionID); err != nil {
		s.writeDomainError(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(c.Snapshot()))
}

func (s *Server) choosePaymentMethod(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(r)
	if !ok {
		writeError(w, "checkout not found", http.StatusNotFound)
		return
	}

	var req paymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.ChoosePaymentMethod(r.Context(), order.PaymentMethod(req.Method)); err != nil {
		s.writeDomainError(w, c, err)
		return
	}
	// phone_required comes back as a state, not an error.
	writeJSON(w, http.StatusOK, toSnapshotDTO(c.Snapshot()))
}

func (s *Server) providePhone(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(r)
	if !ok {
		writeError(w, "checkout not found", http.StatusNotFound)
		return
	}

	var req providePhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.ProvidePhone(r.Context(), req.Phone); err != nil {
		s.writeDomainError(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(c.Snapshot()))
}

func (s *Server) setInstructions(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(r)
	if !ok {
		writeError(w, "checkout not found", http.StatusNotFound)
		return
	}

	var req instructionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	c.SetInstructions(req.Instructions)
	writeJSON(w, http.StatusOK, toSnapshotDTO(c.Snapshot()))
}

func (s *Server) refreshCart(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(r)
	if !ok {
		writeError(w, "checkout not found", http.StatusNotFound)
		return
	}

	if err := c.RefreshCart(r.Context()); err != nil {
		s.writeDomainError(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(c.Snapshot()))
}

func (s *Server) submitOrder(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(r)
	if !ok {
		writeError(w, "checkout not found", http.StatusNotFound)
		return
	}

	if err := c.SubmitOrder(r.Context()); err != nil {
		s.writeDomainError(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(c.Snapshot()))
}

func (s *Server) retryPayment(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(r)
	if !ok {
		writeError(w, "checkout not found", http.StatusNotFound)
		return
	}

	if err := c.RetryPayment(r.Context()); err != nil {
		s.writeDomainError(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(c.Snapshot()))
}

func (s *Server) cancelPayment(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookup(r)
	if !ok {
		writeError(w, "checkout not found", http.StatusNotFound)
		return
	}

	if err := c.CancelPayment(r.Context()); err != nil {
		s.writeDomainError(w, c, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(c.Snapshot()))
}

// ----------------- helpers -----------------

func (s *Server) lookup(r *http.Request) (*checkout.Controller, bool) {
	id := chi.URLParam(r, "checkoutID")
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checkouts[id]
	return c, ok
}

// writeDomainError maps domain errors onto the wire. Phone-required is
// deliberately a 200: it is a prompt for the user, not a failure.
// Backend 5xx surfaces as 503 so clients know to retry; 422 is reserved
// for definitive rejections.
func (s *Server) writeDomainError(w http.ResponseWriter, c *checkout.Controller, err error) {
	var rejected *order.BackendRejectedError
	var upstream *backend.APIError

	switch {
	case errors.Is(err, order.ErrPhoneRequired):
		writeJSON(w, http.StatusOK, toSnapshotDTO(c.Snapshot()))
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrMissingAddress),
		errors.Is(err, phone.ErrInvalidPhone),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, checkout.ErrUnknownPaymentMethod),
		errors.Is(err, shipping.ErrMissingAddress):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, checkout.ErrStaleShippingOption),
		errors.Is(err, checkout.ErrNoShippingOptions),
		errors.Is(err, checkout.ErrPaymentInProgress),
		errors.Is(err, checkout.ErrAlreadyComplete),
		errors.Is(err, checkout.ErrNoPaymentSession),
		errors.Is(err, payment.ErrNotRetryable):
		writeError(w, err.Error(), http.StatusConflict)
	case errors.As(err, &rejected):
		writeError(w, rejected.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &upstream) && upstream.Status >= 500:
		writeError(w, "backend temporarily unavailable, retry shortly", http.StatusServiceUnavailable)
	default:
		writeError(w, "upstream request failed", http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
