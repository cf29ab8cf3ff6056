package httpapi

import (
	"dawakart/internal/checkout"
	"dawakart/internal/order"
	"dawakart/internal/shipping"
)

type createCheckoutRequest struct {
	Items []order.CartLine `json:"items,omitempty"`
}

type selectAddressRequest struct {
	ID     string `json:"id"`
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	Area   string `json:"area,omitempty"`
	Zip    string `json:"zipCode,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

type selectShippingRequest struct {
	OptionID string `json:"optionId"`
}

type paymentMethodRequest struct {
	Method string `json:"method"`
}

type providePhoneRequest struct {
	Phone string `json:"phone"`
}

type instructionsRequest struct {
	Instructions string `json:"instructions"`
}

type shippingOptionDTO struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Cost             float64 `json:"cost"`
	ETA              string  `json:"eta"`
	MinFreeThreshold float64 `json:"minFreeThreshold"`
	Available        bool    `json:"available"`
}

type quoteDTO struct {
	Options    []shippingOptionDTO `json:"options"`
	SelectedID string              `json:"selectedId"`
	Cost       float64             `json:"cost"`
	IsFree     bool                `json:"isFree"`
	Source     string              `json:"source"`
}

type snapshotDTO struct {
	CheckoutID      string           `json:"checkoutId"`
	State           string           `json:"state"`
	Items           []order.CartLine `json:"items"`
	Subtotal        float64          `json:"subtotal"`
	AddressID       string           `json:"addressId,omitempty"`
	ResumeAddressID string           `json:"resumeAddressId,omitempty"`
	PaymentMethod   string           `json:"paymentMethod,omitempty"`
	Quote           *quoteDTO        `json:"shipping,omitempty"`
	OrderID         string           `json:"orderId,omitempty"`
	OrderUnverified bool             `json:"orderUnverified,omitempty"`
	PaymentStatus   string           `json:"paymentStatus,omitempty"`
	PaymentMessage  string           `json:"paymentMessage,omitempty"`
	PaymentAttempts int              `json:"paymentAttempts,omitempty"`
}

func toSnapshotDTO(s checkout.Snapshot) snapshotDTO {
	dto := snapshotDTO{
		CheckoutID:      s.CheckoutID,
		State:           string(s.State),
		Items:           s.Cart.Lines,
		Subtotal:        s.Subtotal,
		ResumeAddressID: s.ResumeAddressID,
		PaymentMethod:   string(s.PaymentMethod),
		OrderID:         s.OrderID,
		OrderUnverified: s.OrderUnverified,
		PaymentStatus:   string(s.PaymentStatus),
		PaymentMessage:  s.PaymentMessage,
		PaymentAttempts: s.PaymentAttempts,
	}
	if s.Address != nil {
		dto.AddressID = s.Address.ID
	}
	if s.Quote != nil {
		dto.Quote = toQuoteDTO(s.Quote)
	}
	return dto
}

func toQuoteDTO(q *shipping.Quote) *quoteDTO {
	dto := &quoteDTO{
		SelectedID: q.SelectedID,
		Cost:       q.Cost,
		IsFree:     q.IsFree,
		Source:     string(q.Source),
	}
	for _, o := range q.Options {
		dto.Options = append(dto.Options, shippingOptionDTO{
			ID:               o.ID,
			Name:             o.Name,
			Cost:             o.Cost,
			ETA:              o.ETADescription,
			MinFreeThreshold: o.MinFreeThreshold,
			Available:        o.Available,
		})
	}
	return dto
}
