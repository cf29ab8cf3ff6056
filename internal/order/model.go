package order

type PaymentMethod string

const (
	MethodMobileMoney PaymentMethod = "MOBILE_MONEY"
	MethodOnDelivery  PaymentMethod = "ON_DELIVERY"
)

type CartLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type Cart struct {
	Lines []CartLine
}

// Subtotal is the derived sum over the lines.
func (c Cart) Subtotal() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Draft is the transient order submission. The controller assembles it;
// the composer validates and submits it.
type Draft struct {
	Items            []CartLine
	AddressID        string
	PaymentMethod    PaymentMethod
	ShippingCost     float64
	ShippingMethodID string
	Subtotal         float64
	Total            float64
	Instructions     string
	ContactPhone     string
}

// Ref is the backend-acknowledged order. Synthesized marks a soft
// success: the backend looked successful but no identifier could be
// located, so ID is a local time-based placeholder.
type Ref struct {
	ID          string
	Synthesized bool
}

// payload is the canonical wire shape for POST /orders.
type payload struct {
	Items                []CartLine `json:"items"`
	AddressID            string     `json:"addressId"`
	PaymentMethod        string     `json:"paymentMethod"`
	ShippingCost         float64    `json:"shippingCost"`
	ShippingMethodID     string     `json:"shippingMethodId,omitempty"`
	Subtotal             float64    `json:"subtotal"`
	TotalAmount          float64    `json:"totalAmount"`
	DeliveryInstructions string     `json:"deliveryInstructions,omitempty"`
	ContactPhone         string     `json:"contactPhone,omitempty"`
}
