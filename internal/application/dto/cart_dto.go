package dto

import "github.com/shopspring/decimal"

// AddItemRequest entrada de POST /cart/items. Quantity 0 u omitida cuenta como 1.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddOfferRequest entrada de POST /cart/offers.
type AddOfferRequest struct {
	OfferID  string `json:"offer_id"`
	Quantity int    `json:"quantity"`
}

// SetQuantityRequest entrada de PUT /cart/items/:id y /cart/offers/:id. 0 elimina la línea.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// NotesRequest entrada de PUT /cart/notes.
type NotesRequest struct {
	Notes string `json:"notes"`
}

// PaymentMethodRequest entrada de PUT /cart/payment-method.
type PaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// CartItemDTO línea de producto del carrito.
type CartItemDTO struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
	Amount    decimal.Decimal `json:"amount"`
}

// CartOfferDTO línea de promoción del carrito.
type CartOfferDTO struct {
	OfferID   string          `json:"offer_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// PaymentOptionDTO método de pago ofrecido; Enabled=false para crédito excedido.
type PaymentOptionDTO struct {
	Method   string `json:"method"`
	Label    string `json:"label"`
	Enabled  bool   `json:"enabled"`
	Selected bool   `json:"selected"`
}

// CreditStatusDTO proyección de la línea de crédito con el carrito actual.
type CreditStatusDTO struct {
	MaxCreditLine       decimal.Decimal `json:"max_credit_line"`
	RemainingCreditLine decimal.Decimal `json:"remaining_credit_line"`
	UsedCreditLine      decimal.Decimal `json:"used_credit_line"`
	CartTotal           decimal.Decimal `json:"cart_total"`
	ProjectedUsed       decimal.Decimal `json:"projected_used"`
	ProjectedRemaining  decimal.Decimal `json:"projected_remaining"`
	PercentageUsed      decimal.Decimal `json:"percentage_used"`
	OverLimit           bool            `json:"over_limit"`
	NearLimit           bool            `json:"near_limit"`
	Display             CreditDisplay   `json:"display"`
}

// CreditDisplay los mismos montos ya formateados en pesos.
type CreditDisplay struct {
	MaxCreditLine      string `json:"max_credit_line"`
	UsedCreditLine     string `json:"used_credit_line"`
	ProjectedRemaining string `json:"projected_remaining"`
	PercentageUsed     string `json:"percentage_used"`
}

// CartSummaryDTO respuesta de todas las rutas /cart.
type CartSummaryDTO struct {
	Items          []CartItemDTO      `json:"items"`
	Offers         []CartOfferDTO     `json:"offers"`
	Notes          string             `json:"notes"`
	PaymentMethod  string             `json:"payment_method"`
	ItemCount      int                `json:"item_count"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	ServiceCharge  decimal.Decimal    `json:"service_charge"`
	Total          decimal.Decimal    `json:"total"`
	TotalDisplay   string             `json:"total_display"`
	Credit         *CreditStatusDTO   `json:"credit,omitempty"`
	PaymentOptions []PaymentOptionDTO `json:"payment_options"`
	CanOrder       bool               `json:"can_order"`
}
