package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden en cocina/barra, tal como los reporta el backend.
const (
	OrderStatusReceived      = "RECEIVED"
	OrderStatusInPreparation = "IN_PREPARATION"
	OrderStatusReady         = "READY"
	OrderStatusDelivered     = "DELIVERED"
)

var orderStatusLabels = map[string]string{
	OrderStatusReceived:      "Recibida",
	OrderStatusInPreparation: "En preparación",
	OrderStatusReady:         "Lista",
	OrderStatusDelivered:     "Entregada",
}

// OrderStatusLabel texto en español del estado; si es desconocido devuelve el valor original.
func OrderStatusLabel(status string) string {
	if l, ok := orderStatusLabels[status]; ok {
		return l
	}
	return status
}

// OrderProductLine línea de producto enviada al backend al crear la orden.
type OrderProductLine struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// OrderOfferLine línea de promoción enviada al backend.
type OrderOfferLine struct {
	Offer    string `json:"offer"`
	Quantity int    `json:"quantity"`
}

// OrderRequest payload de creación de orden.
type OrderRequest struct {
	UserCURP      string             `json:"user_curp"`
	Tenant        string             `json:"tenant"`
	PaymentMethod PaymentMethod      `json:"payment_method"`
	Products      []OrderProductLine `json:"order_products"`
	Offers        []OrderOfferLine   `json:"order_offers"`
	Notes         *string            `json:"notes,omitempty"`
}

// NewOrderRequest arma el payload desde el carrito y la identidad del usuario.
// Las notas vacías se omiten.
func NewOrderRequest(user UserIdentity, cart *Cart) OrderRequest {
	req := OrderRequest{
		UserCURP:      user.CURP,
		Tenant:        user.Tenant,
		PaymentMethod: cart.PaymentMethod,
		Products:      make([]OrderProductLine, 0, len(cart.Items)),
		Offers:        make([]OrderOfferLine, 0, len(cart.Offers)),
	}
	for _, l := range cart.Items {
		req.Products = append(req.Products, OrderProductLine{Product: l.Product.ID, Quantity: l.Quantity})
	}
	for _, l := range cart.Offers {
		req.Offers = append(req.Offers, OrderOfferLine{Offer: l.Offer.ID, Quantity: l.Quantity})
	}
	if cart.Notes != "" {
		notes := cart.Notes
		req.Notes = &notes
	}
	return req
}

// OrderResult respuesta del backend al crear la orden.
type OrderResult struct {
	OrderNumber  int64  `json:"order_number"`
	TakeAwayCode string `json:"order_take_away_code"`
}

// OrderedProduct línea de una orden existente.
type OrderedProduct struct {
	Product        string   `json:"product"`
	Quantity       int      `json:"quantity"`
	ProductDetails *Product `json:"product_details,omitempty"`
	Offer          *string  `json:"offer,omitempty"`
}

// OrderedOffer promoción de una orden existente.
type OrderedOffer struct {
	Offer        string `json:"offer"`
	Quantity     int    `json:"quantity"`
	OfferDetails *Offer `json:"offer_details,omitempty"`
}

// Order orden registrada en el backend (usada en el listado de pendientes de pago).
type Order struct {
	ID          int64            `json:"id"`
	OrderNumber int64            `json:"order_number"`
	Table       string           `json:"table"`
	Products    []OrderedProduct `json:"order_products"`
	Offers      []OrderedOffer   `json:"order_offers,omitempty"`
	Delivered   bool             `json:"delivered"`
	Amount      decimal.Decimal  `json:"amount"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Status      string           `json:"status"`
	CreatedAt   string           `json:"created_at"`
}

// UnpaidOrders órdenes pendientes de pago de un usuario.
type UnpaidOrders struct {
	UserCURP          string          `json:"user_curp"`
	UserName          string          `json:"user_name"`
	Orders            []Order         `json:"orders"`
	TotalAmountOwed   decimal.Decimal `json:"total_amount_owed"`
	UnpaidOrdersCount int             `json:"unpaid_orders_count"`
}

// WaiterCall estado del llamado al mesero.
type WaiterCall struct {
	Calling bool `json:"calling"`
}

// ReceiptLine línea del comprobante de confirmación.
type ReceiptLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	IsOffer  bool            `json:"is_offer"`
}

// Receipt comprobante que se muestra tras confirmar el pedido.
type Receipt struct {
	SessionID     string          `json:"session_id"`
	TableID       string          `json:"table_id"`
	OrderNumber   int64           `json:"order_number"`
	TakeAwayCode  string          `json:"take_away_code"`
	UserName      string          `json:"user_name"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Total         decimal.Decimal `json:"total"`
	Notes         string          `json:"notes,omitempty"`
	Lines         []ReceiptLine   `json:"lines"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewReceipt arma el comprobante a partir del carrito confirmado (antes de vaciarlo).
func NewReceipt(session *Session, cart *Cart, result OrderResult, now time.Time) *Receipt {
	r := &Receipt{
		SessionID:     session.ID,
		TableID:       session.TableID,
		OrderNumber:   result.OrderNumber,
		TakeAwayCode:  result.TakeAwayCode,
		PaymentMethod: cart.PaymentMethod,
		Subtotal:      cart.Subtotal(),
		ServiceCharge: cart.ServiceCharge(),
		Total:         cart.Total(),
		Notes:         cart.Notes,
		Lines:         make([]ReceiptLine, 0, len(cart.Items)+len(cart.Offers)),
		CreatedAt:     now,
	}
	if session.User != nil {
		r.UserName = session.User.FullName()
	}
	for _, l := range cart.Items {
		r.Lines = append(r.Lines, ReceiptLine{Name: l.Product.Name, Quantity: l.Quantity, Amount: l.Amount()})
	}
	for _, l := range cart.Offers {
		r.Lines = append(r.Lines, ReceiptLine{Name: l.Offer.Name, Quantity: l.Quantity, Amount: l.Amount(), IsOffer: true})
	}
	return r
}

// PaymentMethodLabel texto del método de pago tal como aparece en la confirmación.
func PaymentMethodLabel(m PaymentMethod) string {
	switch m {
	case PaymentCredit:
		return "Línea de Crédito Adecash"
	case PaymentMercadoPago:
		return "Mercado Pago"
	default:
		return "Efectivo"
	}
}
