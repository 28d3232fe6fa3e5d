package entity

import "github.com/shopspring/decimal"

// PaymentMethod método de pago seleccionado en el carrito.
type PaymentMethod string

const (
	PaymentCredit      PaymentMethod = "credit"       // línea de crédito del proveedor
	PaymentMercadoPago PaymentMethod = "mercado_pago" // pago digital alterno
	PaymentCash        PaymentMethod = "cash"
)

// ServiceRate tarifa fija de servicio (10 %) sobre el subtotal.
var ServiceRate = decimal.NewFromInt(10).Div(decimal.NewFromInt(100))

// PaymentMethods lista los métodos en el orden en que se ofrecen al usuario.
var PaymentMethods = []PaymentMethod{PaymentCredit, PaymentMercadoPago, PaymentCash}

// ParsePaymentMethod valida un método de pago recibido como texto.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	for _, m := range PaymentMethods {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// CartLineItem línea de producto. Quantity siempre >= 1 mientras exista la línea.
type CartLineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Amount precio unitario por cantidad.
func (l CartLineItem) Amount() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartLineOffer línea de promoción. Quantity siempre >= 1 mientras exista la línea.
type CartLineOffer struct {
	Offer    Offer `json:"offer"`
	Quantity int   `json:"quantity"`
}

// Amount precio del combo por cantidad.
func (l CartLineOffer) Amount() decimal.Decimal {
	return l.Offer.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart carrito de una sesión de mesa. Los ids de producto y de promoción viven en espacios
// separados y nunca se comparan entre sí.
type Cart struct {
	Items         []CartLineItem  `json:"items"`
	Offers        []CartLineOffer `json:"offers"`
	Notes         string          `json:"notes"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
}

// NewCart crea un carrito vacío con el método de pago por defecto (crédito).
func NewCart() *Cart {
	return &Cart{
		Items:         []CartLineItem{},
		Offers:        []CartLineOffer{},
		PaymentMethod: PaymentCredit,
	}
}

// IsEmpty indica si no hay productos ni promociones.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0 && len(c.Offers) == 0
}

// AddItem suma qty al producto si ya está en el carrito; si no, agrega una línea nueva.
// No aplica techo de stock: eso lo decide quien llama.
func (c *Cart) AddItem(product Product, qty int) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.Items {
		if c.Items[i].Product.ID == product.ID {
			c.Items[i].Quantity += qty
			return
		}
	}
	c.Items = append(c.Items, CartLineItem{Product: product, Quantity: qty})
}

// AddOffer simétrico a AddItem, por id de promoción.
func (c *Cart) AddOffer(offer Offer, qty int) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.Offers {
		if c.Offers[i].Offer.ID == offer.ID {
			c.Offers[i].Quantity += qty
			return
		}
	}
	c.Offers = append(c.Offers, CartLineOffer{Offer: offer, Quantity: qty})
}

// ItemQuantity devuelve la cantidad actual de un producto (0 si no está).
func (c *Cart) ItemQuantity(productID string) int {
	for _, l := range c.Items {
		if l.Product.ID == productID {
			return l.Quantity
		}
	}
	return 0
}

// SetItemQuantity sobrescribe la cantidad; qty <= 0 elimina la línea.
// Devuelve false si el producto no estaba en el carrito.
func (c *Cart) SetItemQuantity(productID string, qty int) bool {
	if qty <= 0 {
		return c.RemoveItem(productID)
	}
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items[i].Quantity = qty
			return true
		}
	}
	return false
}

// SetOfferQuantity sobrescribe la cantidad de una promoción; qty <= 0 elimina la línea.
func (c *Cart) SetOfferQuantity(offerID string, qty int) bool {
	if qty <= 0 {
		return c.RemoveOffer(offerID)
	}
	for i := range c.Offers {
		if c.Offers[i].Offer.ID == offerID {
			c.Offers[i].Quantity = qty
			return true
		}
	}
	return false
}

// RemoveItem es idempotente: quitar un id ausente no hace nada.
func (c *Cart) RemoveItem(productID string) bool {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveOffer es idempotente.
func (c *Cart) RemoveOffer(offerID string) bool {
	for i := range c.Offers {
		if c.Offers[i].Offer.ID == offerID {
			c.Offers = append(c.Offers[:i], c.Offers[i+1:]...)
			return true
		}
	}
	return false
}

// Clear vacía productos, promociones y notas. El método de pago se conserva.
func (c *Cart) Clear() {
	c.Items = []CartLineItem{}
	c.Offers = []CartLineOffer{}
	c.Notes = ""
}

// SetNotes reemplaza las notas libres del pedido.
func (c *Cart) SetNotes(notes string) {
	c.Notes = notes
}

// SetPaymentMethod cambia el método de pago.
func (c *Cart) SetPaymentMethod(m PaymentMethod) {
	c.PaymentMethod = m
}

// Subtotal suma precio × cantidad de productos y promociones.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Items {
		sum = sum.Add(l.Amount())
	}
	for _, l := range c.Offers {
		sum = sum.Add(l.Amount())
	}
	return sum
}

// ServiceCharge 10 % del subtotal.
func (c *Cart) ServiceCharge() decimal.Decimal {
	return c.Subtotal().Mul(ServiceRate)
}

// Total subtotal + servicio.
func (c *Cart) Total() decimal.Decimal {
	subtotal := c.Subtotal()
	return subtotal.Add(subtotal.Mul(ServiceRate))
}

// ItemCount suma de cantidades (productos + promociones); solo para contadores, no para montos.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	for _, l := range c.Offers {
		n += l.Quantity
	}
	return n
}

// CreditLineStatus proyecta el uso de la línea de crédito con el total actual del carrito.
func (c *Cart) CreditLineStatus(maxCredit, remainingCredit decimal.Decimal) CreditLineStatus {
	return NewCreditLineStatus(maxCredit, remainingCredit, c.Total())
}
