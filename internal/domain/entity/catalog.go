package entity

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product es un producto del catálogo remoto. Inmutable una vez obtenido; el carrito solo lo referencia.
type Product struct {
	ID          string          `json:"uuid"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// Validate comprueba las reglas mínimas del registro (id presente, precio y stock no negativos).
func (p Product) Validate() bool {
	return p.ID != "" && !p.Price.IsNegative() && p.Stock >= 0
}

// OfferComponent es un producto incluido en una promoción con su cantidad.
type OfferComponent struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Offer es una promoción (combo) con precio propio.
type Offer struct {
	ID       string           `json:"uuid"`
	Name     string           `json:"name"`
	Price    decimal.Decimal  `json:"price"`
	Products []OfferComponent `json:"products"`
}

// Validate comprueba id presente y precio no negativo.
func (o Offer) Validate() bool {
	return o.ID != "" && !o.Price.IsNegative()
}

// MenuCategory categoría de menú de un tenant.
type MenuCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tenant      string `json:"tenant"`
}

// FindProduct busca un producto por id en un listado del catálogo.
func FindProduct(products []Product, id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// FindOffer busca una promoción por id en un listado del catálogo.
func FindOffer(offers []Offer, id string) (Offer, bool) {
	for _, o := range offers {
		if o.ID == id {
			return o, true
		}
	}
	return Offer{}, false
}
