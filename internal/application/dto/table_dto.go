package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/mesa-api/internal/domain/entity"
)

// UnpaidOrderDTO orden pendiente de pago con su estado legible.
type UnpaidOrderDTO struct {
	OrderNumber int64                   `json:"order_number"`
	Table       string                  `json:"table"`
	Status      string                  `json:"status"`
	StatusLabel string                  `json:"status_label"`
	Delivered   bool                    `json:"delivered"`
	TotalAmount decimal.Decimal         `json:"total_amount"`
	Products    []entity.OrderedProduct `json:"products"`
	Offers      []entity.OrderedOffer   `json:"offers"`
	CreatedAt   string                  `json:"created_at"`
}

// DashboardDTO respuesta de GET /dashboard.
type DashboardDTO struct {
	TableID           string           `json:"table_id"`
	User              UserDTO          `json:"user"`
	Credit            CreditStatusDTO  `json:"credit"`
	UnpaidOrders      []UnpaidOrderDTO `json:"unpaid_orders"`
	UnpaidOrdersCount int              `json:"unpaid_orders_count"`
	TotalAmountOwed   decimal.Decimal  `json:"total_amount_owed"`
	Offers            []entity.Offer   `json:"offers"`
	CartItemCount     int              `json:"cart_item_count"`
}

// MenuDTO respuesta de GET /menu.
type MenuDTO struct {
	Categories []entity.MenuCategory `json:"categories"`
	Products   []entity.Product      `json:"products"`
	Offers     []entity.Offer        `json:"offers"`
}

// WaiterCallDTO respuesta de POST/DELETE /waiter.
type WaiterCallDTO struct {
	Calling bool `json:"calling"`
}

// ReceiptLineDTO línea del comprobante.
type ReceiptLineDTO struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	IsOffer  bool            `json:"is_offer"`
}

// ReceiptDTO respuesta de POST /orders y GET /orders/:number.
type ReceiptDTO struct {
	OrderNumber        int64            `json:"order_number"`
	TakeAwayCode       string           `json:"take_away_code"`
	TableID            string           `json:"table_id"`
	UserName           string           `json:"user_name"`
	PaymentMethod      string           `json:"payment_method"`
	PaymentMethodLabel string           `json:"payment_method_label"`
	Subtotal           decimal.Decimal  `json:"subtotal"`
	ServiceCharge      decimal.Decimal  `json:"service_charge"`
	Total              decimal.Decimal  `json:"total"`
	TotalDisplay       string           `json:"total_display"`
	Notes              string           `json:"notes,omitempty"`
	Lines              []ReceiptLineDTO `json:"lines"`
	CreatedAt          time.Time        `json:"created_at"`
}
