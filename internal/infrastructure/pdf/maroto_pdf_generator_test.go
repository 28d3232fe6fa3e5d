package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/mesa-api/internal/domain/entity"
)

func TestGenerateReceiptPDF(t *testing.T) {
	g := NewMarotoPDFGenerator("La Cantina")
	r := &entity.Receipt{
		TableID:       "4",
		OrderNumber:   1042,
		TakeAwayCode:  "QX7",
		UserName:      "Ana López",
		PaymentMethod: entity.PaymentCredit,
		Subtotal:      decimal.RequireFromString("35"),
		ServiceCharge: decimal.RequireFromString("3.5"),
		Total:         decimal.RequireFromString("38.5"),
		Notes:         "sin cebolla",
		Lines: []entity.ReceiptLine{
			{Name: "Taco", Quantity: 2, Amount: decimal.RequireFromString("20")},
			{Name: "Combo", Quantity: 1, Amount: decimal.RequireFromString("15"), IsOffer: true},
		},
		CreatedAt: time.Date(2025, 5, 1, 14, 30, 0, 0, time.UTC),
	}

	out, err := g.GenerateReceiptPDF(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe ser un PDF")
}

func TestGenerateReceiptPDF_Nulo(t *testing.T) {
	_, err := NewMarotoPDFGenerator("").GenerateReceiptPDF(context.Background(), nil)
	assert.Error(t, err)
}
