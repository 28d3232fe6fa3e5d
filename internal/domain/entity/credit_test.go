package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/mesa-api/internal/domain/entity"
)

// Escenario: max 1000, disponible 200, carrito 850 → usado 800, proyectado 1650, excedido.
func TestCreditLineStatus_ExcedeLimite(t *testing.T) {
	s := entity.NewCreditLineStatus(dec("1000"), dec("200"), dec("850"))

	assert.Equal(t, "800", s.UsedCreditLine.String())
	assert.Equal(t, "1650", s.ProjectedUsed.String())
	assert.Equal(t, "165.00", s.PercentageUsed.StringFixed(2))
	assert.True(t, s.IsOverLimit())
	assert.True(t, s.IsNearLimit())
	assert.Equal(t, "-650", s.ProjectedRemaining().String())

	assert.False(t, s.AllowsPayment(entity.PaymentCredit), "crédito deshabilitado al exceder el límite")
	assert.True(t, s.AllowsPayment(entity.PaymentCash))
	assert.True(t, s.AllowsPayment(entity.PaymentMercadoPago))
}

func TestCreditLineStatus_UsadoEsMaxMenosDisponible(t *testing.T) {
	cases := []struct{ max, remaining string }{
		{"1000", "1000"}, {"1000", "0"}, {"2500.50", "1200.25"}, {"0", "0"}, {"99.99", "0.01"},
	}
	for _, tc := range cases {
		s := entity.NewCreditLineStatus(dec(tc.max), dec(tc.remaining), decimal.Zero)
		assert.True(t, s.UsedCreditLine.Equal(dec(tc.max).Sub(dec(tc.remaining))), "max=%s remaining=%s", tc.max, tc.remaining)
	}
}

func TestCreditLineStatus_CercaDelLimite(t *testing.T) {
	// usado 700 + carrito 110 = 810 → 81 %
	s := entity.NewCreditLineStatus(dec("1000"), dec("300"), dec("110"))
	assert.True(t, s.IsNearLimit())
	assert.False(t, s.IsOverLimit())
	assert.True(t, s.AllowsPayment(entity.PaymentCredit))

	// exactamente 80 % no advierte
	s = entity.NewCreditLineStatus(dec("1000"), dec("300"), dec("100"))
	assert.False(t, s.IsNearLimit())
}

func TestCreditLineStatus_JustoEnElLimiteNoExcede(t *testing.T) {
	s := entity.NewCreditLineStatus(dec("500"), dec("100"), dec("100"))
	assert.True(t, s.ProjectedUsed.Equal(dec("500")))
	assert.False(t, s.IsOverLimit())
}

func TestCreditLineStatus_LineaEnCero(t *testing.T) {
	s := entity.NewCreditLineStatus(decimal.Zero, decimal.Zero, decimal.Zero)
	assert.True(t, s.PercentageUsed.IsZero())
	assert.False(t, s.IsOverLimit())

	s = entity.NewCreditLineStatus(decimal.Zero, decimal.Zero, dec("10"))
	assert.Equal(t, "100", s.PercentageUsed.String())
	assert.True(t, s.IsOverLimit())
}

func TestCart_CreditLineStatusUsaTotalConServicio(t *testing.T) {
	c := entity.NewCart()
	c.AddItem(product("A", "100"), 1) // total 110

	s := c.CreditLineStatus(dec("1000"), dec("900"))
	assert.Equal(t, "100", s.UsedCreditLine.String())
	assert.Equal(t, "210", s.ProjectedUsed.String())
	assert.Equal(t, "21.00", s.PercentageUsed.StringFixed(2))
}
