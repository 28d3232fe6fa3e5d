package entity

import "github.com/shopspring/decimal"

// NearLimitPercentage umbral (%) a partir del cual la UI advierte que se acerca al límite.
var NearLimitPercentage = decimal.NewFromInt(80)

var hundred = decimal.NewFromInt(100)

// CreditLineStatus instantánea derivada de la línea de crédito; no se persiste ni se cachea.
type CreditLineStatus struct {
	MaxCreditLine       decimal.Decimal `json:"max_credit_line"`
	RemainingCreditLine decimal.Decimal `json:"remaining_credit_line"`
	UsedCreditLine      decimal.Decimal `json:"used_credit_line"`
	CartTotal           decimal.Decimal `json:"cart_total"`
	ProjectedUsed       decimal.Decimal `json:"projected_used"`
	PercentageUsed      decimal.Decimal `json:"percentage_used"`
}

// NewCreditLineStatus calcula usado = max − disponible y proyecta el total del carrito.
// Con max <= 0 el porcentaje es 0 si no hay consumo proyectado y 100 en otro caso.
func NewCreditLineStatus(maxCredit, remainingCredit, cartTotal decimal.Decimal) CreditLineStatus {
	used := maxCredit.Sub(remainingCredit)
	projected := used.Add(cartTotal)

	var pct decimal.Decimal
	switch {
	case maxCredit.IsPositive():
		pct = projected.Div(maxCredit).Mul(hundred)
	case projected.IsPositive():
		pct = hundred
	default:
		pct = decimal.Zero
	}

	return CreditLineStatus{
		MaxCreditLine:       maxCredit,
		RemainingCreditLine: remainingCredit,
		UsedCreditLine:      used,
		CartTotal:           cartTotal,
		ProjectedUsed:       projected,
		PercentageUsed:      pct,
	}
}

// ProjectedRemaining crédito que quedaría tras pagar el carrito (puede ser negativo).
func (s CreditLineStatus) ProjectedRemaining() decimal.Decimal {
	return s.MaxCreditLine.Sub(s.ProjectedUsed)
}

// IsOverLimit el consumo proyectado supera la línea máxima.
func (s CreditLineStatus) IsOverLimit() bool {
	return s.ProjectedUsed.GreaterThan(s.MaxCreditLine)
}

// IsNearLimit el porcentaje proyectado supera el umbral de advertencia.
func (s CreditLineStatus) IsNearLimit() bool {
	return s.PercentageUsed.GreaterThan(NearLimitPercentage)
}

// AllowsPayment indica si el método puede usarse: crédito queda bloqueado si se excede el límite.
func (s CreditLineStatus) AllowsPayment(m PaymentMethod) bool {
	if m == PaymentCredit {
		return !s.IsOverLimit()
	}
	return true
}
