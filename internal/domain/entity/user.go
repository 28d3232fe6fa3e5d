package entity

import "github.com/shopspring/decimal"

// UserIdentity datos del usuario tomados del token del proveedor de crédito.
// Solo cambia por una actualización explícita de la línea de crédito.
type UserIdentity struct {
	FirstName           string          `json:"first_name"`
	LastName            string          `json:"last_name"`
	CURP                string          `json:"curp"` // identificador nacional único
	Contractor          string          `json:"contractor"`
	Email               string          `json:"email"`
	Company             string          `json:"company"`
	MaxCreditLine       decimal.Decimal `json:"max_credit_line"`
	RemainingCreditLine decimal.Decimal `json:"remaining_credit_line"`
	TenantName          string          `json:"ademozo_tenant_name"`
	Tenant              string          `json:"ademozo_tenant"`
}

// FullName nombre y apellido para mostrar.
func (u UserIdentity) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
