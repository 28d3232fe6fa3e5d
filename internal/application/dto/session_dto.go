package dto

import "github.com/shopspring/decimal"

// TokenExchangeRequest entrada de POST /api/auth/token.
type TokenExchangeRequest struct {
	Token   string `json:"token"`
	TableID string `json:"table_id"`
}

// TokenExchangeResponse resultado del intercambio. Redirect es la ruta que debe abrir el front.
type TokenExchangeResponse struct {
	SessionToken string           `json:"session_token,omitempty"`
	ExpiresIn    int              `json:"expires_in,omitempty"` // segundos
	Session      *SessionResponse `json:"session,omitempty"`
	Redirect     string           `json:"redirect"`
	Error        string           `json:"error,omitempty"`
}

// UserDTO identidad del comensal tal como la muestra el front.
type UserDTO struct {
	FullName            string          `json:"full_name"`
	FirstName           string          `json:"first_name"`
	LastName            string          `json:"last_name"`
	CURP                string          `json:"curp"`
	Email               string          `json:"email"`
	Company             string          `json:"company"`
	Contractor          string          `json:"contractor"`
	TenantName          string          `json:"tenant_name"`
	Tenant              string          `json:"tenant"`
	MaxCreditLine       decimal.Decimal `json:"max_credit_line"`
	RemainingCreditLine decimal.Decimal `json:"remaining_credit_line"`
}

// SessionResponse estado de la sesión. Nunca incluye los tokens.
type SessionResponse struct {
	SessionID    string   `json:"session_id"`
	TableID      string   `json:"table_id"`
	State        string   `json:"state"`
	IsValidating bool     `json:"is_validating"`
	Error        string   `json:"error,omitempty"`
	User         *UserDTO `json:"user,omitempty"`
}

// CreditLineRequest entrada de PUT /session/credit-line.
type CreditLineRequest struct {
	RemainingCreditLine decimal.Decimal `json:"remaining_credit_line"`
}
