package entity

import "time"

// SessionState estado de autenticación de una sesión de mesa.
type SessionState string

const (
	SessionUnauthenticated SessionState = "unauthenticated"
	SessionValidating      SessionState = "validating"
	SessionAuthenticated   SessionState = "authenticated"
	SessionFailed          SessionState = "failed"
)

// Motivos de fallo de la validación. Message es el texto que ve el usuario.
type FailureReason struct {
	Code    string
	Message string
}

var (
	FailureMissingToken   = FailureReason{Code: "missing token", Message: "No se encontró token de Adecash en la URL"}
	FailureExpired        = FailureReason{Code: "expired", Message: "Token expirado"}
	FailureInvalidPayload = FailureReason{Code: "invalid payload", Message: "Token de Adecash inválido"}
	FailureServerRejected = FailureReason{Code: "server validation error", Message: "Error de validación con el servidor"}
	FailureConnection     = FailureReason{Code: "connection error", Message: "Error de conexión con el servidor"}
)

// Session estado de autenticación de un comensal en una mesa.
type Session struct {
	ID            string        `json:"id"`
	TableID       string        `json:"table_id"`
	State         SessionState  `json:"state"`
	ExternalToken string        `json:"token,omitempty"`
	InternalToken string        `json:"core_token,omitempty"`
	User          *UserIdentity `json:"user,omitempty"`
	LastError     string        `json:"error,omitempty"`
	FailureCode   string        `json:"failure_code,omitempty"`
	IsValidating  bool          `json:"is_validating"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsAuthenticated atajo para rutas protegidas.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.State == SessionAuthenticated && s.User != nil
}

// ClearCredentials borra token externo, token interno e identidad.
func (s *Session) ClearCredentials() {
	s.ExternalToken = ""
	s.InternalToken = ""
	s.User = nil
}

// Fail limpia la sesión y registra el motivo visible para el usuario.
func (s *Session) Fail(reason FailureReason) {
	s.ClearCredentials()
	s.State = SessionFailed
	s.IsValidating = false
	s.LastError = reason.Message
	s.FailureCode = reason.Code
}

// Reset vuelve al estado inicial sin credenciales ni error.
func (s *Session) Reset() {
	s.ClearCredentials()
	s.State = SessionUnauthenticated
	s.IsValidating = false
	s.LastError = ""
	s.FailureCode = ""
}
