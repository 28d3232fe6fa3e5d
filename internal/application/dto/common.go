package dto

// ErrorResponse cuerpo de error HTTP. Redirect indica la ruta del front a abrir, si aplica.
type ErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}
