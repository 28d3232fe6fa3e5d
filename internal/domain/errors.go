package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Autenticación con el proveedor de línea de crédito.
	ErrMissingToken       = errors.New("token no proporcionado")
	ErrTokenDecode        = errors.New("token con formato o claims inválidos")
	ErrTokenExpired       = errors.New("token expirado")
	ErrBackendRejected    = errors.New("sesión rechazada por el servidor")
	ErrTransport          = errors.New("error de conexión con el servidor")
	ErrValidationInFlight = errors.New("validación de sesión en curso")
	ErrNotAuthenticated   = errors.New("sesión no autenticada")

	// Carrito y pedidos.
	ErrEmptyCart           = errors.New("el carrito está vacío")
	ErrCreditLimitExceeded = errors.New("el monto del carrito excede la línea de crédito disponible")
	ErrOrderInFlight       = errors.New("ya hay un pedido en proceso")
	ErrOrderSubmission     = errors.New("error al crear la orden")
)
