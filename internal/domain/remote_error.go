package domain

import (
	"errors"
	"strings"
)

// Tipos de error que reporta el backend Tryton en la respuesta JSON-RPC.
const (
	RemoteKindUserError   = "UserError"
	RemoteKindUserWarning = "UserWarning"
	RemoteKindNotLogged   = "NotLogged"
	RemoteKindTransport   = "transport"
)

// RemoteError error estructurado devuelto por el backend: un tipo y una lista de
// mensajes legibles. Messages[0] es el mensaje principal.
type RemoteError struct {
	Kind     string
	Messages []string
}

func (e *RemoteError) Error() string {
	if len(e.Messages) == 0 {
		return "backend: " + e.Kind
	}
	return "backend: " + e.Kind + ": " + e.Messages[0]
}

// FirstMessage devuelve el mensaje principal o el tipo si no hay mensajes.
func (e *RemoteError) FirstMessage() string {
	if len(e.Messages) == 0 || e.Messages[0] == "" {
		return e.Kind
	}
	return e.Messages[0]
}

// IsUserError indica si err es un error de regla de negocio (UserError) del backend.
func IsUserError(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == RemoteKindUserError
}

// StockViolation producto y cantidad extraídos de un UserError de stock.
type StockViolation struct {
	Product string
	Amount  string
}

// ParseStockViolation decodifica el mensaje de un UserError de stock.
//
// Formato esperado (contrato del backend, sensible a cambios de redacción):
//
//	<texto>"<producto>"<texto>"<cantidad>"<resto opcional>
//
// El mensaje se parte por comillas dobles: el fragmento 1 es el nombre del producto
// y el fragmento 3 la cantidad en conflicto. Si faltan fragmentos devuelve ok=false.
func ParseStockViolation(msg string) (StockViolation, bool) {
	parts := strings.Split(msg, `"`)
	if len(parts) < 4 {
		return StockViolation{}, false
	}
	v := StockViolation{Product: parts[1], Amount: parts[3]}
	if v.Product == "" {
		return StockViolation{}, false
	}
	return v, true
}
