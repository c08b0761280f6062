package ports

import (
	"context"
	"encoding/json"
)

// Clause condición de dominio del backend: [campo, operador, valor].
type Clause struct {
	Field    string
	Operator string
	Value    any
}

// MarshalJSON serializa la condición como el arreglo que espera el backend.
func (c Clause) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Field, c.Operator, c.Value})
}

// Eq atajo para una condición de igualdad.
func Eq(field string, value any) Clause {
	return Clause{Field: field, Operator: "=", Value: value}
}

// In atajo para una condición de pertenencia.
func In(field string, values ...any) Clause {
	return Clause{Field: field, Operator: "in", Value: values}
}

// Row proyección de un registro remoto: nombre de campo → valor decodificado de JSON.
// Los números llegan como json.Number.
type Row map[string]any

// SearchRequest lectura remota de un modelo.
type SearchRequest struct {
	Model  string
	Domain []Clause
	Fields []string
	Offset int
	Limit  int // 0 = sin límite
	Order  [][2]string
}

// Backend define el puerto de salida hacia el ERP (lectura, escritura y acciones con nombre).
// Los fallos del servidor se devuelven como *domain.RemoteError.
type Backend interface {
	// Search lee los registros de Model que cumplen Domain, proyectados a Fields.
	Search(ctx context.Context, req SearchRequest) ([]Row, error)
	// Write aplica patch al registro id de model.
	Write(ctx context.Context, model string, id int64, patch map[string]any) error
	// Call invoca la acción remota action sobre ids. Un resultado false indica rechazo.
	Call(ctx context.Context, action string, ids []int64) (any, error)
}

// Credentials sesión abierta en el backend para un usuario.
type Credentials struct {
	UserID  int64
	Login   string
	Session string
}

// Connector abre sesiones en el backend y entrega un Backend atado a ellas.
type Connector interface {
	Login(ctx context.Context, login, password string) (Credentials, error)
	Connect(cred Credentials) Backend
}
