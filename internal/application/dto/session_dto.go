package dto

import "github.com/shopspring/decimal"

// InputRequest lectura del escáner o cantidad digitada.
type InputRequest struct {
	Token string `json:"token" validate:"required"`
}

// AlertResponse aviso traducido al idioma del operario.
type AlertResponse struct {
	Level    string `json:"level"`
	Key      string `json:"key"`
	Message  string `json:"message"`
	Blocking bool   `json:"blocking,omitempty"`
}

// PendingResponse línea que espera una cantidad.
type PendingResponse struct {
	MoveID      int64           `json:"move_id"`
	ProductName string          `json:"product_name"`
	Scanned     decimal.Decimal `json:"scanned"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// SessionResponse estado de una sesión de escaneo.
type SessionResponse struct {
	ID       string           `json:"id"`
	Shipment ShipmentResponse `json:"shipment"`
	Pending  *PendingResponse `json:"pending,omitempty"`
}

// SaveResponse resultado de un guardado.
type SaveResponse struct {
	Saved   bool            `json:"saved"`
	Failure string          `json:"failure,omitempty"`
	Alerts  []AlertResponse `json:"alerts"`
}

// StageResponse resultado de un avance de estado.
type StageResponse struct {
	From     string          `json:"from"`
	Reached  string          `json:"reached"`
	Steps    []string        `json:"steps"`
	Terminal bool            `json:"terminal"`
	Failure  string          `json:"failure,omitempty"`
	Alerts   []AlertResponse `json:"alerts"`
}

// InputResponse resultado de procesar una lectura. ClearInput indica a la
// interfaz que limpie el campo de entrada.
type InputResponse struct {
	Token      string           `json:"token"`
	Kind       string           `json:"kind"`
	MoveID     int64            `json:"move_id,omitempty"`
	Outcome    string           `json:"outcome,omitempty"`
	Failure    string           `json:"failure,omitempty"`
	Pending    *PendingResponse `json:"pending,omitempty"`
	Reconciled bool             `json:"reconciled"`
	Save       *SaveResponse    `json:"save,omitempty"`
	Stage      *StageResponse   `json:"stage,omitempty"`
	Alerts     []AlertResponse  `json:"alerts"`
	ClearInput bool             `json:"clear_input"`
}

// NextStageResponse resultado de la acción "siguiente estado".
type NextStageResponse struct {
	Save  SaveResponse   `json:"save"`
	Stage *StageResponse `json:"stage,omitempty"`
}
