package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento del diario de escaneo.
const (
	ScanEventInput = "input" // lectura o cantidad digitada
	ScanEventSave  = "save"  // guardado de progreso
	ScanEventStage = "stage" // transición de estado confirmada o rechazada
)

// ScanEvent registro de auditoría de una operación sobre una sesión de escaneo.
type ScanEvent struct {
	ID         string
	SessionID  string
	ShipmentID int64
	MoveID     int64 // 0 si el evento no afecta una línea
	UserID     string
	Kind       string
	Token      string
	Quantity   decimal.Decimal
	Outcome    string
	Detail     string
	CreatedAt  time.Time
}
