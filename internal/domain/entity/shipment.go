package entity

import "github.com/shopspring/decimal"

// ShipmentState estado del ciclo de vida de un envío interno.
type ShipmentState string

// Estados del envío interno, en el orden en que avanzan.
const (
	ShipmentStateDraft    ShipmentState = "draft"
	ShipmentStateWaiting  ShipmentState = "waiting"
	ShipmentStateAssigned ShipmentState = "assigned"
	ShipmentStateDone     ShipmentState = "done"
)

// MoveStateDone estado de una línea totalmente conciliada.
const MoveStateDone = "done"

// Shipment envío interno entre ubicaciones del almacén (stock.shipment.internal).
type Shipment struct {
	ID        int64
	Code      string
	Reference string
	State     ShipmentState
	Moves     []*Move
}

// Move línea del envío: cantidad esperada de un producto a mover (stock.move).
// ExpectedQuantity es la copia de la cantidad original usada para detectar excesos; no se persiste.
type Move struct {
	ID               int64
	ProductID        int64
	ProductName      string
	ProductCode      string
	Quantity         decimal.Decimal
	ExpectedQuantity decimal.Decimal
	ScannedQuantity  decimal.Decimal
	State            string
	UOM              string
	FromLocation     string
	ToLocation       string
	Company          string
}

// IsDone indica si la línea ya fue conciliada.
func (m *Move) IsDone() bool {
	return m.State == MoveStateDone
}

// Clone copia profunda del envío y sus líneas.
func (s *Shipment) Clone() *Shipment {
	if s == nil {
		return nil
	}
	out := *s
	out.Moves = make([]*Move, len(s.Moves))
	for i, m := range s.Moves {
		cp := *m
		out.Moves[i] = &cp
	}
	return &out
}
