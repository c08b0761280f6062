package shipment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
)

// Outcome resultado de aplicar una cantidad a una línea.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed" // la línea quedó conciliada
	OutcomePartial   Outcome = "partial"   // cantidad acumulada, falta completar
	OutcomeRejected  Outcome = "rejected"  // no se modificó la línea
)

// RejectReason motivo de un OutcomeRejected.
type RejectReason string

const (
	ReasonNone          RejectReason = ""
	ReasonAlreadyDone   RejectReason = "already_done"
	ReasonOverflow      RejectReason = "overflow"
	ReasonInvalidAmount RejectReason = "invalid_amount"
)

// QuantityMode semántica de una cantidad que no completa la línea de una vez.
type QuantityMode string

const (
	// ModeAccumulate suma la cantidad a lo ya escaneado; la línea se completa cuando
	// el acumulado llega a Quantity.
	ModeAccumulate QuantityMode = "accumulate"
	// ModeReplace toma la cantidad digitada como el total escaneado de la línea.
	ModeReplace QuantityMode = "replace"
)

// ParseQuantityMode valida el modo configurado. Vacío equivale a ModeAccumulate.
func ParseQuantityMode(s string) (QuantityMode, error) {
	switch QuantityMode(s) {
	case "", ModeAccumulate:
		return ModeAccumulate, nil
	case ModeReplace:
		return ModeReplace, nil
	}
	return "", fmt.Errorf("modo de cantidad desconocido: %q", s)
}

// Result resultado etiquetado de ApplyQuantity. Overflow es el total que se intentó
// registrar cuando Reason es ReasonOverflow; no se guarda en la línea.
type Result struct {
	Outcome  Outcome
	Reason   RejectReason
	Overflow decimal.Decimal
}

// ApplyQuantity aplica amount a la línea y decide si queda completa, parcial o rechazada.
//
//   - Línea ya en done: rechazo sin cambios (la línea es inmutable).
//   - amount == Quantity: la línea queda done con ScannedQuantity = amount.
//   - amount > ExpectedQuantity, o el nuevo total lo supera: rechazo por exceso.
//   - En otro caso se registra la cantidad según mode.
func ApplyQuantity(m *entity.Move, amount decimal.Decimal, mode QuantityMode) Result {
	if m.IsDone() {
		return Result{Outcome: OutcomeRejected, Reason: ReasonAlreadyDone}
	}
	if !amount.IsPositive() {
		return Result{Outcome: OutcomeRejected, Reason: ReasonInvalidAmount}
	}
	if amount.Equal(m.Quantity) {
		m.ScannedQuantity = amount
		m.State = entity.MoveStateDone
		return Result{Outcome: OutcomeCompleted}
	}
	if amount.GreaterThan(m.ExpectedQuantity) {
		return Result{Outcome: OutcomeRejected, Reason: ReasonOverflow, Overflow: amount}
	}

	total := amount
	if mode != ModeReplace {
		total = m.ScannedQuantity.Add(amount)
	}
	if total.GreaterThan(m.ExpectedQuantity) {
		return Result{Outcome: OutcomeRejected, Reason: ReasonOverflow, Overflow: total}
	}
	m.ScannedQuantity = total
	if total.Equal(m.Quantity) {
		m.State = entity.MoveStateDone
		return Result{Outcome: OutcomeCompleted}
	}
	return Result{Outcome: OutcomePartial}
}
