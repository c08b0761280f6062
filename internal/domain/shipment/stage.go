package shipment

import "github.com/jhoicas/Inventario-shipments/internal/domain/entity"

// transitions tabla fija de avance: estado actual → siguiente estado.
// done no tiene transición (estado terminal).
var transitions = map[entity.ShipmentState]entity.ShipmentState{
	entity.ShipmentStateDraft:    entity.ShipmentStateWaiting,
	entity.ShipmentStateWaiting:  entity.ShipmentStateAssigned,
	entity.ShipmentStateAssigned: entity.ShipmentStateDone,
}

// NextState devuelve el estado siguiente a current. ok=false si current es terminal o desconocido.
func NextState(current entity.ShipmentState) (entity.ShipmentState, bool) {
	next, ok := transitions[current]
	return next, ok
}

// IsTerminal indica si no existe transición desde current.
func IsTerminal(current entity.ShipmentState) bool {
	_, ok := transitions[current]
	return !ok
}

// ParseState valida un estado leído del backend.
func ParseState(s string) (entity.ShipmentState, bool) {
	switch st := entity.ShipmentState(s); st {
	case entity.ShipmentStateDraft, entity.ShipmentStateWaiting,
		entity.ShipmentStateAssigned, entity.ShipmentStateDone:
		return st, true
	}
	return "", false
}
