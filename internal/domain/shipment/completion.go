package shipment

import "github.com/jhoicas/Inventario-shipments/internal/domain/entity"

// IsReconciled indica si todas las líneas están en done. Sin líneas devuelve true.
func IsReconciled(moves []*entity.Move) bool {
	for _, m := range moves {
		if !m.IsDone() {
			return false
		}
	}
	return true
}

// Pending cuenta las líneas que aún no están conciliadas.
func Pending(moves []*entity.Move) int {
	n := 0
	for _, m := range moves {
		if !m.IsDone() {
			n++
		}
	}
	return n
}
