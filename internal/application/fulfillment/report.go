package fulfillment

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-shipments/internal/domain"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
	"github.com/jhoicas/Inventario-shipments/internal/domain/shipment"
)

// Level severidad de un aviso al operario.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Alert aviso a mostrar al operario. Key es una clave de pkg/i18n; Args sus argumentos.
// Blocking indica que la interfaz debe exigir confirmación antes de seguir.
type Alert struct {
	Level    Level
	Key      string
	Args     []string
	Blocking bool
}

// Failure resultado etiquetado de un fallo recuperable. Vacío si no hubo fallo.
type Failure string

const (
	FailureNone            Failure = ""
	FailureLookup          Failure = "lookup_failure"     // el código no resolvió a un producto
	FailureNoMatch         Failure = "no_match"           // el producto no está en el envío
	FailureOverflow        Failure = "overflow_rejection" // la cantidad supera lo esperado
	FailureInvalidQuantity Failure = "invalid_quantity"
	FailureAlreadyDone     Failure = "already_done"
	FailureNoProduct       Failure = "no_product"
	FailureValidation      Failure = "validation_failure" // UserError del backend al guardar
	FailureRemote          Failure = "remote_failure"     // red u otro error del backend
	FailureRefusal         Failure = "transition_refusal" // la acción de estado devolvió false
)

// InputKind cómo se interpretó una lectura.
type InputKind string

const (
	InputProductScan InputKind = "product_scan"
	InputQuantity    InputKind = "quantity"
	InputNone        InputKind = "none"
)

// PendingLine línea que espera una cantidad digitada.
type PendingLine struct {
	MoveID      int64
	ProductName string
	Scanned     decimal.Decimal
	Quantity    decimal.Decimal
}

// InputReport resultado de una lectura. ClearInput siempre es true: la interfaz
// debe limpiar el campo de entrada al terminar el evento.
type InputReport struct {
	Token      string
	Kind       InputKind
	MoveID     int64
	Outcome    shipment.Outcome
	Failure    Failure
	Pending    *PendingLine
	Reconciled bool
	Save       *SaveReport
	Stage      *AdvanceResult
	Alerts     []Alert
	ClearInput bool
}

// SaveReport resultado de guardar el progreso en el backend.
type SaveReport struct {
	Saved       bool
	Interactive bool
	Failure     Failure
	Alerts      []Alert
	Err         error
}

// AdvanceResult resultado de avanzar el envío por sus estados.
// Terminal es true si al terminar el envío está en un estado sin transición.
type AdvanceResult struct {
	From     entity.ShipmentState
	Reached  entity.ShipmentState
	Steps    []entity.ShipmentState
	Terminal bool
	Failure  Failure
	Alerts   []Alert
	Err      error
}

// StageReport resultado de la acción "siguiente estado": guardado previo y avance.
type StageReport struct {
	Save  *SaveReport
	Stage *AdvanceResult
}

func (r *InputReport) alert(level Level, key string, args ...string) {
	r.Alerts = append(r.Alerts, Alert{Level: level, Key: key, Args: args})
}

// remoteMessage devuelve el primer mensaje de un *domain.RemoteError o el texto del error.
func remoteMessage(err error) string {
	var re *domain.RemoteError
	if errors.As(err, &re) {
		return re.FirstMessage()
	}
	return err.Error()
}
