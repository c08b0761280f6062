package fulfillment

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jhoicas/Inventario-shipments/internal/domain"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
	"github.com/jhoicas/Inventario-shipments/pkg/i18n"
)

// MovesPayload arma la escritura agregada de las líneas:
// {"moves": [["write", [id1], patch1, [id2], patch2, ...]]}.
// Las cantidades viajan como número JSON sin pérdida de precisión; ExpectedQuantity
// nunca se envía.
func MovesPayload(moves []*entity.Move, interactive bool) map[string]any {
	op := []any{"write"}
	for _, m := range moves {
		scanned := json.Number(m.ScannedQuantity.String())
		patch := map[string]any{
			"scanned_quantity": scanned,
			"state":            m.State,
		}
		if interactive {
			patch["quantity"] = scanned
		}
		op = append(op, []int64{m.ID}, patch)
	}
	return map[string]any{"moves": []any{op}}
}

func (s *Session) persist(ctx context.Context, interactive bool) *SaveReport {
	rep := &SaveReport{Interactive: interactive}
	err := s.backend.Write(ctx, ShipmentModel, s.shipment.ID, MovesPayload(s.shipment.Moves, interactive))
	if err != nil {
		rep.Err = err
		rep.Failure, rep.Alerts = decodeSaveError(err)
		s.log.Warn().Err(err).Bool("interactive", interactive).Str("failure", string(rep.Failure)).Msg("no se pudo guardar el envío")
		s.record(ctx, &entity.ScanEvent{Kind: entity.ScanEventSave, Outcome: string(rep.Failure), Detail: remoteMessage(err)})
		return rep
	}

	rep.Saved = true
	s.dirty = false
	if interactive {
		rep.Alerts = append(rep.Alerts, Alert{Level: LevelInfo, Key: i18n.KeySaveSuccessful})
	}
	s.record(ctx, &entity.ScanEvent{Kind: entity.ScanEventSave, Outcome: "saved", Detail: strconv.FormatBool(interactive)})
	return rep
}

// decodeSaveError traduce un error de escritura en un aviso. Un UserError con el
// formato de falta de stock nombra el producto y la cantidad; cualquier otro error
// es fatal.
func decodeSaveError(err error) (Failure, []Alert) {
	if domain.IsUserError(err) {
		msg := remoteMessage(err)
		if v, ok := domain.ParseStockViolation(msg); ok {
			return FailureValidation, []Alert{{Level: LevelError, Key: i18n.KeySaveError, Args: []string{v.Product, v.Amount}, Blocking: true}}
		}
		return FailureValidation, []Alert{{Level: LevelError, Key: i18n.KeyErrorFatal, Args: []string{msg}, Blocking: true}}
	}
	return FailureRemote, []Alert{{Level: LevelError, Key: i18n.KeyErrorFatal, Args: []string{remoteMessage(err)}, Blocking: true}}
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }
