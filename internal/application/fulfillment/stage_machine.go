package fulfillment

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-shipments/internal/application/ports"
	"github.com/jhoicas/Inventario-shipments/internal/domain"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
	"github.com/jhoicas/Inventario-shipments/internal/domain/shipment"
	"github.com/jhoicas/Inventario-shipments/pkg/i18n"
	"github.com/jhoicas/Inventario-shipments/pkg/logger"
)

// stageActions acción remota que confirma la entrada a cada estado destino.
var stageActions = map[entity.ShipmentState]string{
	entity.ShipmentStateWaiting:  "model." + ShipmentModel + ".wait",
	entity.ShipmentStateAssigned: "model." + ShipmentModel + ".assign_try",
	entity.ShipmentStateDone:     "model." + ShipmentModel + ".done",
}

// StageMachine avanza un envío por draft → waiting → assigned → done, una
// confirmación remota por transición, hasta llegar a done o recibir un rechazo.
type StageMachine struct {
	backend ports.Backend
	log     *logger.Logger
}

// NewStageMachine construye la máquina sobre el backend de la sesión.
func NewStageMachine(backend ports.Backend, log *logger.Logger) *StageMachine {
	return &StageMachine{backend: backend, log: log}
}

// Advance confirma transiciones mientras existan y el backend las acepte.
// s.State solo cambia tras una confirmación exitosa; ante rechazo o error el envío
// queda en el último estado confirmado.
func (m *StageMachine) Advance(ctx context.Context, s *entity.Shipment) AdvanceResult {
	res := AdvanceResult{From: s.State, Reached: s.State}
	for {
		next, ok := shipment.NextState(s.State)
		if !ok {
			res.Terminal = true
			return res
		}
		action := stageActions[next]
		m.log.Debug().Int64("shipment_id", s.ID).Str("from", string(s.State)).Str("action", action).Msg("confirmando transición")

		result, err := m.backend.Call(ctx, action, []int64{s.ID})
		if err != nil {
			m.log.Warn().Err(err).Int64("shipment_id", s.ID).Str("target", string(next)).Msg("transición fallida")
			res.Failure = FailureRemote
			res.Err = err
			res.Alerts = append(res.Alerts, Alert{Level: LevelError, Key: i18n.KeyStageError, Args: []string{remoteMessage(err)}, Blocking: true})
			return res
		}
		if result == false {
			m.log.Info().Int64("shipment_id", s.ID).Str("target", string(next)).Msg("transición rechazada por el backend")
			res.Failure = FailureRefusal
			res.Err = fmt.Errorf("%s: %w", action, domain.ErrTransitionRefused)
			res.Alerts = append(res.Alerts, Alert{Level: LevelError, Key: i18n.KeyUnableToAssign, Blocking: true})
			return res
		}

		s.State = next
		res.Reached = next
		res.Steps = append(res.Steps, next)
	}
}
