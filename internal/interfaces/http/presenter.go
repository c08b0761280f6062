package http

import (
	"golang.org/x/text/language"

	"github.com/jhoicas/Inventario-shipments/internal/application/dto"
	"github.com/jhoicas/Inventario-shipments/internal/application/fulfillment"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
	"github.com/jhoicas/Inventario-shipments/internal/domain/shipment"
	"github.com/jhoicas/Inventario-shipments/pkg/i18n"
)

// presenter convierte los resultados de fulfillment en DTOs con los avisos traducidos.
type presenter struct {
	tr   *i18n.Translator
	lang language.Tag
}

func (p presenter) alerts(in []fulfillment.Alert) []dto.AlertResponse {
	out := make([]dto.AlertResponse, 0, len(in))
	for _, a := range in {
		out = append(out, dto.AlertResponse{
			Level:    string(a.Level),
			Key:      a.Key,
			Message:  p.tr.Translate(p.lang, a.Key, a.Args...),
			Blocking: a.Blocking,
		})
	}
	return out
}

func (p presenter) save(r *fulfillment.SaveReport) *dto.SaveResponse {
	if r == nil {
		return nil
	}
	return &dto.SaveResponse{Saved: r.Saved, Failure: string(r.Failure), Alerts: p.alerts(r.Alerts)}
}

func (p presenter) stage(r *fulfillment.AdvanceResult) *dto.StageResponse {
	if r == nil {
		return nil
	}
	steps := make([]string, len(r.Steps))
	for i, st := range r.Steps {
		steps[i] = string(st)
	}
	return &dto.StageResponse{
		From:     string(r.From),
		Reached:  string(r.Reached),
		Steps:    steps,
		Terminal: r.Terminal,
		Failure:  string(r.Failure),
		Alerts:   p.alerts(r.Alerts),
	}
}

func (p presenter) input(r *fulfillment.InputReport) dto.InputResponse {
	return dto.InputResponse{
		Token:      r.Token,
		Kind:       string(r.Kind),
		MoveID:     r.MoveID,
		Outcome:    string(r.Outcome),
		Failure:    string(r.Failure),
		Pending:    pendingDTO(r.Pending),
		Reconciled: r.Reconciled,
		Save:       p.save(r.Save),
		Stage:      p.stage(r.Stage),
		Alerts:     p.alerts(r.Alerts),
		ClearInput: r.ClearInput,
	}
}

func pendingDTO(pl *fulfillment.PendingLine) *dto.PendingResponse {
	if pl == nil {
		return nil
	}
	return &dto.PendingResponse{MoveID: pl.MoveID, ProductName: pl.ProductName, Scanned: pl.Scanned, Quantity: pl.Quantity}
}

func summaryDTO(s *entity.Shipment) dto.ShipmentSummary {
	return dto.ShipmentSummary{ID: s.ID, Code: s.Code, Reference: s.Reference, State: string(s.State)}
}

func shipmentDTO(s *entity.Shipment) dto.ShipmentResponse {
	moves := make([]dto.MoveResponse, 0, len(s.Moves))
	for _, m := range s.Moves {
		moves = append(moves, dto.MoveResponse{
			ID:               m.ID,
			ProductID:        m.ProductID,
			ProductName:      m.ProductName,
			ProductCode:      m.ProductCode,
			Quantity:         m.Quantity,
			ExpectedQuantity: m.ExpectedQuantity,
			ScannedQuantity:  m.ScannedQuantity,
			State:            m.State,
			UOM:              m.UOM,
			FromLocation:     m.FromLocation,
			ToLocation:       m.ToLocation,
		})
	}
	return dto.ShipmentResponse{
		ShipmentSummary: summaryDTO(s),
		Moves:           moves,
		PendingLines:    shipment.Pending(s.Moves),
		Reconciled:      shipment.IsReconciled(s.Moves),
	}
}

func eventDTO(ev *entity.ScanEvent) dto.ScanEventResponse {
	return dto.ScanEventResponse{
		ID:        ev.ID,
		SessionID: ev.SessionID,
		MoveID:    ev.MoveID,
		UserID:    ev.UserID,
		Kind:      ev.Kind,
		Token:     ev.Token,
		Quantity:  ev.Quantity,
		Outcome:   ev.Outcome,
		Detail:    ev.Detail,
		CreatedAt: ev.CreatedAt,
	}
}
