package fulfillment

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-shipments/internal/application/dto"
	"github.com/jhoicas/Inventario-shipments/internal/application/ports"
	"github.com/jhoicas/Inventario-shipments/internal/domain"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
	"github.com/jhoicas/Inventario-shipments/internal/domain/repository"
	"github.com/jhoicas/Inventario-shipments/pkg/logger"
)

// ShipmentUseCase lista, elimina e imprime envíos internos y expone su diario de escaneo.
type ShipmentUseCase struct {
	connector ports.Connector
	journal   repository.ScanEventRepository
	slips     SlipGenerator
	registry  *Registry
	log       *logger.Logger
}

// NewShipmentUseCase construye el caso de uso. journal y registry pueden ser nil.
func NewShipmentUseCase(connector ports.Connector, journal repository.ScanEventRepository, slips SlipGenerator, registry *Registry, log *logger.Logger) *ShipmentUseCase {
	return &ShipmentUseCase{connector: connector, journal: journal, slips: slips, registry: registry, log: log}
}

// List envíos en borrador o en espera asignados al empleado, opcionalmente filtrados por código.
func (uc *ShipmentUseCase) List(ctx context.Context, cred ports.Credentials, employeeID int64, reference string, page dto.PageRequest) ([]*entity.Shipment, error) {
	if employeeID == 0 {
		return nil, domain.ErrNoEmployee
	}
	page.DefaultPage()
	clauses := []ports.Clause{
		ports.In("state", string(entity.ShipmentStateDraft), string(entity.ShipmentStateWaiting)),
		ports.Eq("employee", employeeID),
	}
	if reference != "" {
		clauses = append(clauses, ports.Eq("code", reference))
	}
	rows, err := uc.connector.Connect(cred).Search(ctx, ports.SearchRequest{
		Model:  ShipmentModel,
		Domain: clauses,
		Fields: shipmentFields,
		Offset: page.Offset,
		Limit:  page.Limit,
		Order:  [][2]string{{"id", "DESC"}},
	})
	if err != nil {
		return nil, fmt.Errorf("listar envíos: %w", err)
	}
	out := make([]*entity.Shipment, 0, len(rows))
	for _, row := range rows {
		id, err := row.Int64("id")
		if err != nil {
			return nil, fmt.Errorf("listar envíos: %w", err)
		}
		out = append(out, &entity.Shipment{
			ID:        id,
			Code:      row.String("code"),
			Reference: row.String("reference"),
			State:     entity.ShipmentState(row.String("state")),
		})
	}
	return out, nil
}

// Get envío completo con sus líneas.
func (uc *ShipmentUseCase) Get(ctx context.Context, cred ports.Credentials, id int64) (*entity.Shipment, error) {
	return loadShipment(ctx, uc.connector.Connect(cred), id)
}

// Delete elimina el envío en el backend y descarta su sesión de escaneo si la hay.
func (uc *ShipmentUseCase) Delete(ctx context.Context, cred ports.Credentials, id int64) error {
	if _, err := uc.connector.Connect(cred).Call(ctx, "model."+ShipmentModel+".delete", []int64{id}); err != nil {
		return fmt.Errorf("eliminar envío %d: %w", id, err)
	}
	if uc.registry != nil {
		uc.registry.CloseShipment(id)
	}
	uc.log.Info().Int64("shipment_id", id).Int64("user_id", cred.UserID).Msg("envío eliminado")
	return nil
}

// Slip genera el PDF de recolección del envío.
func (uc *ShipmentUseCase) Slip(ctx context.Context, cred ports.Credentials, id int64) ([]byte, *entity.Shipment, error) {
	if uc.slips == nil {
		return nil, nil, fmt.Errorf("hoja de recolección no disponible: %w", domain.ErrInvalidInput)
	}
	s, err := uc.Get(ctx, cred, id)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := uc.slips.GenerateSlip(ctx, s)
	if err != nil {
		return nil, nil, fmt.Errorf("hoja de recolección %d: %w", id, err)
	}
	return pdf, s, nil
}

// Events diario de escaneo del envío, más recientes primero. Solo lo ve un
// empleado al que el backend le muestra el envío asignado.
func (uc *ShipmentUseCase) Events(ctx context.Context, cred ports.Credentials, employeeID, shipmentID int64, page dto.PageRequest) ([]*entity.ScanEvent, error) {
	if employeeID == 0 {
		return nil, domain.ErrNoEmployee
	}
	rows, err := uc.connector.Connect(cred).Search(ctx, ports.SearchRequest{
		Model:  ShipmentModel,
		Domain: []ports.Clause{ports.Eq("id", shipmentID), ports.Eq("employee", employeeID)},
		Fields: []string{"id"},
		Limit:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("diario del envío %d: %w", shipmentID, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("envío %d: %w", shipmentID, domain.ErrNotFound)
	}
	if uc.journal == nil {
		return []*entity.ScanEvent{}, nil
	}
	page.DefaultPage()
	return uc.journal.ListByShipment(ctx, shipmentID, page.Limit, page.Offset)
}
