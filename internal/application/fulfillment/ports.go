package fulfillment

import (
	"context"

	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
)

// SlipGenerator genera la hoja de recolección (PDF) de un envío con sus líneas.
type SlipGenerator interface {
	GenerateSlip(ctx context.Context, s *entity.Shipment) ([]byte, error)
}
