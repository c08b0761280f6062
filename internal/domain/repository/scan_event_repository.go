package repository

import (
	"context"

	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
)

// ScanEventRepository define el puerto de persistencia del diario de escaneo.
type ScanEventRepository interface {
	Create(ctx context.Context, event *entity.ScanEvent) error
	ListByShipment(ctx context.Context, shipmentID int64, limit, offset int) ([]*entity.ScanEvent, error)
}
