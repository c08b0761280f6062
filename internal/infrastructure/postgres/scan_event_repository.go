package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-shipments/internal/domain"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
	"github.com/jhoicas/Inventario-shipments/internal/domain/repository"
)

var _ repository.ScanEventRepository = (*ScanEventRepo)(nil)

// schemaScanEvents tabla del diario; EnsureSchema la crea si no existe.
const schemaScanEvents = `
CREATE TABLE IF NOT EXISTS scan_events (
	id          UUID PRIMARY KEY,
	session_id  TEXT        NOT NULL,
	shipment_id BIGINT      NOT NULL,
	move_id     BIGINT,
	user_id     TEXT        NOT NULL,
	kind        TEXT        NOT NULL,
	token       TEXT        NOT NULL DEFAULT '',
	quantity    NUMERIC     NOT NULL DEFAULT 0,
	outcome     TEXT        NOT NULL DEFAULT '',
	detail      TEXT        NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
ALTER TABLE scan_events ALTER COLUMN quantity TYPE NUMERIC;
CREATE INDEX IF NOT EXISTS scan_events_shipment_idx ON scan_events (shipment_id, created_at DESC);`

// ScanEventRepo implementación del diario de escaneo sobre PostgreSQL.
type ScanEventRepo struct {
	q Querier
}

// NewScanEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewScanEventRepository(q Querier) *ScanEventRepo {
	return &ScanEventRepo{q: q}
}

// EnsureSchema crea la tabla scan_events y su índice si no existen.
func (r *ScanEventRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, schemaScanEvents); err != nil {
		return fmt.Errorf("crear esquema scan_events: %w", err)
	}
	return nil
}

// Create persiste un evento. Completa ID y CreatedAt si vienen vacíos.
func (r *ScanEventRepo) Create(ctx context.Context, ev *entity.ScanEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	var moveID *int64
	if ev.MoveID != 0 {
		moveID = &ev.MoveID
	}
	query := `
		INSERT INTO scan_events (id, session_id, shipment_id, move_id, user_id, kind, token, quantity, outcome, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		ev.ID, ev.SessionID, ev.ShipmentID, moveID, ev.UserID, ev.Kind,
		ev.Token, ev.Quantity, ev.Outcome, ev.Detail, ev.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("evento %s duplicado: %w", ev.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create scan event: %w", err)
	}
	return nil
}

// ListByShipment lista los eventos del envío, más recientes primero.
func (r *ScanEventRepo) ListByShipment(ctx context.Context, shipmentID int64, limit, offset int) ([]*entity.ScanEvent, error) {
	query := `
		SELECT id::text, session_id, shipment_id, move_id, user_id, kind, token, quantity, outcome, detail, created_at
		FROM scan_events WHERE shipment_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, shipmentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list scan events: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.ScanEvent, 0)
	for rows.Next() {
		var ev entity.ScanEvent
		var moveID *int64
		if err := rows.Scan(
			&ev.ID, &ev.SessionID, &ev.ShipmentID, &moveID, &ev.UserID, &ev.Kind,
			&ev.Token, &ev.Quantity, &ev.Outcome, &ev.Detail, &ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if moveID != nil {
			ev.MoveID = *moveID
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}
