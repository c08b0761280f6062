package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentSummary fila del listado de envíos.
type ShipmentSummary struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Reference string `json:"reference"`
	State     string `json:"state"`
}

// ShipmentListResponse listado paginado de envíos.
type ShipmentListResponse struct {
	Items []ShipmentSummary `json:"items"`
	Page  PageResponse      `json:"page"`
}

// MoveResponse línea del envío.
type MoveResponse struct {
	ID               int64           `json:"id"`
	ProductID        int64           `json:"product_id"`
	ProductName      string          `json:"product_name"`
	ProductCode      string          `json:"product_code,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	ExpectedQuantity decimal.Decimal `json:"expected_quantity"`
	ScannedQuantity  decimal.Decimal `json:"scanned_quantity"`
	State            string          `json:"state"`
	UOM              string          `json:"uom,omitempty"`
	FromLocation     string          `json:"from_location,omitempty"`
	ToLocation       string          `json:"to_location,omitempty"`
}

// ShipmentResponse envío con sus líneas.
type ShipmentResponse struct {
	ShipmentSummary
	Moves        []MoveResponse `json:"moves"`
	PendingLines int            `json:"pending_lines"`
	Reconciled   bool           `json:"reconciled"`
}

// ScanEventResponse entrada del diario de escaneo.
type ScanEventResponse struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	MoveID    int64           `json:"move_id,omitempty"`
	UserID    string          `json:"user_id"`
	Kind      string          `json:"kind"`
	Token     string          `json:"token,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Outcome   string          `json:"outcome"`
	Detail    string          `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
