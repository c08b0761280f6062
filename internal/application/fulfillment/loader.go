package fulfillment

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Inventario-shipments/internal/application/ports"
	"github.com/jhoicas/Inventario-shipments/internal/domain"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
)

// Modelos del backend.
const (
	ShipmentModel = "stock.shipment.internal"
	MoveModel     = "stock.move"
	ProductModel  = "product.product"
	UserModel     = "res.user"
)

var shipmentFields = []string{"code", "reference", "state"}

var moveFields = []string{
	"product", "product.rec_name", "product.code",
	"quantity", "scanned_quantity", "state",
	"uom", "uom.rec_name",
	"company", "company.rec_name",
	"from_location", "from_location.rec_name",
	"to_location", "to_location.rec_name",
}

// loadShipment lee la cabecera del envío y sus líneas en paralelo.
func loadShipment(ctx context.Context, backend ports.Backend, id int64) (*entity.Shipment, error) {
	var headers, moves []ports.Row
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := backend.Search(gctx, ports.SearchRequest{
			Model:  ShipmentModel,
			Domain: []ports.Clause{ports.Eq("id", id)},
			Fields: shipmentFields,
			Limit:  1,
		})
		headers = rows
		return err
	})
	g.Go(func() error {
		rows, err := backend.Search(gctx, ports.SearchRequest{
			Model:  MoveModel,
			Domain: []ports.Clause{ports.Eq("shipment", fmt.Sprintf("%s,%d", ShipmentModel, id))},
			Fields: moveFields,
			Order:  [][2]string{{"id", "ASC"}},
		})
		moves = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("cargar envío %d: %w", id, err)
	}
	if len(headers) == 0 {
		return nil, domain.ErrNotFound
	}

	s := &entity.Shipment{
		ID:        id,
		Code:      headers[0].String("code"),
		Reference: headers[0].String("reference"),
		State:     entity.ShipmentState(headers[0].String("state")),
	}
	for _, row := range moves {
		m, err := moveFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("cargar envío %d: %w", id, err)
		}
		s.Moves = append(s.Moves, m)
	}
	return s, nil
}

func moveFromRow(row ports.Row) (*entity.Move, error) {
	id, err := row.Int64("id")
	if err != nil {
		return nil, err
	}
	productID, err := row.Int64("product")
	if err != nil {
		return nil, err
	}
	qty, err := row.Decimal("quantity")
	if err != nil {
		return nil, err
	}
	scanned, err := row.Decimal("scanned_quantity")
	if err != nil {
		return nil, err
	}
	return &entity.Move{
		ID:               id,
		ProductID:        productID,
		ProductName:      row.String("product.rec_name"),
		ProductCode:      row.String("product.code"),
		Quantity:         qty,
		ExpectedQuantity: qty,
		ScannedQuantity:  scanned,
		State:            row.String("state"),
		UOM:              row.String("uom.rec_name"),
		FromLocation:     row.String("from_location.rec_name"),
		ToLocation:       row.String("to_location.rec_name"),
		Company:          row.String("company.rec_name"),
	}, nil
}
