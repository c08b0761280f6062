package fulfillment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-shipments/internal/application/dto"
	"github.com/jhoicas/Inventario-shipments/internal/application/fulfillment"
	"github.com/jhoicas/Inventario-shipments/internal/application/ports"
	"github.com/jhoicas/Inventario-shipments/internal/domain"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
	"github.com/jhoicas/Inventario-shipments/pkg/logger"
)

type fakeSlips struct{ got *entity.Shipment }

func (f *fakeSlips) GenerateSlip(_ context.Context, s *entity.Shipment) ([]byte, error) {
	f.got = s
	return []byte("%PDF-fake"), nil
}

func TestShipmentUseCase_ListFiltraPorEmpleadoYCodigo(t *testing.T) {
	b := newFakeBackend()
	uc := fulfillment.NewShipmentUseCase(&fakeConnector{backend: b}, nil, nil, nil, logger.Nop())

	list, err := uc.List(context.Background(), owner, 42, "INT-3", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(3), list[0].ID)
	assert.Equal(t, entity.ShipmentStateDraft, list[0].State)

	assert.Equal(t, []ports.Clause{
		ports.In("state", "draft", "waiting"),
		ports.Eq("employee", int64(42)),
		ports.Eq("code", "INT-3"),
	}, b.clauses[fulfillment.ShipmentModel])
}

func TestShipmentUseCase_ListSinEmpleado(t *testing.T) {
	uc := fulfillment.NewShipmentUseCase(&fakeConnector{backend: newFakeBackend()}, nil, nil, nil, logger.Nop())
	_, err := uc.List(context.Background(), owner, 0, "", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNoEmployee)
}

func TestShipmentUseCase_DeleteCierraLaSesion(t *testing.T) {
	b := newFakeBackend()
	reg := newRegistry(t, b, fulfillment.RegistryConfig{})
	_, err := reg.Open(context.Background(), owner, 3)
	require.NoError(t, err)
	uc := fulfillment.NewShipmentUseCase(&fakeConnector{backend: b}, nil, nil, reg, logger.Nop())

	require.NoError(t, uc.Delete(context.Background(), owner, 3))
	assert.Equal(t, []string{"model.stock.shipment.internal.delete"}, b.Calls())
	assert.Zero(t, reg.Len())
}

func TestShipmentUseCase_SlipConLineas(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	slips := &fakeSlips{}
	uc := fulfillment.NewShipmentUseCase(&fakeConnector{backend: b}, nil, slips, nil, logger.Nop())

	pdf, s, err := uc.Slip(context.Background(), owner, 3)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
	assert.Equal(t, "INT-3", s.Code)
	require.Len(t, slips.got.Moves, 1)
}

func TestShipmentUseCase_EventsDelDiario(t *testing.T) {
	j := &fakeJournal{}
	require.NoError(t, j.Create(context.Background(), &entity.ScanEvent{ShipmentID: 3, Kind: entity.ScanEventInput}))
	require.NoError(t, j.Create(context.Background(), &entity.ScanEvent{ShipmentID: 4, Kind: entity.ScanEventInput}))
	b := newFakeBackend()
	uc := fulfillment.NewShipmentUseCase(&fakeConnector{backend: b}, j, nil, nil, logger.Nop())

	events, err := uc.Events(context.Background(), owner, 42, 3, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, []ports.Clause{
		ports.Eq("id", int64(3)),
		ports.Eq("employee", int64(42)),
	}, b.clauses[fulfillment.ShipmentModel])

	none := fulfillment.NewShipmentUseCase(&fakeConnector{backend: newFakeBackend()}, nil, nil, nil, logger.Nop())
	events, err = none.Events(context.Background(), owner, 42, 3, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestShipmentUseCase_EventsDeEnvioAjeno(t *testing.T) {
	j := &fakeJournal{}
	require.NoError(t, j.Create(context.Background(), &entity.ScanEvent{ShipmentID: 3, Kind: entity.ScanEventInput}))
	b := newFakeBackend()
	b.header = nil // el backend no muestra el envío a este empleado
	uc := fulfillment.NewShipmentUseCase(&fakeConnector{backend: b}, j, nil, nil, logger.Nop())

	_, err := uc.Events(context.Background(), owner, 42, 3, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Events(context.Background(), owner, 0, 3, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNoEmployee)
}

func TestStageMachine_AvanzaHastaTerminar(t *testing.T) {
	b := newFakeBackend()
	s := &entity.Shipment{ID: 3, State: entity.ShipmentStateWaiting}

	res := fulfillment.NewStageMachine(b, logger.Nop()).Advance(context.Background(), s)
	assert.True(t, res.Terminal)
	assert.Equal(t, entity.ShipmentStateWaiting, res.From)
	assert.Equal(t, entity.ShipmentStateDone, s.State)
	assert.Equal(t, []string{"model.stock.shipment.internal.assign_try", "model.stock.shipment.internal.done"}, b.Calls())
	assert.Equal(t, fulfillment.FailureNone, res.Failure)
}
