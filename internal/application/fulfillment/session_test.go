package fulfillment_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-shipments/internal/application/fulfillment"
	"github.com/jhoicas/Inventario-shipments/internal/application/ports"
	"github.com/jhoicas/Inventario-shipments/internal/domain"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
	"github.com/jhoicas/Inventario-shipments/internal/domain/shipment"
	"github.com/jhoicas/Inventario-shipments/pkg/i18n"
)

const (
	actionWait   = "model.stock.shipment.internal.wait"
	actionAssign = "model.stock.shipment.internal.assign_try"
	actionDone   = "model.stock.shipment.internal.done"
)

// ──── Lectura y cantidad ────────────────────────────────────────────────────

func TestHandleInput_EscaneoParcialYCantidadCompletaYAvanza(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	j := &fakeJournal{}
	sess := openSession(t, b, j, shipment.ModeAccumulate)
	ctx := context.Background()

	rep, err := sess.HandleInput(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.InputProductScan, rep.Kind)
	assert.Equal(t, shipment.OutcomePartial, rep.Outcome)
	assert.True(t, rep.ClearInput)
	require.NotNil(t, rep.Pending)
	assert.Equal(t, int64(11), rep.Pending.MoveID)
	assert.Equal(t, "1", rep.Pending.Scanned.String())
	assert.Equal(t, []string{i18n.KeyLinePending}, alertKeys(rep.Alerts))
	assert.Empty(t, b.Writes(), "una línea parcial no se guarda")

	rep, err = sess.HandleInput(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.InputQuantity, rep.Kind)
	assert.Equal(t, shipment.OutcomeCompleted, rep.Outcome)
	assert.Nil(t, rep.Pending)
	assert.True(t, rep.Reconciled)
	require.NotNil(t, rep.Save)
	assert.True(t, rep.Save.Saved)
	assert.False(t, rep.Save.Interactive)
	require.NotNil(t, rep.Stage)
	assert.True(t, rep.Stage.Terminal)
	assert.Equal(t, entity.ShipmentStateDone, rep.Stage.Reached)
	assert.Equal(t, []entity.ShipmentState{entity.ShipmentStateWaiting, entity.ShipmentStateAssigned, entity.ShipmentStateDone}, rep.Stage.Steps)
	assert.Equal(t, []string{actionWait, actionAssign, actionDone}, b.Calls())

	want := []map[string]any{{
		"moves": []any{[]any{"write", []int64{11}, map[string]any{
			"scanned_quantity": json.Number("5"),
			"state":            "done",
		}}},
	}}
	if diff := cmp.Diff(want, b.Writes()); diff != "" {
		t.Errorf("payload de guardado (-want +got):\n%s", diff)
	}

	snap, pending, err := sess.Snapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, pending)
	assert.Equal(t, entity.ShipmentStateDone, snap.State)
	assert.True(t, snap.Moves[0].ScannedQuantity.Equal(decimal.NewFromInt(5)))

	assert.Equal(t, []string{
		"input:partial", "save:saved", "stage:waiting", "stage:assigned", "stage:done", "input:completed",
	}, j.Kinds())
}

func TestHandleInput_CantidadMayorQueLaEsperadaSeRechaza(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)
	ctx := context.Background()

	_, err := sess.HandleInput(ctx, "123456")
	require.NoError(t, err)

	rep, err := sess.HandleInput(ctx, "6")
	require.NoError(t, err)
	assert.Equal(t, shipment.OutcomeRejected, rep.Outcome)
	assert.Equal(t, fulfillment.FailureOverflow, rep.Failure)
	require.Len(t, rep.Alerts, 1)
	assert.Equal(t, i18n.KeyQuantityExceeds, rep.Alerts[0].Key)
	assert.Equal(t, []string{"Widget", "6", "5"}, rep.Alerts[0].Args)
	require.NotNil(t, rep.Pending, "la línea sigue pendiente para reintentar")
	assert.Equal(t, "1", rep.Pending.Scanned.String())
	assert.Empty(t, b.Calls())
}

func TestHandleInput_ExcesoAcumuladoSeRechaza(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)
	ctx := context.Background()

	_, _ = sess.HandleInput(ctx, "123456")
	rep, err := sess.HandleInput(ctx, "4.5")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.FailureOverflow, rep.Failure)
	assert.Equal(t, "1", rep.Pending.Scanned.String())
}

func TestHandleInput_ModoReemplazo(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	sess := openSession(t, b, nil, shipment.ModeReplace)
	ctx := context.Background()

	_, _ = sess.HandleInput(ctx, "123456")
	rep, err := sess.HandleInput(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, shipment.OutcomePartial, rep.Outcome)
	assert.Equal(t, "3", rep.Pending.Scanned.String())

	rep, err = sess.HandleInput(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, shipment.OutcomeCompleted, rep.Outcome)
	assert.True(t, rep.Stage.Terminal)
}

func TestHandleInput_CantidadSinProductoPendiente(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)

	rep, err := sess.HandleInput(context.Background(), "4")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.InputNone, rep.Kind)
	assert.Equal(t, fulfillment.FailureNoProduct, rep.Failure)
	assert.Equal(t, []string{i18n.KeyNoGivenProduct}, alertKeys(rep.Alerts))
	assert.True(t, rep.ClearInput)
}

func TestHandleInput_CantidadNoNumerica(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)
	ctx := context.Background()

	_, _ = sess.HandleInput(ctx, "123456")
	rep, err := sess.HandleInput(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.FailureInvalidQuantity, rep.Failure)
	assert.Equal(t, []string{i18n.KeyInvalidQuantity}, alertKeys(rep.Alerts))
	assert.NotNil(t, rep.Pending)
}

func TestHandleInput_ProductoDesconocidoOFueraDelEnvio(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	b.products["555555"] = 99
	sess := openSession(t, b, nil, shipment.ModeAccumulate)
	ctx := context.Background()

	rep, err := sess.HandleInput(ctx, "999999")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.FailureNoMatch, rep.Failure)
	assert.Empty(t, rep.Alerts)
	assert.Nil(t, rep.Pending)

	rep, err = sess.HandleInput(ctx, "555555")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.FailureNoMatch, rep.Failure)
	assert.Empty(t, rep.Alerts)
}

func TestHandleInput_FalloDeBusquedaNoModificaNada(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)
	b.searchErr[fulfillment.ProductModel] = &domain.RemoteError{Kind: domain.RemoteKindTransport, Messages: []string{"timeout"}}

	rep, err := sess.HandleInput(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.FailureLookup, rep.Failure)
	assert.Empty(t, rep.Alerts)

	snap, _, err := sess.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Moves[0].ScannedQuantity.IsZero())
}

func TestHandleInput_LineaYaCompleta(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{
		moveRow(11, 7, "Widget", "5", json.Number("5"), "done"),
		moveRow(12, 8, "Tornillo", "2", nil, "draft"),
	}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)

	rep, err := sess.HandleInput(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.FailureAlreadyDone, rep.Failure)
	assert.Equal(t, []string{i18n.KeyLineAlreadyDone}, alertKeys(rep.Alerts))
	assert.Nil(t, rep.Pending, "una línea completa no queda pendiente")
}

func TestHandleInput_EscaneoUnitarioCompletaLaLinea(t *testing.T) {
	b := newFakeBackend()
	b.header["state"] = "assigned"
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "1", nil, "assigned")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)

	rep, err := sess.HandleInput(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, shipment.OutcomeCompleted, rep.Outcome)
	assert.Nil(t, rep.Pending)
	assert.Equal(t, []string{actionDone}, b.Calls())
	assert.Contains(t, alertKeys(rep.Alerts), i18n.KeyShipmentDone)
}

func TestHandleInput_CompletaLineaPeroFaltanOtras(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{
		moveRow(11, 7, "Widget", "1", nil, "draft"),
		moveRow(12, 8, "Tornillo", "2", nil, "draft"),
	}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)

	rep, err := sess.HandleInput(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, shipment.OutcomeCompleted, rep.Outcome)
	assert.False(t, rep.Reconciled)
	assert.Nil(t, rep.Save)
	assert.Nil(t, rep.Stage)
	assert.Empty(t, b.Calls())
	assert.True(t, sess.Dirty())
}

func TestResetPending_LiberaLaLinea(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)
	ctx := context.Background()

	_, _ = sess.HandleInput(ctx, "123456")
	require.NoError(t, sess.ResetPending())

	rep, err := sess.HandleInput(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, fulfillment.FailureNoProduct, rep.Failure)
}

// ──── Guardado ──────────────────────────────────────────────────────────────

func TestPersist_InteractivoIncluyeCantidadYAvisa(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{
		moveRow(11, 7, "Widget", "5", nil, "draft"),
		moveRow(12, 8, "Tornillo", "2", json.Number("1"), "draft"),
	}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)
	ctx := context.Background()
	_, _ = sess.HandleInput(ctx, "123456")
	require.True(t, sess.Dirty())

	rep, err := sess.Persist(ctx, true)
	require.NoError(t, err)
	assert.True(t, rep.Saved)
	assert.Equal(t, []string{i18n.KeySaveSuccessful}, alertKeys(rep.Alerts))
	assert.False(t, sess.Dirty())

	want := []map[string]any{{
		"moves": []any{[]any{"write",
			[]int64{11}, map[string]any{"scanned_quantity": json.Number("1"), "quantity": json.Number("1"), "state": "draft"},
			[]int64{12}, map[string]any{"scanned_quantity": json.Number("1"), "quantity": json.Number("1"), "state": "draft"},
		}},
	}}
	if diff := cmp.Diff(want, b.Writes()); diff != "" {
		t.Errorf("payload de guardado (-want +got):\n%s", diff)
	}
}

func TestPersist_ErrorDeStockNombraProductoYCantidad(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)
	b.writeErr = &domain.RemoteError{
		Kind:     domain.RemoteKindUserError,
		Messages: []string{`Not enough "Widget" in stock, need "10" units`},
	}

	rep, err := sess.Persist(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, rep.Saved)
	assert.Equal(t, fulfillment.FailureValidation, rep.Failure)
	require.Len(t, rep.Alerts, 1)
	assert.Equal(t, i18n.KeySaveError, rep.Alerts[0].Key)
	assert.Equal(t, []string{"Widget", "10"}, rep.Alerts[0].Args)
}

func TestPersist_UserErrorSinFormatoDeStock(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)
	b.writeErr = fmt.Errorf("escribir líneas: %w", &domain.RemoteError{
		Kind:     domain.RemoteKindUserError,
		Messages: []string{"La ubicación está inactiva"},
	})

	rep, err := sess.Persist(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.FailureValidation, rep.Failure)
	require.Len(t, rep.Alerts, 1)
	assert.Equal(t, i18n.KeyErrorFatal, rep.Alerts[0].Key)
	assert.Equal(t, []string{"La ubicación está inactiva"}, rep.Alerts[0].Args)
}

func TestPersist_OtroErrorEsFatal(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)
	b.writeErr = errors.New("connection reset")

	rep, err := sess.Persist(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, fulfillment.FailureRemote, rep.Failure)
	require.Len(t, rep.Alerts, 1)
	assert.Equal(t, i18n.KeyErrorFatal, rep.Alerts[0].Key)
	assert.Equal(t, []string{"connection reset"}, rep.Alerts[0].Args)
}

func TestHandleInput_SiElGuardadoFallaNoAvanza(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "1", nil, "draft")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)
	b.writeErr = errors.New("down")

	rep, err := sess.HandleInput(context.Background(), "123456")
	require.NoError(t, err)
	require.NotNil(t, rep.Save)
	assert.False(t, rep.Save.Saved)
	assert.Nil(t, rep.Stage)
	assert.Empty(t, b.Calls())
}

// ──── Siguiente estado ──────────────────────────────────────────────────────

func TestNextStage_GuardaAntesDeAvanzar(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)

	rep, err := sess.NextStage(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.Save.Saved)
	require.Len(t, b.Writes(), 1)
	assert.True(t, rep.Stage.Terminal)
}

func TestNextStage_EnvioTerminadoNoLlamaAlBackend(t *testing.T) {
	b := newFakeBackend()
	b.header["state"] = "done"
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", json.Number("5"), "done")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)

	rep, err := sess.NextStage(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.Stage.Terminal)
	assert.Empty(t, rep.Stage.Steps)
	assert.Empty(t, b.Calls())
}

func TestNextStage_RechazoDejaElEstadoConfirmado(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	b.callResults[actionAssign] = false
	j := &fakeJournal{}
	sess := openSession(t, b, j, shipment.ModeAccumulate)

	rep, err := sess.NextStage(context.Background())
	require.NoError(t, err)
	assert.False(t, rep.Stage.Terminal)
	assert.Equal(t, fulfillment.FailureRefusal, rep.Stage.Failure)
	assert.ErrorIs(t, rep.Stage.Err, domain.ErrTransitionRefused)
	assert.Equal(t, entity.ShipmentStateWaiting, rep.Stage.Reached)
	require.Len(t, rep.Stage.Alerts, 1)
	assert.Equal(t, i18n.KeyUnableToAssign, rep.Stage.Alerts[0].Key)
	assert.True(t, rep.Stage.Alerts[0].Blocking)
	assert.Equal(t, []string{actionWait, actionAssign}, b.Calls())

	snap, _, err := sess.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStateWaiting, snap.State)
	assert.Contains(t, j.Kinds(), "stage:transition_refusal")
}

func TestNextStage_ErrorRemotoNoCambiaElEstado(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	b.callErrs[actionWait] = &domain.RemoteError{Kind: domain.RemoteKindUserError, Messages: []string{"El envío no tiene empleado"}}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)

	rep, err := sess.NextStage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fulfillment.FailureRemote, rep.Stage.Failure)
	assert.Equal(t, entity.ShipmentStateDraft, rep.Stage.Reached)
	require.Len(t, rep.Stage.Alerts, 1)
	assert.Equal(t, i18n.KeyStageError, rep.Stage.Alerts[0].Key)
	assert.Equal(t, []string{"El envío no tiene empleado"}, rep.Stage.Alerts[0].Args)
}

// ──── Concurrencia ──────────────────────────────────────────────────────────

func TestHandleInput_SegundaLecturaEnCursoEsRechazada(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	sess := openSession(t, b, nil, shipment.ModeAccumulate)
	b.entered = make(chan struct{})
	b.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := sess.HandleInput(context.Background(), "123456")
		done <- err
	}()
	<-b.entered

	_, err := sess.HandleInput(context.Background(), "123456")
	assert.ErrorIs(t, err, domain.ErrSessionBusy)
	_, err = sess.Persist(context.Background(), true)
	assert.ErrorIs(t, err, domain.ErrSessionBusy)
	assert.ErrorIs(t, sess.ResetPending(), domain.ErrSessionBusy)

	close(b.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("la primera lectura no terminó")
	}

	snap, _, err := sess.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", snap.Moves[0].ScannedQuantity.String(), "solo la primera lectura se aplicó")
}

func TestHandleInput_FalloDelDiarioNoBloquea(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	sess := openSession(t, b, &fakeJournal{err: errors.New("db caída")}, shipment.ModeAccumulate)

	rep, err := sess.HandleInput(context.Background(), "123456")
	require.NoError(t, err)
	assert.Equal(t, shipment.OutcomePartial, rep.Outcome)
}

func TestHandleInput_LecturaRechazadaSeRegistraSinCantidad(t *testing.T) {
	b := newFakeBackend()
	b.moves = []ports.Row{moveRow(11, 7, "Widget", "5", nil, "draft")}
	j := &fakeJournal{}
	sess := openSession(t, b, j, shipment.ModeAccumulate)

	_, err := sess.HandleInput(context.Background(), "123456")
	require.NoError(t, err)
	long := "98765432109876543210987654"
	rep, err := sess.HandleInput(context.Background(), long)
	require.NoError(t, err)
	assert.Equal(t, shipment.OutcomeRejected, rep.Outcome)
	assert.Equal(t, fulfillment.FailureOverflow, rep.Failure)

	j.mu.Lock()
	defer j.mu.Unlock()
	require.Len(t, j.events, 2)
	assert.True(t, j.events[0].Quantity.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, long, j.events[1].Token)
	assert.True(t, j.events[1].Quantity.IsZero())
}
