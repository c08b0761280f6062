package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-shipments/internal/domain"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
	"github.com/jhoicas/Inventario-shipments/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-shipments/pkg/config"
)

// Requiere una base de datos real: TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres
func newRepo(t *testing.T) *postgres.ScanEventRepo {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := postgres.NewScanEventRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func TestScanEventRepo_CreateYListByShipment(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	shipmentID := time.Now().UnixNano() // aísla la corrida

	first := &entity.ScanEvent{
		SessionID: uuid.NewString(), ShipmentID: shipmentID, MoveID: 12, UserID: "7",
		Kind: entity.ScanEventInput, Token: "123456", Quantity: decimal.RequireFromString("1.5"),
		Outcome: "partial", CreatedAt: time.Now().UTC().Add(-time.Minute),
	}
	second := &entity.ScanEvent{
		SessionID: first.SessionID, ShipmentID: shipmentID, UserID: "7",
		Kind: entity.ScanEventStage, Outcome: "done",
	}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.NotEmpty(t, second.ID)

	list, err := repo.ListByShipment(ctx, shipmentID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "más recientes primero")
	assert.Zero(t, list[0].MoveID)
	assert.Equal(t, int64(12), list[1].MoveID)
	assert.True(t, list[1].Quantity.Equal(decimal.RequireFromString("1.5")))
}

func TestScanEventRepo_IDDuplicadoEsConflicto(t *testing.T) {
	repo := newRepo(t)
	ev := &entity.ScanEvent{ID: uuid.NewString(), SessionID: "s", ShipmentID: 1, UserID: "1", Kind: entity.ScanEventSave}
	require.NoError(t, repo.Create(context.Background(), ev))
	err := repo.Create(context.Background(), ev)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestScanEventRepo_CantidadLargaNoDesborda(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	shipmentID := time.Now().UnixNano()
	big := decimal.RequireFromString("98765432109876543210.125")

	ev := &entity.ScanEvent{
		SessionID: uuid.NewString(), ShipmentID: shipmentID, UserID: "7",
		Kind: entity.ScanEventInput, Token: big.String(), Quantity: big, Outcome: "partial",
	}
	require.NoError(t, repo.Create(ctx, ev))

	list, err := repo.ListByShipment(ctx, shipmentID, 1, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Quantity.Equal(big))
}
