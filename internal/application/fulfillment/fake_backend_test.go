package fulfillment_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-shipments/internal/application/fulfillment"
	"github.com/jhoicas/Inventario-shipments/internal/application/ports"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
	"github.com/jhoicas/Inventario-shipments/internal/domain/repository"
	"github.com/jhoicas/Inventario-shipments/internal/domain/shipment"
	"github.com/jhoicas/Inventario-shipments/pkg/logger"
)

// fakeBackend backend en memoria con respuestas programables.
type fakeBackend struct {
	mu sync.Mutex

	header   ports.Row
	moves    []ports.Row
	products map[string]int64 // rec_name → id

	searchErr   map[string]error // por modelo
	writeErr    error
	callResults map[string]any   // por acción; por defecto true
	callErrs    map[string]error // por acción

	// Si no es nil, la búsqueda de productos avisa en entered y espera release.
	entered chan struct{}
	release chan struct{}

	writes  []map[string]any
	calls   []string
	clauses map[string][]ports.Clause
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		header:      ports.Row{"id": json.Number("3"), "code": "INT-3", "reference": "R-1", "state": "draft"},
		products:    map[string]int64{"123456": 7},
		searchErr:   map[string]error{},
		callResults: map[string]any{},
		callErrs:    map[string]error{},
		clauses:     map[string][]ports.Clause{},
	}
}

func moveRow(id, product int64, name, qty string, scanned any, state string) ports.Row {
	return ports.Row{
		"id":               json.Number(strconv.FormatInt(id, 10)),
		"product":          json.Number(strconv.FormatInt(product, 10)),
		"product.rec_name": name,
		"product.code":     "77" + strconv.FormatInt(product, 10),
		"quantity":         json.Number(qty),
		"scanned_quantity": scanned,
		"state":            state,
		"uom.rec_name":     "u",
	}
}

func (f *fakeBackend) Search(ctx context.Context, req ports.SearchRequest) ([]ports.Row, error) {
	f.mu.Lock()
	f.clauses[req.Model] = req.Domain
	err := f.searchErr[req.Model]
	entered, release := f.entered, f.release
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	switch req.Model {
	case fulfillment.ShipmentModel:
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.header == nil {
			return nil, nil
		}
		return []ports.Row{f.header}, nil
	case fulfillment.MoveModel:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.moves, nil
	case fulfillment.ProductModel:
		if entered != nil {
			entered <- struct{}{}
			<-release
		}
		token, _ := req.Domain[0].Value.(string)
		f.mu.Lock()
		defer f.mu.Unlock()
		if id, ok := f.products[token]; ok {
			return []ports.Row{{"id": json.Number(strconv.FormatInt(id, 10))}}, nil
		}
		return nil, nil
	}
	return nil, errors.New("modelo inesperado " + req.Model)
}

func (f *fakeBackend) Write(_ context.Context, model string, id int64, patch map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, patch)
	return nil
}

func (f *fakeBackend) Call(_ context.Context, action string, _ []int64) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, action)
	if err := f.callErrs[action]; err != nil {
		return nil, err
	}
	if res, ok := f.callResults[action]; ok {
		return res, nil
	}
	return true, nil
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Writes() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.writes...)
}

// fakeConnector entrega siempre el mismo backend.
type fakeConnector struct {
	backend *fakeBackend
}

func (c *fakeConnector) Login(context.Context, string, string) (ports.Credentials, error) {
	return ports.Credentials{UserID: 1, Login: "bodega", Session: "s"}, nil
}

func (c *fakeConnector) Connect(ports.Credentials) ports.Backend { return c.backend }

// fakeJournal diario en memoria.
type fakeJournal struct {
	mu     sync.Mutex
	events []*entity.ScanEvent
	err    error
}

func (j *fakeJournal) Create(_ context.Context, ev *entity.ScanEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.events = append(j.events, ev)
	return nil
}

func (j *fakeJournal) ListByShipment(_ context.Context, shipmentID int64, limit, offset int) ([]*entity.ScanEvent, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []*entity.ScanEvent
	for _, ev := range j.events {
		if ev.ShipmentID == shipmentID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (j *fakeJournal) Kinds() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.events))
	for i, ev := range j.events {
		out[i] = ev.Kind + ":" + ev.Outcome
	}
	return out
}

var owner = ports.Credentials{UserID: 1, Login: "bodega", Session: "s"}

// openSession abre una sesión sobre el envío 3 del backend falso.
func openSession(t *testing.T, b *fakeBackend, j *fakeJournal, mode shipment.QuantityMode) *fulfillment.Session {
	t.Helper()
	reg := fulfillment.NewRegistry(&fakeConnector{backend: b}, journalOrNil(j), logger.Nop(), fulfillment.RegistryConfig{
		Session: fulfillment.SessionConfig{QuantityMode: mode},
	})
	t.Cleanup(reg.Close)
	sess, err := reg.Open(context.Background(), owner, 3)
	require.NoError(t, err)
	return sess
}

// journalOrNil evita pasar un *fakeJournal nil como interfaz no nil.
func journalOrNil(j *fakeJournal) repository.ScanEventRepository {
	if j == nil {
		return nil
	}
	return j
}

func alertKeys(alerts []fulfillment.Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.Key
	}
	return out
}
