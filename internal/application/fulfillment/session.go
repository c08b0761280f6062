package fulfillment

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/Inventario-shipments/internal/application/ports"
	"github.com/jhoicas/Inventario-shipments/internal/domain"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
	"github.com/jhoicas/Inventario-shipments/internal/domain/repository"
	"github.com/jhoicas/Inventario-shipments/internal/domain/shipment"
	"github.com/jhoicas/Inventario-shipments/pkg/i18n"
	"github.com/jhoicas/Inventario-shipments/pkg/logger"
)

// SessionConfig parámetros de interpretación de lecturas.
type SessionConfig struct {
	ProductCodeThreshold int64
	QuantityMode         shipment.QuantityMode
}

// Session controla el escaneo de un envío: interpreta lecturas, concilia
// cantidades, guarda el progreso y avanza el estado del envío.
// Solo una operación mutante corre a la vez; las demás fallan con domain.ErrSessionBusy.
type Session struct {
	id      string
	owner   int64
	backend ports.Backend
	machine *StageMachine
	journal repository.ScanEventRepository
	log     *logger.Logger
	cfg     SessionConfig
	now     func() time.Time

	guard        *semaphore.Weighted
	lastActivity atomic.Int64

	// Protegidos por guard.
	shipment *entity.Shipment
	pending  *entity.Move
	dirty    bool
}

func newSession(id string, owner int64, s *entity.Shipment, backend ports.Backend, journal repository.ScanEventRepository, log *logger.Logger, cfg SessionConfig, now func() time.Time) *Session {
	if cfg.ProductCodeThreshold == 0 {
		cfg.ProductCodeThreshold = shipment.DefaultProductCodeThreshold
	}
	if cfg.QuantityMode == "" {
		cfg.QuantityMode = shipment.ModeAccumulate
	}
	slog := log.WithFields(map[string]any{"session_id": id, "shipment_id": s.ID})
	sess := &Session{
		id:       id,
		owner:    owner,
		backend:  backend,
		machine:  NewStageMachine(backend, slog),
		journal:  journal,
		log:      slog,
		cfg:      cfg,
		now:      now,
		guard:    semaphore.NewWeighted(1),
		shipment: s,
	}
	sess.touch()
	return sess
}

// ID identificador de la sesión.
func (s *Session) ID() string { return s.id }

// Owner usuario del backend dueño de la sesión.
func (s *Session) Owner() int64 { return s.owner }

// ShipmentID envío que controla la sesión.
func (s *Session) ShipmentID() int64 { return s.shipment.ID }

func (s *Session) touch() { s.lastActivity.Store(s.now().UnixNano()) }

// LastActivity momento de la última operación recibida.
func (s *Session) LastActivity() time.Time { return time.Unix(0, s.lastActivity.Load()) }

// Snapshot copia profunda del envío y de la línea pendiente. Espera a que termine
// la operación en curso.
func (s *Session) Snapshot(ctx context.Context) (*entity.Shipment, *PendingLine, error) {
	if err := s.guard.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}
	defer s.guard.Release(1)
	return s.shipment.Clone(), s.pendingView(), nil
}

// rebind ata la sesión a un backend nuevo (ej. tras un nuevo login del mismo
// operario). Espera a que termine la operación en curso.
func (s *Session) rebind(ctx context.Context, backend ports.Backend) error {
	if err := s.guard.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.guard.Release(1)
	s.backend = backend
	s.machine = NewStageMachine(backend, s.log)
	s.touch()
	return nil
}

// Dirty indica si hay cantidades escaneadas sin guardar.
func (s *Session) Dirty() bool {
	if !s.guard.TryAcquire(1) {
		return true
	}
	defer s.guard.Release(1)
	return s.dirty
}

// HandleInput procesa una lectura del escáner o una cantidad digitada.
//
// Sin línea pendiente, una lectura que parece código de producto se resuelve en el
// backend y suma 1 a su línea. Con línea pendiente, la lectura es la cantidad
// para esa línea. Si la línea se completa y todo el envío queda conciliado se
// guarda y se avanza el estado.
func (s *Session) HandleInput(ctx context.Context, token string) (*InputReport, error) {
	if !s.guard.TryAcquire(1) {
		return nil, domain.ErrSessionBusy
	}
	defer s.guard.Release(1)
	s.touch()

	token = strings.TrimSpace(token)
	rep := &InputReport{Token: token, Kind: InputNone, ClearInput: true}
	var applied decimal.Decimal

	switch {
	case s.pending == nil && shipment.LooksLikeProductCode(token, s.cfg.ProductCodeThreshold):
		applied = s.handleProductScan(ctx, token, rep)
	case s.pending != nil:
		applied = s.handleQuantity(ctx, token, rep)
	default:
		rep.Failure = FailureNoProduct
		rep.alert(LevelWarning, i18n.KeyNoGivenProduct)
	}

	if rep.Outcome == shipment.OutcomeRejected {
		// La lectura rechazada queda solo en Token.
		applied = decimal.Zero
	}
	rep.Pending = s.pendingView()
	rep.Reconciled = shipment.IsReconciled(s.shipment.Moves)

	outcome := string(rep.Outcome)
	if rep.Failure != FailureNone {
		outcome = string(rep.Failure)
	}
	s.log.Debug().Str("token", token).Str("kind", string(rep.Kind)).Str("outcome", outcome).Msg("lectura procesada")
	s.record(ctx, &entity.ScanEvent{
		Kind:     entity.ScanEventInput,
		MoveID:   rep.MoveID,
		Token:    token,
		Quantity: applied,
		Outcome:  outcome,
		Detail:   string(rep.Kind),
	})
	return rep, nil
}

func (s *Session) handleProductScan(ctx context.Context, token string, rep *InputReport) decimal.Decimal {
	rep.Kind = InputProductScan
	productID, err := s.resolveProduct(ctx, token)
	if err != nil {
		s.log.Debug().Err(err).Str("token", token).Msg("no se pudo resolver el producto")
		rep.Failure = FailureLookup
		return decimal.Zero
	}
	line, ok := shipment.MatchLine(s.shipment.Moves, productID)
	if productID == 0 || !ok {
		rep.Failure = FailureNoMatch
		return decimal.Zero
	}
	rep.MoveID = line.ID

	one := decimal.NewFromInt(1)
	res := shipment.ApplyQuantity(line, one, s.cfg.QuantityMode)
	rep.Outcome = res.Outcome
	switch res.Outcome {
	case shipment.OutcomeCompleted:
		s.dirty = true
		if shipment.IsReconciled(s.shipment.Moves) {
			s.finish(ctx, rep)
		}
	case shipment.OutcomePartial:
		s.dirty = true
		s.pending = line
		rep.alert(LevelInfo, i18n.KeyLinePending, line.ProductName, line.ScannedQuantity.String(), line.Quantity.String())
	case shipment.OutcomeRejected:
		s.rejected(line, res, rep)
		if res.Reason != shipment.ReasonAlreadyDone {
			s.pending = line
		}
	}
	return one
}

func (s *Session) handleQuantity(ctx context.Context, token string, rep *InputReport) decimal.Decimal {
	rep.Kind = InputQuantity
	line := s.pending
	rep.MoveID = line.ID

	amount, err := decimal.NewFromString(token)
	if err != nil {
		rep.Outcome = shipment.OutcomeRejected
		rep.Failure = FailureInvalidQuantity
		rep.alert(LevelWarning, i18n.KeyInvalidQuantity, token)
		return decimal.Zero
	}

	res := shipment.ApplyQuantity(line, amount, s.cfg.QuantityMode)
	rep.Outcome = res.Outcome
	switch res.Outcome {
	case shipment.OutcomeCompleted:
		s.dirty = true
		if shipment.IsReconciled(s.shipment.Moves) {
			s.finish(ctx, rep)
		}
		s.pending = nil
	case shipment.OutcomePartial:
		s.dirty = true
		rep.alert(LevelInfo, i18n.KeyLinePending, line.ProductName, line.ScannedQuantity.String(), line.Quantity.String())
	case shipment.OutcomeRejected:
		s.rejected(line, res, rep)
		if res.Reason == shipment.ReasonAlreadyDone {
			s.pending = nil
		}
	}
	return amount
}

func (s *Session) rejected(line *entity.Move, res shipment.Result, rep *InputReport) {
	switch res.Reason {
	case shipment.ReasonOverflow:
		rep.Failure = FailureOverflow
		rep.alert(LevelWarning, i18n.KeyQuantityExceeds, line.ProductName, res.Overflow.String(), line.ExpectedQuantity.String())
	case shipment.ReasonAlreadyDone:
		rep.Failure = FailureAlreadyDone
		rep.alert(LevelInfo, i18n.KeyLineAlreadyDone, line.ProductName)
	case shipment.ReasonInvalidAmount:
		rep.Failure = FailureInvalidQuantity
		rep.alert(LevelWarning, i18n.KeyInvalidQuantity, rep.Token)
	}
}

// finish guarda en silencio y avanza el envío; si el guardado falla no se avanza.
func (s *Session) finish(ctx context.Context, rep *InputReport) {
	save := s.persist(ctx, false)
	rep.Save = save
	rep.Alerts = append(rep.Alerts, save.Alerts...)
	if !save.Saved {
		return
	}
	stage := s.advance(ctx)
	rep.Stage = &stage
	rep.Alerts = append(rep.Alerts, stage.Alerts...)
}

func (s *Session) resolveProduct(ctx context.Context, token string) (int64, error) {
	rows, err := s.backend.Search(ctx, ports.SearchRequest{
		Model:  ProductModel,
		Domain: []ports.Clause{ports.Eq("rec_name", token)},
		Fields: []string{"id"},
		Limit:  1,
	})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Int64("id")
}

// Persist guarda las cantidades escaneadas de todas las líneas en una sola escritura.
// interactive indica que el operario pidió guardar: se envía también quantity y se
// avisa del éxito.
func (s *Session) Persist(ctx context.Context, interactive bool) (*SaveReport, error) {
	if !s.guard.TryAcquire(1) {
		return nil, domain.ErrSessionBusy
	}
	defer s.guard.Release(1)
	s.touch()
	return s.persist(ctx, interactive), nil
}

// NextStage guarda en silencio y avanza el envío tanto como el backend permita.
func (s *Session) NextStage(ctx context.Context) (*StageReport, error) {
	if !s.guard.TryAcquire(1) {
		return nil, domain.ErrSessionBusy
	}
	defer s.guard.Release(1)
	s.touch()

	rep := &StageReport{Save: s.persist(ctx, false)}
	if !rep.Save.Saved {
		return rep, nil
	}
	stage := s.advance(ctx)
	rep.Stage = &stage
	return rep, nil
}

// ResetPending descarta la línea pendiente; la siguiente lectura vuelve a
// interpretarse como código de producto.
func (s *Session) ResetPending() error {
	if !s.guard.TryAcquire(1) {
		return domain.ErrSessionBusy
	}
	defer s.guard.Release(1)
	s.touch()
	s.pending = nil
	return nil
}

func (s *Session) advance(ctx context.Context) AdvanceResult {
	res := s.machine.Advance(ctx, s.shipment)
	for _, st := range res.Steps {
		s.record(ctx, &entity.ScanEvent{Kind: entity.ScanEventStage, Outcome: string(st)})
	}
	if res.Failure != FailureNone {
		detail := ""
		if res.Err != nil {
			detail = remoteMessage(res.Err)
		}
		s.record(ctx, &entity.ScanEvent{Kind: entity.ScanEventStage, Outcome: string(res.Failure), Detail: detail})
	}
	if res.Terminal {
		res.Alerts = append(res.Alerts, Alert{Level: LevelInfo, Key: i18n.KeyShipmentDone})
	}
	return res
}

func (s *Session) pendingView() *PendingLine {
	if s.pending == nil {
		return nil
	}
	return &PendingLine{
		MoveID:      s.pending.ID,
		ProductName: s.pending.ProductName,
		Scanned:     s.pending.ScannedQuantity,
		Quantity:    s.pending.Quantity,
	}
}

// record anota el evento en el diario. Un fallo del diario solo se registra en el log.
func (s *Session) record(ctx context.Context, ev *entity.ScanEvent) {
	if s.journal == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.SessionID = s.id
	ev.ShipmentID = s.shipment.ID
	ev.UserID = formatID(s.owner)
	ev.CreatedAt = s.now().UTC()
	if err := s.journal.Create(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("kind", ev.Kind).Msg("no se pudo registrar el evento de escaneo")
	}
}
