package fulfillment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Inventario-shipments/internal/application/ports"
	"github.com/jhoicas/Inventario-shipments/internal/domain"
	"github.com/jhoicas/Inventario-shipments/internal/domain/repository"
	"github.com/jhoicas/Inventario-shipments/internal/domain/shipment"
	"github.com/jhoicas/Inventario-shipments/pkg/logger"
)

// RegistryConfig parámetros del registro de sesiones.
type RegistryConfig struct {
	Session       SessionConfig
	IdleTimeout   time.Duration // 0 = las sesiones no expiran
	SweepInterval time.Duration // 0 = IdleTimeout/2
}

// Registry mantiene las sesiones de escaneo abiertas, una por envío.
type Registry struct {
	connector ports.Connector
	journal   repository.ScanEventRepository
	log       *logger.Logger
	cfg       RegistryConfig
	now       func() time.Time

	mu         sync.RWMutex
	sessions   map[string]*Session
	byShipment map[int64]string

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewRegistry construye el registro y arranca el barrido de sesiones inactivas
// si IdleTimeout > 0. journal puede ser nil.
func NewRegistry(connector ports.Connector, journal repository.ScanEventRepository, log *logger.Logger, cfg RegistryConfig) *Registry {
	r := &Registry{
		connector:  connector,
		journal:    journal,
		log:        log,
		cfg:        cfg,
		now:        time.Now,
		sessions:   make(map[string]*Session),
		byShipment: make(map[int64]string),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	if cfg.IdleTimeout > 0 {
		interval := cfg.SweepInterval
		if interval <= 0 {
			interval = cfg.IdleTimeout / 2
		}
		go r.janitor(interval)
	} else {
		close(r.done)
	}
	return r
}

// Open abre una sesión sobre el envío. Si el mismo usuario ya tiene una sesión
// abierta sobre él, la devuelve atada a las credenciales nuevas; si es de otro
// usuario responde domain.ErrConflict.
func (r *Registry) Open(ctx context.Context, cred ports.Credentials, shipmentID int64) (*Session, error) {
	if sess, ok, err := r.reuse(shipmentID, cred.UserID); ok || err != nil {
		if err != nil {
			return nil, err
		}
		return sess, sess.rebind(ctx, r.connector.Connect(cred))
	}

	backend := r.connector.Connect(cred)
	s, err := loadShipment(ctx, backend, shipmentID)
	if err != nil {
		return nil, err
	}
	if _, ok := shipment.ParseState(string(s.State)); !ok {
		return nil, fmt.Errorf("envío %d en estado %q: %w", shipmentID, s.State, domain.ErrConflict)
	}

	r.mu.Lock()
	if id, ok := r.byShipment[shipmentID]; ok {
		sess := r.sessions[id]
		r.mu.Unlock()
		if sess.Owner() != cred.UserID {
			return nil, fmt.Errorf("envío %d en uso por otra sesión: %w", shipmentID, domain.ErrConflict)
		}
		return sess, sess.rebind(ctx, backend)
	}
	sess := newSession(uuid.NewString(), cred.UserID, s, backend, r.journal, r.log, r.cfg.Session, r.now)
	r.sessions[sess.ID()] = sess
	r.byShipment[shipmentID] = sess.ID()
	r.mu.Unlock()
	r.log.Info().Str("session_id", sess.ID()).Int64("shipment_id", shipmentID).Int64("user_id", cred.UserID).Int("moves", len(s.Moves)).Msg("sesión de escaneo abierta")
	return sess, nil
}

// reuse busca la sesión abierta sobre el envío y verifica su dueño.
func (r *Registry) reuse(shipmentID, userID int64) (*Session, bool, error) {
	r.mu.RLock()
	id, ok := r.byShipment[shipmentID]
	sess := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if sess.Owner() != userID {
		return nil, false, fmt.Errorf("envío %d en uso por otra sesión: %w", shipmentID, domain.ErrConflict)
	}
	return sess, true, nil
}

// Get devuelve la sesión si pertenece a userID.
func (r *Registry) Get(id string, userID int64) (*Session, error) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if sess.Owner() != userID {
		return nil, domain.ErrForbidden
	}
	return sess, nil
}

// Leave cierra la sesión. Con cantidades sin guardar responde domain.ErrUnsavedChanges
// salvo que force sea true.
func (r *Registry) Leave(id string, userID int64, force bool) error {
	sess, err := r.Get(id, userID)
	if err != nil {
		return err
	}
	if !force && sess.Dirty() {
		return domain.ErrUnsavedChanges
	}
	r.remove(sess)
	r.log.Info().Str("session_id", id).Bool("force", force).Msg("sesión de escaneo cerrada")
	return nil
}

// CloseShipment descarta cualquier sesión abierta sobre el envío (ej. tras eliminarlo).
func (r *Registry) CloseShipment(shipmentID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byShipment[shipmentID]; ok {
		delete(r.sessions, id)
		delete(r.byShipment, shipmentID)
	}
}

// Len cantidad de sesiones abiertas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep cierra las sesiones sin actividad por más de IdleTimeout y devuelve cuántas cerró.
// Una sesión con cantidades sin guardar se guarda en silencio antes de cerrarse; si
// el guardado falla o la sesión está ocupada, se conserva hasta el próximo barrido.
func (r *Registry) Sweep(ctx context.Context) int {
	if r.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.cfg.IdleTimeout)
	var expired []*Session
	r.mu.RLock()
	for _, sess := range r.sessions {
		if sess.LastActivity().Before(cutoff) {
			expired = append(expired, sess)
		}
	}
	r.mu.RUnlock()

	closed := 0
	for _, sess := range expired {
		if sess.Dirty() {
			rep, err := sess.Persist(ctx, false)
			if err != nil || !rep.Saved {
				r.log.Warn().Err(err).Str("session_id", sess.ID()).Int64("shipment_id", sess.ShipmentID()).Msg("sesión inactiva con cambios sin guardar; se conserva")
				continue
			}
		}
		r.remove(sess)
		closed++
		r.log.Info().Str("session_id", sess.ID()).Int64("shipment_id", sess.ShipmentID()).Msg("sesión expirada por inactividad")
	}
	return closed
}

// Close detiene el barrido y descarta todas las sesiones.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		close(r.stop)
		<-r.done
		r.mu.Lock()
		r.sessions = make(map[string]*Session)
		r.byShipment = make(map[int64]string)
		r.mu.Unlock()
	})
}

func (r *Registry) remove(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[sess.ID()]; ok && cur == sess {
		delete(r.sessions, sess.ID())
		delete(r.byShipment, sess.ShipmentID())
	}
}

func (r *Registry) janitor(interval time.Duration) {
	defer close(r.done)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-r.stop
		cancel()
	}()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}
