package inventory

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Manager owns every transition of Box, Activity, Pallet and PalletBox
// rows. Each public operation runs in a single database transaction.
type Manager struct {
	db     *gorm.DB
	rules  Rules
	log    *zap.Logger
	events EventPublisher
	rec    Recorder
	clock  func() time.Time
	ledger *ledger
}

// Option configures a Manager
type Option func(*Manager)

// WithPublisher sets the receiver of committed events
func WithPublisher(p EventPublisher) Option {
	return func(m *Manager) { m.events = p }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.rec = r }
}

// WithClock overrides the time source
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) { m.clock = clock }
}

// NewManager creates a Manager over db
func NewManager(db *gorm.DB, rules Rules, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		db:     db,
		rules:  rules,
		log:    log,
		events: nopPublisher{},
		rec:    nopRecorder{},
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ledger = &ledger{log: m.log, rec: m.rec, now: m.now}
	return m
}

// Rules returns the rule set the manager enforces
func (m *Manager) Rules() Rules {
	return m.rules
}

func (m *Manager) now() time.Time {
	return m.clock().UTC()
}

// txn is one open transaction plus the events to publish once it commits
type txn struct {
	*gorm.DB
	events []Event
	at     time.Time
}

func (t *txn) emit(e Event) {
	e.At = t.at
	t.events = append(t.events, e)
}

// inTx runs fn in a transaction, records the outcome and publishes the
// collected events only after a successful commit
func (m *Manager) inTx(ctx context.Context, op string, fn func(t *txn) error) error {
	start := time.Now()
	t := &txn{at: m.now()}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t.DB = tx
		return fn(t)
	})

	kind := "ok"
	if err != nil {
		kind = string(KindOf(err))
		if kind == "" {
			kind = "error"
		}
	}
	m.rec.RecordOperation(op, kind, time.Since(start))

	if err != nil {
		switch kind {
		case "error":
			m.log.Error("Inventory operation failed", zap.String("op", op), zap.Error(err))
		case string(KindInternal):
			// already logged with ledger context
		default:
			m.log.Debug("Inventory operation rejected", zap.String("op", op), zap.Error(err))
		}
		return err
	}

	for _, e := range t.events {
		m.events.Publish(e)
	}
	return nil
}

// dateOnly truncates t to midnight UTC of its calendar day
func dateOnly(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

func intPtr(v int) *int {
	return &v
}

// monthPtr stores a month, mapping the "not given" 0 to nil
func monthPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
