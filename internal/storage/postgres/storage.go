package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/milkway/milkway/internal/domain/errors"
	"github.com/milkway/milkway/internal/domain/model"
	"github.com/milkway/milkway/internal/domain/repository"
)

// matchedOnceIndex enforces the single-writer rule: at most one matched
// event per subscription and occurrence date.
const matchedOnceIndex = "delivery_events_matched_once"

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type subscriptionRepository struct {
	storage *Storage
}

type eventRepository struct {
	storage *Storage
}

type calendarRepository struct {
	storage *Storage
}

type missedRepository struct {
	storage *Storage
}

type auditRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Subscriptions() repository.SubscriptionRepository {
	return &subscriptionRepository{storage: s}
}

func (s *Storage) Events() repository.DeliveryEventRepository {
	return &eventRepository{storage: s}
}

func (s *Storage) Calendar() repository.CalendarRepository {
	return &calendarRepository{storage: s}
}

func (s *Storage) Missed() repository.MissedRepository {
	return &missedRepository{storage: s}
}

func (s *Storage) Audit() repository.AuditRepository {
	return &auditRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
            id SERIAL PRIMARY KEY,
            customer_id BIGINT NOT NULL REFERENCES users(id),
            vendor_id BIGINT NOT NULL REFERENCES users(id),
            product TEXT NOT NULL,
            quantity DOUBLE PRECISION NOT NULL,
            rule_kind TEXT NOT NULL,
            rule_weekdays JSONB NOT NULL DEFAULT '[]',
            start_date DATE NOT NULL,
            end_date DATE,
            status TEXT NOT NULL,
            pauses JSONB NOT NULL DEFAULT '[]',
            cancelled_at DATE,
            version BIGINT NOT NULL DEFAULT 1,
            last_swept_at TIMESTAMPTZ NOT NULL DEFAULT 'epoch',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS delivery_events (
            id SERIAL PRIMARY KEY,
            external_id UUID UNIQUE NOT NULL,
            milkman_id BIGINT NOT NULL REFERENCES users(id),
            subscription_id BIGINT NOT NULL REFERENCES subscriptions(id),
            service_date DATE NOT NULL,
            quantity DOUBLE PRECISION NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            non_delivery_reason TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            matched_date DATE,
            supersedes BIGINT,
            reported_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS vendor_holidays (
            vendor_id BIGINT NOT NULL REFERENCES users(id),
            date DATE NOT NULL,
            reason TEXT NOT NULL DEFAULT '',
            PRIMARY KEY (vendor_id, date)
        )`,
		`CREATE TABLE IF NOT EXISTS missed_occurrences (
            subscription_id BIGINT NOT NULL REFERENCES subscriptions(id),
            date DATE NOT NULL,
            marked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (subscription_id, date)
        )`,
		`CREATE TABLE IF NOT EXISTS audit_log (
            id SERIAL PRIMARY KEY,
            actor TEXT NOT NULL,
            action TEXT NOT NULL,
            subscription_id BIGINT NOT NULL,
            occurrence_date DATE,
            event_id BIGINT,
            detail TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + matchedOnceIndex + `
            ON delivery_events(subscription_id, matched_date) WHERE status='matched'`,
		`CREATE INDEX IF NOT EXISTS idx_events_subscription ON delivery_events(subscription_id, service_date)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_sweep ON subscriptions(last_swept_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// mapUniqueViolation translates a 23505 into the domain error its
// constraint implies. The matched-once index means a concurrent writer
// already resolved the occurrence; anything else is a plain duplicate.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	if pgErr.ConstraintName == matchedOnceIndex {
		return domainErrors.ErrConflict
	}
	return domainErrors.ErrAlreadyExists
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash, role).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	u.Login = login
	u.PasswordHash = passwordHash
	u.Role = role
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM users WHERE login=$1`
	return scanUser(r.storage.pool.QueryRow(ctx, query, login))
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, created_at FROM users WHERE id=$1`
	return scanUser(r.storage.pool.QueryRow(ctx, query, id))
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- SubscriptionRepository implementation ---

type pauseRecord struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func encodePauses(pauses []model.PauseWindow) ([]byte, error) {
	records := make([]pauseRecord, 0, len(pauses))
	for _, w := range pauses {
		records = append(records, pauseRecord{
			From: w.From.Format(time.DateOnly),
			To:   w.To.Format(time.DateOnly),
		})
	}
	return json.Marshal(records)
}

func decodePauses(raw []byte) ([]model.PauseWindow, error) {
	var records []pauseRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode pauses: %w", err)
	}
	var pauses []model.PauseWindow
	for _, rec := range records {
		from, err := model.ParseDay(rec.From)
		if err != nil {
			return nil, fmt.Errorf("decode pauses: %w", err)
		}
		to, err := model.ParseDay(rec.To)
		if err != nil {
			return nil, fmt.Errorf("decode pauses: %w", err)
		}
		pauses = append(pauses, model.PauseWindow{From: from, To: to})
	}
	return pauses, nil
}

func encodeWeekdays(weekdays []time.Weekday) ([]byte, error) {
	days := make([]int, 0, len(weekdays))
	for _, wd := range weekdays {
		days = append(days, int(wd))
	}
	return json.Marshal(days)
}

func decodeWeekdays(raw []byte) ([]time.Weekday, error) {
	var days []int
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, fmt.Errorf("decode weekdays: %w", err)
	}
	var weekdays []time.Weekday
	for _, d := range days {
		weekdays = append(weekdays, time.Weekday(d))
	}
	return weekdays, nil
}

const subscriptionColumns = `id, customer_id, vendor_id, product, quantity, rule_kind, rule_weekdays,
                   start_date, end_date, status, pauses, cancelled_at, version, created_at, updated_at`

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var (
		sub      model.Subscription
		weekdays []byte
		pauses   []byte
	)
	err := row.Scan(
		&sub.ID, &sub.CustomerID, &sub.VendorID, &sub.Product, &sub.Quantity,
		&sub.Rule.Kind, &weekdays, &sub.StartDate, &sub.EndDate, &sub.Status,
		&pauses, &sub.CancelledAt, &sub.Version, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if sub.Rule.Weekdays, err = decodeWeekdays(weekdays); err != nil {
		return nil, err
	}
	if sub.Pauses, err = decodePauses(pauses); err != nil {
		return nil, err
	}
	normalizeSubscriptionDates(&sub)
	return &sub, nil
}

// normalizeSubscriptionDates pins DATE columns to midnight UTC so schedule
// arithmetic can compare them directly.
func normalizeSubscriptionDates(sub *model.Subscription) {
	sub.StartDate = model.Day(sub.StartDate)
	if sub.EndDate != nil {
		d := model.Day(*sub.EndDate)
		sub.EndDate = &d
	}
	if sub.CancelledAt != nil {
		d := model.Day(*sub.CancelledAt)
		sub.CancelledAt = &d
	}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	weekdays, err := encodeWeekdays(sub.Rule.Weekdays)
	if err != nil {
		return nil, err
	}
	pauses, err := encodePauses(sub.Pauses)
	if err != nil {
		return nil, err
	}

	const query = `INSERT INTO subscriptions
                   (customer_id, vendor_id, product, quantity, rule_kind, rule_weekdays, start_date, end_date, status, pauses)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                   RETURNING id, version, created_at, updated_at`
	created := *sub
	err = r.storage.pool.QueryRow(ctx, query,
		sub.CustomerID, sub.VendorID, sub.Product, sub.Quantity,
		sub.Rule.Kind, weekdays, sub.StartDate, sub.EndDate, sub.Status, pauses,
	).Scan(&created.ID, &created.Version, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return &created, nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id int64) (*model.Subscription, error) {
	const query = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id=$1`
	return scanSubscription(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *subscriptionRepository) ListByCustomer(ctx context.Context, customerID int64) ([]model.Subscription, error) {
	const query = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE customer_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, customerID)
}

func (r *subscriptionRepository) ListByVendor(ctx context.Context, vendorID int64) ([]model.Subscription, error) {
	const query = `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE vendor_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, vendorID)
}

func (r *subscriptionRepository) ListInRange(ctx context.Context, from, to time.Time) ([]model.Subscription, error) {
	const query = `SELECT ` + subscriptionColumns + ` FROM subscriptions
                   WHERE start_date <= $2 AND (end_date IS NULL OR end_date >= $1)
                   ORDER BY id`
	return r.list(ctx, query, from, to)
}

func (r *subscriptionRepository) list(ctx context.Context, query string, args ...any) ([]model.Subscription, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *model.Subscription) error {
	weekdays, err := encodeWeekdays(sub.Rule.Weekdays)
	if err != nil {
		return err
	}
	pauses, err := encodePauses(sub.Pauses)
	if err != nil {
		return err
	}

	const query = `UPDATE subscriptions
                   SET product=$1, quantity=$2, rule_kind=$3, rule_weekdays=$4, start_date=$5, end_date=$6,
                       status=$7, pauses=$8, cancelled_at=$9, version=version+1, updated_at=NOW()
                   WHERE id=$10 AND version=$11`
	tag, err := r.storage.pool.Exec(ctx, query,
		sub.Product, sub.Quantity, sub.Rule.Kind, weekdays, sub.StartDate, sub.EndDate,
		sub.Status, pauses, sub.CancelledAt, sub.ID, sub.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a stale version.
		var exists bool
		checkErr := r.storage.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE id=$1)`, sub.ID).Scan(&exists)
		if checkErr != nil {
			return checkErr
		}
		if !exists {
			return domainErrors.ErrNotFound
		}
		return domainErrors.ErrConflict
	}
	sub.Version++
	return nil
}

func (r *subscriptionRepository) SelectBatchForSweep(ctx context.Context, sweptBefore time.Time, limit int) ([]model.Subscription, error) {
	const selectQuery = `SELECT ` + subscriptionColumns + ` FROM subscriptions
                         WHERE last_swept_at < $1
                         ORDER BY last_swept_at
                         LIMIT $2
                         FOR UPDATE SKIP LOCKED`

	var subs []model.Subscription
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, sweptBefore, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			sub, err := scanSubscription(rows)
			if err != nil {
				return err
			}
			subs = append(subs, *sub)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, sub := range subs {
			if _, err := tx.Exec(ctx, `UPDATE subscriptions SET last_swept_at=NOW() WHERE id=$1`, sub.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// --- DeliveryEventRepository implementation ---

const eventColumns = `id, external_id, milkman_id, subscription_id, service_date, quantity,
                   note, non_delivery_reason, status, matched_date, supersedes, reported_at`

func scanEvent(row pgx.Row) (*model.DeliveryEvent, error) {
	var ev model.DeliveryEvent
	err := row.Scan(
		&ev.ID, &ev.ExternalID, &ev.MilkmanID, &ev.SubscriptionID, &ev.ServiceDate,
		&ev.Quantity, &ev.Note, &ev.NonDeliveryReason, &ev.Status, &ev.MatchedDate,
		&ev.Supersedes, &ev.ReportedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	ev.ServiceDate = model.Day(ev.ServiceDate)
	if ev.MatchedDate != nil {
		d := model.Day(*ev.MatchedDate)
		ev.MatchedDate = &d
	}
	return &ev, nil
}

func (r *eventRepository) Insert(ctx context.Context, ev *model.DeliveryEvent) (*model.DeliveryEvent, error) {
	const query = `INSERT INTO delivery_events
                   (external_id, milkman_id, subscription_id, service_date, quantity, note, non_delivery_reason, status, matched_date, supersedes)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                   RETURNING id, reported_at`
	stored := *ev
	err := r.storage.pool.QueryRow(ctx, query,
		ev.ExternalID, ev.MilkmanID, ev.SubscriptionID, ev.ServiceDate, ev.Quantity,
		ev.Note, ev.NonDeliveryReason, ev.Status, ev.MatchedDate, ev.Supersedes,
	).Scan(&stored.ID, &stored.ReportedAt)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return &stored, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*model.DeliveryEvent, error) {
	const query = `SELECT ` + eventColumns + ` FROM delivery_events WHERE id=$1`
	return scanEvent(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *eventRepository) ListByMilkman(ctx context.Context, milkmanID int64) ([]model.DeliveryEvent, error) {
	const query = `SELECT ` + eventColumns + ` FROM delivery_events WHERE milkman_id=$1 ORDER BY reported_at DESC`
	return r.list(ctx, query, milkmanID)
}

func (r *eventRepository) ListUnmatched(ctx context.Context) ([]model.DeliveryEvent, error) {
	const query = `SELECT ` + eventColumns + ` FROM delivery_events WHERE status='unmatched' ORDER BY reported_at`
	return r.list(ctx, query)
}

func (r *eventRepository) ListMatched(ctx context.Context, from, to time.Time) ([]model.DeliveryEvent, error) {
	const query = `SELECT ` + eventColumns + ` FROM delivery_events
                   WHERE status='matched' AND matched_date BETWEEN $1 AND $2
                   ORDER BY matched_date`
	return r.list(ctx, query, from, to)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]model.DeliveryEvent, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.DeliveryEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *eventRepository) MatchedDates(ctx context.Context, subscriptionID int64, from, to time.Time) ([]time.Time, error) {
	const query = `SELECT matched_date FROM delivery_events
                   WHERE subscription_id=$1 AND status='matched' AND matched_date BETWEEN $2 AND $3`
	rows, err := r.storage.pool.Query(ctx, query, subscriptionID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, model.Day(d))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dates, nil
}

func (r *eventRepository) Resolve(ctx context.Context, eventID int64, date time.Time) error {
	const query = `UPDATE delivery_events SET status='matched', matched_date=$1 WHERE id=$2`
	tag, err := r.storage.pool.Exec(ctx, query, date, eventID)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// --- CalendarRepository implementation ---

func (r *calendarRepository) AddHoliday(ctx context.Context, h model.Holiday) error {
	const query = `INSERT INTO vendor_holidays (vendor_id, date, reason) VALUES ($1, $2, $3)
                   ON CONFLICT (vendor_id, date) DO UPDATE SET reason = EXCLUDED.reason`
	_, err := r.storage.pool.Exec(ctx, query, h.VendorID, h.Date, h.Reason)
	return err
}

func (r *calendarRepository) RemoveHoliday(ctx context.Context, vendorID int64, date time.Time) error {
	const query = `DELETE FROM vendor_holidays WHERE vendor_id=$1 AND date=$2`
	tag, err := r.storage.pool.Exec(ctx, query, vendorID, date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *calendarRepository) Holidays(ctx context.Context, vendorID int64, from, to time.Time) ([]model.Holiday, error) {
	const query = `SELECT vendor_id, date, reason FROM vendor_holidays
                   WHERE vendor_id=$1 AND date BETWEEN $2 AND $3 ORDER BY date`
	return r.list(ctx, query, vendorID, from, to)
}

func (r *calendarRepository) AllHolidays(ctx context.Context, from, to time.Time) ([]model.Holiday, error) {
	const query = `SELECT vendor_id, date, reason FROM vendor_holidays
                   WHERE date BETWEEN $1 AND $2 ORDER BY date`
	return r.list(ctx, query, from, to)
}

func (r *calendarRepository) list(ctx context.Context, query string, args ...any) ([]model.Holiday, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Holiday
	for rows.Next() {
		var h model.Holiday
		if err := rows.Scan(&h.VendorID, &h.Date, &h.Reason); err != nil {
			return nil, err
		}
		h.Date = model.Day(h.Date)
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- MissedRepository implementation ---

func (r *missedRepository) Mark(ctx context.Context, subscriptionID int64, date time.Time) (bool, error) {
	const query = `INSERT INTO missed_occurrences (subscription_id, date) VALUES ($1, $2)
                   ON CONFLICT (subscription_id, date) DO NOTHING`
	tag, err := r.storage.pool.Exec(ctx, query, subscriptionID, date)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *missedRepository) MissedDates(ctx context.Context, subscriptionID int64, from, to time.Time) ([]time.Time, error) {
	const query = `SELECT date FROM missed_occurrences
                   WHERE subscription_id=$1 AND date BETWEEN $2 AND $3`
	rows, err := r.storage.pool.Query(ctx, query, subscriptionID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, model.Day(d))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dates, nil
}

func (r *missedRepository) ListRange(ctx context.Context, from, to time.Time) ([]model.MissedMark, error) {
	const query = `SELECT subscription_id, date, marked_at FROM missed_occurrences
                   WHERE date BETWEEN $1 AND $2 ORDER BY date`
	rows, err := r.storage.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.MissedMark
	for rows.Next() {
		var m model.MissedMark
		if err := rows.Scan(&m.SubscriptionID, &m.Date, &m.MarkedAt); err != nil {
			return nil, err
		}
		m.Date = model.Day(m.Date)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- AuditRepository implementation ---

func (r *auditRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	const query = `INSERT INTO audit_log (actor, action, subscription_id, occurrence_date, event_id, detail)
                   VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	return r.storage.pool.QueryRow(ctx, query,
		entry.Actor, entry.Action, entry.SubscriptionID, entry.OccurrenceDate, entry.EventID, entry.Detail,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) ListBySubscription(ctx context.Context, subscriptionID int64) ([]model.AuditEntry, error) {
	const query = `SELECT id, actor, action, subscription_id, occurrence_date, event_id, detail, created_at
                   FROM audit_log WHERE subscription_id=$1 ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, subscriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.SubscriptionID, &e.OccurrenceDate, &e.EventID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
