// Package sqlite provides the SQLite-backed claim store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/claimledger/internal/claim"
	"github.com/louisbranch/claimledger/internal/claim/event"
	apperrors "github.com/louisbranch/claimledger/internal/errors"
	"github.com/louisbranch/claimledger/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/claimledger/internal/storage"
	"github.com/louisbranch/claimledger/internal/storage/sqlite/migrations"
	"github.com/louisbranch/claimledger/internal/storage/filter"
	"github.com/louisbranch/claimledger/internal/token"
	_ "modernc.org/sqlite"
)

// querier abstracts *sql.DB and *sql.Tx so store methods run unchanged
// inside and outside transactions.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists claim engine state in SQLite.
type Store struct {
	sqlDB *sql.DB
	q     querier
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toNullMillis(value time.Time) sql.NullInt64 {
	if value.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(value), Valid: true}
}

func fromNullMillis(value sql.NullInt64) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	return fromMillis(value.Int64)
}

// Open opens a SQLite claim store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, q: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateClaim inserts a claim, allocating its identifier via the claims
// rowid sequence, and records the creditor as initial holder.
func (s *Store) CreateClaim(ctx context.Context, c claim.Claim) (uint64, error) {
	result, err := s.q.ExecContext(ctx, `
		INSERT INTO claims (
		  creditor, debtor, description, amount, paid_amount,
		  medium_kind, medium_contract, medium, due_by, status,
		  attachment_hash, attachment_hash_function, attachment_size,
		  transfer_price, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Creditor, c.Debtor, c.Description, int64(c.Amount), int64(c.PaidAmount),
		int(c.Medium.Kind), c.Medium.Contract, c.Medium.Label(), toNullMillis(c.DueBy), c.Status.Label(),
		c.Attachment.Hash, c.Attachment.HashFunction, c.Attachment.Size,
		int64(c.TransferPrice), toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert claim: %w", err)
	}
	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read claim id: %w", err)
	}
	id := uint64(lastID)

	if _, err := s.q.ExecContext(ctx,
		`INSERT INTO claim_holders (claim_id, holder) VALUES (?, ?)`,
		int64(id), c.Creditor,
	); err != nil {
		return 0, fmt.Errorf("insert claim holder: %w", err)
	}
	return id, nil
}

const claimColumns = `
	id, creditor, debtor, description, amount, paid_amount,
	medium_kind, medium_contract, due_by, status,
	attachment_hash, attachment_hash_function, attachment_size,
	transfer_price, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (claim.Claim, error) {
	var (
		c            claim.Claim
		id           int64
		amount       int64
		paidAmount   int64
		mediumKind   int
		dueBy        sql.NullInt64
		statusLabel  string
		price        int64
		createdAt    int64
		updatedAt    int64
		hashFunction int
		size         int
	)
	err := row.Scan(
		&id, &c.Creditor, &c.Debtor, &c.Description, &amount, &paidAmount,
		&mediumKind, &c.Medium.Contract, &dueBy, &statusLabel,
		&c.Attachment.Hash, &hashFunction, &size,
		&price, &createdAt, &updatedAt,
	)
	if err != nil {
		return claim.Claim{}, err
	}
	c.ID = uint64(id)
	c.Amount = uint64(amount)
	c.PaidAmount = uint64(paidAmount)
	c.Medium.Kind = token.Kind(mediumKind)
	c.DueBy = fromNullMillis(dueBy)
	c.Status = statusFromLabel(statusLabel)
	c.Attachment.HashFunction = uint8(hashFunction)
	c.Attachment.Size = uint8(size)
	c.TransferPrice = uint64(price)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}

func statusFromLabel(label string) claim.Status {
	switch label {
	case "PENDING":
		return claim.StatusPending
	case "REPAYING":
		return claim.StatusRepaying
	case "PAID":
		return claim.StatusPaid
	case "REJECTED":
		return claim.StatusRejected
	case "RESCINDED":
		return claim.StatusRescinded
	default:
		return claim.StatusUnspecified
	}
}

// GetClaim returns the claim for an identifier.
func (s *Store) GetClaim(ctx context.Context, id uint64) (claim.Claim, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT`+claimColumns+` FROM claims WHERE id = ?`, int64(id))
	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return claim.Claim{}, storage.ErrNotFound
	}
	if err != nil {
		return claim.Claim{}, fmt.Errorf("get claim %d: %w", id, err)
	}
	return c, nil
}

// UpdateClaim replaces the mutable claim fields for its identifier.
func (s *Store) UpdateClaim(ctx context.Context, c claim.Claim) error {
	result, err := s.q.ExecContext(ctx, `
		UPDATE claims SET
		  paid_amount = ?, status = ?,
		  attachment_hash = ?, attachment_hash_function = ?, attachment_size = ?,
		  transfer_price = ?, updated_at = ?
		WHERE id = ?`,
		int64(c.PaidAmount), c.Status.Label(),
		c.Attachment.Hash, c.Attachment.HashFunction, c.Attachment.Size,
		int64(c.TransferPrice), toMillis(c.UpdatedAt),
		int64(c.ID),
	)
	if err != nil {
		return fmt.Errorf("update claim %d: %w", c.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update claim %d: %w", c.ID, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListClaims returns a page of claims ordered by identifier, optionally
// narrowed by an AIP-160 filter expression.
func (s *Store) ListClaims(ctx context.Context, query storage.ListClaimsQuery) (storage.ClaimPage, error) {
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	var after uint64
	if query.PageToken != "" {
		parsed, err := strconv.ParseUint(query.PageToken, 10, 64)
		if err != nil {
			return storage.ClaimPage{}, apperrors.New(apperrors.CodeInvalidFilter, "page token is invalid")
		}
		after = parsed
	}

	condition, err := filter.ParseClaimFilter(query.Filter)
	if err != nil {
		return storage.ClaimPage{}, apperrors.Wrap(apperrors.CodeInvalidFilter, "invalid claim filter", err)
	}

	sqlQuery := `SELECT` + claimColumns + ` FROM claims WHERE id > ?`
	args := []any{int64(after)}
	if condition.Clause != "" {
		sqlQuery += ` AND ` + condition.Clause
		args = append(args, condition.Params...)
	}
	sqlQuery += ` ORDER BY id ASC LIMIT ?`
	args = append(args, pageSize+1)

	rows, err := s.q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return storage.ClaimPage{}, fmt.Errorf("list claims: %w", err)
	}
	defer func() { _ = rows.Close() }()

	page := storage.ClaimPage{}
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return storage.ClaimPage{}, fmt.Errorf("scan claim: %w", err)
		}
		page.Claims = append(page.Claims, c)
	}
	if err := rows.Err(); err != nil {
		return storage.ClaimPage{}, fmt.Errorf("list claims: %w", err)
	}
	if len(page.Claims) > pageSize {
		page.Claims = page.Claims[:pageSize]
		page.NextPageToken = strconv.FormatUint(page.Claims[pageSize-1].ID, 10)
	}
	return page, nil
}

// HolderOf returns the current holder of a claim.
func (s *Store) HolderOf(ctx context.Context, id uint64) (string, error) {
	var holder string
	err := s.q.QueryRowContext(ctx,
		`SELECT holder FROM claim_holders WHERE claim_id = ?`, int64(id),
	).Scan(&holder)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get holder of claim %d: %w", id, err)
	}
	return holder, nil
}

// SetHolder reassigns the holder of a claim.
func (s *Store) SetHolder(ctx context.Context, id uint64, holder string) error {
	result, err := s.q.ExecContext(ctx,
		`UPDATE claim_holders SET holder = ? WHERE claim_id = ?`, holder, int64(id))
	if err != nil {
		return fmt.Errorf("set holder of claim %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set holder of claim %d: %w", id, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetTag returns the tag pair for a claim; missing tags are zero.
func (s *Store) GetTag(ctx context.Context, id uint64) (storage.Tag, error) {
	var (
		tag       storage.Tag
		updatedAt int64
	)
	err := s.q.QueryRowContext(ctx,
		`SELECT creditor_tag, debtor_tag, updated_at FROM claim_tags WHERE claim_id = ?`,
		int64(id),
	).Scan(&tag.CreditorTag, &tag.DebtorTag, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Tag{}, nil
	}
	if err != nil {
		return storage.Tag{}, fmt.Errorf("get tag of claim %d: %w", id, err)
	}
	tag.UpdatedAt = fromMillis(updatedAt)
	return tag, nil
}

// PutTag replaces the tag pair for a claim.
func (s *Store) PutTag(ctx context.Context, id uint64, tag storage.Tag) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO claim_tags (claim_id, creditor_tag, debtor_tag, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(claim_id) DO UPDATE SET
		  creditor_tag = excluded.creditor_tag,
		  debtor_tag = excluded.debtor_tag,
		  updated_at = excluded.updated_at`,
		int64(id), tag.CreditorTag, tag.DebtorTag, toMillis(tag.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put tag of claim %d: %w", id, err)
	}
	return nil
}

// AppendEvent appends to the journal; the seq column assigns the sequence.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) error {
	payload := evt.PayloadJSON
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO journal_events (claim_id, event_type, actor, timestamp, payload)
		VALUES (?, ?, ?, ?, ?)`,
		int64(evt.ClaimID), string(evt.Type), evt.Actor, toMillis(evt.Timestamp), string(payload),
	)
	if err != nil {
		return fmt.Errorf("append event %s: %w", evt.Type, err)
	}
	return nil
}

// ListEvents returns journal events for a claim, oldest first.
func (s *Store) ListEvents(ctx context.Context, claimID uint64, limit int) ([]event.Event, error) {
	sqlQuery := `
		SELECT seq, claim_id, event_type, actor, timestamp, payload
		FROM journal_events WHERE claim_id = ? ORDER BY seq ASC`
	args := []any{int64(claimID)}
	if limit > 0 {
		sqlQuery += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []event.Event
	for rows.Next() {
		var (
			evt       event.Event
			seq       int64
			rowClaim  int64
			eventType string
			timestamp int64
			payload   string
		)
		if err := rows.Scan(&seq, &rowClaim, &eventType, &evt.Actor, &timestamp, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Seq = uint64(seq)
		evt.ClaimID = uint64(rowClaim)
		evt.Type = event.Type(eventType)
		evt.Timestamp = fromMillis(timestamp)
		evt.PayloadJSON = []byte(payload)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// AppendTelemetryEvent records an operational telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO telemetry_events (name, severity, claim_id, actor, detail, trace_id, span_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.Name, evt.Severity, int64(evt.ClaimID), evt.Actor, evt.Detail,
		evt.TraceID, evt.SpanID, toMillis(evt.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}

// InTx runs fn against a transactional view of the store. Writes roll back
// when fn fails. Nested calls join the enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(storage.Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	cloned := *s
	cloned.q = tx
	if err := fn(&cloned); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
