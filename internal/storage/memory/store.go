// Package memory provides an in-memory store for tests, examples, and the
// seed tool. It implements the same interfaces as the sqlite store.
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/louisbranch/claimledger/internal/claim"
	"github.com/louisbranch/claimledger/internal/claim/event"
	apperrors "github.com/louisbranch/claimledger/internal/errors"
	"github.com/louisbranch/claimledger/internal/storage"
)

// Store keeps all engine state in maps guarded by one mutex.
type Store struct {
	mu        sync.Mutex
	claims    map[uint64]claim.Claim
	holders   map[uint64]string
	tags      map[uint64]storage.Tag
	events    []event.Event
	telemetry []storage.TelemetryEvent
	nextID    uint64
	nextSeq   uint64
	inTx      bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		claims:  make(map[uint64]claim.Claim),
		holders: make(map[uint64]string),
		tags:    make(map[uint64]storage.Tag),
		nextID:  1,
		nextSeq: 1,
	}
}

// CreateClaim inserts a claim, allocating the next identifier and recording
// the creditor as initial holder.
func (s *Store) CreateClaim(ctx context.Context, c claim.Claim) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	c.ID = id
	s.claims[id] = c
	s.holders[id] = c.Creditor
	return id, nil
}

// GetClaim returns the claim for an identifier.
func (s *Store) GetClaim(ctx context.Context, id uint64) (claim.Claim, error) {
	if err := ctx.Err(); err != nil {
		return claim.Claim{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[id]
	if !ok {
		return claim.Claim{}, storage.ErrNotFound
	}
	return c, nil
}

// UpdateClaim replaces the stored claim state.
func (s *Store) UpdateClaim(ctx context.Context, c claim.Claim) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[c.ID]; !ok {
		return storage.ErrNotFound
	}
	s.claims[c.ID] = c
	return nil
}

// ListClaims returns a page of claims ordered by identifier. The memory
// store does not translate AIP-160 filters; pass filters to the sqlite store.
func (s *Store) ListClaims(ctx context.Context, query storage.ListClaimsQuery) (storage.ClaimPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.ClaimPage{}, err
	}
	if strings.TrimSpace(query.Filter) != "" {
		return storage.ClaimPage{}, apperrors.New(apperrors.CodeInvalidFilter, "memory store does not support list filters")
	}
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

	s.mu.Lock()
	ids := make([]uint64, 0, len(s.claims))
	for id := range s.claims {
		if id > after {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	page := storage.ClaimPage{}
	for _, id := range ids {
		if len(page.Claims) == pageSize {
			page.NextPageToken = strconv.FormatUint(page.Claims[len(page.Claims)-1].ID, 10)
			break
		}
		page.Claims = append(page.Claims, s.claims[id])
	}
	s.mu.Unlock()
	return page, nil
}

// HolderOf returns the current holder of a claim.
func (s *Store) HolderOf(ctx context.Context, id uint64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	holder, ok := s.holders[id]
	if !ok {
		return "", storage.ErrNotFound
	}
	return holder, nil
}

// SetHolder reassigns the holder of a claim.
func (s *Store) SetHolder(ctx context.Context, id uint64, holder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.holders[id]; !ok {
		return storage.ErrNotFound
	}
	s.holders[id] = holder
	return nil
}

// GetTag returns the tag pair for a claim; missing tags are zero.
func (s *Store) GetTag(ctx context.Context, id uint64) (storage.Tag, error) {
	if err := ctx.Err(); err != nil {
		return storage.Tag{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags[id], nil
}

// PutTag replaces the tag pair for a claim.
func (s *Store) PutTag(ctx context.Context, id uint64, tag storage.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[id] = tag
	return nil
}

// AppendEvent appends to the journal, assigning the next sequence number.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	evt.Seq = s.nextSeq
	s.nextSeq++
	s.events = append(s.events, evt)
	return nil
}

// ListEvents returns journal events for a claim, oldest first.
func (s *Store) ListEvents(ctx context.Context, claimID uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.Event
	for _, evt := range s.events {
		if evt.ClaimID != claimID {
			continue
		}
		out = append(out, evt)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// AppendTelemetryEvent records an operational telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.telemetry = append(s.telemetry, evt)
	return nil
}

// TelemetryEvents returns a copy of recorded telemetry, for tests.
func (s *Store) TelemetryEvents() []storage.TelemetryEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.TelemetryEvent, len(s.telemetry))
	copy(out, s.telemetry)
	return out
}

// InTx runs fn against the store, restoring a snapshot of all state when fn
// fails so no partial writes survive.
func (s *Store) InTx(ctx context.Context, fn func(storage.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.inTx {
		s.mu.Unlock()
		// Nested transactions join the outer one.
		return fn(s)
	}
	s.inTx = true
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	err := fn(s)

	s.mu.Lock()
	if err != nil {
		s.restoreLocked(snapshot)
	}
	s.inTx = false
	s.mu.Unlock()
	return err
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}

type snapshot struct {
	claims    map[uint64]claim.Claim
	holders   map[uint64]string
	tags      map[uint64]storage.Tag
	events    []event.Event
	telemetry []storage.TelemetryEvent
	nextID    uint64
	nextSeq   uint64
}

func (s *Store) snapshotLocked() snapshot {
	snap := snapshot{
		claims:    make(map[uint64]claim.Claim, len(s.claims)),
		holders:   make(map[uint64]string, len(s.holders)),
		tags:      make(map[uint64]storage.Tag, len(s.tags)),
		events:    make([]event.Event, len(s.events)),
		telemetry: make([]storage.TelemetryEvent, len(s.telemetry)),
		nextID:    s.nextID,
		nextSeq:   s.nextSeq,
	}
	for id, c := range s.claims {
		snap.claims[id] = c
	}
	for id, holder := range s.holders {
		snap.holders[id] = holder
	}
	for id, tag := range s.tags {
		snap.tags[id] = tag
	}
	copy(snap.events, s.events)
	copy(snap.telemetry, s.telemetry)
	return snap
}

func (s *Store) restoreLocked(snap snapshot) {
	s.claims = snap.claims
	s.holders = snap.holders
	s.tags = snap.tags
	s.events = snap.events
	s.telemetry = snap.telemetry
	s.nextID = snap.nextID
	s.nextSeq = snap.nextSeq
}
