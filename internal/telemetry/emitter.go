// Package telemetry records operational events emitted by engine operations.
package telemetry

import (
	"context"
	"time"

	"github.com/louisbranch/claimledger/internal/storage"
	"go.opentelemetry.io/otel/trace"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Operation event names.
const (
	ClaimCreated     = "claim.create"
	ClaimPaid        = "claim.pay"
	ClaimRejected    = "claim.reject"
	ClaimRescinded   = "claim.rescind"
	ClaimTransferred = "claim.transfer"
	BatchCreated     = "claim.batch_create"
)

// Emitter records operational telemetry events.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates a new telemetry event emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the store is nil.
// The active trace context, if any, is attached to the event.
func (e *Emitter) Emit(ctx context.Context, evt storage.TelemetryEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		evt.TraceID = sc.TraceID().String()
		evt.SpanID = sc.SpanID().String()
	}
	return e.store.AppendTelemetryEvent(ctx, evt)
}
