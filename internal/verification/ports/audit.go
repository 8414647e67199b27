package ports

import (
	"context"

	"surebet/pkg/platform/audit"
)

// AuditPort defines the interface for emitting audit events.
type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}
