package bootstrap

import "context"

type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

// AuditLogger records lifecycle events that must survive even when the
// request-scoped logging pipeline is already torn down.
type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
