package health

import "context"

// HealthPinger is optionally implemented by components that can answer a
// cheap liveness probe.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
