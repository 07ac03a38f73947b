// Package health aggregates readiness of the service's dependencies.
package health

import (
	"context"
	"time"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks embedding provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// Status is the readiness report of one dependency.
type Status struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// Report aggregates dependency statuses.
type Report struct {
	Database Status `json:"database"`
	Provider Status `json:"provider"`
}

// Healthy reports whether every dependency is up.
func (r Report) Healthy() bool {
	return r.Database.Healthy && r.Provider.Healthy
}

// Service probes dependencies with a bounded timeout per check.
type Service struct {
	db       Pinger
	provider ProviderChecker
	timeout  time.Duration
}

// New creates a health service.
func New(db Pinger, provider ProviderChecker) *Service {
	return &Service{db: db, provider: provider, timeout: 5 * time.Second}
}

// Check probes all dependencies and never returns an error: failures are
// reported per dependency.
func (s *Service) Check(ctx context.Context) Report {
	var rep Report
	rep.Database = s.probe(ctx, s.db.Ping)
	rep.Provider = s.probe(ctx, s.provider.HealthCheck)
	return rep
}

func (s *Service) probe(ctx context.Context, check func(context.Context) error) Status {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := check(ctx); err != nil {
		return Status{Healthy: false, Error: err.Error()}
	}
	return Status{Healthy: true}
}
