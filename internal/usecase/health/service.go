package health

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/doclib/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the store is up but listings cannot be searched.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	index IndexChecker
}

// New creates a Service. index can be nil.
func New(db DBPinger, index IndexChecker) *Service {
	return &Service{db: db, index: index}
}

// Check runs health checks against all components. The index is only
// checked when the database answers.
func (s *Service) Check(ctx context.Context) Report {
	log := logger.FromContext(ctx)
	checks := map[string]CheckResult{"database": CheckOK}

	if err := s.db.Ping(ctx); err != nil {
		log.Warn("health: database ping failed", zap.Error(err))
		checks["database"] = CheckError
		if s.index != nil {
			checks["search_index"] = CheckError
		}
		return Report{Status: Unhealthy, Checks: checks}
	}

	status := Healthy
	if s.index != nil {
		checks["search_index"] = CheckOK
		if err := s.index.CheckIndex(ctx); err != nil {
			log.Warn("health: search index check failed", zap.Error(err))
			checks["search_index"] = CheckError
			status = Degraded
		}
	}

	return Report{Status: status, Checks: checks}
}
