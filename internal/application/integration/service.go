package integration

import (
	"context"
	"errors"
	"time"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/internal/infrastructure/logger"
	"github.com/erp/erpsync/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncService is the entry point used by the HTTP handler, the scheduler and the CLI
type SyncService struct {
	companies    integration.CompanyRepository
	orchestrator *Orchestrator
	lock         integration.RunLock
	lockTTL      time.Duration
	logger       *zap.Logger
}

// SyncServiceOption configures a SyncService
type SyncServiceOption func(*SyncService)

// WithRunLock guards runs with lock; a second run for the same company and
// direction fails with ErrSyncInProgress while the lock is held.
func WithRunLock(lock integration.RunLock, ttl time.Duration) SyncServiceOption {
	return func(s *SyncService) {
		s.lock = lock
		s.lockTTL = ttl
	}
}

// NewSyncService creates a SyncService
func NewSyncService(
	companies integration.CompanyRepository,
	orchestrator *Orchestrator,
	logger *zap.Logger,
	opts ...SyncServiceOption,
) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SyncService{
		companies:    companies,
		orchestrator: orchestrator,
		logger:       logger,
		lockTTL:      30 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveCompany finds a company by id or slug
func (s *SyncService) ResolveCompany(ctx context.Context, ref string) (*integration.Company, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.companies.FindByID(ctx, id)
	}
	return s.companies.FindBySlug(ctx, ref)
}

// SyncInbound pulls remote records for one company
func (s *SyncService) SyncInbound(ctx context.Context, ref string) (*BatchResult, error) {
	return s.run(ctx, ref, integration.SyncDirectionInbound, s.orchestrator.SyncInbound)
}

// SyncOutbound pushes unlinked local records for one company
func (s *SyncService) SyncOutbound(ctx context.Context, ref string) (*BatchResult, error) {
	return s.run(ctx, ref, integration.SyncDirectionOutbound, s.orchestrator.SyncOutbound)
}

func (s *SyncService) run(
	ctx context.Context,
	ref string,
	direction integration.SyncDirection,
	fn func(context.Context, integration.Company) (*BatchResult, error),
) (*BatchResult, error) {
	company, err := s.ResolveCompany(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.runCompany(ctx, *company, direction, fn)
}

func (s *SyncService) runCompany(
	ctx context.Context,
	company integration.Company,
	direction integration.SyncDirection,
	fn func(context.Context, integration.Company) (*BatchResult, error),
) (*BatchResult, error) {
	if s.lock != nil {
		release, err := s.lock.Acquire(ctx, direction.LockKey(company), s.lockTTL)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	ctx, _ = logger.WithCompany(ctx, logger.FromContextOr(ctx, s.logger), company.Slug)
	ctx = logger.WithDirection(ctx, direction.String())

	var res *BatchResult
	var err error
	telemetry.WithProfilingLabels(ctx, telemetry.SyncRunLabels(company.ID.String(), direction.String()), func(ctx context.Context) {
		res, err = fn(ctx, company)
	})
	return res, err
}

// SyncAll runs inbound then outbound for every company with a connection URL.
// A failing company is logged and does not stop the others.
func (s *SyncService) SyncAll(ctx context.Context) ([]*BatchResult, error) {
	companies, err := s.companies.FindAllWithRemote(ctx)
	if err != nil {
		return nil, err
	}

	var results []*BatchResult
	var errs []error
	for _, company := range companies {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		for _, step := range []struct {
			direction integration.SyncDirection
			fn        func(context.Context, integration.Company) (*BatchResult, error)
		}{
			{integration.SyncDirectionInbound, s.orchestrator.SyncInbound},
			{integration.SyncDirectionOutbound, s.orchestrator.SyncOutbound},
		} {
			res, err := s.runCompany(ctx, company, step.direction, step.fn)
			if res != nil {
				results = append(results, res)
			}
			if err != nil {
				logger.WithLogger(ctx, s.logger).Warn("Company sync failed",
					zap.String("company", company.Slug),
					zap.String("direction", step.direction.String()),
					zap.Error(err),
				)
				errs = append(errs, err)
				// outbound depends on inbound links
				break
			}
		}
	}
	return results, errors.Join(errs...)
}
