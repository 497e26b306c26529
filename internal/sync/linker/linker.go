// Package linker runs the synchronizers that follow linking templates to a host
package linker

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"templatesync-pg-backend/internal/domain/models"
	"templatesync-pg-backend/internal/domain/ports"
	"templatesync-pg-backend/internal/sync/audit"
	"templatesync-pg-backend/internal/sync/graphs"
	"templatesync-pg-backend/internal/sync/hostprototypes"
	"templatesync-pg-backend/internal/sync/monitoring"
	"templatesync-pg-backend/internal/sync/types"
)

// Request links one host to templates
type Request struct {
	HostID      uint64
	TemplateIDs []uint64
}

// Options configure a Linker
type Options struct {
	// Program is the daemon owning the database; proxies refuse linking
	Program models.ProgramType
	// PassRate limits passes per second, 0 means unlimited
	PassRate float64
	// PassBurst is the number of passes allowed at once
	PassBurst int
	// PassTimeout bounds one pass, 0 means no timeout
	PassTimeout time.Duration
	// Metrics is optional
	Metrics *monitoring.Metrics
}

// Linker runs host prototype and graph synchronization of a host inside one
// writer transaction
type Linker struct {
	registry ports.Registry
	audit    ports.AuditEmitter
	opts     Options
	limiter  *rate.Limiter
	logger   logr.Logger
}

// New creates a new linker
func New(registry ports.Registry, audit ports.AuditEmitter, opts Options, logger logr.Logger) *Linker {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.PassRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.PassRate), opts.PassBurst)
	}
	return &Linker{
		registry: registry,
		audit:    audit,
		opts:     opts,
		limiter:  limiter,
		logger:   logger.WithName("linker"),
	}
}

// Link synchronizes host prototypes and then graphs of the templates onto
// the host. Everything is committed together or not at all.
func (l *Linker) Link(ctx context.Context, req Request) (*types.SyncResult, error) {
	start := time.Now()
	if l.opts.Program == models.ProgramProxy {
		l.opts.Metrics.ObservePass(monitoring.OutcomeRefused, nil, time.Since(start))
		return nil, errors.WithStack(ports.ErrProxyMode)
	}

	runID := uuid.NewString()
	result, err := l.link(ctx, req, runID)
	outcome := monitoring.OutcomeOK
	if err != nil {
		outcome = monitoring.OutcomeFailed
	}
	l.opts.Metrics.ObservePass(outcome, result, time.Since(start))
	return result, err
}

func (l *Linker) link(ctx context.Context, req Request, runID string) (*types.SyncResult, error) {
	if l.opts.PassTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.PassTimeout)
		defer cancel()
	}
	logger := l.logger.WithValues("run", runID, "host", req.HostID)
	result := types.NewSyncResult(req.HostID, req.TemplateIDs)
	result.SetDetail(types.DetailRunID, runID)

	writer, err := l.registry.Writer(ctx)
	if err != nil {
		return result, errors.WithMessage(err, "failed to open writer")
	}
	reader, err := l.registry.ReaderFromWriter(ctx, writer)
	if err != nil {
		writer.Abort()
		return result, errors.WithMessage(err, "failed to open reader")
	}
	defer reader.Close()

	// audit of a pass is released only once its writes are committed
	pending := audit.NewRecorder()

	hp, err := hostprototypes.NewSynchronizer(reader, writer, pending, logger).
		SynchronizeHostPrototypes(ctx, req.HostID, req.TemplateIDs)
	if err != nil {
		writer.Abort()
		return result, errors.WithMessage(err, "host prototype synchronization failed")
	}
	result.Merge(hp)

	g, err := graphs.NewSynchronizer(reader, writer, pending, logger).
		SynchronizeGraphs(ctx, req.HostID, req.TemplateIDs)
	if err != nil {
		writer.Abort()
		return result, errors.WithMessage(err, "graph synchronization failed")
	}
	result.Merge(g)

	affected := writer.AffectedRows()
	if err := writer.Commit(); err != nil {
		return result, errors.WithMessage(err, "failed to commit link pass")
	}
	pending.ReplayTo(l.audit)
	logger.Info("Templates linked", "templates", req.TemplateIDs, "total", result.Total(), "affectedRows", affected)
	return result, nil
}

// LinkAll links every request in turn, paced by the pass rate. A failed
// pass does not stop the others; their errors are combined.
func (l *Linker) LinkAll(ctx context.Context, reqs []Request) ([]*types.SyncResult, error) {
	if l.opts.Program == models.ProgramProxy {
		return nil, errors.WithStack(ports.ErrProxyMode)
	}
	var (
		results []*types.SyncResult
		errs    error
	)
	for _, req := range reqs {
		if err := l.limiter.Wait(ctx); err != nil {
			return results, multierr.Append(errs, errors.Wrap(err, "pass throttling interrupted"))
		}
		result, err := l.Link(ctx, req)
		if err != nil {
			l.logger.Error(err, "Link pass failed", "host", req.HostID)
			errs = multierr.Append(errs, errors.WithMessagef(err, "host %d", req.HostID))
			continue
		}
		results = append(results, result)
	}
	return results, errs
}
