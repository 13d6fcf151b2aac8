package replen

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ClaudioSBezerra/JC-CP01-sub001/models"
	"github.com/ClaudioSBezerra/JC-CP01-sub001/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrCompanyNotConfigured = errors.New("company has no replenishment settings")

// Scheduler drives all periodic replenishment work from one coarse ticker.
// Everything it needs is injected at construction; there is no package-level
// state, and no lock coordinates a scheduled pass with a concurrent manual
// trigger for the same branch (the documented wave-number race).
type Scheduler struct {
	Logger     *logrus.Logger
	InstanceID string

	TickInterval    time.Duration
	CompletionGrace time.Duration

	// GatewayFor resolves the gateway for one company's settings. Overridable
	// so tests can drop in a fake.
	GatewayFor func(settings *models.ReplenishmentSettings) (Gateway, error)

	// db is published through SetDB after the retrying connect succeeds;
	// handler goroutines may already be reading it by then.
	db atomic.Pointer[gorm.DB]
}

func NewScheduler(db *gorm.DB, logger *logrus.Logger) *Scheduler {
	s := &Scheduler{
		Logger:          logger,
		InstanceID:      uuid.NewString(),
		TickInterval:    time.Duration(utils.IntFromEnv("REPLEN_TICK_SECONDS", 60)) * time.Second,
		CompletionGrace: time.Duration(utils.IntFromEnv("REPLEN_COMPLETION_GRACE_MINUTES", 5)) * time.Minute,
	}
	s.db.Store(db)
	s.GatewayFor = func(settings *models.ReplenishmentSettings) (Gateway, error) {
		if settings.WantsMockGateway() {
			return NewMockGateway(s.DB()), nil
		}
		return NewHTTPGateway(settings.ApiUrl, settings.ApiKey)
	}
	return s
}

// DB returns the store handle, nil until SetDB ran.
func (s *Scheduler) DB() *gorm.DB {
	return s.db.Load()
}

// SetDB publishes the store handle to the loop and the handler goroutines.
func (s *Scheduler) SetDB(db *gorm.DB) {
	s.db.Store(db)
}

// Run blocks until ctx is cancelled. One pass runs immediately at startup,
// then one per tick. Cancellation is observed between ticks and between
// companies; an in-flight branch cycle completes.
func (s *Scheduler) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.Logger.WithFields(logrus.Fields{
		"module":      "replen",
		"instance_id": s.InstanceID,
		"tick":        s.TickInterval.String(),
	}).Info("replenishment scheduler started")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.runPass(ctx)
		select {
		case <-ctx.Done():
			s.Logger.WithFields(logrus.Fields{
				"module":      "replen",
				"instance_id": s.InstanceID,
			}).Info("replenishment scheduler stopped")
			return
		case <-time.After(s.TickInterval):
		}
	}
}

// runPass is one tick: reconcile overdue waves first, then evaluate every
// enabled company against its own cadence.
func (s *Scheduler) runPass(ctx context.Context) {
	ctx = utils.SetCorrelationIdInContext(ctx, uuid.NewString())

	s.reconcileWaves(ctx)

	companyIds, err := models.ListEnabledCompanyIds(ctx, s.DB())
	if err != nil {
		s.logWriteFailure(ctx, "runPass", err)
		return
	}

	for _, companyId := range companyIds {
		select {
		case <-ctx.Done():
			return
		default:
		}

		settings, err := models.GetReplenishmentSettings(ctx, s.DB(), companyId)
		if err != nil {
			// SettingsUnavailable: nothing was attempted, so no audit row.
			// The company is skipped this tick and revisited on the next.
			s.Logger.WithFields(logrus.Fields{
				"module":  "replen",
				"company": companyId,
			}).Warnf("settings unavailable: %v", err)
			continue
		}
		if !settings.IsEnabled() {
			continue
		}

		due, err := s.companyDue(ctx, companyId, settings.SyncInterval())
		if err != nil {
			s.logWriteFailure(utils.SetCompanyIdInContext(ctx, companyId), "runPass", err)
			continue
		}
		if !due {
			continue
		}

		if err := s.runCompany(ctx, settings, models.TriggerScheduled); err != nil {
			s.Logger.WithFields(logrus.Fields{
				"module":  "replen",
				"company": companyId,
			}).Warnf("company cycle failed: %v", err)
		}
	}
}

// companyDue checks cadence against the audit log, not a per-company timer:
// the last successful stock fetch is the anchor, so restarts neither flood
// the gateway nor lose the cadence.
func (s *Scheduler) companyDue(ctx context.Context, companyId string, interval time.Duration) (bool, error) {
	last, err := models.LastSuccessfulFetch(ctx, s.DB(), companyId)
	if err != nil {
		return false, err
	}
	return CadenceElapsed(last, interval, time.Now()), nil
}

// CadenceElapsed reports whether enough wall-clock time passed since the last
// successful fetch. A company that never synced is always due.
func CadenceElapsed(lastSuccess *time.Time, interval time.Duration, now time.Time) bool {
	if lastSuccess == nil {
		return true
	}
	return now.Sub(*lastSuccess) >= interval
}

// runCompany processes every active branch sequentially. A branch failure is
// logged and the remaining branches still run.
func (s *Scheduler) runCompany(ctx context.Context, settings *models.ReplenishmentSettings, triggeredBy string) error {
	gw, err := s.GatewayFor(settings)
	if err != nil {
		return err
	}

	ctx = utils.SetCompanyIdInContext(ctx, settings.CompanyId)
	ctx = utils.SetTriggerSourceInContext(ctx, triggeredBy)

	var firstErr error
	for _, branch := range settings.ActiveBranches() {
		if err := s.syncBranch(utils.SetBranchCodeInContext(ctx, branch), gw, settings.CompanyId, branch); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RunCompanyNow is the operator's "run now": one cycle for one company,
// outside the cadence check, independent of the ticker. Callers run it in
// their own goroutine so the main loop is never blocked.
func (s *Scheduler) RunCompanyNow(ctx context.Context, companyId string) error {
	if _, ok := utils.GetCorrelationIdFromContext(ctx); !ok {
		ctx = utils.SetCorrelationIdInContext(ctx, uuid.NewString())
	}

	settings, err := models.GetReplenishmentSettings(ctx, s.DB(), companyId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCompanyNotConfigured
		}
		return err
	}
	return s.runCompany(ctx, settings, models.TriggerManual)
}
