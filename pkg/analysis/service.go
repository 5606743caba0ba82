// Package analysis serves tactical analyses and squad briefings, shielding
// callers from upstream quota limits with caching, retries and local fallbacks.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sustactical/squadlink/pkg/audit"
	"github.com/sustactical/squadlink/pkg/cache"
	"github.com/sustactical/squadlink/pkg/clock"
	"github.com/sustactical/squadlink/pkg/fallback"
	"github.com/sustactical/squadlink/pkg/models"
	"github.com/sustactical/squadlink/pkg/retry"
	"github.com/sustactical/squadlink/pkg/upstream"
)

// ErrInvalidSubject is returned before any upstream call when a subject is
// missing its identity or carries an unknown status.
var ErrInvalidSubject = errors.New("invalid subject")

const (
	defaultUpstreamTimeout = 30 * time.Second
	auditTimeout           = 5 * time.Second
)

// Deps are the collaborators of a Service. Upstream and Store are required.
type Deps struct {
	Upstream upstream.Client
	// Store backs both the analysis and briefing caches.
	Store  cache.Store
	Audit  audit.Store
	Clock  clock.Clock
	Logger *zap.Logger

	Retry           retry.Policy
	AnalysisTTL     time.Duration
	BriefingTTL     time.Duration
	UpstreamTimeout time.Duration
}

// Stats are process-local counters.
type Stats struct {
	Analysis      models.CacheStats `json:"analysis_cache"`
	Briefing      models.CacheStats `json:"briefing_cache"`
	UpstreamCalls int64             `json:"upstream_calls"`
	Degraded      int64             `json:"degraded"`
	AuditFailures int64             `json:"audit_failures"`
}

// Service is safe for concurrent use. Two concurrent misses for the same key
// may both reach upstream; the later write wins.
type Service struct {
	upstream  upstream.Client
	analyses  *cache.TTL[models.AnalysisResult]
	briefings *cache.TTL[string]
	audit     audit.Store
	clock     clock.Clock
	logger    *zap.Logger
	retry     retry.Policy
	timeout   time.Duration

	wg            sync.WaitGroup
	upstreamCalls atomic.Int64
	degraded      atomic.Int64
	auditFailures atomic.Int64
}

// New builds a Service from d, filling zero fields with defaults.
func New(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = clock.System{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.AnalysisTTL <= 0 {
		d.AnalysisTTL = cache.DefaultAnalysisTTL
	}
	if d.BriefingTTL <= 0 {
		d.BriefingTTL = cache.DefaultBriefingTTL
	}
	if d.UpstreamTimeout <= 0 {
		d.UpstreamTimeout = defaultUpstreamTimeout
	}
	if d.Retry.MaxRetries == 0 && d.Retry.InitialDelay == 0 {
		def := retry.DefaultPolicy()
		d.Retry.MaxRetries, d.Retry.InitialDelay = def.MaxRetries, def.InitialDelay
	}
	if d.Retry.Logger == nil {
		d.Retry.Logger = d.Logger
	}
	return &Service{
		upstream:  d.Upstream,
		analyses:  cache.NewTTL[models.AnalysisResult](d.Store, cache.BucketAnalysis, d.AnalysisTTL, d.Clock, d.Logger),
		briefings: cache.NewTTL[string](d.Store, cache.BucketBriefing, d.BriefingTTL, d.Clock, d.Logger),
		audit:     d.Audit,
		clock:     d.Clock,
		logger:    d.Logger,
		retry:     d.Retry,
		timeout:   d.UpstreamTimeout,
	}
}

// Validate checks the fields the analysis key and prompt depend on.
func Validate(s models.Subject) error {
	switch {
	case s.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidSubject)
	case s.Rank == "":
		return fmt.Errorf("%w: rank is required", ErrInvalidSubject)
	case s.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidSubject)
	case !s.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidSubject, s.Status)
	}
	return nil
}

// Analyze returns a tactical assessment of subj. The boolean reports a cache
// hit. forceRefresh skips the cache lookup but still stores a fresh result.
// Upstream failures never surface as errors: a degraded result is returned
// instead, and it is neither cached nor logged.
func (s *Service) Analyze(ctx context.Context, subj models.Subject, forceRefresh bool) (models.AnalysisResult, bool, error) {
	if err := Validate(subj); err != nil {
		return models.AnalysisResult{}, false, err
	}
	key := cache.AnalysisKey(subj)
	log := s.logger.With(zap.String("soldier_id", subj.ID), zap.String("key", key))

	if !forceRefresh {
		if res, ok := s.analyses.Get(ctx, key); ok {
			log.Debug("analysis cache hit")
			return res, true, nil
		}
	}

	res, err := retry.Do(ctx, s.retry, func(ctx context.Context) (models.AnalysisResult, error) {
		s.upstreamCalls.Add(1)
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.upstream.Analyze(ctx, subj)
	})
	if err != nil {
		errType := upstream.Classify(err)
		s.degraded.Add(1)
		log.Warn("analysis degraded", zap.String("error_type", string(errType)), zap.Error(err))
		return fallback.Analysis(subj, errType, s.clock.Now()), false, nil
	}

	res.IsError = false
	res.ErrorType = ""
	res.GeneratedAt = s.clock.Now()
	s.analyses.Put(ctx, key, res)
	s.record(subj.ID, res)
	return res, false, nil
}

// Briefing returns a short readiness briefing for the roster. A fresh cached
// briefing is returned regardless of subjects.
func (s *Service) Briefing(ctx context.Context, subjects []models.Subject) string {
	if text, ok := s.briefings.Get(ctx, cache.BriefingKey); ok {
		return text
	}

	text, err := retry.Do(ctx, s.retry, func(ctx context.Context) (string, error) {
		s.upstreamCalls.Add(1)
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.upstream.Brief(ctx, subjects)
	})
	if err != nil {
		s.degraded.Add(1)
		s.logger.Warn("briefing degraded",
			zap.String("error_type", string(upstream.Classify(err))),
			zap.Error(err),
		)
		return fallback.Briefing
	}

	s.briefings.Put(ctx, cache.BriefingKey, text)
	return text
}

// Logs returns the most recent logged analyses, newest first.
func (s *Service) Logs(ctx context.Context) ([]models.AnalysisLog, error) {
	if s.audit == nil {
		return []models.AnalysisLog{}, nil
	}
	return s.audit.Recent(ctx, audit.RecentLimit)
}

// Ping checks the audit store, if any.
func (s *Service) Ping(ctx context.Context) error {
	if s.audit == nil {
		return nil
	}
	return s.audit.Ping(ctx)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	a, err := s.analyses.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	b, err := s.briefings.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Analysis:      a,
		Briefing:      b,
		UpstreamCalls: s.upstreamCalls.Load(),
		Degraded:      s.degraded.Load(),
		AuditFailures: s.auditFailures.Load(),
	}, nil
}

// Wait blocks until pending audit writes have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// record writes the analysis log in the background. The write outlives the
// request, so it runs on its own context.
func (s *Service) record(soldierID string, res models.AnalysisResult) {
	if s.audit == nil {
		return
	}
	entry := models.AnalysisLog{
		RequestID:       uuid.NewString(),
		SoldierID:       soldierID,
		StatusSummary:   res.StatusSummary,
		HealthRisk:      res.HealthRisk,
		ImmediateAction: res.ImmediateAction,
		Model:           s.upstream.Model(),
		CreatedAt:       res.GeneratedAt,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()
		if err := s.audit.Log(ctx, entry); err != nil {
			s.auditFailures.Add(1)
			s.logger.Error("analysis log write failed",
				zap.String("error_type", string(models.ErrorPersistence)),
				zap.String("request_id", entry.RequestID),
				zap.Error(err),
			)
		}
	}()
}
