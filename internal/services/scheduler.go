package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/genasnewdar/lever-stg/internal/data/repos"
	"github.com/genasnewdar/lever-stg/internal/platform/logger"
)

const (
	testExpiryKey  = "scheduler:test_expiry"
	ieltsExpiryKey = "scheduler:ielts_expiry"

	expiryPollInterval = 5 * time.Second
	expirySweepCadence = time.Minute
	expiryRetryDelay   = time.Minute
	expiryBatchLimit   = 100
)

// ExpiryHandler closes one overdue attempt. Handlers must be idempotent:
// the sweep loop can hand over attempts the redis loop already closed.
type ExpiryHandler func(ctx context.Context, attemptID uuid.UUID) error

// SchedulerService tracks attempt deadlines in redis sorted sets and
// fires the registered handlers when they come due. A periodic database
// sweep backstops redis so deadlines survive a flushed or restarted
// instance.
type SchedulerService interface {
	ScheduleTestExpiry(ctx context.Context, attemptID uuid.UUID, dueAt time.Time) error
	CancelTestExpiry(ctx context.Context, attemptID uuid.UUID) error
	ScheduleIeltsExpiry(ctx context.Context, attemptID uuid.UUID, expiresAt time.Time) error
	CancelIeltsExpiry(ctx context.Context, attemptID uuid.UUID) error
	SetTestExpiryHandler(handler ExpiryHandler)
	SetIeltsExpiryHandler(handler ExpiryHandler)
	Start(ctx context.Context) error
}

type schedulerService struct {
	rdb              *goredis.Client
	log              *logger.Logger
	attemptRepo      repos.AttemptRepo
	ieltsAttemptRepo repos.IeltsAttemptRepo

	testHandler  ExpiryHandler
	ieltsHandler ExpiryHandler
}

func NewSchedulerService(
	rdb *goredis.Client,
	baseLog *logger.Logger,
	attemptRepo repos.AttemptRepo,
	ieltsAttemptRepo repos.IeltsAttemptRepo,
) SchedulerService {
	return &schedulerService{
		rdb:              rdb,
		log:              baseLog.With("service", "SchedulerService"),
		attemptRepo:      attemptRepo,
		ieltsAttemptRepo: ieltsAttemptRepo,
	}
}

// Handlers are registered during wiring, before Start.
func (s *schedulerService) SetTestExpiryHandler(handler ExpiryHandler)  { s.testHandler = handler }
func (s *schedulerService) SetIeltsExpiryHandler(handler ExpiryHandler) { s.ieltsHandler = handler }

func (s *schedulerService) ScheduleTestExpiry(ctx context.Context, attemptID uuid.UUID, dueAt time.Time) error {
	return s.schedule(ctx, testExpiryKey, attemptID, dueAt)
}

func (s *schedulerService) CancelTestExpiry(ctx context.Context, attemptID uuid.UUID) error {
	return s.cancel(ctx, testExpiryKey, attemptID)
}

func (s *schedulerService) ScheduleIeltsExpiry(ctx context.Context, attemptID uuid.UUID, expiresAt time.Time) error {
	return s.schedule(ctx, ieltsExpiryKey, attemptID, expiresAt)
}

func (s *schedulerService) CancelIeltsExpiry(ctx context.Context, attemptID uuid.UUID) error {
	return s.cancel(ctx, ieltsExpiryKey, attemptID)
}

func (s *schedulerService) schedule(ctx context.Context, key string, attemptID uuid.UUID, at time.Time) error {
	if s.rdb == nil {
		return fmt.Errorf("scheduler redis not configured")
	}
	err := s.rdb.ZAdd(ctx, key, goredis.Z{
		Score:  float64(at.Unix()),
		Member: attemptID.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("schedule expiry: %w", err)
	}
	return nil
}

func (s *schedulerService) cancel(ctx context.Context, key string, attemptID uuid.UUID) error {
	if s.rdb == nil {
		return nil
	}
	if err := s.rdb.ZRem(ctx, key, attemptID.String()).Err(); err != nil {
		return fmt.Errorf("cancel expiry: %w", err)
	}
	return nil
}

// Start runs the poll and sweep loops until ctx is canceled.
func (s *schedulerService) Start(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return s.pollLoop(ctx, testExpiryKey, func() ExpiryHandler { return s.testHandler })
	})
	group.Go(func() error {
		return s.pollLoop(ctx, ieltsExpiryKey, func() ExpiryHandler { return s.ieltsHandler })
	})
	group.Go(func() error {
		return s.sweepLoop(ctx)
	})

	s.log.Info("Attempt expiry scheduler started")
	return group.Wait()
}

func (s *schedulerService) pollLoop(ctx context.Context, key string, handler func() ExpiryHandler) error {
	if s.rdb == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(expiryPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.drainDue(ctx, key, handler())
		}
	}
}

func (s *schedulerService) drainDue(ctx context.Context, key string, handler ExpiryHandler) {
	if handler == nil {
		return
	}

	now := time.Now()
	members, err := s.rdb.ZRangeByScore(ctx, key, &goredis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%d", now.Unix()),
		Count: expiryBatchLimit,
	}).Result()
	if err != nil {
		s.log.Warn("Expiry poll failed", "key", key, "error", err)
		return
	}

	for _, member := range members {
		attemptID, err := uuid.Parse(member)
		if err != nil {
			s.log.Warn("Dropping malformed expiry entry", "key", key, "member", member)
			s.rdb.ZRem(ctx, key, member)
			continue
		}

		if err := handler(ctx, attemptID); err != nil {
			// push the deadline forward so the entry retries instead of
			// spinning every poll
			s.log.Warn("Expiry handler failed; rescheduling", "key", key, "attempt_id", attemptID, "error", err)
			s.rdb.ZAdd(ctx, key, goredis.Z{
				Score:  float64(now.Add(expiryRetryDelay).Unix()),
				Member: member,
			})
			continue
		}
		s.rdb.ZRem(ctx, key, member)
		s.log.Info("Closed overdue attempt", "key", key, "attempt_id", attemptID)
	}
}

// sweepLoop scans the database for overdue attempts redis no longer
// knows about.
func (s *schedulerService) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(expirySweepCadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *schedulerService) sweepOnce(ctx context.Context) {
	now := time.Now()

	if handler := s.testHandler; handler != nil && s.attemptRepo != nil {
		attempts, err := s.attemptRepo.ListDueBefore(ctx, nil, now)
		if err != nil {
			s.log.Warn("Test attempt sweep failed", "error", err)
		} else {
			for _, attempt := range attempts {
				if err := handler(ctx, attempt.ID); err != nil {
					s.log.Warn("Test attempt sweep close failed", "attempt_id", attempt.ID, "error", err)
				}
			}
		}
	}

	if handler := s.ieltsHandler; handler != nil && s.ieltsAttemptRepo != nil {
		attempts, err := s.ieltsAttemptRepo.ListExpiredBefore(ctx, nil, now)
		if err != nil {
			s.log.Warn("Ielts attempt sweep failed", "error", err)
		} else {
			for _, attempt := range attempts {
				if err := handler(ctx, attempt.ID); err != nil {
					s.log.Warn("Ielts attempt sweep close failed", "attempt_id", attempt.ID, "error", err)
				}
			}
		}
	}
}
