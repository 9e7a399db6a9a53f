package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/sender-queue/internal/config"
	"github.com/ricirt/sender-queue/internal/domain"
	"github.com/ricirt/sender-queue/internal/ratelimiter"
	"github.com/ricirt/sender-queue/internal/repository"
)

// WorkList is the pending side of the list file as seen by the feeder.
// skip counts leading lines to step over.
type WorkList interface {
	Peek(skip int) (string, bool, error)
	Remove(skip int) (string, bool, error)
}

// MetricHooks carries the metric callback functions injected by main.
// Nil fields are no-ops.
type MetricHooks struct {
	OnEnqueued  func(latency time.Duration)
	OnFailed    func()
	OnDuplicate func()
}

// FeedResult summarises one Feed call.
type FeedResult struct {
	Depth      int64
	Skipped    bool
	Enqueued   int
	Duplicates int
	Failed     int
	// Exhausted is set when the loop ran out of lines before the per-run limit.
	Exhausted bool
	// Interrupted is set when ctx was cancelled between items.
	Interrupted bool
}

// Feeder moves work items from the list file into the sender queue table.
type Feeder struct {
	repo    repository.QueueItemRepository
	list    WorkList
	limiter *ratelimiter.InsertLimiter
	cfg     config.SenderConfig
	logger  *zap.Logger
	hooks   MetricHooks
	now     func() time.Time
}

func NewFeeder(
	repo repository.QueueItemRepository,
	list WorkList,
	limiter *ratelimiter.InsertLimiter,
	cfg config.SenderConfig,
	logger *zap.Logger,
	hooks MetricHooks,
) *Feeder {
	if hooks.OnEnqueued == nil {
		hooks.OnEnqueued = func(time.Duration) {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func() {}
	}
	if hooks.OnDuplicate == nil {
		hooks.OnDuplicate = func() {}
	}
	if limiter == nil {
		limiter = ratelimiter.New(0)
	}
	return &Feeder{
		repo: repo, list: list, limiter: limiter, cfg: cfg,
		logger: logger, hooks: hooks,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Feed runs one depth check and, unless the queue is full, one bounded drain.
//
// A depth check failure is returned wrapped in domain.ErrQueueUnavailable.
// Per-item failures are logged and counted; the failed line stays in front of
// the list and the loop moves past it. Any other returned error comes from the
// list file.
func (f *Feeder) Feed(ctx context.Context) (FeedResult, error) {
	var res FeedResult

	depth, err := f.repo.CountBySender(ctx, f.cfg.SenderID)
	if err != nil {
		return res, fmt.Errorf("%w: %w", domain.ErrQueueUnavailable, err)
	}
	res.Depth = depth

	if depth >= f.cfg.CountLimitTrigger {
		f.logger.Info("queue is full, skipping this run",
			zap.Int64("depth", depth),
			zap.Int64("count_limit_trigger", f.cfg.CountLimitTrigger),
		)
		res.Skipped = true
		return res, nil
	}
	f.logger.Debug("queue depth below trigger",
		zap.Int64("depth", depth),
		zap.Int64("count_limit_trigger", f.cfg.CountLimitTrigger),
	)

	for i := 0; i < f.cfg.NumberOfDataToSend; i++ {
		if ctx.Err() != nil {
			res.Interrupted = true
			break
		}
		if err := f.limiter.Wait(ctx); err != nil {
			res.Interrupted = true
			break
		}

		// Lines that failed earlier in this run stay at the front; step over them.
		line, ok, err := f.list.Peek(res.Failed)
		if err != nil {
			return res, fmt.Errorf("read list file: %w", err)
		}
		if !ok {
			res.Exhausted = true
			break
		}

		if err := f.feedOne(ctx, line, &res); err != nil {
			return res, err
		}
	}

	if res.Interrupted {
		f.logger.Warn("feed interrupted", zap.Int("enqueued", res.Enqueued))
	}
	return res, nil
}

// feedOne handles a single list line. Only list file errors are returned.
func (f *Feeder) feedOne(ctx context.Context, line string, res *FeedResult) error {
	start := time.Now()
	log := f.logger.With(zap.String("line", line))

	w, err := domain.ParseWorkItem(line)
	if err != nil {
		log.Error("skipping malformed list entry", zap.Error(err))
		f.fail(res)
		return nil
	}
	log = f.logger.With(zap.Int64("metadata_id", w.MetadataID), zap.Int64("data_id", w.DataID))

	if f.cfg.SkipDuplicates {
		exists, err := f.repo.Exists(ctx, f.cfg.SenderID, w)
		if err != nil {
			log.Error("duplicate check failed", zap.Error(err))
			f.fail(res)
			return nil
		}
		if exists {
			if _, _, err := f.list.Remove(res.Failed); err != nil {
				return fmt.Errorf("remove list entry: %w", err)
			}
			res.Duplicates++
			f.hooks.OnDuplicate()
			log.Warn("already queued, dropped from list")
			return nil
		}
	}

	id, err := f.repo.NextID(ctx)
	if err != nil {
		log.Error("failed to allocate queue item id", zap.Error(err))
		f.fail(res)
		return nil
	}

	item := domain.QueueItem{
		ID:         id,
		MetadataID: w.MetadataID,
		DataID:     w.DataID,
		SenderID:   f.cfg.SenderID,
		CreatedAt:  f.now(),
	}
	if err := f.repo.Insert(ctx, item); err != nil {
		log.Error("failed to insert queue item", zap.Int64("id", id), zap.Error(err))
		f.fail(res)
		return nil
	}

	// The row is committed; only now may the line leave the file.
	if _, _, err := f.list.Remove(res.Failed); err != nil {
		return fmt.Errorf("remove list entry: %w", err)
	}

	res.Enqueued++
	elapsed := time.Since(start)
	f.hooks.OnEnqueued(elapsed)
	log.Info("item queued", zap.Int64("id", id), zap.Duration("latency", elapsed))
	return nil
}

func (f *Feeder) fail(res *FeedResult) {
	res.Failed++
	f.hooks.OnFailed()
}
