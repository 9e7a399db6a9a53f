package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ricirt/sender-queue/internal/config"
	"github.com/ricirt/sender-queue/internal/domain"
	"github.com/ricirt/sender-queue/internal/listfile"
	"github.com/ricirt/sender-queue/internal/notifier"
	"github.com/ricirt/sender-queue/internal/worker"
)

// Outcome names how a run ended.
type Outcome string

const (
	OutcomeAlreadyComplete  Outcome = "already_complete"
	OutcomeNotifiedEmpty    Outcome = "notified_empty"
	OutcomeSkippedQueueFull Outcome = "skipped_queue_full"
	OutcomeFed              Outcome = "fed"
	OutcomeDepthCheckFailed Outcome = "depth_check_failed"
)

// Report describes one run.
type Report struct {
	Outcome Outcome
	// Generated is the number of rows written when this run created the list
	// file, or -1 when the file already existed.
	Generated int
	Feed      worker.FeedResult
	// Notified is set when an empty-list mail was attempted; NotifyErr holds
	// its delivery error.
	Notified  bool
	NotifyErr error
	// Pending is the number of lines left in the list file after the run.
	Pending int
}

// SenderService runs the per-invocation control flow: make sure a list file
// exists, stop if it is complete, notify once it is empty, and otherwise feed
// one bounded batch into the sender queue.
type SenderService struct {
	list       *listfile.Store
	importer   *MetadataImporter
	feeder     *worker.Feeder
	notifier   notifier.Notifier
	email      config.EmailConfig
	testerType string
	logger     *zap.Logger
}

func NewSenderService(
	list *listfile.Store,
	importer *MetadataImporter,
	feeder *worker.Feeder,
	n notifier.Notifier,
	cfg *config.Config,
	logger *zap.Logger,
) *SenderService {
	return &SenderService{
		list:       list,
		importer:   importer,
		feeder:     feeder,
		notifier:   n,
		email:      cfg.Email,
		testerType: cfg.Data.TesterType,
		logger:     logger,
	}
}

// Run executes one invocation. A returned error is fatal for the process;
// database and mail problems are logged and reported through Report instead.
func (s *SenderService) Run(ctx context.Context) (Report, error) {
	rep := Report{Generated: -1}

	exists, err := s.list.Exists()
	if err != nil {
		return rep, err
	}
	if !exists {
		s.logger.Info("list file not found, generating", zap.String("list_file", s.list.Path()))
		n, err := s.importer.Generate(ctx)
		rep.Generated = n
		if err != nil {
			s.logger.Error("metadata query abandoned", zap.Int("rows_written", n), zap.Error(err))
		}

		exists, err = s.list.Exists()
		if err != nil {
			return rep, err
		}
		if !exists {
			return rep, fmt.Errorf("%w: %s", domain.ErrListNotGenerated, s.list.Path())
		}
	}

	complete, err := s.list.IsComplete()
	if err != nil {
		return rep, err
	}
	if complete {
		s.logger.Info("list file is complete, nothing to do")
		rep.Outcome = OutcomeAlreadyComplete
		return rep, nil
	}

	empty, err := s.list.IsEmpty()
	if err != nil {
		return rep, err
	}
	if empty {
		rep.Notified, rep.NotifyErr = s.notifyEmpty(ctx)
		if err := s.list.MarkComplete(); err != nil {
			return rep, err
		}
		s.logger.Info("list file marked complete")
		rep.Outcome = OutcomeNotifiedEmpty
		return rep, nil
	}

	res, err := s.feeder.Feed(ctx)
	rep.Feed = res
	switch {
	case errors.Is(err, domain.ErrQueueUnavailable):
		s.logger.Error("queue depth check failed", zap.Error(err))
		rep.Outcome = OutcomeDepthCheckFailed
		return rep, nil
	case err != nil:
		return rep, err
	case res.Skipped:
		rep.Outcome = OutcomeSkippedQueueFull
	default:
		rep.Outcome = OutcomeFed
	}

	pending, err := s.list.Len()
	if err != nil {
		return rep, err
	}
	rep.Pending = pending

	s.logger.Info("feed finished",
		zap.Int64("depth", res.Depth),
		zap.Int("enqueued", res.Enqueued),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("failed", res.Failed),
		zap.Int("pending", pending),
	)
	return rep, nil
}

// notifyEmpty sends the empty-list mail. Failures are logged only.
func (s *SenderService) notifyEmpty(ctx context.Context) (bool, error) {
	if len(s.email.Recipients) == 0 {
		s.logger.Warn("list file is empty but no recipients are configured, skipping mail")
		return false, nil
	}

	msg, err := notifier.EmptyListMessage(s.email, s.testerType)
	if err != nil {
		s.logger.Error("failed to render notification", zap.Error(err))
		return true, err
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send notification", zap.Strings("recipients", msg.Recipients), zap.Error(err))
		return true, err
	}

	s.logger.Info("notification sent", zap.Strings("recipients", msg.Recipients))
	return true, nil
}
