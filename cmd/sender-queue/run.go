package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ricirt/sender-queue/internal/config"
	"github.com/ricirt/sender-queue/internal/db"
	"github.com/ricirt/sender-queue/internal/listfile"
	"github.com/ricirt/sender-queue/internal/logging"
	"github.com/ricirt/sender-queue/internal/metrics"
	"github.com/ricirt/sender-queue/internal/notifier"
	"github.com/ricirt/sender-queue/internal/ratelimiter"
	"github.com/ricirt/sender-queue/internal/repository"
	"github.com/ricirt/sender-queue/internal/service"
	"github.com/ricirt/sender-queue/internal/worker"
)

const pushTimeout = 10 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one feeding pass (default)",
	Args:  cobra.NoArgs,
	RunE:  runJob,
}

func runJob(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer baseLogger.Sync() //nolint:errcheck

	runID := uuid.NewString()
	logger := baseLogger.With(
		zap.String("run_id", runID),
		zap.Int("pid", os.Getpid()),
		zap.Int64("sender_id", cfg.Sender.SenderID),
	)
	logger.Info("Process Start", zap.String("config", configPath))
	start := time.Now()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- database ----
	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to create connection pool", zap.Error(err))
		return err
	}
	defer pool.Close()

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	list := listfile.New(cfg.Sender.ListFile)
	queueRepo := repository.NewPgQueueItemRepository(pool)
	metaRepo := repository.NewPgMetadataRepository(pool)

	onEnqueued, onFailed, onDuplicate := m.FeederHooks()
	feeder := worker.NewFeeder(queueRepo, list, ratelimiter.New(cfg.Sender.InsertRate), cfg.Sender, logger, worker.MetricHooks{
		OnEnqueued:  onEnqueued,
		OnFailed:    onFailed,
		OnDuplicate: onDuplicate,
	})
	importer := service.NewMetadataImporter(metaRepo, list, cfg.MetadataFilter(), logger)
	svc := service.NewSenderService(list, importer, feeder, notifier.NewSMTPNotifier(cfg.Email), cfg, logger)

	rep, runErr := svc.Run(ctx)

	// ---- metrics ----
	outcome := string(rep.Outcome)
	if runErr != nil {
		outcome = "error"
	}
	if rep.Notified {
		m.NotificationResult(rep.NotifyErr)
	}
	m.QueueDepth.Set(float64(rep.Feed.Depth))
	m.ListPending.Set(float64(rep.Pending))
	m.RunFinished(outcome, time.Since(start), time.Now())
	pushMetrics(cfg.Metrics, cfg.Sender.SenderID, m, logger)

	if runErr != nil {
		logger.Error("Process End", zap.Error(runErr), zap.Duration("elapsed", time.Since(start)))
		return runErr
	}
	logger.Info("Process End",
		zap.String("outcome", outcome),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// pushMetrics is best effort; a failed push never changes the exit code.
func pushMetrics(cfg config.MetricsConfig, senderID int64, m *metrics.Metrics, logger *zap.Logger) {
	if cfg.PushgatewayURL == "" {
		return
	}
	// The run context may already be cancelled by a signal.
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	grouping := map[string]string{"sender_id": strconv.FormatInt(senderID, 10)}
	if err := m.Push(ctx, cfg.PushgatewayURL, cfg.Job, grouping); err != nil {
		logger.Warn("failed to push metrics", zap.String("url", cfg.PushgatewayURL), zap.Error(err))
		return
	}
	logger.Debug("metrics pushed", zap.String("url", cfg.PushgatewayURL))
}
