package cron

import (
	"context"
	"time"

	"repairhub/config"
	"repairhub/services/notification"
	"repairhub/services/tasks"
	"repairhub/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt returns the asynq connection for the task queue database.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitBookingWorker runs the booking task worker in the background and
// returns the server so the caller can shut it down.
func InitBookingWorker(notifSvc notification.NotificationService) *asynq.Server {
	logger := utils.GetLogger()

	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingCreated, HandleBookingCreated(notifSvc, logger))

	go func() {
		logger.Info("starting booking worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("booking worker failed to start",
					zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))

				if attempts == maxAttempts {
					logger.Error("booking worker gave up; booking notifications are paused")
					return
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
	return srv
}

// HandleBookingCreated writes the in-app notifications for a new booking.
func HandleBookingCreated(notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseBookingCreated(task)
		if err != nil {
			logger.Error("invalid booking task payload", zap.Error(err))
			return asynq.SkipRetry
		}

		if err := notifSvc.NotifyBookingCreated(ctx, p); err != nil {
			logger.Warn("booking notification failed", zap.String("bookingID", p.BookingID), zap.Error(err))
			return err
		}
		logger.Debug("booking notification sent", zap.String("bookingID", p.BookingID))
		return nil
	}
}
