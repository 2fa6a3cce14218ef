package cron

import (
	"context"
	"log"
	"time"

	"serenity/config"
	slotRepo "serenity/database/repository/slot"
	"serenity/utils"

	"github.com/hibiken/asynq"
)

const TypeSlotJanitor = "slots:lapse"

// InitSlotJanitor runs the async worker and its periodic scheduler in the
// background. The janitor deletes past-dated, unbooked slot records so the
// slots collection stays aligned with what the template can still offer.
// Booked records are never touched; they back confirmed sessions.
func InitSlotJanitor(repo slotRepo.SlotRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisJanitorDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSlotJanitor, handleJanitorTask(repo))

	// Start async worker with retry logic
	go func() {
		log.Println("[SlotJanitor] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SlotJanitor] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SlotJanitor] max retry attempts reached; exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()

	// Enqueue the sweep once a day.
	go func() {
		scheduler := asynq.NewScheduler(redisOpts, nil)
		if _, err := scheduler.Register("@daily", asynq.NewTask(TypeSlotJanitor, nil)); err != nil {
			log.Printf("[SlotJanitor] failed to register periodic sweep: %v", err)
			return
		}
		if err := scheduler.Run(); err != nil {
			log.Printf("[SlotJanitor] scheduler stopped: %v", err)
		}
	}()
}

func handleJanitorTask(repo slotRepo.SlotRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		today := utils.DateOf(time.Now())

		deleted, err := repo.DeleteLapsedUnbooked(ctx, today)
		if err != nil {
			log.Printf("[SlotJanitor] sweep failed: %v", err)
			return err
		}

		log.Printf("[SlotJanitor] removed %d lapsed unbooked slots before %s", deleted, today)
		return nil
	}
}
