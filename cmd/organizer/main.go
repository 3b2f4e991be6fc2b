package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"pocket-organizer/internal/bot"
	"pocket-organizer/internal/config"
	"pocket-organizer/internal/events"
	"pocket-organizer/internal/repository"
	"pocket-organizer/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	broker := events.NewBroker()
	defer broker.Stop()

	taskRepo := repository.NewTaskRepository(db, broker)
	chatRepo := repository.NewChatRepository(db, broker)
	categoryRepo := repository.NewCategoryRepository(db, broker)
	fitnessRepo := repository.NewFitnessRepository(db, broker)
	cookRepo := repository.NewCookRepository(db, broker)
	planRepo := repository.NewPlanRepository(db, broker)

	seedSvc := service.NewSeedService(categoryRepo, fitnessRepo, cookRepo, log)
	if err := seedSvc.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}

	taskSvc := service.NewTaskService(taskRepo, categoryRepo)
	reminderSvc := service.NewReminderService(taskRepo, categoryRepo, fitnessRepo)

	organizerBot, err := bot.New(cfg.TelegramToken, taskSvc, reminderSvc,
		chatRepo, fitnessRepo, cookRepo, planRepo, &cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("bot")
	}

	report := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := organizerBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("report")
		}
	}

	scheduler := service.NewSchedulerService(time.Local)
	switch {
	case cfg.ReportTime != "":
		if _, err := scheduler.ScheduleDaily(cfg.ReportTime, report); err != nil {
			log.Fatal().Err(err).Msg("schedule reports")
		}
	default:
		if _, err := scheduler.ScheduleInterval(cfg.ReportInterval, report); err != nil {
			log.Fatal().Err(err).Msg("schedule reports")
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Info().Msg("pocket organizer started")
	if err := organizerBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("bot stopped with error")
	}
	log.Info().Msg("shutdown complete")
}
