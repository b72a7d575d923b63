package main

import (
	"os"

	gh "github.com/google/go-github/v80/github"
	"github.com/rs/zerolog"

	"github.com/clusterhack/classbot/internal/config"
	"github.com/clusterhack/classbot/internal/db"
	"github.com/clusterhack/classbot/internal/github"
	"github.com/clusterhack/classbot/internal/orchestrator"
	"github.com/clusterhack/classbot/internal/server"
	"github.com/clusterhack/classbot/internal/service"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	env, err := config.LoadEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment config")
	}
	level, err := zerolog.ParseLevel(env.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("bad log level")
	}
	log = log.Level(level)

	gdb, err := db.Open(env.DatabaseDriver, env.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database schema")
	}

	ghClient := github.New(env.GithubToken)
	committer := &gh.CommitAuthor{
		Name:  gh.Ptr(env.BotUsername),
		Email: gh.Ptr(env.BotEmail()),
	}

	alerts := db.NewAlertRepository(gdb)
	assignments := db.NewAssignmentRepository(gdb)
	submissions := db.NewSubmissionRepository(gdb)

	services := orchestrator.Services{
		Watchdog:  service.NewWatchdogService(ghClient, alerts, assignments, log),
		Workflows: service.NewWorkflowSetupService(ghClient, committer, log),
		Autograde: service.NewAutogradeService(ghClient, log),
		Badges:    service.NewBadgeService(ghClient, committer, log),
		Gradelog:  service.NewGradeLogService(ghClient, assignments, submissions, log),
	}

	dispatcher, err := orchestrator.NewDispatcher(
		config.NewLoader(ghClient), services,
		env.RepoOwnerPattern, env.RepoNamePattern, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up dispatcher")
	}

	srv := server.New(dispatcher, env.WebhookSecret, log)
	if err := srv.Run(env.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server terminated")
	}
}
