package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/giveaway/internal/domain/cron"
	"github.com/questx-lab/giveaway/pkg/kafka"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRepos()

	cfg := xcontext.Configs(s.ctx).Campaign
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewCampaignLifecycleCronJob(s.campaignRepo, cfg.LifecycleInterval))
	s.runCron(cronJobManager)
	return nil
}

func (s *srv) startRelay(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRepos()

	publisher, err := kafka.NewPublisher("giveaway-relay", s.kafkaBrokers())
	if err != nil {
		return err
	}
	defer publisher.Stop(s.ctx)

	cfg := xcontext.Configs(s.ctx).Campaign
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewOutboxRelayCronJob(s.outboxRepo, publisher, cfg.OutboxInterval))
	s.runCron(cronJobManager)
	return nil
}

// runCron blocks until the process is interrupted.
func (s *srv) runCron(cronJobManager *cron.CronJobManager) {
	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		cronJobManager.Cancel(context.WithoutCancel(ctx))
	}()

	cronJobManager.Start(ctx)
}
