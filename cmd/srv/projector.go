package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/giveaway/internal/domain"
	"github.com/questx-lab/giveaway/internal/domain/statistic"
	"github.com/questx-lab/giveaway/pkg/kafka"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startProjector(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.loadRedisClient()
	s.loadRepos()

	projector := domain.NewProjector(statistic.New(s.ticketRepo, s.redisClient))

	cfg := xcontext.Configs(s.ctx).Kafka
	subscriber, err := kafka.NewSubscriber(cfg.GroupID, s.kafkaBrokers(), []string{cfg.Topic}, projector.Subscribe)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	subscriber.Subscribe(ctx)
	xcontext.Logger(ctx).Infof("Projector subscribed to %s", cfg.Topic)

	<-ctx.Done()
	return subscriber.Stop(s.ctx)
}
