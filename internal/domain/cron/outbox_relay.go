package cron

import (
	"context"
	"time"

	"github.com/questx-lab/giveaway/internal/common"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/pkg/pubsub"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

// OutboxRelayCronJob publishes pending outbox messages in order. It stops at
// the first failure so that a message is never published before an older
// one; delivery is at least once.
type OutboxRelayCronJob struct {
	outboxRepo repository.OutboxRepository
	publisher  pubsub.Publisher
	interval   time.Duration
}

func NewOutboxRelayCronJob(
	outboxRepo repository.OutboxRepository,
	publisher pubsub.Publisher,
	interval time.Duration,
) *OutboxRelayCronJob {
	return &OutboxRelayCronJob{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		interval:   interval,
	}
}

func (job *OutboxRelayCronJob) Do(ctx context.Context) {
	batchSize := xcontext.Configs(ctx).Campaign.OutboxBatchSize
	for {
		messages, err := job.outboxRepo.GetPending(ctx, batchSize)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get pending outbox messages: %v", err)
			return
		}

		if len(messages) == 0 {
			return
		}

		published := []string{}
		for _, msg := range messages {
			err := job.publisher.Publish(ctx, msg.Topic, &pubsub.Pack{
				Key: []byte(msg.Key),
				Msg: msg.Payload,
			})
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot publish outbox message %s: %v", msg.ID, err)
				break
			}

			published = append(published, msg.ID)
			common.IncCounter(common.OutboxPublishedTotal, msg.Topic)
		}

		if len(published) > 0 {
			if err := job.outboxRepo.MarkPublished(ctx, published, xcontext.Now(ctx)); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot mark outbox messages as published: %v", err)
				return
			}
		}

		if len(published) < len(messages) || len(messages) < batchSize {
			return
		}
	}
}

func (job *OutboxRelayCronJob) RunNow() bool {
	return true
}

func (job *OutboxRelayCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
