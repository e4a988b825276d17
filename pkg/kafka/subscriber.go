package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/Shopify/sarama"
	"github.com/questx-lab/giveaway/pkg/pubsub"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

type subscriber struct {
	groupID     string
	brokerAddrs []string
	topics      []string
	client      sarama.ConsumerGroup
	handler     pubsub.SubscribeHandler
}

func NewSubscriber(
	groupID string,
	brokerAddrs []string,
	topics []string,
	handler pubsub.SubscribeHandler,
) (*subscriber, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	client, err := sarama.NewConsumerGroup(brokerAddrs, groupID, config)
	if err != nil {
		return nil, err
	}

	return &subscriber{
		groupID:     groupID,
		brokerAddrs: brokerAddrs,
		topics:      topics,
		client:      client,
		handler:     handler,
	}, nil
}

func (s *subscriber) Stop(ctx context.Context) error {
	return s.client.Close()
}

func (s *subscriber) Subscribe(ctx context.Context) {
	consumer := consumerGroupHandler{
		ctx:   ctx,
		ready: make(chan bool),
		fn:    s.handler,
	}

	go func() {
		for {
			// Consume returns when a server-side rebalance happens, so it
			// must be called again to get the new claims.
			if err := s.client.Consume(ctx, s.topics, &consumer); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}

				xcontext.Logger(ctx).Errorf("Error from consumer: %v", err)
				time.Sleep(time.Second)
			}

			if ctx.Err() != nil {
				return
			}

			consumer.ready = make(chan bool)
		}
	}()

	<-consumer.ready
}

// The handler receives the subscribing context, which carries the logger and
// configs, instead of the session context.
type consumerGroupHandler struct {
	ctx   context.Context
	ready chan bool
	fn    pubsub.SubscribeHandler
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(
	session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim,
) error {
	for message := range claim.Messages() {
		h.fn(h.ctx, &pubsub.Pack{Key: message.Key, Msg: message.Value}, message.Timestamp)
		session.MarkMessage(message, "")
	}

	return nil
}
