package pubsub

import (
	"context"
	"time"
)

type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
}

type SubscribeHandler func(context.Context, *Pack, time.Time)

type Subscriber interface {
	// Subscribe blocks until the subscriber is ready to receive messages.
	Subscribe(ctx context.Context)
	Stop(ctx context.Context) error
}
