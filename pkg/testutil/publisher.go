package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/pubsub"
)

type MockPublisher struct {
	PublishFunc func(context.Context, string, *pubsub.Pack) error
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	return errorx.New(errorx.NotImplemented, "Not implemented")
}

// RecordPublisher keeps every published pack in memory.
type RecordPublisher struct {
	mutex sync.Mutex
	packs map[string][]*pubsub.Pack
}

func NewRecordPublisher() *RecordPublisher {
	return &RecordPublisher{packs: make(map[string][]*pubsub.Pack)}
}

func (p *RecordPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.packs[topic] = append(p.packs[topic], pack)
	return nil
}

func (p *RecordPublisher) Get(topic string) []*pubsub.Pack {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return append([]*pubsub.Pack(nil), p.packs[topic]...)
}
