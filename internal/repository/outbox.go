package repository

import (
	"context"
	"time"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

type OutboxRepository interface {
	Append(ctx context.Context, data *entity.OutboxMessage) error
	GetPending(ctx context.Context, limit int) ([]entity.OutboxMessage, error)
	MarkPublished(ctx context.Context, ids []string, at time.Time) error
}

type outboxRepository struct{}

func NewOutboxRepository() *outboxRepository {
	return &outboxRepository{}
}

func (r *outboxRepository) Append(ctx context.Context, data *entity.OutboxMessage) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *outboxRepository) GetPending(ctx context.Context, limit int) ([]entity.OutboxMessage, error) {
	var result []entity.OutboxMessage
	err := xcontext.DB(ctx).
		Where("status=?", entity.OutboxPending).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, ids []string, at time.Time) error {
	return xcontext.DB(ctx).
		Model(&entity.OutboxMessage{}).
		Where("id IN (?) AND status=?", ids, entity.OutboxPending).
		Updates(map[string]any{
			"status":       entity.OutboxPublished,
			"published_at": at,
		}).Error
}
