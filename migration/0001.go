package migration

import (
	"context"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

// migrate0001 adds the transactional outbox.
func migrate0001(ctx context.Context) error {
	return xcontext.DB(ctx).Migrator().CreateTable(&entity.OutboxMessage{})
}
