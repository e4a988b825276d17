package migration

import (
	"context"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

// When this migrator is called, no need to call other migrators.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.Campaign{},
		&entity.CampaignConfig{},
		&entity.Entrant{},
		&entity.EntryAction{},
		&entity.EntryRevocation{},
		&entity.ReferralEdge{},
		&entity.TicketTotal{},
		&entity.WinnerRecord{},
		&entity.OutboxMessage{},
		&entity.Migration{},
	)
}
