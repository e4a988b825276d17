package migration

import (
	"context"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

// migrate0000 creates the ledger tables.
func migrate0000(ctx context.Context) error {
	return xcontext.DB(ctx).Migrator().CreateTable(
		&entity.Campaign{},
		&entity.CampaignConfig{},
		&entity.Entrant{},
		&entity.EntryAction{},
		&entity.EntryRevocation{},
		&entity.ReferralEdge{},
		&entity.TicketTotal{},
		&entity.WinnerRecord{},
	)
}
