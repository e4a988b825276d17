package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/questx-lab/giveaway/internal/domain/statistic"
	"github.com/questx-lab/giveaway/internal/model"
	"github.com/questx-lab/giveaway/pkg/pubsub"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

// Projector applies ledger events consumed from the broker to the read
// models. Read models are disposable: a failed event is logged and skipped,
// the leaderboard is rebuilt from the database after a reset.
type Projector struct {
	leaderboard statistic.Leaderboard
}

func NewProjector(leaderboard statistic.Leaderboard) *Projector {
	return &Projector{leaderboard: leaderboard}
}

func (p *Projector) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var event model.LedgerEvent
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal ledger event: %v", err)
		return
	}

	switch event.Type {
	case model.EventActionRecorded, model.EventActionRevoked:
		if event.Delta == 0 {
			return
		}

		err := p.leaderboard.SyncTickets(ctx, event.CampaignID, event.EntrantID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot change leaderboard of campaign %s: %v", event.CampaignID, err)
		}

	case model.EventWinnersSelected:
		xcontext.Logger(ctx).Infof("Campaign %s selected winners (generation %d)",
			event.CampaignID, event.Generation)

	default:
		xcontext.Logger(ctx).Warnf("Unknown ledger event %s at %v", event.Type, t)
	}
}
