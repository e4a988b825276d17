package statistic

import (
	"context"
	"errors"

	"github.com/questx-lab/giveaway/internal/common"
	"github.com/questx-lab/giveaway/internal/model"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"github.com/questx-lab/giveaway/pkg/xredis"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Leaderboard is a redis projection of the ticket totals of a campaign. It
// is only used for display; draws never read it.
type Leaderboard interface {
	GetLeaderboard(ctx context.Context, campaignID string, offset, limit int) ([]model.TicketEntry, error)
	GetRank(ctx context.Context, campaignID, entrantID string) (uint64, error)
	SyncTickets(ctx context.Context, campaignID, entrantID string) error
	Reset(ctx context.Context, campaignID string) error
}

type leaderboard struct {
	ticketRepo  repository.TicketRepository
	redisClient xredis.Client
}

func New(ticketRepo repository.TicketRepository, redisClient xredis.Client) *leaderboard {
	return &leaderboard{ticketRepo: ticketRepo, redisClient: redisClient}
}

func (l *leaderboard) GetLeaderboard(
	ctx context.Context, campaignID string, offset, limit int,
) ([]model.TicketEntry, error) {
	key := common.RedisKeyLeaderboard(campaignID)
	if err := l.ensureLoaded(ctx, campaignID, key); err != nil {
		return nil, err
	}

	results, err := l.redisClient.ZRevRangeWithScores(ctx, key, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revrange redis: %v", err)
		return nil, errorx.Unknown
	}

	entries := []model.TicketEntry{}
	for i, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}

		entries = append(entries, model.TicketEntry{
			EntrantID: member,
			Tickets:   int64(z.Score),
			Rank:      offset + i + 1,
		})
	}

	return entries, nil
}

func (l *leaderboard) GetRank(ctx context.Context, campaignID, entrantID string) (uint64, error) {
	key := common.RedisKeyLeaderboard(campaignID)
	if err := l.ensureLoaded(ctx, campaignID, key); err != nil {
		return 0, err
	}

	rank, err := l.redisClient.ZRevRank(ctx, key, entrantID)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			xcontext.Logger(ctx).Debugf("Cannot get rev rank redis: %v", err)
		}

		return 0, nil
	}

	return rank + 1, nil
}

// SyncTickets copies the current total of the entrant from the database into
// the leaderboard. It sets the score instead of adding to it, so redelivered
// or reordered events converge on the ledger.
func (l *leaderboard) SyncTickets(ctx context.Context, campaignID, entrantID string) error {
	key := common.RedisKeyLeaderboard(campaignID)
	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return errorx.Unknown
	}

	// If the key didn't exist in redis, it will be loaded from database with
	// this change included.
	if !ok {
		return nil
	}

	var tickets int64
	total, err := l.ticketRepo.Get(ctx, campaignID, entrantID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get ticket total: %v", err)
			return errorx.Unknown
		}
	} else {
		tickets = total.Tickets
	}

	if tickets <= 0 {
		err = l.redisClient.ZRem(ctx, key, entrantID)
	} else {
		err = l.redisClient.ZAdd(ctx, key, redis.Z{Member: entrantID, Score: float64(tickets)})
	}
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update leaderboard redis: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (l *leaderboard) Reset(ctx context.Context, campaignID string) error {
	if err := l.redisClient.Del(ctx, common.RedisKeyLeaderboard(campaignID)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete leaderboard: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (l *leaderboard) ensureLoaded(ctx context.Context, campaignID, key string) error {
	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return errorx.Unknown
	}

	if ok {
		return nil
	}

	totals, err := l.ticketRepo.GetByCampaign(ctx, campaignID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load ticket totals from database: %v", err)
		return errorx.Unknown
	}

	members := []redis.Z{}
	for _, t := range totals {
		if t.Tickets > 0 {
			members = append(members, redis.Z{Member: t.EntrantID, Score: float64(t.Tickets)})
		}
	}

	if len(members) == 0 {
		return nil
	}

	if err := l.redisClient.ZAdd(ctx, key, members...); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot zadd redis: %v", err)
		return errorx.Unknown
	}

	return nil
}
