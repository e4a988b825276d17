// Package ticket converts the entry ledger into per-entrant ticket weights.
package ticket

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/questx-lab/giveaway/internal/domain/draw"
	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm"
)

const iterateBatchSize = 500

var errStopIterate = errors.New("stop iterate")

// Snapshot is the immutable view of the weights a draw runs on. Version is
// the ledger high-water mark it was computed at.
type Snapshot struct {
	CampaignID   string
	Version      int64
	Hash         string
	Entries      []draw.Entry
	TotalTickets int64
}

// Mismatch is an entrant whose cached total differs from the ledger.
type Mismatch struct {
	EntrantID string
	Cached    int64
	Ledger    int64
}

type Accountant interface {
	WeightOf(ctx context.Context, campaignID, entrantID string) (int64, error)

	// Snapshot computes the weights from the ledger, not from the cache.
	Snapshot(ctx context.Context, campaignID string) (*Snapshot, error)

	// SnapshotAt only counts ledger rows whose sequence is not greater than
	// version. Sequences are taken before commit, so version is only a stable
	// high-water mark once every write below it has committed. Selection
	// waits until the grace window after end has passed, and no write is
	// accepted after that.
	SnapshotAt(ctx context.Context, campaignID string, version int64) (*Snapshot, error)
	Recompute(ctx context.Context, campaignID string) (map[string]int64, error)
	Verify(ctx context.Context, campaignID string) ([]Mismatch, error)

	// Rebuild replaces the cached totals with a recomputation.
	Rebuild(ctx context.Context, campaignID string) error
}

type accountant struct {
	entryActionRepo repository.EntryActionRepository
	ticketRepo      repository.TicketRepository
}

func NewAccountant(
	entryActionRepo repository.EntryActionRepository,
	ticketRepo repository.TicketRepository,
) *accountant {
	return &accountant{
		entryActionRepo: entryActionRepo,
		ticketRepo:      ticketRepo,
	}
}

func (a *accountant) WeightOf(ctx context.Context, campaignID, entrantID string) (int64, error) {
	total, err := a.ticketRepo.Get(ctx, campaignID, entrantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		return 0, err
	}

	return max(total.Tickets, 0), nil
}

func (a *accountant) Recompute(ctx context.Context, campaignID string) (map[string]int64, error) {
	return a.recompute(ctx, campaignID, math.MaxInt64)
}

func (a *accountant) recompute(ctx context.Context, campaignID string, version int64) (map[string]int64, error) {
	weights := map[string]int64{}
	err := a.entryActionRepo.Iterate(ctx, campaignID, iterateBatchSize, func(actions []entity.EntryAction) error {
		for _, action := range actions {
			if action.Sequence > version {
				return errStopIterate
			}

			weights[action.EntrantID] += int64(action.Points)
		}

		return nil
	})
	if err != nil && !errors.Is(err, errStopIterate) {
		return nil, err
	}

	revocations, err := a.entryActionRepo.GetRevocations(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	for _, r := range revocations {
		if r.Sequence > version {
			break
		}

		weights[r.EntrantID] -= int64(r.Points)
	}

	for id, w := range weights {
		if w < 0 {
			xcontext.Logger(ctx).Warnf("Negative weight %d of entrant %s in campaign %s", w, id, campaignID)
			weights[id] = 0
		}
	}

	return weights, nil
}

func (a *accountant) Snapshot(ctx context.Context, campaignID string) (*Snapshot, error) {
	version, err := a.entryActionRepo.MaxSequence(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	return a.SnapshotAt(ctx, campaignID, version)
}

func (a *accountant) SnapshotAt(ctx context.Context, campaignID string, version int64) (*Snapshot, error) {
	weights, err := a.recompute(ctx, campaignID, version)
	if err != nil {
		return nil, err
	}

	entries := make([]draw.Entry, 0, len(weights))
	for id, w := range weights {
		entries = append(entries, draw.Entry{EntrantID: id, Weight: w})
	}

	return NewSnapshot(campaignID, version, entries), nil
}

// NewSnapshot builds a snapshot over the positive-weight entries.
func NewSnapshot(campaignID string, version int64, entries []draw.Entry) *Snapshot {
	pool := draw.Pool(entries)
	return &Snapshot{
		CampaignID:   campaignID,
		Version:      version,
		Hash:         draw.Hash(pool),
		Entries:      pool,
		TotalTickets: draw.Total(pool),
	}
}

// Exclude returns a copy of the snapshot without the given entrants.
func (s *Snapshot) Exclude(entrantIDs ...string) *Snapshot {
	excluded := map[string]bool{}
	for _, id := range entrantIDs {
		excluded[id] = true
	}

	entries := []draw.Entry{}
	for _, e := range s.Entries {
		if !excluded[e.EntrantID] {
			entries = append(entries, e)
		}
	}

	return NewSnapshot(s.CampaignID, s.Version, entries)
}

func (a *accountant) Verify(ctx context.Context, campaignID string) ([]Mismatch, error) {
	weights, err := a.Recompute(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	totals, err := a.ticketRepo.GetByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	cached := map[string]int64{}
	for _, t := range totals {
		cached[t.EntrantID] = t.Tickets
	}

	mismatches := []Mismatch{}
	for id, w := range weights {
		if cached[id] != w {
			mismatches = append(mismatches, Mismatch{EntrantID: id, Cached: cached[id], Ledger: w})
		}
	}

	for id, c := range cached {
		if _, ok := weights[id]; !ok && c != 0 {
			mismatches = append(mismatches, Mismatch{EntrantID: id, Cached: c, Ledger: 0})
		}
	}

	sort.Slice(mismatches, func(i, j int) bool {
		return mismatches[i].EntrantID < mismatches[j].EntrantID
	})

	return mismatches, nil
}

func (a *accountant) Rebuild(ctx context.Context, campaignID string) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	weights, err := a.Recompute(ctx, campaignID)
	if err != nil {
		return err
	}

	if err := a.ticketRepo.DeleteByCampaign(ctx, campaignID); err != nil {
		return err
	}

	for id, w := range weights {
		if err := a.ticketRepo.Increase(ctx, campaignID, id, w); err != nil {
			return err
		}
	}

	return xcontext.WithCommitDBTransaction(ctx)
}
