// Package referral maintains who referred whom inside a campaign. Every
// entrant has at most one referrer and the first recorded referrer wins.
package referral

import (
	"context"
	"errors"
	"fmt"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm"
)

type AddEdgeResult string

const (
	Accepted          AddEdgeResult = "accepted"
	DuplicateReferred AddEdgeResult = "duplicate_referred"
	SelfReferral      AddEdgeResult = "self_referral"
)

var ErrCycle = errors.New("referral graph contains a cycle")

type Graph interface {
	// AddEdge records referrer as the referrer of referred. If referred
	// already has a referrer, it returns DuplicateReferred along with the
	// existing referrer.
	AddEdge(ctx context.Context, campaignID, referrerID, referredID, actionID string) (AddEdgeResult, string, error)
	Ancestors(ctx context.Context, campaignID, entrantID string) ([]string, error)
	DirectReferralCount(ctx context.Context, campaignID, entrantID string) (int64, error)
	Children(ctx context.Context, campaignID, entrantID string) ([]string, error)

	// Rebuild recreates the edges from the referral credits of the ledger.
	Rebuild(ctx context.Context, campaignID string) error
}

type graph struct {
	referralRepo    repository.ReferralRepository
	entrantRepo     repository.EntrantRepository
	entryActionRepo repository.EntryActionRepository
}

func NewGraph(
	referralRepo repository.ReferralRepository,
	entrantRepo repository.EntrantRepository,
	entryActionRepo repository.EntryActionRepository,
) *graph {
	return &graph{
		referralRepo:    referralRepo,
		entrantRepo:     entrantRepo,
		entryActionRepo: entryActionRepo,
	}
}

func (g *graph) AddEdge(
	ctx context.Context, campaignID, referrerID, referredID, actionID string,
) (AddEdgeResult, string, error) {
	if referrerID == referredID {
		return SelfReferral, "", nil
	}

	inserted, err := g.referralRepo.InsertEdge(ctx, &entity.ReferralEdge{
		CampaignID: campaignID,
		ReferredID: referredID,
		ReferrerID: referrerID,
		ActionID:   actionID,
		CreatedAt:  xcontext.Now(ctx),
	})
	if err != nil {
		return "", "", err
	}

	if !inserted {
		edge, err := g.referralRepo.GetEdge(ctx, campaignID, referredID)
		if err != nil {
			return "", "", err
		}

		return DuplicateReferred, edge.ReferrerID, nil
	}

	err = g.entrantRepo.SetReferrer(ctx, campaignID, referredID, referrerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", err
	}

	if err != nil {
		// The entrant row is only a mirror of the edge. Keep it consistent
		// or reject the edge.
		entrant, err := g.entrantRepo.GetByID(ctx, campaignID, referredID)
		if err != nil {
			return "", "", err
		}

		if entrant.ReferrerID.String != referrerID {
			return DuplicateReferred, entrant.ReferrerID.String, nil
		}
	}

	return Accepted, referrerID, nil
}

func (g *graph) Ancestors(ctx context.Context, campaignID, entrantID string) ([]string, error) {
	limit, err := g.entrantRepo.Count(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	ancestors := []string{}
	current := entrantID
	for {
		edge, err := g.referralRepo.GetEdge(ctx, campaignID, current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ancestors, nil
			}

			return nil, err
		}

		ancestors = append(ancestors, edge.ReferrerID)
		if int64(len(ancestors)) > limit {
			return nil, fmt.Errorf("%w: entrant %s", ErrCycle, entrantID)
		}

		current = edge.ReferrerID
	}
}

func (g *graph) DirectReferralCount(ctx context.Context, campaignID, entrantID string) (int64, error) {
	return g.referralRepo.CountChildren(ctx, campaignID, entrantID)
}

func (g *graph) Children(ctx context.Context, campaignID, entrantID string) ([]string, error) {
	edges, err := g.referralRepo.GetChildren(ctx, campaignID, entrantID)
	if err != nil {
		return nil, err
	}

	children := []string{}
	for _, e := range edges {
		children = append(children, e.ReferredID)
	}

	return children, nil
}

func (g *graph) Rebuild(ctx context.Context, campaignID string) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := g.referralRepo.DeleteByCampaign(ctx, campaignID); err != nil {
		return err
	}

	if err := g.entrantRepo.ClearReferrers(ctx, campaignID); err != nil {
		return err
	}

	err := g.entryActionRepo.Iterate(ctx, campaignID, 500, func(actions []entity.EntryAction) error {
		for _, action := range actions {
			if action.Kind != entity.ReferralCredit || !action.ReferredEntrantID.Valid {
				continue
			}

			result, existing, err := g.AddEdge(ctx, campaignID, action.EntrantID, action.ReferredEntrantID.String, action.ID)
			if err != nil {
				return err
			}

			if result != Accepted {
				xcontext.Logger(ctx).Warnf("Ledger referral %s was not replayed: %s (existing %s)",
					action.ID, result, existing)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	return xcontext.WithCommitDBTransaction(ctx)
}
