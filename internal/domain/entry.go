package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/giveaway/internal/common"
	"github.com/questx-lab/giveaway/internal/domain/lifecycle"
	"github.com/questx-lab/giveaway/internal/domain/referral"
	"github.com/questx-lab/giveaway/internal/domain/verification"
	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/model"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/pkg/crypto"
	"github.com/questx-lab/giveaway/pkg/enum"
	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/idutil"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm"
)

const (
	referralCodeLength    = 8
	createEntrantAttempts = 3
)

type RecordResult string

var (
	RecordAccepted          = enum.New(RecordResult("accepted"))
	RecordAlreadyRecorded   = enum.New(RecordResult("already_recorded"))
	RecordActionDisabled    = enum.New(RecordResult("action_disabled"))
	RecordConflict          = enum.New(RecordResult("conflict"))
	RecordCampaignNotActive = enum.New(RecordResult("campaign_not_active"))
	RecordSelfReferral      = enum.New(RecordResult("self_referral"))
)

// ActionInput is an entry-granting event which has already been verified.
type ActionInput struct {
	CampaignID string
	EntrantID  string
	Kind       entity.ActionKind

	// DedupKey identifies the upstream event. ReferredEntrantID is only used
	// by referral credits.
	DedupKey          string
	ReferredEntrantID string
	ProofRef          string
	OccurredAt        time.Time
}

type RecordOutcome struct {
	Result RecordResult

	// Action is the new row when accepted, or the existing one when the
	// credit had already been recorded.
	Action *entity.EntryAction
}

type EntryDomain interface {
	Enter(context.Context, *model.EnterRequest) (*model.EnterResponse, error)
	RecordAction(context.Context, *model.RecordActionRequest) (*model.RecordActionResponse, error)
	SubmitVerification(context.Context, *model.SubmitVerificationRequest) (*model.SubmitVerificationResponse, error)
	RevokeAction(context.Context, *model.RevokeActionRequest) (*model.RevokeActionResponse, error)
	GetActions(context.Context, *model.GetActionsRequest) (*model.GetActionsResponse, error)

	// Record appends a verified action to the ledger. Policy rejections are
	// reported as results, not errors.
	Record(context.Context, ActionInput) (*RecordOutcome, error)
}

type entryDomain struct {
	campaignRepo    repository.CampaignRepository
	entrantRepo     repository.EntrantRepository
	entryActionRepo repository.EntryActionRepository
	ticketRepo      repository.TicketRepository
	outboxRepo      repository.OutboxRepository
	referralGraph   referral.Graph
	gateway         verification.Gateway
	ownerVerifier   *common.CampaignOwnerVerifier

	// Config versions are immutable, so they are cached forever.
	configCache *xsync.MapOf[string, *entity.CampaignConfig]
}

func NewEntryDomain(
	campaignRepo repository.CampaignRepository,
	entrantRepo repository.EntrantRepository,
	entryActionRepo repository.EntryActionRepository,
	ticketRepo repository.TicketRepository,
	outboxRepo repository.OutboxRepository,
	referralGraph referral.Graph,
	gateway verification.Gateway,
	ownerVerifier *common.CampaignOwnerVerifier,
) *entryDomain {
	return &entryDomain{
		campaignRepo:    campaignRepo,
		entrantRepo:     entrantRepo,
		entryActionRepo: entryActionRepo,
		ticketRepo:      ticketRepo,
		outboxRepo:      outboxRepo,
		referralGraph:   referralGraph,
		gateway:         gateway,
		ownerVerifier:   ownerVerifier,
		configCache:     xsync.NewMapOf[*entity.CampaignConfig](),
	}
}

func (d *entryDomain) Enter(ctx context.Context, req *model.EnterRequest) (*model.EnterResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, errorx.New(errorx.BadRequest, "Invalid email")
	}

	campaign, err := getCampaign(ctx, d.campaignRepo, req.CampaignID)
	if err != nil {
		return nil, err
	}

	now := xcontext.Now(ctx)
	if lifecycle.EffectiveStatus(campaign, now) != entity.CampaignActive {
		return nil, errorx.New(errorx.CampaignClosed, "The campaign is not accepting entries")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	entrant, created, err := d.createEntrant(ctx, campaign.ID, email, now)
	if err != nil {
		return nil, err
	}

	signup, err := d.record(ctx, campaign, ActionInput{
		CampaignID: campaign.ID,
		EntrantID:  entrant.ID,
		Kind:       entity.Signup,
		DedupKey:   "signup:" + entrant.ID,
		ProofRef:   req.ProofRef,
		OccurredAt: now,
	})
	if err != nil {
		return nil, err
	}

	resp := &model.EnterResponse{
		Entrant:      convertEntrant(entrant),
		Created:      created,
		SignupResult: string(signup.Result),
	}

	// A retried signup must not attach a referrer to an entrant who entered
	// without one.
	var referralOutcome *RecordOutcome
	if created && req.ReferralCode != "" {
		referrer, err := d.entrantRepo.GetByReferralCode(ctx, campaign.ID, req.ReferralCode)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get referrer: %v", err)
			return nil, errorx.Unknown
		}

		if err == nil {
			referralOutcome, err = d.record(ctx, campaign, ActionInput{
				CampaignID:        campaign.ID,
				EntrantID:         referrer.ID,
				Kind:              entity.ReferralCredit,
				ReferredEntrantID: entrant.ID,
				DedupKey:          fmt.Sprintf("referral:%s:%s", referrer.ID, entrant.ID),
				OccurredAt:        now,
			})
			if err != nil {
				return nil, err
			}

			resp.ReferralResult = string(referralOutcome.Result)
			if referralOutcome.Result == RecordAccepted {
				resp.Entrant.ReferrerID = referrer.ID
			}
		} else {
			xcontext.Logger(ctx).Debugf("Ignore unknown referral code %s", req.ReferralCode)
		}
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit entry: %v", err)
		return nil, errorx.Unknown
	}

	common.IncCounter(common.LedgerActionTotal, string(entity.Signup), string(signup.Result))
	if referralOutcome != nil {
		common.IncCounter(common.LedgerActionTotal, string(entity.ReferralCredit), string(referralOutcome.Result))
	}

	return resp, nil
}

func (d *entryDomain) RecordAction(
	ctx context.Context, req *model.RecordActionRequest,
) (*model.RecordActionResponse, error) {
	kind, err := enum.ToEnum[entity.ActionKind](req.Kind)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid action kind: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid action kind")
	}

	if _, err := verifyCampaignOwner(ctx, d.ownerVerifier, req.CampaignID); err != nil {
		return nil, err
	}

	entrantID, err := d.resolveEntrantID(ctx, req.CampaignID, req.EntrantID, req.Email)
	if err != nil {
		return nil, err
	}

	outcome, err := d.Record(ctx, ActionInput{
		CampaignID:        req.CampaignID,
		EntrantID:         entrantID,
		Kind:              kind,
		DedupKey:          req.DedupKey,
		ReferredEntrantID: req.ReferredEntrantID,
		ProofRef:          req.ProofRef,
		OccurredAt:        req.OccurredAt,
	})
	if err != nil {
		return nil, err
	}

	resp := &model.RecordActionResponse{Result: string(outcome.Result)}
	if outcome.Action != nil {
		resp.ActionID = outcome.Action.ID
		resp.Points = outcome.Action.Points
	}

	return resp, nil
}

func (d *entryDomain) SubmitVerification(
	ctx context.Context, req *model.SubmitVerificationRequest,
) (*model.SubmitVerificationResponse, error) {
	kind, err := enum.ToEnum[entity.ActionKind](req.Kind)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid action kind: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid action kind")
	}

	if kind.IsReferral() || kind == entity.Signup {
		return nil, errorx.New(errorx.BadRequest, "The action %s is recorded on entry", kind)
	}

	entrantID, err := d.resolveEntrantID(ctx, req.CampaignID, req.EntrantID, req.Email)
	if err != nil {
		return nil, err
	}

	// The gateway is called before any transaction is opened, the ledger
	// never waits on it.
	result, err := d.gateway.Verify(ctx, verification.Request{
		CampaignID: req.CampaignID,
		EntrantID:  entrantID,
		Kind:       kind,
		Proof:      req.Proof,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot verify action: %v", err)
		return nil, errorx.New(errorx.Unavailable, "Cannot verify the action at this time")
	}

	resp := &model.SubmitVerificationResponse{Status: string(result.Status)}
	if result.Status != verification.Verified {
		return resp, nil
	}

	outcome, err := d.Record(ctx, ActionInput{
		CampaignID: req.CampaignID,
		EntrantID:  entrantID,
		Kind:       kind,
		DedupKey:   result.DedupKey,
		ProofRef:   result.ProofRef,
		OccurredAt: result.OccurredAt,
	})
	if err != nil {
		return nil, err
	}

	resp.Result = string(outcome.Result)
	if outcome.Action != nil {
		resp.ActionID = outcome.Action.ID
	}

	return resp, nil
}

func (d *entryDomain) Record(ctx context.Context, in ActionInput) (*RecordOutcome, error) {
	campaign, err := getCampaign(ctx, d.campaignRepo, in.CampaignID)
	if err != nil {
		return nil, err
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	outcome, err := d.record(ctx, campaign, in)
	if err != nil {
		return nil, err
	}

	if outcome.Result == RecordAccepted {
		if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot commit action: %v", err)
			return nil, errorx.Unknown
		}
	}

	common.IncCounter(common.LedgerActionTotal, string(in.Kind), string(outcome.Result))
	return outcome, nil
}

// record must be called inside a transaction. Nothing is written unless the
// result is accepted.
func (d *entryDomain) record(ctx context.Context, campaign *entity.Campaign, in ActionInput) (*RecordOutcome, error) {
	now := xcontext.Now(ctx)
	occurredAt := in.OccurredAt
	if occurredAt.IsZero() || occurredAt.After(now) {
		occurredAt = now
	}

	if _, err := d.getEntrant(ctx, campaign.ID, in.EntrantID); err != nil {
		return nil, err
	}

	referredID := sql.NullString{}
	creditKey := entity.SingleCreditKey
	if in.Kind.IsReferral() {
		if in.ReferredEntrantID == "" {
			return nil, errorx.New(errorx.BadRequest, "Require the referred entrant")
		}

		if in.ReferredEntrantID == in.EntrantID {
			return &RecordOutcome{Result: RecordSelfReferral}, nil
		}

		referred, err := d.getEntrant(ctx, campaign.ID, in.ReferredEntrantID)
		if err != nil {
			return nil, err
		}

		if !d.acceptsReferral(ctx, campaign, referred, now) {
			return &RecordOutcome{Result: RecordCampaignNotActive}, nil
		}

		referredID = sql.NullString{String: referred.ID, Valid: true}
		creditKey = referred.ID
	} else if lifecycle.EffectiveStatus(campaign, now) != entity.CampaignActive {
		return &RecordOutcome{Result: RecordCampaignNotActive}, nil
	}

	setting, version, err := d.resolveSetting(ctx, campaign, in.Kind, occurredAt, now)
	if err != nil {
		return nil, err
	}

	if version == 0 {
		return &RecordOutcome{Result: RecordActionDisabled}, nil
	}

	dedupKey := in.DedupKey
	if dedupKey == "" {
		dedupKey = fmt.Sprintf("%s:%s:%s", in.Kind, in.EntrantID, creditKey)
	}

	action := &entity.EntryAction{
		ID:                uuid.NewString(),
		Sequence:          idutil.NextSequence(),
		CampaignID:        campaign.ID,
		EntrantID:         in.EntrantID,
		Kind:              in.Kind,
		CreditKey:         creditKey,
		DedupKey:          dedupKey,
		ReferredEntrantID: referredID,
		ConfigVersion:     version,
		Points:            setting.Points,
		ProofRef:          in.ProofRef,
		OccurredAt:        occurredAt,
		CreatedAt:         now,
	}

	if in.Kind.IsReferral() {
		result, existingReferrer, err := d.referralGraph.AddEdge(
			ctx, campaign.ID, in.EntrantID, in.ReferredEntrantID, action.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot add referral edge: %v", err)
			return nil, errorx.Unknown
		}

		switch result {
		case referral.SelfReferral:
			return &RecordOutcome{Result: RecordSelfReferral}, nil
		case referral.DuplicateReferred:
			if existingReferrer != in.EntrantID {
				return &RecordOutcome{Result: RecordConflict}, nil
			}
		}
	}

	inserted, err := d.entryActionRepo.Insert(ctx, action)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot insert entry action: %v", err)
		return nil, errorx.Unknown
	}

	if !inserted {
		existing, err := d.entryActionRepo.GetByCredit(ctx, campaign.ID, in.EntrantID, in.Kind, creditKey)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get existing entry action: %v", err)
			return nil, errorx.Unknown
		}

		return &RecordOutcome{Result: RecordAlreadyRecorded, Action: existing}, nil
	}

	if err := d.ticketRepo.Increase(ctx, campaign.ID, in.EntrantID, int64(action.Points)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase tickets: %v", err)
		return nil, errorx.Unknown
	}

	err = appendEvent(ctx, d.outboxRepo, model.LedgerEvent{
		Type:       model.EventActionRecorded,
		CampaignID: campaign.ID,
		EntrantID:  action.EntrantID,
		ActionID:   action.ID,
		Kind:       string(action.Kind),
		Delta:      int64(action.Points),
		Sequence:   action.Sequence,
		OccurredAt: now,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot append outbox message: %v", err)
		return nil, errorx.Unknown
	}

	return &RecordOutcome{Result: RecordAccepted, Action: action}, nil
}

// acceptsReferral allows referral credits while the campaign is active, and
// inside the grace window after the end for entrants who signed up before
// the end.
func (d *entryDomain) acceptsReferral(
	ctx context.Context, campaign *entity.Campaign, referred *entity.Entrant, now time.Time,
) bool {
	switch lifecycle.EffectiveStatus(campaign, now) {
	case entity.CampaignActive:
		return true
	case entity.CampaignEnded:
		grace := xcontext.Configs(ctx).Campaign.ReferralGraceWindow
		return lifecycle.InGraceWindow(campaign, now, grace) && referred.CreatedAt.Before(campaign.EndTime)
	}

	return false
}

// resolveSetting returns the setting of kind and the config version it comes
// from. A zero version means the action is disabled.
//
// A kind disabled in the current config is still granted if it was enabled in
// the version in force when the action occurred, as long as the action is not
// older than the grandfather window.
func (d *entryDomain) resolveSetting(
	ctx context.Context,
	campaign *entity.Campaign,
	kind entity.ActionKind,
	occurredAt, now time.Time,
) (entity.ActionSetting, int, error) {
	current, err := d.getConfig(ctx, campaign.ID, campaign.ConfigVersion)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get current config: %v", err)
		return entity.ActionSetting{}, 0, errorx.Unknown
	}

	if setting, ok := current.Config.Setting(kind); ok && setting.Enabled {
		return setting, current.Version, nil
	}

	window := xcontext.Configs(ctx).Campaign.GrandfatherWindow
	if window <= 0 || now.Sub(occurredAt) > window {
		return entity.ActionSetting{}, 0, nil
	}

	past, err := d.campaignRepo.GetConfigAt(ctx, campaign.ID, occurredAt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.ActionSetting{}, 0, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get config at %v: %v", occurredAt, err)
		return entity.ActionSetting{}, 0, errorx.Unknown
	}

	if past.Version == current.Version {
		return entity.ActionSetting{}, 0, nil
	}

	if setting, ok := past.Config.Setting(kind); ok && setting.Enabled {
		return setting, past.Version, nil
	}

	return entity.ActionSetting{}, 0, nil
}

func (d *entryDomain) getConfig(ctx context.Context, campaignID string, version int) (*entity.CampaignConfig, error) {
	key := fmt.Sprintf("%s#%d", campaignID, version)
	if cfg, ok := d.configCache.Load(key); ok {
		return cfg, nil
	}

	cfg, err := d.campaignRepo.GetConfig(ctx, campaignID, version)
	if err != nil {
		return nil, err
	}

	d.configCache.Store(key, cfg)
	return cfg, nil
}

func (d *entryDomain) getEntrant(ctx context.Context, campaignID, entrantID string) (*entity.Entrant, error) {
	entrant, err := d.entrantRepo.GetByID(ctx, campaignID, entrantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found entrant %s", entrantID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get entrant: %v", err)
		return nil, errorx.Unknown
	}

	return entrant, nil
}

// resolveEntrantID returns entrantID when given, otherwise the id of the
// entrant who signed up with email.
func (d *entryDomain) resolveEntrantID(ctx context.Context, campaignID, entrantID, email string) (string, error) {
	if entrantID != "" {
		return entrantID, nil
	}

	if email == "" {
		return "", errorx.New(errorx.BadRequest, "Require the entrant id or email")
	}

	normalized := normalizeEmail(email)
	if normalized == "" {
		return "", errorx.New(errorx.BadRequest, "Invalid email")
	}

	entrant, err := d.entrantRepo.GetByEmailHash(ctx, campaignID, crypto.SHA256([]byte(normalized)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errorx.New(errorx.NotFound, "Not found entrant")
		}

		xcontext.Logger(ctx).Errorf("Cannot get entrant by email: %v", err)
		return "", errorx.Unknown
	}

	return entrant.ID, nil
}

// createEntrant returns the entrant of the email, creating it if needed. A
// new referral code is generated when the previous one collided.
func (d *entryDomain) createEntrant(
	ctx context.Context, campaignID, email string, now time.Time,
) (*entity.Entrant, bool, error) {
	emailHash := crypto.SHA256([]byte(email))
	for i := 0; i < createEntrantAttempts; i++ {
		entrant := &entity.Entrant{
			Base:         entity.Base{ID: uuid.NewString(), CreatedAt: now},
			CampaignID:   campaignID,
			Email:        email,
			EmailHash:    emailHash,
			ReferralCode: crypto.GenerateRandomAlphabet(referralCodeLength),
		}

		inserted, err := d.entrantRepo.CreateIfAbsent(ctx, entrant)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create entrant: %v", err)
			return nil, false, errorx.Unknown
		}

		if inserted {
			return entrant, true, nil
		}

		existing, err := d.entrantRepo.GetByEmailHash(ctx, campaignID, emailHash)
		if err == nil {
			return existing, false, nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get entrant by email: %v", err)
			return nil, false, errorx.Unknown
		}
	}

	xcontext.Logger(ctx).Errorf("Cannot generate a unique referral code after %d attempts", createEntrantAttempts)
	return nil, false, errorx.Unknown
}

func (d *entryDomain) RevokeAction(
	ctx context.Context, req *model.RevokeActionRequest,
) (*model.RevokeActionResponse, error) {
	campaign, err := verifyCampaignOwner(ctx, d.ownerVerifier, req.CampaignID)
	if err != nil {
		return nil, err
	}

	action, err := d.entryActionRepo.GetByID(ctx, campaign.ID, req.ActionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found action")
		}

		xcontext.Logger(ctx).Errorf("Cannot get action: %v", err)
		return nil, errorx.Unknown
	}

	now := xcontext.Now(ctx)
	revocation := &entity.EntryRevocation{
		ID:         uuid.NewString(),
		Sequence:   idutil.NextSequence(),
		CampaignID: campaign.ID,
		ActionID:   action.ID,
		EntrantID:  action.EntrantID,
		Points:     action.Points,
		Reason:     req.Reason,
		RevokedBy:  xcontext.RequestUserID(ctx),
		CreatedAt:  now,
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	inserted, err := d.entryActionRepo.InsertRevocation(ctx, revocation)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot insert revocation: %v", err)
		return nil, errorx.Unknown
	}

	if !inserted {
		common.IncCounter(common.LedgerRevocationTotal, string(RecordAlreadyRecorded))
		return &model.RevokeActionResponse{Result: string(RecordAlreadyRecorded)}, nil
	}

	if err := d.ticketRepo.Increase(ctx, campaign.ID, action.EntrantID, -int64(action.Points)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decrease tickets: %v", err)
		return nil, errorx.Unknown
	}

	err = appendEvent(ctx, d.outboxRepo, model.LedgerEvent{
		Type:       model.EventActionRevoked,
		CampaignID: campaign.ID,
		EntrantID:  action.EntrantID,
		ActionID:   action.ID,
		Kind:       string(action.Kind),
		Delta:      -int64(action.Points),
		Sequence:   revocation.Sequence,
		OccurredAt: now,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot append outbox message: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit revocation: %v", err)
		return nil, errorx.Unknown
	}

	common.IncCounter(common.LedgerRevocationTotal, string(RecordAccepted))
	return &model.RevokeActionResponse{Result: string(RecordAccepted)}, nil
}

func (d *entryDomain) GetActions(
	ctx context.Context, req *model.GetActionsRequest,
) (*model.GetActionsResponse, error) {
	filter := repository.EntryActionFilter{EntrantID: req.EntrantID}
	if req.Kind != "" {
		kind, err := enum.ToEnum[entity.ActionKind](req.Kind)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Invalid action kind: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid action kind")
		}

		filter.Kind = kind
	}

	offset, limit, err := normalizePagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	campaign, err := getCampaign(ctx, d.campaignRepo, req.CampaignID)
	if err != nil {
		return nil, err
	}

	actions, err := d.entryActionRepo.GetList(ctx, campaign.ID, filter, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get actions: %v", err)
		return nil, errorx.Unknown
	}

	revocations, err := d.entryActionRepo.GetRevocations(ctx, campaign.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revocations: %v", err)
		return nil, errorx.Unknown
	}

	revoked := map[string]bool{}
	for _, r := range revocations {
		revoked[r.ActionID] = true
	}

	result := []model.EntryAction{}
	for i := range actions {
		result = append(result, convertEntryAction(&actions[i], revoked[actions[i].ID]))
	}

	return &model.GetActionsResponse{Actions: result}, nil
}
