package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/questx-lab/giveaway/internal/domain/verification"
	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/model"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/testutil"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func Test_entryDomain_Enter(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())

	alice, err := s.entryDomain.Enter(s.ctx, &model.EnterRequest{CampaignID: "c1", Email: "alice@example.com"})
	require.NoError(t, err)
	require.True(t, alice.Created)
	require.Equal(t, string(RecordAccepted), alice.SignupResult)
	require.NotEmpty(t, alice.Entrant.ReferralCode)
	require.Equal(t, int64(1), s.tickets(t, "c1", alice.Entrant.ID))

	// The same normalized email never signs up twice.
	again, err := s.entryDomain.Enter(s.ctx, &model.EnterRequest{CampaignID: "c1", Email: "  ALICE@Example.com "})
	require.NoError(t, err)
	require.False(t, again.Created)
	require.Equal(t, alice.Entrant.ID, again.Entrant.ID)
	require.Equal(t, string(RecordAlreadyRecorded), again.SignupResult)
	require.Equal(t, int64(1), s.tickets(t, "c1", alice.Entrant.ID))

	bob, err := s.entryDomain.Enter(s.ctx, &model.EnterRequest{
		CampaignID:   "c1",
		Email:        "bob@example.com",
		ReferralCode: alice.Entrant.ReferralCode,
	})
	require.NoError(t, err)
	require.Equal(t, string(RecordAccepted), bob.ReferralResult)
	require.Equal(t, alice.Entrant.ID, bob.Entrant.ReferrerID)
	require.Equal(t, int64(1+5), s.tickets(t, "c1", alice.Entrant.ID))
	require.Equal(t, int64(1), s.tickets(t, "c1", bob.Entrant.ID))

	// A retried signup does not credit the referral again.
	bobAgain, err := s.entryDomain.Enter(s.ctx, &model.EnterRequest{
		CampaignID:   "c1",
		Email:        "bob@example.com",
		ReferralCode: alice.Entrant.ReferralCode,
	})
	require.NoError(t, err)
	require.False(t, bobAgain.Created)
	require.Empty(t, bobAgain.ReferralResult)
	require.Equal(t, int64(6), s.tickets(t, "c1", alice.Entrant.ID))

	unknownCode, err := s.entryDomain.Enter(s.ctx, &model.EnterRequest{
		CampaignID:   "c1",
		Email:        "carol@example.com",
		ReferralCode: "unknown",
	})
	require.NoError(t, err)
	require.True(t, unknownCode.Created)
	require.Empty(t, unknownCode.ReferralResult)

	_, err = s.entryDomain.Enter(s.ctx, &model.EnterRequest{CampaignID: "c1", Email: "not-an-email"})
	require.Equal(t, errorx.New(errorx.BadRequest, "Invalid email"), err)

	_, err = s.entryDomain.Enter(s.ctx, &model.EnterRequest{CampaignID: "unknown", Email: "dave@example.com"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found campaign"), err)
}

func Test_entryDomain_Enter_Closed(t *testing.T) {
	s := newSuite(t)
	cfg := testutil.DefaultEntryConfig()
	cfg.EndTime = testutil.Now.Add(-time.Second)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, cfg)

	_, err := s.entryDomain.Enter(s.ctx, &model.EnterRequest{CampaignID: "c1", Email: "alice@example.com"})
	require.True(t, errorx.Is(err, errorx.CampaignClosed))

	count, err := s.entrantRepo.Count(s.ctx, "c1")
	require.NoError(t, err)
	require.Zero(t, count)
}

func Test_entryDomain_Record_Idempotent(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	testutil.InsertEntrant(s.ctx, "c1", "alice", testutil.Now)

	var mutex sync.Mutex
	results := map[RecordResult]int{}

	g := errgroup.Group{}
	for i := 0; i < 10; i++ {
		i := i
		g.Go(func() error {
			outcome, err := s.entryDomain.Record(s.ctx, ActionInput{
				CampaignID: "c1",
				EntrantID:  "alice",
				Kind:       entity.VisitURL,
				DedupKey:   fmt.Sprintf("visit-%d", i),
			})
			if err != nil {
				return err
			}

			mutex.Lock()
			results[outcome.Result]++
			mutex.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Equal(t, 1, results[RecordAccepted])
	require.Equal(t, 9, results[RecordAlreadyRecorded])
	require.Equal(t, int64(2), s.tickets(t, "c1", "alice"))

	actions, err := s.entryActionRepo.GetList(s.ctx, "c1", repository.EntryActionFilter{EntrantID: "alice"}, 0, 100)
	require.NoError(t, err)
	require.Len(t, actions, 1)

	mismatches, err := s.accountant.Verify(s.ctx, "c1")
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func Test_entryDomain_Record_Referral(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	for _, id := range []string{"alice", "bob", "carol"} {
		testutil.InsertEntrant(s.ctx, "c1", id, testutil.Now)
	}

	referral := func(referrer, referred string) *RecordOutcome {
		return s.record(t, ActionInput{
			CampaignID:        "c1",
			EntrantID:         referrer,
			Kind:              entity.ReferralCredit,
			ReferredEntrantID: referred,
		})
	}

	outcome := referral("alice", "bob")
	require.Equal(t, RecordAccepted, outcome.Result)
	require.Equal(t, 5, outcome.Action.Points)
	require.Equal(t, "bob", outcome.Action.CreditKey)

	require.Equal(t, RecordAlreadyRecorded, referral("alice", "bob").Result)
	require.Equal(t, RecordConflict, referral("carol", "bob").Result)
	require.Equal(t, RecordSelfReferral, referral("carol", "carol").Result)

	// A referrer is credited once per referred entrant.
	require.Equal(t, RecordAccepted, referral("alice", "carol").Result)
	require.Equal(t, int64(10), s.tickets(t, "c1", "alice"))
	require.Zero(t, s.tickets(t, "c1", "carol"))

	edge, err := s.referralRepo.GetEdge(s.ctx, "c1", "bob")
	require.NoError(t, err)
	require.Equal(t, "alice", edge.ReferrerID)

	_, err = s.entryDomain.Record(s.ctx, ActionInput{
		CampaignID: "c1",
		EntrantID:  "alice",
		Kind:       entity.ReferralCredit,
	})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_entryDomain_Record_ConcurrentReferrers(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	testutil.InsertEntrant(s.ctx, "c1", "referred", testutil.Now)
	for i := 0; i < 8; i++ {
		testutil.InsertEntrant(s.ctx, "c1", fmt.Sprintf("referrer%d", i), testutil.Now)
	}

	var mutex sync.Mutex
	results := map[RecordResult]int{}

	g := errgroup.Group{}
	for i := 0; i < 8; i++ {
		i := i
		g.Go(func() error {
			outcome, err := s.entryDomain.Record(s.ctx, ActionInput{
				CampaignID:        "c1",
				EntrantID:         fmt.Sprintf("referrer%d", i),
				Kind:              entity.ReferralCredit,
				ReferredEntrantID: "referred",
			})
			if err != nil {
				return err
			}

			mutex.Lock()
			results[outcome.Result]++
			mutex.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Equal(t, 1, results[RecordAccepted])
	require.Equal(t, 7, results[RecordConflict])

	weights, err := s.accountant.Recompute(s.ctx, "c1")
	require.NoError(t, err)

	total := int64(0)
	for _, w := range weights {
		total += w
	}
	require.Equal(t, int64(5), total)
}

func Test_entryDomain_Record_WeightStableUnderReconfiguration(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	testutil.InsertEntrant(s.ctx, "c1", "alice", testutil.Now)
	testutil.InsertEntrant(s.ctx, "c1", "bob", testutil.Now)

	require.Equal(t, RecordAccepted, s.record(t, ActionInput{
		CampaignID: "c1", EntrantID: "alice", Kind: entity.VisitURL,
	}).Result)

	cfg := testutil.DefaultEntryConfig()
	cfg.VisitURL.Points = 10
	_, err := s.campaignDomain.UpdateConfig(s.owner(), &model.UpdateCampaignConfigRequest{
		CampaignID: "c1",
		Config:     modelConfig(cfg),
	})
	require.NoError(t, err)
	s.clock.Advance(time.Second)

	require.Equal(t, int64(2), s.tickets(t, "c1", "alice"))

	outcome := s.record(t, ActionInput{CampaignID: "c1", EntrantID: "bob", Kind: entity.VisitURL})
	require.Equal(t, RecordAccepted, outcome.Result)
	require.Equal(t, 10, outcome.Action.Points)
	require.Equal(t, 2, outcome.Action.ConfigVersion)

	weights, err := s.accountant.Recompute(s.ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, int64(2), weights["alice"])
	require.Equal(t, int64(10), weights["bob"])
}

func Test_entryDomain_Record_Grandfathering(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	testutil.InsertEntrant(s.ctx, "c1", "alice", testutil.Now)
	testutil.InsertEntrant(s.ctx, "c1", "bob", testutil.Now)
	testutil.InsertEntrant(s.ctx, "c1", "carol", testutil.Now)

	cfg := testutil.DefaultEntryConfig()
	cfg.FollowInstagram.Enabled = false
	_, err := s.campaignDomain.UpdateConfig(s.owner(), &model.UpdateCampaignConfigRequest{
		CampaignID: "c1",
		Config:     modelConfig(cfg),
	})
	require.NoError(t, err)
	s.clock.Advance(time.Minute)

	// Happened while the action was still enabled.
	outcome := s.record(t, ActionInput{
		CampaignID: "c1",
		EntrantID:  "alice",
		Kind:       entity.FollowInstagram,
		OccurredAt: testutil.Now.Add(-30 * time.Minute),
	})
	require.Equal(t, RecordAccepted, outcome.Result)
	require.Equal(t, 1, outcome.Action.ConfigVersion)
	require.Equal(t, 3, outcome.Action.Points)

	// Happened after the action was disabled.
	outcome = s.record(t, ActionInput{
		CampaignID: "c1",
		EntrantID:  "bob",
		Kind:       entity.FollowInstagram,
		OccurredAt: testutil.Now.Add(30 * time.Second),
	})
	require.Equal(t, RecordActionDisabled, outcome.Result)

	// Too old to be grandfathered.
	cfgs := xcontext.Configs(s.ctx)
	cfgs.Campaign.GrandfatherWindow = 10 * time.Minute
	s.ctx = xcontext.WithConfigs(s.ctx, cfgs)
	outcome = s.record(t, ActionInput{
		CampaignID: "c1",
		EntrantID:  "carol",
		Kind:       entity.FollowInstagram,
		OccurredAt: testutil.Now.Add(-30 * time.Minute),
	})
	require.Equal(t, RecordActionDisabled, outcome.Result)

	// Never enabled.
	outcome = s.record(t, ActionInput{CampaignID: "c1", EntrantID: "carol", Kind: entity.ShareTwitter})
	require.Equal(t, RecordActionDisabled, outcome.Result)
}

func Test_entryDomain_Record_ReferralGraceWindow(t *testing.T) {
	tests := []struct {
		name  string
		grace time.Duration
		want  RecordResult
	}{
		{name: "inside the grace window", grace: 10 * time.Second, want: RecordAccepted},
		{name: "grace window disabled", grace: 0, want: RecordCampaignNotActive},
		{name: "grace window elapsed", grace: 3 * time.Second, want: RecordCampaignNotActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSuite(t)
			s.withGrace(tt.grace)

			cfg := testutil.DefaultEntryConfig()
			cfg.EndTime = testutil.Now.Add(-5 * time.Second)
			testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, cfg)
			testutil.InsertEntrant(s.ctx, "c1", "alice", testutil.Now.Add(-time.Hour))
			testutil.InsertEntrant(s.ctx, "c1", "bob", testutil.Now.Add(-time.Minute))

			outcome := s.record(t, ActionInput{
				CampaignID:        "c1",
				EntrantID:         "alice",
				Kind:              entity.ReferralCredit,
				ReferredEntrantID: "bob",
			})
			require.Equal(t, tt.want, outcome.Result)

			// Other actions are closed at the end whatever the grace window.
			outcome = s.record(t, ActionInput{CampaignID: "c1", EntrantID: "alice", Kind: entity.VisitURL})
			require.Equal(t, RecordCampaignNotActive, outcome.Result)
		})
	}
}

func Test_entryDomain_Record_ReferredAfterEnd(t *testing.T) {
	s := newSuite(t)
	s.withGrace(time.Minute)

	cfg := testutil.DefaultEntryConfig()
	cfg.EndTime = testutil.Now.Add(-5 * time.Second)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, cfg)
	testutil.InsertEntrant(s.ctx, "c1", "alice", testutil.Now.Add(-time.Hour))
	testutil.InsertEntrant(s.ctx, "c1", "late", testutil.Now)

	outcome := s.record(t, ActionInput{
		CampaignID:        "c1",
		EntrantID:         "alice",
		Kind:              entity.ReferralCredit,
		ReferredEntrantID: "late",
	})
	require.Equal(t, RecordCampaignNotActive, outcome.Result)
}

func Test_entryDomain_Record_Cancelled(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	testutil.InsertEntrant(s.ctx, "c1", "alice", testutil.Now)

	require.Equal(t, RecordAccepted, s.record(t, ActionInput{
		CampaignID: "c1", EntrantID: "alice", Kind: entity.Signup,
	}).Result)

	_, err := s.campaignDomain.Cancel(s.owner(), &model.CancelCampaignRequest{CampaignID: "c1"})
	require.NoError(t, err)

	require.Equal(t, RecordCampaignNotActive, s.record(t, ActionInput{
		CampaignID: "c1", EntrantID: "alice", Kind: entity.VisitURL,
	}).Result)

	// Recorded actions are kept.
	require.Equal(t, int64(1), s.tickets(t, "c1", "alice"))
}

func Test_entryDomain_Record_Outbox(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	testutil.InsertEntrant(s.ctx, "c1", "alice", testutil.Now)

	outcome := s.record(t, ActionInput{CampaignID: "c1", EntrantID: "alice", Kind: entity.VisitURL})
	require.Equal(t, RecordAccepted, outcome.Result)
	s.record(t, ActionInput{CampaignID: "c1", EntrantID: "alice", Kind: entity.VisitURL})

	messages, err := s.outboxRepo.GetPending(s.ctx, 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "c1", messages[0].Key)

	var event model.LedgerEvent
	require.NoError(t, json.Unmarshal(messages[0].Payload, &event))
	require.Equal(t, model.EventActionRecorded, event.Type)
	require.Equal(t, outcome.Action.ID, event.ActionID)
	require.Equal(t, int64(2), event.Delta)
}

func Test_entryDomain_SubmitVerification(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	testutil.InsertEntrant(s.ctx, "c1", "alice", testutil.Now)

	visitGateway := verification.NewVisitTokenGateway("secret", time.Hour, time.Minute)
	s.entryDomain.gateway = verification.NewMux(s.gateway).Handle(visitGateway, entity.VisitURL)
	s.gateway.Set(entity.FollowInstagram, verification.Pending)

	resp, err := s.entryDomain.SubmitVerification(s.ctx, &model.SubmitVerificationRequest{
		CampaignID: "c1",
		EntrantID:  "alice",
		Kind:       string(entity.FollowInstagram),
		Proof:      "instagram-event",
	})
	require.NoError(t, err)
	require.Equal(t, string(verification.Pending), resp.Status)
	require.Empty(t, resp.Result)
	require.Zero(t, s.tickets(t, "c1", "alice"))

	resp, err = s.entryDomain.SubmitVerification(s.ctx, &model.SubmitVerificationRequest{
		CampaignID: "c1",
		EntrantID:  "alice",
		Kind:       string(entity.VisitURL),
		Proof:      "1.forged",
	})
	require.NoError(t, err)
	require.Equal(t, string(verification.NotVerified), resp.Status)

	token, err := visitGateway.Issue("c1", "alice", testutil.Now.Add(-time.Minute))
	require.NoError(t, err)
	resp, err = s.entryDomain.SubmitVerification(s.ctx, &model.SubmitVerificationRequest{
		CampaignID: "c1",
		EntrantID:  "alice",
		Kind:       string(entity.VisitURL),
		Proof:      token,
	})
	require.NoError(t, err)
	require.Equal(t, string(verification.Verified), resp.Status)
	require.Equal(t, string(RecordAccepted), resp.Result)
	require.Equal(t, int64(2), s.tickets(t, "c1", "alice"))

	action, err := s.entryActionRepo.GetByID(s.ctx, "c1", resp.ActionID)
	require.NoError(t, err)
	require.Equal(t, "visit-token", action.ProofRef)

	// Entrants who only know their email can submit proofs too.
	s.gateway.Set(entity.FollowInstagram, verification.Verified)
	resp, err = s.entryDomain.SubmitVerification(s.ctx, &model.SubmitVerificationRequest{
		CampaignID: "c1",
		Email:      "alice@example.com",
		Kind:       string(entity.FollowInstagram),
		Proof:      "instagram-event",
	})
	require.NoError(t, err)
	require.Equal(t, string(RecordAccepted), resp.Result)
	require.Equal(t, int64(5), s.tickets(t, "c1", "alice"))

	_, err = s.entryDomain.SubmitVerification(s.ctx, &model.SubmitVerificationRequest{
		CampaignID: "c1",
		EntrantID:  "alice",
		Kind:       string(entity.ReferralCredit),
	})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_entryDomain_RecordAction(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	testutil.InsertEntrant(s.ctx, "c1", "alice", testutil.Now)

	resp, err := s.entryDomain.RecordAction(s.owner(), &model.RecordActionRequest{
		CampaignID: "c1",
		EntrantID:  "alice",
		Kind:       string(entity.FollowInstagram),
		DedupKey:   "moderator-1",
	})
	require.NoError(t, err)
	require.Equal(t, string(RecordAccepted), resp.Result)
	require.Equal(t, 3, resp.Points)

	_, err = s.entryDomain.RecordAction(
		testutil.NewMockContextWithUserID(s.ctx, testutil.Owner2),
		&model.RecordActionRequest{CampaignID: "c1", EntrantID: "alice", Kind: string(entity.VisitURL)},
	)
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Permission denied"), err)

	_, err = s.entryDomain.RecordAction(s.owner(), &model.RecordActionRequest{
		CampaignID: "c1", EntrantID: "alice", Kind: "dance",
	})
	require.Equal(t, errorx.New(errorx.BadRequest, "Invalid action kind"), err)

	_, err = s.entryDomain.RecordAction(s.owner(), &model.RecordActionRequest{
		CampaignID: "c1", EntrantID: "nobody", Kind: string(entity.VisitURL),
	})
	require.True(t, errorx.Is(err, errorx.NotFound))

	// The entrant may be given by email instead of id.
	resp, err = s.entryDomain.RecordAction(s.owner(), &model.RecordActionRequest{
		CampaignID: "c1", Email: " Alice@Example.com", Kind: string(entity.VisitURL),
	})
	require.NoError(t, err)
	require.Equal(t, string(RecordAccepted), resp.Result)
	require.Equal(t, int64(5), s.tickets(t, "c1", "alice"))

	_, err = s.entryDomain.RecordAction(s.owner(), &model.RecordActionRequest{
		CampaignID: "c1", Email: "nobody@example.com", Kind: string(entity.VisitURL),
	})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found entrant"), err)

	_, err = s.entryDomain.RecordAction(s.owner(), &model.RecordActionRequest{
		CampaignID: "c1", Kind: string(entity.VisitURL),
	})
	require.Equal(t, errorx.New(errorx.BadRequest, "Require the entrant id or email"), err)

	_, err = s.entryDomain.SubmitVerification(s.ctx, &model.SubmitVerificationRequest{
		CampaignID: "c1", Email: "not-an-email", Kind: string(entity.VisitURL), Proof: "x",
	})
	require.Equal(t, errorx.New(errorx.BadRequest, "Invalid email"), err)
}

func Test_entryDomain_RevokeAction(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	testutil.InsertEntrant(s.ctx, "c1", "alice", testutil.Now)

	s.record(t, ActionInput{CampaignID: "c1", EntrantID: "alice", Kind: entity.Signup})
	visit := s.record(t, ActionInput{CampaignID: "c1", EntrantID: "alice", Kind: entity.VisitURL})
	require.Equal(t, int64(3), s.tickets(t, "c1", "alice"))

	resp, err := s.entryDomain.RevokeAction(s.owner(), &model.RevokeActionRequest{
		CampaignID: "c1",
		ActionID:   visit.Action.ID,
		Reason:     "bot traffic",
	})
	require.NoError(t, err)
	require.Equal(t, string(RecordAccepted), resp.Result)
	require.Equal(t, int64(1), s.tickets(t, "c1", "alice"))

	resp, err = s.entryDomain.RevokeAction(s.owner(), &model.RevokeActionRequest{
		CampaignID: "c1",
		ActionID:   visit.Action.ID,
	})
	require.NoError(t, err)
	require.Equal(t, string(RecordAlreadyRecorded), resp.Result)
	require.Equal(t, int64(1), s.tickets(t, "c1", "alice"))

	// The credit is not granted again after a revocation.
	require.Equal(t, RecordAlreadyRecorded, s.record(t, ActionInput{
		CampaignID: "c1", EntrantID: "alice", Kind: entity.VisitURL,
	}).Result)

	actions, err := s.entryDomain.GetActions(s.ctx, &model.GetActionsRequest{CampaignID: "c1", EntrantID: "alice"})
	require.NoError(t, err)
	require.Len(t, actions.Actions, 2)
	require.False(t, actions.Actions[0].Revoked)
	require.True(t, actions.Actions[1].Revoked)

	mismatches, err := s.accountant.Verify(s.ctx, "c1")
	require.NoError(t, err)
	require.Empty(t, mismatches)

	_, err = s.entryDomain.RevokeAction(s.owner(), &model.RevokeActionRequest{CampaignID: "c1", ActionID: "unknown"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found action"), err)
}

const failTicketsCallback = "test:fail_ticket_totals"

// failTicketUpdates makes every update of ticket_totals fail until the
// returned function is called.
func failTicketUpdates(t *testing.T, s *suite) func() {
	t.Helper()

	callbacks := xcontext.DB(s.ctx).Callback().Update()
	err := callbacks.Before("gorm:update").Register(failTicketsCallback, func(db *gorm.DB) {
		if db.Statement.Table == "ticket_totals" {
			db.AddError(errors.New("disk I/O error"))
		}
	})
	require.NoError(t, err)

	return func() {
		require.NoError(t, callbacks.Remove(failTicketsCallback))
	}
}

func countRows(t *testing.T, s *suite, value any) int64 {
	t.Helper()

	var n int64
	require.NoError(t, xcontext.DB(s.ctx).Model(value).Count(&n).Error)
	return n
}

func Test_entryDomain_Record_RollbackOnFailure(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	testutil.InsertEntrant(s.ctx, "c1", "alice", testutil.Now)
	testutil.InsertEntrant(s.ctx, "c1", "bob", testutil.Now)

	restore := failTicketUpdates(t, s)

	outcome, err := s.entryDomain.Record(s.ctx, ActionInput{CampaignID: "c1", EntrantID: "alice", Kind: entity.VisitURL})
	require.Equal(t, errorx.Unknown, err)
	require.Nil(t, outcome)

	outcome, err = s.entryDomain.Record(s.ctx, ActionInput{
		CampaignID:        "c1",
		EntrantID:         "alice",
		Kind:              entity.ReferralCredit,
		ReferredEntrantID: "bob",
	})
	require.Equal(t, errorx.Unknown, err)
	require.Nil(t, outcome)

	require.Zero(t, countRows(t, s, &entity.EntryAction{}))
	require.Zero(t, countRows(t, s, &entity.ReferralEdge{}))
	require.Zero(t, countRows(t, s, &entity.OutboxMessage{}))
	require.Zero(t, countRows(t, s, &entity.TicketTotal{}))

	// Nothing left behind blocks a retry once the database recovers.
	restore()
	require.Equal(t, RecordAccepted, s.record(t, ActionInput{CampaignID: "c1", EntrantID: "alice", Kind: entity.VisitURL}).Result)
	require.Equal(t, RecordAccepted, s.record(t, ActionInput{
		CampaignID:        "c1",
		EntrantID:         "alice",
		Kind:              entity.ReferralCredit,
		ReferredEntrantID: "bob",
	}).Result)
	require.Equal(t, int64(7), s.tickets(t, "c1", "alice"))

	mismatches, err := s.accountant.Verify(s.ctx, "c1")
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func Test_entryDomain_RevokeAction_RollbackOnFailure(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	testutil.InsertEntrant(s.ctx, "c1", "alice", testutil.Now)

	action := s.record(t, ActionInput{CampaignID: "c1", EntrantID: "alice", Kind: entity.FollowInstagram}).Action
	restore := failTicketUpdates(t, s)

	req := &model.RevokeActionRequest{CampaignID: "c1", ActionID: action.ID, Reason: "fake account"}
	resp, err := s.entryDomain.RevokeAction(s.owner(), req)
	require.Equal(t, errorx.Unknown, err)
	require.Nil(t, resp)

	require.Zero(t, countRows(t, s, &entity.EntryRevocation{}))
	require.Equal(t, int64(1), countRows(t, s, &entity.OutboxMessage{}))
	require.Equal(t, int64(3), s.tickets(t, "c1", "alice"))

	restore()
	resp, err = s.entryDomain.RevokeAction(s.owner(), req)
	require.NoError(t, err)
	require.Equal(t, string(RecordAccepted), resp.Result)
	require.Zero(t, s.tickets(t, "c1", "alice"))
}
