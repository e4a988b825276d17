package model

import "time"

type EnterRequest struct {
	CampaignID   string `json:"campaign_id"`
	Email        string `json:"email"`
	ReferralCode string `json:"referral_code"`
	ProofRef     string `json:"proof_ref"`
}

type EnterResponse struct {
	Entrant Entrant `json:"entrant"`
	Created bool    `json:"created"`

	SignupResult   string `json:"signup_result"`
	ReferralResult string `json:"referral_result,omitempty"`
}

type RecordActionRequest struct {
	CampaignID string `json:"campaign_id"`

	// The entrant is identified by EntrantID, or by Email when the id is
	// empty.
	EntrantID  string    `json:"entrant_id"`
	Email      string    `json:"email"`
	Kind       string    `json:"kind"`
	DedupKey   string    `json:"dedup_key"`
	ProofRef   string    `json:"proof_ref"`
	OccurredAt time.Time `json:"occurred_at"`

	// ReferredEntrantID is required for referral credits only.
	ReferredEntrantID string `json:"referred_entrant_id"`
}

type RecordActionResponse struct {
	Result   string `json:"result"`
	ActionID string `json:"action_id,omitempty"`
	Points   int    `json:"points,omitempty"`
}

type SubmitVerificationRequest struct {
	CampaignID string `json:"campaign_id"`
	EntrantID  string `json:"entrant_id"`
	Email      string `json:"email"`
	Kind       string `json:"kind"`
	Proof      string `json:"proof"`
}

type SubmitVerificationResponse struct {
	Status   string `json:"status"`
	Result   string `json:"result,omitempty"`
	ActionID string `json:"action_id,omitempty"`
}

type RevokeActionRequest struct {
	CampaignID string `json:"campaign_id"`
	ActionID   string `json:"action_id"`
	Reason     string `json:"reason"`
}

type RevokeActionResponse struct {
	Result string `json:"result"`
}

type GetActionsRequest struct {
	CampaignID string `json:"campaign_id"`
	EntrantID  string `json:"entrant_id"`
	Kind       string `json:"kind"`
	Offset     int    `json:"offset"`
	Limit      int    `json:"limit"`
}

type GetActionsResponse struct {
	Actions []EntryAction `json:"actions"`
}
