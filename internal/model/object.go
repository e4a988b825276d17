package model

import "time"

type ActionSetting struct {
	Enabled bool `json:"enabled"`
	Points  int  `json:"points"`
}

type EntryConfig struct {
	Signup          ActionSetting `json:"signup"`
	VisitURL        ActionSetting `json:"visit_url"`
	FollowInstagram ActionSetting `json:"follow_instagram"`
	FollowFacebook  ActionSetting `json:"follow_facebook"`
	FollowYoutube   ActionSetting `json:"follow_youtube"`
	FollowTiktok    ActionSetting `json:"follow_tiktok"`
	ShareFacebook   ActionSetting `json:"share_facebook"`
	ShareTwitter    ActionSetting `json:"share_twitter"`
	Referral        ActionSetting `json:"referral"`

	NumWinners int       `json:"num_winners"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

type Campaign struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	OwnerPlan       string    `json:"owner_plan"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	StatusChangedAt time.Time `json:"status_changed_at"`
	ConfigVersion   int       `json:"config_version"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	NumWinners      int       `json:"num_winners"`
	CreatedAt       time.Time `json:"created_at"`
}

type CampaignConfig struct {
	Version   int         `json:"version"`
	Config    EntryConfig `json:"config"`
	CreatedBy string      `json:"created_by"`
	CreatedAt time.Time   `json:"created_at"`
}

type Entrant struct {
	ID           string    `json:"id"`
	CampaignID   string    `json:"campaign_id"`
	ReferralCode string    `json:"referral_code"`
	ReferrerID   string    `json:"referrer_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type EntryAction struct {
	ID                string    `json:"id"`
	Sequence          int64     `json:"sequence"`
	EntrantID         string    `json:"entrant_id"`
	Kind              string    `json:"kind"`
	ReferredEntrantID string    `json:"referred_entrant_id,omitempty"`
	ConfigVersion     int       `json:"config_version"`
	Points            int       `json:"points"`
	ProofRef          string    `json:"proof_ref,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
	Revoked           bool      `json:"revoked"`
}

type Winner struct {
	EntrantID string `json:"entrant_id"`
	Rank      int    `json:"rank"`
	Tickets   int64  `json:"tickets"`
}

type WinnerRecord struct {
	ID              string    `json:"id"`
	CampaignID      string    `json:"campaign_id"`
	Generation      int       `json:"generation"`
	Winners         []Winner  `json:"winners"`
	NumWinners      int       `json:"num_winners"`
	Seed            int64     `json:"seed"`
	SnapshotVersion int64     `json:"snapshot_version"`
	SnapshotHash    string    `json:"snapshot_hash"`
	PoolSize        int       `json:"pool_size"`
	TotalTickets    int64     `json:"total_tickets"`
	SelectedBy      string    `json:"selected_by"`
	SelectedAt      time.Time `json:"selected_at"`
	SupersedesID    string    `json:"supersedes_id,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	Excluded        []string  `json:"excluded,omitempty"`
}

type TicketEntry struct {
	EntrantID string `json:"entrant_id"`
	Tickets   int64  `json:"tickets"`
	Rank      int    `json:"rank,omitempty"`
}
