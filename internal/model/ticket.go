package model

type GetTicketsRequest struct {
	CampaignID string `json:"campaign_id"`
	EntrantID  string `json:"entrant_id"`
}

type GetTicketsResponse struct {
	Tickets       int64 `json:"tickets"`
	ReferralCount int64 `json:"referral_count"`
}

type GetSnapshotRequest struct {
	CampaignID string `json:"campaign_id"`
}

type GetSnapshotResponse struct {
	Version      int64         `json:"version"`
	Hash         string        `json:"hash"`
	PoolSize     int           `json:"pool_size"`
	TotalTickets int64         `json:"total_tickets"`
	Entries      []TicketEntry `json:"entries"`
}

type VerifyTicketsRequest struct {
	CampaignID string `json:"campaign_id"`
}

type TicketMismatch struct {
	EntrantID string `json:"entrant_id"`
	Cached    int64  `json:"cached"`
	Ledger    int64  `json:"ledger"`
}

type VerifyTicketsResponse struct {
	Consistent bool             `json:"consistent"`
	Mismatches []TicketMismatch `json:"mismatches"`
}

type GetReferralsRequest struct {
	CampaignID string `json:"campaign_id"`
	EntrantID  string `json:"entrant_id"`
}

type GetReferralsResponse struct {
	ReferrerID string   `json:"referrer_id,omitempty"`
	Ancestors  []string `json:"ancestors"`
	Children   []string `json:"children"`
}

type GetLeaderboardRequest struct {
	CampaignID string `json:"campaign_id"`
	Offset     int    `json:"offset"`
	Limit      int    `json:"limit"`
}

type GetLeaderboardResponse struct {
	Entries []TicketEntry `json:"entries"`
}
