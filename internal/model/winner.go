package model

type SelectWinnersRequest struct {
	CampaignID string `json:"campaign_id"`

	// Seed is generated from a secure source when it is nil.
	Seed *int64 `json:"seed"`
}

type SelectWinnersResponse struct {
	Record WinnerRecord `json:"record"`
}

type RedrawWinnersRequest struct {
	CampaignID         string   `json:"campaign_id"`
	Reason             string   `json:"reason"`
	ExcludedEntrantIDs []string `json:"excluded_entrant_ids"`
}

type RedrawWinnersResponse struct {
	Record WinnerRecord `json:"record"`
}

type GetWinnersRequest struct {
	CampaignID string `json:"campaign_id"`

	// Generation zero means the latest record.
	Generation int `json:"generation"`
}

type GetWinnersResponse struct {
	Record  WinnerRecord   `json:"record"`
	History []WinnerRecord `json:"history"`
}

type VerifyWinnersRequest struct {
	CampaignID string `json:"campaign_id"`
	Generation int    `json:"generation"`
}

type VerifyWinnersResponse struct {
	Valid        bool   `json:"valid"`
	SnapshotHash string `json:"snapshot_hash"`
	LedgerHash   string `json:"ledger_hash"`
	Reason       string `json:"reason,omitempty"`
}
