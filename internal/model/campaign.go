package model

type CreateCampaignRequest struct {
	Name      string      `json:"name"`
	OwnerPlan string      `json:"owner_plan"`
	Config    EntryConfig `json:"config"`
}

type CreateCampaignResponse struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
}

type UpdateCampaignConfigRequest struct {
	CampaignID string      `json:"campaign_id"`
	Config     EntryConfig `json:"config"`
}

type UpdateCampaignConfigResponse struct {
	Version int `json:"version"`
}

type ScheduleCampaignRequest struct {
	CampaignID string `json:"campaign_id"`
}

type ScheduleCampaignResponse struct {
	Status string `json:"status"`
}

type CancelCampaignRequest struct {
	CampaignID string `json:"campaign_id"`
}

type CancelCampaignResponse struct{}

type ArchiveCampaignRequest struct {
	CampaignID string `json:"campaign_id"`
}

type ArchiveCampaignResponse struct{}

type GetCampaignRequest struct {
	CampaignID string `json:"campaign_id"`

	// Version selects a config version, zero means the current one.
	Version int `json:"version"`
}

type GetCampaignResponse struct {
	Campaign Campaign       `json:"campaign"`
	Config   CampaignConfig `json:"config"`
}

type GetMyCampaignsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetMyCampaignsResponse struct {
	Campaigns []Campaign `json:"campaigns"`
}
