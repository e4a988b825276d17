package domain

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/questx-lab/giveaway/internal/common"
	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/model"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm"
)

// normalizePagination applies the api server limits to a paging request.
func normalizePagination(ctx context.Context, offset, limit int) (int, int, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if offset < 0 {
		return 0, 0, errorx.New(errorx.BadRequest, "Offset must not be negative")
	}

	if limit == 0 {
		limit = apiCfg.DefaultLimit
	}

	if limit < 0 {
		return 0, 0, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if limit > apiCfg.MaxLimit {
		return 0, 0, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	return offset, limit, nil
}

// normalizeEmail trims and lowercases an email address. It returns an empty
// string for an invalid address.
func normalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t\r\n") {
		return ""
	}

	return email
}

// appendEvent writes a ledger event to the outbox. It must be called inside
// the transaction of the change it describes.
func appendEvent(ctx context.Context, outboxRepo repository.OutboxRepository, event model.LedgerEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return outboxRepo.Append(ctx, &entity.OutboxMessage{
		ID:        uuid.NewString(),
		Topic:     xcontext.Configs(ctx).Kafka.Topic,
		Key:       event.CampaignID,
		Payload:   payload,
		Status:    entity.OutboxPending,
		CreatedAt: event.OccurredAt,
	})
}

func verifyCampaignOwner(
	ctx context.Context, verifier *common.CampaignOwnerVerifier, campaignID string,
) (*entity.Campaign, error) {
	campaign, err := verifier.Verify(ctx, campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found campaign")
		}

		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return campaign, nil
}

func getCampaign(
	ctx context.Context, campaignRepo repository.CampaignRepository, campaignID string,
) (*entity.Campaign, error) {
	campaign, err := campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found campaign")
		}

		xcontext.Logger(ctx).Errorf("Cannot get campaign: %v", err)
		return nil, errorx.Unknown
	}

	return campaign, nil
}
