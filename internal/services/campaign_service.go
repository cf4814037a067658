package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reachpoint/crm-backend/internal/models"
	"github.com/reachpoint/crm-backend/internal/repositories"
	"github.com/reachpoint/crm-backend/pkg/textgen"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

var validRuleFields = map[string]bool{
	models.FieldName:           true,
	models.FieldEmail:          true,
	models.FieldPhone:          true,
	models.FieldLocation:       true,
	models.FieldTags:           true,
	models.FieldTotalSpendings: true,
}

var validRuleOperators = map[string]bool{
	models.OperatorEquals:      true,
	models.OperatorContains:    true,
	models.OperatorStartsWith:  true,
	models.OperatorEndsWith:    true,
	models.OperatorGreaterThan: true,
	models.OperatorLessThan:    true,
}

// CampaignService handles campaign lifecycle, audience resolution and sends
type CampaignService struct {
	campaignRepo repositories.CampaignRepository
	resolver     *AudienceResolver
	dispatcher   *BatchDispatcher
	generator    textgen.Generator
}

// NewCampaignService creates a new CampaignService
func NewCampaignService(
	campaignRepo repositories.CampaignRepository,
	resolver *AudienceResolver,
	dispatcher *BatchDispatcher,
	generator textgen.Generator,
) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		resolver:     resolver,
		dispatcher:   dispatcher,
		generator:    generator,
	}
}

// CreateCampaign validates and stores a new campaign in draft state, or
// scheduled when a future send time is set.
func (s *CampaignService) CreateCampaign(ctx context.Context, campaign *models.Campaign) error {
	if err := validateCampaign(campaign); err != nil {
		return err
	}

	campaign.Status = models.CampaignStatusDraft
	if campaign.ScheduledFor != nil && campaign.ScheduledFor.After(time.Now()) {
		campaign.Status = models.CampaignStatusScheduled
	}
	campaign.TargetAudience = 0
	campaign.Delivered = 0
	campaign.Failed = 0
	campaign.CommunicationLog = nil
	campaign.SentAt = nil

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// GetCampaignByID retrieves a campaign by ID
func (s *CampaignService) GetCampaignByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: campaign %s", ErrNotFound, id.Hex())
		}
		return nil, err
	}
	return campaign, nil
}

// GetAllCampaigns retrieves campaigns with pagination
func (s *CampaignService) GetAllCampaigns(ctx context.Context, page, limit int) ([]*models.Campaign, error) {
	return s.campaignRepo.FindAll(ctx, page, limit)
}

// GetCampaignCount returns the total number of campaigns
func (s *CampaignService) GetCampaignCount(ctx context.Context) (int64, error) {
	return s.campaignRepo.Count(ctx)
}

// UpdateCampaign replaces a campaign's content and rules. Sent campaigns are
// immutable.
func (s *CampaignService) UpdateCampaign(ctx context.Context, campaign *models.Campaign) error {
	existing, err := s.GetCampaignByID(ctx, campaign.ID)
	if err != nil {
		return err
	}
	if existing.Status == models.CampaignStatusSent {
		return fmt.Errorf("%w: campaign has already been sent and cannot be updated", ErrConflict)
	}
	if err := validateCampaign(campaign); err != nil {
		return err
	}

	campaign.Status = models.CampaignStatusDraft
	if campaign.ScheduledFor != nil && campaign.ScheduledFor.After(time.Now()) {
		campaign.Status = models.CampaignStatusScheduled
	}
	campaign.TargetAudience = existing.TargetAudience
	campaign.Delivered = existing.Delivered
	campaign.Failed = existing.Failed
	campaign.CommunicationLog = existing.CommunicationLog
	campaign.SentAt = existing.SentAt
	campaign.CreatedAt = existing.CreatedAt

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	return nil
}

// DeleteCampaign removes a campaign. Sent campaigns are kept for audit and
// cannot be deleted.
func (s *CampaignService) DeleteCampaign(ctx context.Context, id primitive.ObjectID) error {
	campaign, err := s.GetCampaignByID(ctx, id)
	if err != nil {
		return err
	}
	if campaign.Status == models.CampaignStatusSent {
		return fmt.Errorf("%w: campaign has already been sent and cannot be deleted", ErrConflict)
	}
	if err := s.campaignRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	return nil
}

// PreviewAudience resolves the audience a rule set would target without
// touching any campaign state.
func (s *CampaignService) PreviewAudience(ctx context.Context, rules []models.SegmentRule) ([]*models.Customer, error) {
	return s.resolver.Resolve(ctx, rules)
}

// SendCampaign resolves the campaign's audience, dispatches the personalized
// messages in waves and records the delivery ledger. The transition to sent
// is terminal; a second send attempt is rejected. The campaign status check
// is the idempotency guard, so callers must serialize sends per campaign.
func (s *CampaignService) SendCampaign(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	campaign, err := s.GetCampaignByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status == models.CampaignStatusSent {
		return nil, fmt.Errorf("%w: campaign has already been sent", ErrConflict)
	}
	if strings.TrimSpace(campaign.Message) == "" {
		return nil, fmt.Errorf("%w: campaign message is required", ErrValidation)
	}

	audience, err := s.resolver.Resolve(ctx, campaign.SegmentRules)
	if err != nil {
		return nil, err
	}
	if len(audience) == 0 {
		return nil, fmt.Errorf("%w: campaign has no target audience", ErrConflict)
	}

	report, err := s.dispatcher.Dispatch(ctx, campaign, audience)
	if err != nil {
		return nil, err
	}

	failedByEmail := make(map[string]string, len(report.FailedEmails))
	for _, failure := range report.FailedEmails {
		failedByEmail[failure.Email] = failure.Error
	}

	now := time.Now()
	communicationLog := make([]models.CommunicationLogEntry, 0, len(audience))
	for _, customer := range audience {
		entry := models.CommunicationLogEntry{CustomerID: customer.ID}
		if _, failed := failedByEmail[customer.Email]; failed {
			entry.Status = models.DeliveryStatusFailed
		} else {
			entry.Status = models.DeliveryStatusDelivered
			entry.DeliveredAt = &now
		}
		communicationLog = append(communicationLog, entry)
	}

	campaign.TargetAudience = report.Total
	campaign.Delivered = report.SuccessCount
	campaign.Failed = report.FailureCount
	campaign.CommunicationLog = communicationLog
	campaign.Status = models.CampaignStatusSent
	campaign.SentAt = &now

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to persist campaign send results: %w", err)
	}

	slog.Info("campaign sent",
		"campaignId", campaign.ID.Hex(),
		"audience", report.Total,
		"delivered", report.SuccessCount,
		"failed", report.FailureCount)
	return campaign, nil
}

// GenerateMessage produces campaign copy for the given prompt. When text
// generation is unavailable it substitutes the deterministic fallback
// template so the returned copy always carries the personalization tokens.
func (s *CampaignService) GenerateMessage(ctx context.Context, prompt, audienceDescription string) string {
	message, err := s.generator.Generate(ctx, prompt, audienceDescription)
	if err != nil {
		slog.Warn("text generation failed, using fallback template", "error", err)
		return textgen.FallbackTemplate
	}
	return message
}

// validateCampaign checks the structural invariants of a campaign
func validateCampaign(campaign *models.Campaign) error {
	if strings.TrimSpace(campaign.Name) == "" {
		return fmt.Errorf("%w: campaign name is required", ErrValidation)
	}
	if strings.TrimSpace(campaign.Message) == "" {
		return fmt.Errorf("%w: campaign message is required", ErrValidation)
	}
	if len(campaign.SegmentRules) == 0 {
		return fmt.Errorf("%w: at least one segment rule is required", ErrValidation)
	}
	for i, rule := range campaign.SegmentRules {
		if !validRuleFields[rule.Field] {
			return fmt.Errorf("%w: rule %d has unknown field %q", ErrValidation, i, rule.Field)
		}
		if !validRuleOperators[rule.Operator] {
			return fmt.Errorf("%w: rule %d has unknown operator %q", ErrValidation, i, rule.Operator)
		}
		if rule.LogicOperator != "" && rule.LogicOperator != models.LogicAnd && rule.LogicOperator != models.LogicOr {
			return fmt.Errorf("%w: rule %d has unknown logic operator %q", ErrValidation, i, rule.LogicOperator)
		}
	}
	return nil
}
