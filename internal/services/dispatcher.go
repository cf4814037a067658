package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/reachpoint/crm-backend/internal/config"
	"github.com/reachpoint/crm-backend/internal/models"
	"github.com/reachpoint/crm-backend/pkg/mailer"
	"golang.org/x/exp/slog"
)

// Dispatch defaults applied when configuration leaves them unset
const (
	DefaultWaveSize  = 50
	DefaultWaveDelay = 1000 * time.Millisecond
)

// FailedEmail records one recipient whose delivery did not succeed
type FailedEmail struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// DispatchReport aggregates the settled outcome of a campaign dispatch.
// SuccessCount+FailureCount always equals Total.
type DispatchReport struct {
	Total        int           `json:"total"`
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	FailedEmails []FailedEmail `json:"failedEmails,omitempty"`
}

// BatchDispatcher sends personalized campaign mail to an audience in
// fixed-size waves. Deliveries within a wave run concurrently and all settle
// before the wave joins; a fixed delay separates consecutive waves to
// throttle outbound rate. One recipient's failure never aborts the wave or
// the campaign.
type BatchDispatcher struct {
	mailer    mailer.Mailer
	waveSize  int
	waveDelay time.Duration

	// sleep is swapped out in tests to observe inter-wave delays
	sleep func(time.Duration)
}

// NewBatchDispatcher creates a new BatchDispatcher around a mail gateway
func NewBatchDispatcher(m mailer.Mailer, cfg *config.Config) *BatchDispatcher {
	waveSize := cfg.Dispatch.WaveSize
	if waveSize <= 0 {
		waveSize = DefaultWaveSize
	}
	waveDelay := time.Duration(cfg.Dispatch.WaveDelayMS) * time.Millisecond
	if waveDelay <= 0 {
		waveDelay = DefaultWaveDelay
	}
	return &BatchDispatcher{
		mailer:    m,
		waveSize:  waveSize,
		waveDelay: waveDelay,
		sleep:     time.Sleep,
	}
}

// Dispatch partitions the audience into consecutive waves and delivers each
// wave concurrently, waiting for every send to settle before moving on.
// Per-recipient failures are captured in the report, never returned as
// errors; Dispatch itself fails only on a structurally invalid campaign.
func (d *BatchDispatcher) Dispatch(ctx context.Context, campaign *models.Campaign, audience []*models.Customer) (*DispatchReport, error) {
	if strings.TrimSpace(campaign.Message) == "" {
		return nil, fmt.Errorf("%w: campaign message is required", ErrValidation)
	}

	report := &DispatchReport{Total: len(audience)}

	for start := 0; start < len(audience); start += d.waveSize {
		end := start + d.waveSize
		if end > len(audience) {
			end = len(audience)
		}
		wave := audience[start:end]

		// Each delivery owns its indexed result slot, so no lock is needed
		// while the wave is in flight.
		results := make([]*mailer.SendResult, len(wave))
		var wg sync.WaitGroup
		for i, customer := range wave {
			wg.Add(1)
			go func(i int, customer *models.Customer) {
				defer wg.Done()
				results[i] = d.deliverOne(ctx, campaign, customer)
			}(i, customer)
		}
		wg.Wait()

		// Aggregation happens strictly after the wave joins.
		for i, result := range results {
			if result.Success {
				report.SuccessCount++
				continue
			}
			report.FailureCount++
			report.FailedEmails = append(report.FailedEmails, FailedEmail{
				Email: wave[i].Email,
				Error: result.Error,
			})
			slog.Warn("campaign delivery failed",
				"campaignId", campaign.ID.Hex(),
				"email", wave[i].Email,
				"error", result.Error)
		}

		if end < len(audience) {
			d.sleep(d.waveDelay)
		}
	}

	return report, nil
}

// deliverOne personalizes and sends a single message, folding every failure
// mode into a settled result.
func (d *BatchDispatcher) deliverOne(ctx context.Context, campaign *models.Campaign, customer *models.Customer) *mailer.SendResult {
	if strings.TrimSpace(customer.Email) == "" {
		return &mailer.SendResult{Error: "customer has no email address"}
	}
	email := PersonalizeMessage(campaign.Subject, campaign.Message, customer)
	result := d.mailer.Send(ctx, email)
	if result == nil {
		return &mailer.SendResult{Error: "mail gateway returned no result"}
	}
	return result
}
