package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/reachpoint/crm-backend/internal/models"
	"github.com/reachpoint/crm-backend/internal/repositories"
	"github.com/reachpoint/crm-backend/internal/segment"
	"golang.org/x/exp/slog"
)

// AudienceResolver turns an ordered segment rule set into the matching
// customer set. Resolution is read-only and re-entrant: the same rules over
// unchanged data always yield the same set, so the resolver serves both
// audience preview and the actual send.
type AudienceResolver struct {
	customerRepo repositories.CustomerRepository
	orderRepo    repositories.OrderRepository
}

// NewAudienceResolver creates a new AudienceResolver
func NewAudienceResolver(customerRepo repositories.CustomerRepository, orderRepo repositories.OrderRepository) *AudienceResolver {
	return &AudienceResolver{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
	}
}

// Resolve compiles the rules, pushes the structural predicate down to the
// customer collection, and applies the residual spend rules per candidate.
// Candidates keep the order the collection returned them in.
func (r *AudienceResolver) Resolve(ctx context.Context, rules []models.SegmentRule) ([]*models.Customer, error) {
	query, err := segment.Compile(rules)
	if err != nil {
		if errors.Is(err, segment.ErrNoRules) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("failed to compile segment rules: %w", err)
	}

	candidates, err := r.customerRepo.FindByFilter(ctx, query.MongoFilter())
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}

	if !query.HasSpendRules() {
		return candidates, nil
	}

	matched := make([]*models.Customer, 0, len(candidates))
	for _, customer := range candidates {
		total, err := r.orderRepo.SumPriceByCustomer(ctx, customer.ID)
		if err != nil {
			// A failed aggregation changes segmentation results, so it is
			// never swallowed silently.
			slog.Warn("spend aggregation failed, treating total as zero",
				"customerId", customer.ID.Hex(), "error", err)
			total = 0
		}
		// Spend rules are combined with AND regardless of their declared
		// logic operator.
		if spendRulesHold(query.SpendRules, total) {
			customer.TotalSpendings = total
			matched = append(matched, customer)
		}
	}
	return matched, nil
}

func spendRulesHold(rules []segment.SpendRule, total float64) bool {
	for _, rule := range rules {
		if !rule.Holds(total) {
			return false
		}
	}
	return true
}
