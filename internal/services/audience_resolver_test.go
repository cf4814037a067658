package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/reachpoint/crm-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolveRejectsEmptyRules(t *testing.T) {
	resolver := NewAudienceResolver(&fakeCustomerRepo{}, &fakeOrderRepo{})

	_, err := resolver.Resolve(context.Background(), nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestResolvePushesStructuralFilterDown(t *testing.T) {
	customerRepo := &fakeCustomerRepo{}
	resolver := NewAudienceResolver(customerRepo, &fakeOrderRepo{})

	rules := []models.SegmentRule{
		{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Lagos"},
		{Field: models.FieldTags, Operator: models.OperatorEquals, Value: "vip", LogicOperator: models.LogicAnd},
	}
	if _, err := resolver.Resolve(context.Background(), rules); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := bson.M{"$and": []bson.M{
		{"location": "Lagos"},
		{"tags": "vip"},
	}}
	if !reflect.DeepEqual(customerRepo.lastFilter, want) {
		t.Errorf("filter = %v, want %v", customerRepo.lastFilter, want)
	}
}

func TestResolveAppliesSpendRules(t *testing.T) {
	bigSpender := &models.Customer{ID: primitive.NewObjectID(), Name: "Big", Email: "big@example.com"}
	smallSpender := &models.Customer{ID: primitive.NewObjectID(), Name: "Small", Email: "small@example.com"}
	customerRepo := &fakeCustomerRepo{customers: []*models.Customer{bigSpender, smallSpender}}
	orderRepo := &fakeOrderRepo{totals: map[primitive.ObjectID]float64{
		bigSpender.ID:   150,
		smallSpender.ID: 40,
	}}
	resolver := NewAudienceResolver(customerRepo, orderRepo)

	rules := []models.SegmentRule{
		{Field: models.FieldTotalSpendings, Operator: models.OperatorGreaterThan, Value: float64(100)},
	}
	audience, err := resolver.Resolve(context.Background(), rules)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(audience) != 1 || audience[0].ID != bigSpender.ID {
		t.Fatalf("audience = %+v, want only the big spender", audience)
	}
	if audience[0].TotalSpendings != 150 {
		t.Errorf("TotalSpendings = %v, want 150", audience[0].TotalSpendings)
	}
}

func TestResolveSpendRulesCombineWithAnd(t *testing.T) {
	// 150 sits inside (100, 500); 40 and 900 each violate one bound.
	inside := &models.Customer{ID: primitive.NewObjectID(), Email: "inside@example.com"}
	below := &models.Customer{ID: primitive.NewObjectID(), Email: "below@example.com"}
	above := &models.Customer{ID: primitive.NewObjectID(), Email: "above@example.com"}
	customerRepo := &fakeCustomerRepo{customers: []*models.Customer{inside, below, above}}
	orderRepo := &fakeOrderRepo{totals: map[primitive.ObjectID]float64{
		inside.ID: 150,
		below.ID:  40,
		above.ID:  900,
	}}
	resolver := NewAudienceResolver(customerRepo, orderRepo)

	// The declared OR is ignored for spend rules; both bounds must hold.
	rules := []models.SegmentRule{
		{Field: models.FieldTotalSpendings, Operator: models.OperatorGreaterThan, Value: float64(100)},
		{Field: models.FieldTotalSpendings, Operator: models.OperatorLessThan, Value: float64(500), LogicOperator: models.LogicOr},
	}
	audience, err := resolver.Resolve(context.Background(), rules)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(audience) != 1 || audience[0].ID != inside.ID {
		t.Fatalf("audience = %+v, want only the in-range customer", audience)
	}
}

func TestResolveAggregationFailureTreatsSpendAsZero(t *testing.T) {
	broken := &models.Customer{ID: primitive.NewObjectID(), Email: "broken@example.com"}
	healthy := &models.Customer{ID: primitive.NewObjectID(), Email: "healthy@example.com"}
	customerRepo := &fakeCustomerRepo{customers: []*models.Customer{broken, healthy}}
	orderRepo := &fakeOrderRepo{
		totals:    map[primitive.ObjectID]float64{healthy.ID: 150},
		sumErrFor: map[primitive.ObjectID]error{broken.ID: errors.New("aggregation timeout")},
	}
	resolver := NewAudienceResolver(customerRepo, orderRepo)

	rules := []models.SegmentRule{
		{Field: models.FieldTotalSpendings, Operator: models.OperatorGreaterThan, Value: float64(100)},
	}
	audience, err := resolver.Resolve(context.Background(), rules)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// A zero total fails the >100 bound, so the failing customer drops out
	// without failing the whole resolution.
	if len(audience) != 1 || audience[0].ID != healthy.ID {
		t.Fatalf("audience = %+v, want only the healthy customer", audience)
	}
}

func TestResolveWithoutSpendRulesSkipsAggregation(t *testing.T) {
	customer := &models.Customer{ID: primitive.NewObjectID(), Email: "a@example.com"}
	customerRepo := &fakeCustomerRepo{customers: []*models.Customer{customer}}
	orderRepo := &fakeOrderRepo{
		sumErrFor: map[primitive.ObjectID]error{customer.ID: errors.New("must not be called")},
	}
	resolver := NewAudienceResolver(customerRepo, orderRepo)

	rules := []models.SegmentRule{
		{Field: models.FieldEmail, Operator: models.OperatorEndsWith, Value: "example.com"},
	}
	audience, err := resolver.Resolve(context.Background(), rules)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(audience) != 1 {
		t.Fatalf("audience = %+v, want the structural candidates untouched", audience)
	}
}
