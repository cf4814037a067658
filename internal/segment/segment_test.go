package segment

import (
	"errors"
	"reflect"
	"testing"

	"github.com/reachpoint/crm-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCompileEmptyRules(t *testing.T) {
	_, err := Compile(nil)
	if !errors.Is(err, ErrNoRules) {
		t.Fatalf("expected ErrNoRules, got %v", err)
	}
}

func TestCompileAndChain(t *testing.T) {
	rules := []models.SegmentRule{
		{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Lagos"},
		{Field: models.FieldName, Operator: models.OperatorStartsWith, Value: "A", LogicOperator: models.LogicAnd},
	}

	q, err := Compile(rules)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(q.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(q.Groups))
	}
	for i, group := range q.Groups {
		if len(group.Conditions) != 1 {
			t.Errorf("group %d: expected 1 condition, got %d", i, len(group.Conditions))
		}
	}
}

func TestCompileOrJoinsPrecedingGroup(t *testing.T) {
	rules := []models.SegmentRule{
		{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Lagos"},
		{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Abuja", LogicOperator: models.LogicOr},
		{Field: models.FieldName, Operator: models.OperatorStartsWith, Value: "A", LogicOperator: models.LogicAnd},
	}

	q, err := Compile(rules)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(q.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(q.Groups))
	}
	if len(q.Groups[0].Conditions) != 2 {
		t.Errorf("first group: expected 2 conditions, got %d", len(q.Groups[0].Conditions))
	}
	if len(q.Groups[1].Conditions) != 1 {
		t.Errorf("second group: expected 1 condition, got %d", len(q.Groups[1].Conditions))
	}
}

func TestCompileRoutesSpendRules(t *testing.T) {
	rules := []models.SegmentRule{
		{Field: models.FieldTotalSpendings, Operator: models.OperatorGreaterThan, Value: float64(100)},
		{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Lagos", LogicOperator: models.LogicAnd},
		{Field: models.FieldTotalSpendings, Operator: models.OperatorLessThan, Value: "500", LogicOperator: models.LogicAnd},
	}

	q, err := Compile(rules)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(q.Groups) != 1 {
		t.Fatalf("expected 1 structural group, got %d", len(q.Groups))
	}
	if len(q.SpendRules) != 2 {
		t.Fatalf("expected 2 spend rules, got %d", len(q.SpendRules))
	}
	if q.SpendRules[0].Threshold != 100 || q.SpendRules[1].Threshold != 500 {
		t.Errorf("unexpected thresholds: %+v", q.SpendRules)
	}
}

func TestCompileDropsUnusableSpendRule(t *testing.T) {
	rules := []models.SegmentRule{
		{Field: models.FieldTotalSpendings, Operator: models.OperatorContains, Value: "100"},
		{Field: models.FieldTotalSpendings, Operator: models.OperatorGreaterThan, Value: "not-a-number"},
		{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Lagos"},
	}

	q, err := Compile(rules)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(q.SpendRules) != 0 {
		t.Errorf("expected unusable spend rules to be dropped, got %+v", q.SpendRules)
	}
	if len(q.Groups) != 1 {
		t.Errorf("expected 1 structural group, got %d", len(q.Groups))
	}
}

func TestCompileOnlySpendRulesLeavesEmptyStructuralQuery(t *testing.T) {
	rules := []models.SegmentRule{
		{Field: models.FieldTotalSpendings, Operator: models.OperatorGreaterThan, Value: float64(100)},
	}

	q, err := Compile(rules)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(q.Groups) != 0 {
		t.Errorf("expected no structural groups, got %d", len(q.Groups))
	}
	if !q.HasSpendRules() {
		t.Error("expected spend rules")
	}
	if !reflect.DeepEqual(q.MongoFilter(), bson.M{}) {
		t.Errorf("expected empty filter, got %v", q.MongoFilter())
	}
}

func TestCompileNumericOperatorOnStringFieldNeverMatches(t *testing.T) {
	rules := []models.SegmentRule{
		{Field: models.FieldName, Operator: models.OperatorGreaterThan, Value: "10"},
	}

	q, err := Compile(rules)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(q.Groups) != 1 || len(q.Groups[0].Conditions) != 1 {
		t.Fatalf("unexpected query shape: %+v", q)
	}
	if !q.Groups[0].Conditions[0].Never {
		t.Error("expected never-matching condition")
	}
	if q.Matches(&models.Customer{Name: "10"}) {
		t.Error("never condition matched a customer")
	}
}

func TestCompileTagsIgnoreOperator(t *testing.T) {
	for _, op := range []string{models.OperatorEquals, models.OperatorContains, models.OperatorStartsWith} {
		q, err := Compile([]models.SegmentRule{
			{Field: models.FieldTags, Operator: op, Value: "vip"},
		})
		if err != nil {
			t.Fatalf("Compile(%s): %v", op, err)
		}
		cond := q.Groups[0].Conditions[0]
		if cond.Operator != models.OperatorEquals || cond.Value != "vip" {
			t.Errorf("operator %s: expected membership condition, got %+v", op, cond)
		}
	}
}

func TestSpendRuleHolds(t *testing.T) {
	gt := SpendRule{Operator: models.OperatorGreaterThan, Threshold: 100}
	lt := SpendRule{Operator: models.OperatorLessThan, Threshold: 100}

	if !gt.Holds(150) || gt.Holds(100) || gt.Holds(50) {
		t.Error("greaterThan boundary behavior wrong")
	}
	if !lt.Holds(50) || lt.Holds(100) || lt.Holds(150) {
		t.Error("lessThan boundary behavior wrong")
	}
}

func TestMongoFilterShapes(t *testing.T) {
	tests := []struct {
		name  string
		rules []models.SegmentRule
		want  bson.M
	}{
		{
			name: "single equals is exact and case-sensitive",
			rules: []models.SegmentRule{
				{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Lagos"},
			},
			want: bson.M{"location": "Lagos"},
		},
		{
			name: "contains escapes regex metacharacters",
			rules: []models.SegmentRule{
				{Field: models.FieldEmail, Operator: models.OperatorContains, Value: "a.b+c"},
			},
			want: bson.M{"email": bson.M{"$regex": `a\.b\+c`, "$options": "i"}},
		},
		{
			name: "startsWith anchors at the beginning",
			rules: []models.SegmentRule{
				{Field: models.FieldName, Operator: models.OperatorStartsWith, Value: "Ada"},
			},
			want: bson.M{"name": bson.M{"$regex": "^Ada", "$options": "i"}},
		},
		{
			name: "endsWith anchors at the end",
			rules: []models.SegmentRule{
				{Field: models.FieldEmail, Operator: models.OperatorEndsWith, Value: ".io"},
			},
			want: bson.M{"email": bson.M{"$regex": `\.io$`, "$options": "i"}},
		},
		{
			name: "tags compile to membership",
			rules: []models.SegmentRule{
				{Field: models.FieldTags, Operator: models.OperatorContains, Value: "vip"},
			},
			want: bson.M{"tags": "vip"},
		},
		{
			name: "or group",
			rules: []models.SegmentRule{
				{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Lagos"},
				{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Abuja", LogicOperator: models.LogicOr},
			},
			want: bson.M{"$or": []bson.M{
				{"location": "Lagos"},
				{"location": "Abuja"},
			}},
		},
		{
			name: "and of or groups",
			rules: []models.SegmentRule{
				{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Lagos"},
				{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Abuja", LogicOperator: models.LogicOr},
				{Field: models.FieldTags, Operator: models.OperatorEquals, Value: "vip", LogicOperator: models.LogicAnd},
			},
			want: bson.M{"$and": []bson.M{
				{"$or": []bson.M{
					{"location": "Lagos"},
					{"location": "Abuja"},
				}},
				{"tags": "vip"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Compile(tt.rules)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			got := q.MongoFilter()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MongoFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesMirrorsFilterSemantics(t *testing.T) {
	customer := &models.Customer{
		Name:     "Ada Lovelace",
		Email:    "ada@reachpoint.io",
		Location: "Lagos",
		Tags:     []string{"vip", "newsletter"},
	}

	tests := []struct {
		name  string
		rules []models.SegmentRule
		want  bool
	}{
		{
			name: "equals is case-sensitive",
			rules: []models.SegmentRule{
				{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "lagos"},
			},
			want: false,
		},
		{
			name: "contains is case-insensitive",
			rules: []models.SegmentRule{
				{Field: models.FieldName, Operator: models.OperatorContains, Value: "LOVELACE"},
			},
			want: true,
		},
		{
			name: "startsWith is case-insensitive",
			rules: []models.SegmentRule{
				{Field: models.FieldName, Operator: models.OperatorStartsWith, Value: "ada"},
			},
			want: true,
		},
		{
			name: "endsWith is case-insensitive",
			rules: []models.SegmentRule{
				{Field: models.FieldEmail, Operator: models.OperatorEndsWith, Value: ".IO"},
			},
			want: true,
		},
		{
			name: "tag membership",
			rules: []models.SegmentRule{
				{Field: models.FieldTags, Operator: models.OperatorEquals, Value: "vip"},
			},
			want: true,
		},
		{
			name: "missing tag",
			rules: []models.SegmentRule{
				{Field: models.FieldTags, Operator: models.OperatorEquals, Value: "churned"},
			},
			want: false,
		},
		{
			name: "and requires every group",
			rules: []models.SegmentRule{
				{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Lagos"},
				{Field: models.FieldTags, Operator: models.OperatorEquals, Value: "churned", LogicOperator: models.LogicAnd},
			},
			want: false,
		},
		{
			name: "or requires one member",
			rules: []models.SegmentRule{
				{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Abuja"},
				{Field: models.FieldLocation, Operator: models.OperatorEquals, Value: "Lagos", LogicOperator: models.LogicOr},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Compile(tt.rules)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if got := q.Matches(customer); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
