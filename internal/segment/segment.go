package segment

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/reachpoint/crm-backend/internal/models"
	"golang.org/x/exp/slog"
)

// ErrNoRules is returned when a rule set is empty
var ErrNoRules = errors.New("at least one segment rule is required")

// Condition is a single comparison over one stored customer field.
// A condition with Never set matches no customer; it stands in for a rule
// that was dropped because its operator or value was unusable.
type Condition struct {
	Field    string
	Operator string
	Value    string
	Never    bool
}

// OrGroup is a disjunction of conditions. A customer matches the group when
// it matches at least one member condition.
type OrGroup struct {
	Conditions []Condition
}

// SpendRule is a residual rule over the derived total-spend attribute. It
// cannot be evaluated against stored fields and is applied after fetching
// aggregate data.
type SpendRule struct {
	Operator  string
	Threshold float64
}

// Holds reports whether the given total spend satisfies the rule
func (r SpendRule) Holds(total float64) bool {
	switch r.Operator {
	case models.OperatorGreaterThan:
		return total > r.Threshold
	case models.OperatorLessThan:
		return total < r.Threshold
	default:
		return false
	}
}

// Query is the compiled form of an ordered rule set: a conjunction of
// OR-groups over stored fields, plus the residual spend rules. An empty
// group list matches every customer.
type Query struct {
	Groups     []OrGroup
	SpendRules []SpendRule
}

// HasSpendRules reports whether any residual spend rules were compiled
func (q *Query) HasSpendRules() bool {
	return len(q.SpendRules) > 0
}

// Compile folds an ordered rule sequence into a Query. Consecutive rules
// whose own logic operator is OR join the current OR-group; any other rule
// closes the open group and starts a fresh one. Rules on totalSpendings are
// routed to the residual spend-rule list and skipped in the structural
// predicate.
func Compile(rules []models.SegmentRule) (*Query, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	q := &Query{}
	var current []Condition

	flush := func() {
		if len(current) > 0 {
			q.Groups = append(q.Groups, OrGroup{Conditions: current})
			current = nil
		}
	}

	for _, rule := range rules {
		if rule.Field == models.FieldTotalSpendings {
			q.SpendRules = append(q.SpendRules, compileSpendRule(rule)...)
			continue
		}

		cond := compileCondition(rule)
		if rule.LogicOperator == models.LogicOr {
			current = append(current, cond)
			continue
		}
		flush()
		current = []Condition{cond}
	}
	flush()

	return q, nil
}

// compileSpendRule returns zero or one spend rules for a totalSpendings
// rule. Rules with a non-numeric operator or an unparseable value are
// dropped with a warning rather than compiled into something that crashes
// at resolve time.
func compileSpendRule(rule models.SegmentRule) []SpendRule {
	if rule.Operator != models.OperatorGreaterThan && rule.Operator != models.OperatorLessThan {
		slog.Warn("dropping spend rule with non-numeric operator",
			"operator", rule.Operator)
		return nil
	}
	threshold, ok := toNumber(rule.Value)
	if !ok {
		slog.Warn("dropping spend rule with non-numeric value",
			"operator", rule.Operator, "value", rule.Value)
		return nil
	}
	return []SpendRule{{Operator: rule.Operator, Threshold: threshold}}
}

// compileCondition builds the condition for a non-aggregate rule. Numeric
// operators make no sense on stored string fields; such rules become
// never-matching conditions and are logged.
func compileCondition(rule models.SegmentRule) Condition {
	value := toString(rule.Value)

	if rule.Field == models.FieldTags {
		// Membership is the only meaningful tag test; the declared
		// operator is ignored.
		return Condition{Field: models.FieldTags, Operator: models.OperatorEquals, Value: value}
	}

	switch rule.Operator {
	case models.OperatorEquals, models.OperatorContains,
		models.OperatorStartsWith, models.OperatorEndsWith:
		return Condition{Field: rule.Field, Operator: rule.Operator, Value: value}
	default:
		slog.Warn("dropping rule with incompatible operator for field",
			"field", rule.Field, "operator", rule.Operator)
		return Condition{Field: rule.Field, Operator: rule.Operator, Never: true}
	}
}

// toNumber coerces a rule value into a float64
func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// toString coerces a rule value into a string
func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
