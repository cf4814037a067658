package segment

import (
	"strings"

	"github.com/reachpoint/crm-backend/internal/models"
)

// Matches evaluates the structural predicate against a customer in memory.
// It mirrors MongoFilter so a backend without pushdown support can filter a
// fetched collection with identical semantics. Spend rules are not part of
// the structural predicate and must be checked separately.
func (q *Query) Matches(c *models.Customer) bool {
	for _, group := range q.Groups {
		if !group.matches(c) {
			return false
		}
	}
	return true
}

func (g OrGroup) matches(c *models.Customer) bool {
	for _, cond := range g.Conditions {
		if cond.matches(c) {
			return true
		}
	}
	return false
}

func (cond Condition) matches(c *models.Customer) bool {
	if cond.Never {
		return false
	}

	if cond.Field == models.FieldTags {
		for _, tag := range c.Tags {
			if tag == cond.Value {
				return true
			}
		}
		return false
	}

	actual := fieldValue(c, cond.Field)
	switch cond.Operator {
	case models.OperatorEquals:
		return actual == cond.Value
	case models.OperatorContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(cond.Value))
	case models.OperatorStartsWith:
		return strings.HasPrefix(strings.ToLower(actual), strings.ToLower(cond.Value))
	case models.OperatorEndsWith:
		return strings.HasSuffix(strings.ToLower(actual), strings.ToLower(cond.Value))
	default:
		return false
	}
}

func fieldValue(c *models.Customer, field string) string {
	switch field {
	case models.FieldName:
		return c.Name
	case models.FieldEmail:
		return c.Email
	case models.FieldPhone:
		return c.Phone
	case models.FieldLocation:
		return c.Location
	default:
		return ""
	}
}
