package segment

import (
	"regexp"

	"github.com/reachpoint/crm-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// MongoFilter translates the structural predicate into a filter document the
// customers collection can evaluate server-side. Spend rules are not
// represented here; they are applied by the audience resolver after
// aggregation.
func (q *Query) MongoFilter() bson.M {
	if len(q.Groups) == 0 {
		return bson.M{}
	}

	and := make([]bson.M, 0, len(q.Groups))
	for _, group := range q.Groups {
		and = append(and, group.mongoFilter())
	}
	if len(and) == 1 {
		return and[0]
	}
	return bson.M{"$and": and}
}

func (g OrGroup) mongoFilter() bson.M {
	if len(g.Conditions) == 1 {
		return g.Conditions[0].mongoFilter()
	}
	or := make([]bson.M, 0, len(g.Conditions))
	for _, cond := range g.Conditions {
		or = append(or, cond.mongoFilter())
	}
	return bson.M{"$or": or}
}

func (c Condition) mongoFilter() bson.M {
	if c.Never {
		// Matches no document.
		return bson.M{"_id": bson.M{"$in": bson.A{}}}
	}

	if c.Field == models.FieldTags {
		return bson.M{"tags": c.Value}
	}

	switch c.Operator {
	case models.OperatorEquals:
		return bson.M{c.Field: c.Value}
	case models.OperatorContains:
		return bson.M{c.Field: bson.M{"$regex": regexp.QuoteMeta(c.Value), "$options": "i"}}
	case models.OperatorStartsWith:
		return bson.M{c.Field: bson.M{"$regex": "^" + regexp.QuoteMeta(c.Value), "$options": "i"}}
	case models.OperatorEndsWith:
		return bson.M{c.Field: bson.M{"$regex": regexp.QuoteMeta(c.Value) + "$", "$options": "i"}}
	default:
		return bson.M{"_id": bson.M{"$in": bson.A{}}}
	}
}
