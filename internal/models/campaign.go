package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign statuses. "failed" is reserved; no transition currently drives it.
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusSent      = "sent"
	CampaignStatusFailed    = "failed"
)

// Segment rule fields
const (
	FieldName           = "name"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldLocation       = "location"
	FieldTags           = "tags"
	FieldTotalSpendings = "totalSpendings"
)

// Segment rule operators
const (
	OperatorEquals      = "equals"
	OperatorContains    = "contains"
	OperatorStartsWith  = "startsWith"
	OperatorEndsWith    = "endsWith"
	OperatorGreaterThan = "greaterThan"
	OperatorLessThan    = "lessThan"
)

// Logic operators combining a rule with the preceding one
const (
	LogicAnd = "AND"
	LogicOr  = "OR"
)

// SegmentRule is one field/operator/value/logic tuple used to filter
// customers. Rules form an ordered sequence; position matters because the
// logic combination is evaluated left to right.
type SegmentRule struct {
	Field         string      `bson:"field" json:"field"`
	Operator      string      `bson:"operator" json:"operator"`
	Value         interface{} `bson:"value" json:"value"`
	LogicOperator string      `bson:"logicOperator,omitempty" json:"logicOperator,omitempty"`
}

// Delivery statuses recorded in the communication log
const (
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
)

// CommunicationLogEntry records the delivery outcome for one customer of a
// sent campaign.
type CommunicationLogEntry struct {
	CustomerID  primitive.ObjectID `bson:"customerId" json:"customerId"`
	Status      string             `bson:"status" json:"status"`
	DeliveredAt *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
}

// Campaign represents a marketing campaign targeting a customer segment.
// The communication log is write-once per send and fully replaced each time
// a send completes.
type Campaign struct {
	ID               primitive.ObjectID      `bson:"_id,omitempty" json:"id,omitempty"`
	Name             string                  `bson:"name" json:"name"`
	Subject          string                  `bson:"subject" json:"subject"`
	Message          string                  `bson:"message" json:"message"`
	SegmentRules     []SegmentRule           `bson:"segmentRules" json:"segmentRules"`
	Status           string                  `bson:"status" json:"status"`
	ScheduledFor     *time.Time              `bson:"scheduledFor,omitempty" json:"scheduledFor,omitempty"`
	TargetAudience   int                     `bson:"targetAudience" json:"targetAudience"`
	Delivered        int                     `bson:"delivered" json:"delivered"`
	Failed           int                     `bson:"failed" json:"failed"`
	CommunicationLog []CommunicationLogEntry `bson:"communicationLog,omitempty" json:"communicationLog,omitempty"`
	SentAt           *time.Time              `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	CreatedAt        time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time               `bson:"updatedAt" json:"updatedAt"`
}
