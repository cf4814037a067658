package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer represents a customer record in the CRM
type Customer struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Location string             `bson:"location,omitempty" json:"location,omitempty"`
	Tags     []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	// TotalSpendings is derived from the orders collection and never stored
	TotalSpendings float64   `bson:"-" json:"totalSpendings,omitempty"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}

// FirstName returns the first space-delimited token of the customer's name,
// or "Valued Customer" when the name is empty. Used for personalization.
func (c *Customer) FirstName() string {
	fields := strings.Fields(c.Name)
	if len(fields) == 0 {
		return "Valued Customer"
	}
	return fields[0]
}
