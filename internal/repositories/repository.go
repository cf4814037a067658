package repositories

import (
	"context"

	"github.com/reachpoint/crm-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	CreateMany(ctx context.Context, customers []*models.Customer) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	// FindByFilter runs a compiled segment filter against the collection,
	// preserving the collection's natural order.
	FindByFilter(ctx context.Context, filter bson.M) ([]*models.Customer, error)
	FindAll(ctx context.Context, page, limit int) ([]*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByCustomerID(ctx context.Context, customerID primitive.ObjectID, page, limit int) ([]*models.Order, error)
	FindAll(ctx context.Context, page, limit int) ([]*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// SumPriceByCustomer computes the customer's derived total spend as the
	// sum of price over all of their orders.
	SumPriceByCustomer(ctx context.Context, customerID primitive.ObjectID) (float64, error)
	CountByCustomer(ctx context.Context, customerID primitive.ObjectID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// CampaignRepository defines the interface for campaign data operations
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	FindAll(ctx context.Context, page, limit int) ([]*models.Campaign, error)
	FindByStatus(ctx context.Context, status string, page, limit int) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// AdminUserRepository defines the interface for operator account operations
type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error)
}
