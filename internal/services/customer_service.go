package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/reachpoint/crm-backend/internal/models"
	"github.com/reachpoint/crm-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CustomerService handles customer-related business logic
type CustomerService struct {
	customerRepo repositories.CustomerRepository
	orderRepo    repositories.OrderRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo repositories.CustomerRepository, orderRepo repositories.OrderRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
	}
}

// CreateCustomer validates and stores a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := validateCustomer(customer); err != nil {
		return err
	}
	if _, err := s.customerRepo.FindByEmail(ctx, customer.Email); err == nil {
		return fmt.Errorf("%w: customer with email %s already exists", ErrConflict, customer.Email)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to check for existing customer: %w", err)
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// CreateCustomers bulk-imports customers. The whole batch is validated
// before anything is written.
func (s *CustomerService) CreateCustomers(ctx context.Context, customers []*models.Customer) error {
	if len(customers) == 0 {
		return fmt.Errorf("%w: no customers to import", ErrValidation)
	}
	for i, customer := range customers {
		if err := validateCustomer(customer); err != nil {
			return fmt.Errorf("customer %d: %w", i, err)
		}
	}
	if err := s.customerRepo.CreateMany(ctx, customers); err != nil {
		return fmt.Errorf("failed to import customers: %w", err)
	}
	return nil
}

// GetCustomerByID retrieves a customer with their derived total spend
func (s *CustomerService) GetCustomerByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, id.Hex())
		}
		return nil, err
	}
	total, err := s.orderRepo.SumPriceByCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to compute total spend: %w", err)
	}
	customer.TotalSpendings = total
	return customer, nil
}

// GetAllCustomers retrieves customers with pagination
func (s *CustomerService) GetAllCustomers(ctx context.Context, page, limit int) ([]*models.Customer, error) {
	return s.customerRepo.FindAll(ctx, page, limit)
}

// GetCustomerCount returns the total number of customers
func (s *CustomerService) GetCustomerCount(ctx context.Context) (int64, error) {
	return s.customerRepo.Count(ctx)
}

// UpdateCustomer validates and stores customer edits
func (s *CustomerService) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	existing, err := s.customerRepo.FindByID(ctx, customer.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: customer %s", ErrNotFound, customer.ID.Hex())
		}
		return err
	}
	if err := validateCustomer(customer); err != nil {
		return err
	}
	if customer.Email != existing.Email {
		if _, err := s.customerRepo.FindByEmail(ctx, customer.Email); err == nil {
			return fmt.Errorf("%w: customer with email %s already exists", ErrConflict, customer.Email)
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("failed to check for existing customer: %w", err)
		}
	}
	customer.CreatedAt = existing.CreatedAt
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

// DeleteCustomer removes a customer. Deletion is blocked while orders still
// reference the customer.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: customer %s", ErrNotFound, id.Hex())
		}
		return err
	}
	orderCount, err := s.orderRepo.CountByCustomer(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count customer orders: %w", err)
	}
	if orderCount > 0 {
		return fmt.Errorf("%w: customer has %d orders and cannot be deleted", ErrConflict, orderCount)
	}
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

// validateCustomer checks the structural invariants of a customer
func validateCustomer(customer *models.Customer) error {
	if strings.TrimSpace(customer.Name) == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	email := strings.TrimSpace(customer.Email)
	if email == "" {
		return fmt.Errorf("%w: customer email is required", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: customer email %q is invalid", ErrValidation, email)
	}
	return nil
}
