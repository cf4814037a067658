package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/reachpoint/crm-backend/internal/models"
	"github.com/reachpoint/crm-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var validOrderStatuses = map[string]bool{
	models.OrderStatusPending:    true,
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
	models.OrderStatusCancelled:  true,
}

// OrderService handles order-related business logic
type OrderService struct {
	orderRepo    repositories.OrderRepository
	customerRepo repositories.CustomerRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo repositories.OrderRepository, customerRepo repositories.CustomerRepository) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
	}
}

// CreateOrder validates and stores a new order. The referenced customer must
// exist; an order never outlives its customer.
func (s *OrderService) CreateOrder(ctx context.Context, order *models.Order) error {
	if _, err := s.customerRepo.FindByID(ctx, order.CustomerID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: customer %s", ErrNotFound, order.CustomerID.Hex())
		}
		return err
	}
	if err := validateOrder(order); err != nil {
		return err
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if order.Price == 0 {
		order.Price = itemsTotal(order.Items)
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetOrderByID retrieves an order by ID
func (s *OrderService) GetOrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, id.Hex())
		}
		return nil, err
	}
	return order, nil
}

// GetOrdersByCustomer retrieves a customer's orders with pagination
func (s *OrderService) GetOrdersByCustomer(ctx context.Context, customerID primitive.ObjectID, page, limit int) ([]*models.Order, error) {
	return s.orderRepo.FindByCustomerID(ctx, customerID, page, limit)
}

// GetAllOrders retrieves orders with pagination
func (s *OrderService) GetAllOrders(ctx context.Context, page, limit int) ([]*models.Order, error) {
	return s.orderRepo.FindAll(ctx, page, limit)
}

// GetOrderCount returns the total number of orders
func (s *OrderService) GetOrderCount(ctx context.Context) (int64, error) {
	return s.orderRepo.Count(ctx)
}

// UpdateOrder validates and stores an explicit order update
func (s *OrderService) UpdateOrder(ctx context.Context, order *models.Order) error {
	existing, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: order %s", ErrNotFound, order.ID.Hex())
		}
		return err
	}
	if err := validateOrder(order); err != nil {
		return err
	}
	order.CustomerID = existing.CustomerID
	order.CreatedAt = existing.CreatedAt
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

// DeleteOrder removes an order
func (s *OrderService) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: order %s", ErrNotFound, id.Hex())
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// validateOrder checks the structural invariants of an order
func validateOrder(order *models.Order) error {
	if len(order.Items) == 0 {
		return fmt.Errorf("%w: order must have at least one item", ErrValidation)
	}
	for i, item := range order.Items {
		if item.Name == "" {
			return fmt.Errorf("%w: item %d has no name", ErrValidation, i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %d quantity must be at least 1", ErrValidation, i)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %d price cannot be negative", ErrValidation, i)
		}
	}
	if order.Price < 0 {
		return fmt.Errorf("%w: order price cannot be negative", ErrValidation)
	}
	if order.Status != "" && !validOrderStatuses[order.Status] {
		return fmt.Errorf("%w: unknown order status %q", ErrValidation, order.Status)
	}
	return nil
}

func itemsTotal(items []models.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
