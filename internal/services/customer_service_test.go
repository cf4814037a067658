package services

import (
	"context"
	"errors"
	"testing"

	"github.com/reachpoint/crm-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateCustomerRejectsDuplicateEmail(t *testing.T) {
	customerRepo := &fakeCustomerRepo{}
	service := NewCustomerService(customerRepo, &fakeOrderRepo{})

	first := &models.Customer{Name: "Ada Lovelace", Email: "ada@example.com"}
	if err := service.CreateCustomer(context.Background(), first); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	duplicate := &models.Customer{Name: "Ada L.", Email: "ada@example.com"}
	if err := service.CreateCustomer(context.Background(), duplicate); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	service := NewCustomerService(&fakeCustomerRepo{}, &fakeOrderRepo{})

	tests := []struct {
		name     string
		customer *models.Customer
	}{
		{"missing name", &models.Customer{Email: "a@example.com"}},
		{"missing email", &models.Customer{Name: "Ada"}},
		{"malformed email", &models.Customer{Name: "Ada", Email: "not-an-email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := service.CreateCustomer(context.Background(), tt.customer); !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestCreateCustomersValidatesWholeBatchFirst(t *testing.T) {
	customerRepo := &fakeCustomerRepo{}
	service := NewCustomerService(customerRepo, &fakeOrderRepo{})

	batch := []*models.Customer{
		{Name: "Ada", Email: "ada@example.com"},
		{Name: "", Email: "broken@example.com"},
	}
	if err := service.CreateCustomers(context.Background(), batch); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(customerRepo.customers) != 0 {
		t.Errorf("partial batch written: %d customers", len(customerRepo.customers))
	}
}

func TestGetCustomerByIDAttachesTotalSpend(t *testing.T) {
	customer := &models.Customer{ID: primitive.NewObjectID(), Name: "Ada", Email: "ada@example.com"}
	customerRepo := &fakeCustomerRepo{customers: []*models.Customer{customer}}
	orderRepo := &fakeOrderRepo{totals: map[primitive.ObjectID]float64{customer.ID: 320.5}}
	service := NewCustomerService(customerRepo, orderRepo)

	got, err := service.GetCustomerByID(context.Background(), customer.ID)
	if err != nil {
		t.Fatalf("GetCustomerByID: %v", err)
	}
	if got.TotalSpendings != 320.5 {
		t.Errorf("TotalSpendings = %v, want 320.5", got.TotalSpendings)
	}
}

func TestDeleteCustomerBlockedByOrders(t *testing.T) {
	customer := &models.Customer{ID: primitive.NewObjectID(), Name: "Ada", Email: "ada@example.com"}
	customerRepo := &fakeCustomerRepo{customers: []*models.Customer{customer}}
	orderRepo := &fakeOrderRepo{orders: []*models.Order{{ID: primitive.NewObjectID(), CustomerID: customer.ID}}}
	service := NewCustomerService(customerRepo, orderRepo)

	if err := service.DeleteCustomer(context.Background(), customer.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	orderRepo.orders = nil
	if err := service.DeleteCustomer(context.Background(), customer.ID); err != nil {
		t.Errorf("delete without orders: %v", err)
	}
}

func TestUpdateCustomerEmailUniqueness(t *testing.T) {
	ada := &models.Customer{ID: primitive.NewObjectID(), Name: "Ada", Email: "ada@example.com"}
	grace := &models.Customer{ID: primitive.NewObjectID(), Name: "Grace", Email: "grace@example.com"}
	customerRepo := &fakeCustomerRepo{customers: []*models.Customer{ada, grace}}
	service := NewCustomerService(customerRepo, &fakeOrderRepo{})

	edit := &models.Customer{ID: ada.ID, Name: "Ada", Email: "grace@example.com"}
	if err := service.UpdateCustomer(context.Background(), edit); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	edit.Email = "ada.lovelace@example.com"
	if err := service.UpdateCustomer(context.Background(), edit); err != nil {
		t.Errorf("rename to free email: %v", err)
	}
}
