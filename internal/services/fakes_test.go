package services

import (
	"context"
	"errors"
	"sync"

	"github.com/reachpoint/crm-backend/internal/models"
	"github.com/reachpoint/crm-backend/pkg/mailer"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// fakeCustomerRepo serves a fixed customer set and records the last filter it
// was asked to run.
type fakeCustomerRepo struct {
	customers  []*models.Customer
	lastFilter bson.M
}

func (f *fakeCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	customer.ID = primitive.NewObjectID()
	f.customers = append(f.customers, customer)
	return nil
}

func (f *fakeCustomerRepo) CreateMany(ctx context.Context, customers []*models.Customer) error {
	for _, customer := range customers {
		customer.ID = primitive.NewObjectID()
	}
	f.customers = append(f.customers, customers...)
	return nil
}

func (f *fakeCustomerRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	for _, customer := range f.customers {
		if customer.ID == id {
			return customer, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCustomerRepo) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	for _, customer := range f.customers {
		if customer.Email == email {
			return customer, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCustomerRepo) FindByFilter(ctx context.Context, filter bson.M) ([]*models.Customer, error) {
	f.lastFilter = filter
	return f.customers, nil
}

func (f *fakeCustomerRepo) FindAll(ctx context.Context, page, limit int) ([]*models.Customer, error) {
	return f.customers, nil
}

func (f *fakeCustomerRepo) Update(ctx context.Context, customer *models.Customer) error {
	for i, existing := range f.customers {
		if existing.ID == customer.ID {
			f.customers[i] = customer
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeCustomerRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for i, existing := range f.customers {
		if existing.ID == id {
			f.customers = append(f.customers[:i], f.customers[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeCustomerRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.customers)), nil
}

// fakeOrderRepo answers spend aggregations from a fixed totals map
type fakeOrderRepo struct {
	orders    []*models.Order
	totals    map[primitive.ObjectID]float64
	sumErrFor map[primitive.ObjectID]error
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	for _, order := range f.orders {
		if order.ID == id {
			return order, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeOrderRepo) FindByCustomerID(ctx context.Context, customerID primitive.ObjectID, page, limit int) ([]*models.Order, error) {
	var matched []*models.Order
	for _, order := range f.orders {
		if order.CustomerID == customerID {
			matched = append(matched, order)
		}
	}
	return matched, nil
}

func (f *fakeOrderRepo) FindAll(ctx context.Context, page, limit int) ([]*models.Order, error) {
	return f.orders, nil
}

func (f *fakeOrderRepo) Update(ctx context.Context, order *models.Order) error {
	for i, existing := range f.orders {
		if existing.ID == order.ID {
			f.orders[i] = order
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeOrderRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for i, existing := range f.orders {
		if existing.ID == id {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeOrderRepo) SumPriceByCustomer(ctx context.Context, customerID primitive.ObjectID) (float64, error) {
	if err, ok := f.sumErrFor[customerID]; ok {
		return 0, err
	}
	return f.totals[customerID], nil
}

func (f *fakeOrderRepo) CountByCustomer(ctx context.Context, customerID primitive.ObjectID) (int64, error) {
	var count int64
	for _, order := range f.orders {
		if order.CustomerID == customerID {
			count++
		}
	}
	return count, nil
}

func (f *fakeOrderRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.orders)), nil
}

// fakeCampaignRepo stores campaigns in memory
type fakeCampaignRepo struct {
	campaigns map[primitive.ObjectID]*models.Campaign
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: make(map[primitive.ObjectID]*models.Campaign)}
}

func (f *fakeCampaignRepo) Create(ctx context.Context, campaign *models.Campaign) error {
	campaign.ID = primitive.NewObjectID()
	stored := *campaign
	f.campaigns[campaign.ID] = &stored
	return nil
}

func (f *fakeCampaignRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	campaign, ok := f.campaigns[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	found := *campaign
	return &found, nil
}

func (f *fakeCampaignRepo) FindAll(ctx context.Context, page, limit int) ([]*models.Campaign, error) {
	var all []*models.Campaign
	for _, campaign := range f.campaigns {
		all = append(all, campaign)
	}
	return all, nil
}

func (f *fakeCampaignRepo) FindByStatus(ctx context.Context, status string, page, limit int) ([]*models.Campaign, error) {
	var matched []*models.Campaign
	for _, campaign := range f.campaigns {
		if campaign.Status == status {
			matched = append(matched, campaign)
		}
	}
	return matched, nil
}

func (f *fakeCampaignRepo) Update(ctx context.Context, campaign *models.Campaign) error {
	if _, ok := f.campaigns[campaign.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	stored := *campaign
	f.campaigns[campaign.ID] = &stored
	return nil
}

func (f *fakeCampaignRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.campaigns[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.campaigns, id)
	return nil
}

func (f *fakeCampaignRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.campaigns)), nil
}

// fakeMailer records deliveries and fails the addresses it is told to
type fakeMailer struct {
	mu      sync.Mutex
	sent    []*mailer.Email
	failFor map[string]string
}

func (f *fakeMailer) Send(ctx context.Context, email *mailer.Email) *mailer.SendResult {
	f.mu.Lock()
	f.sent = append(f.sent, email)
	f.mu.Unlock()
	if reason, ok := f.failFor[email.To]; ok {
		return &mailer.SendResult{Error: reason}
	}
	return &mailer.SendResult{Success: true, MessageID: "TEST-MSG"}
}

func (f *fakeMailer) HealthCheck(ctx context.Context) error { return nil }

func (f *fakeMailer) Close() error { return nil }

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakeGenerator returns a canned message or a canned error
type fakeGenerator struct {
	message string
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt, audienceDescription string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.message, nil
}

var errGeneratorDown = errors.New("generator unavailable")
