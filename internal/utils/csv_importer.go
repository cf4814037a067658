package utils

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/reachpoint/crm-backend/internal/models"
	"github.com/reachpoint/crm-backend/internal/repositories"
)

// importBatchSize bounds the number of customers inserted per round trip
const importBatchSize = 500

// CSVImporter imports customers from CSV files
type CSVImporter struct {
	customerRepo repositories.CustomerRepository
}

// NewCSVImporter creates a new CSVImporter
func NewCSVImporter(customerRepo repositories.CustomerRepository) *CSVImporter {
	return &CSVImporter{
		customerRepo: customerRepo,
	}
}

// ImportSummary reports the outcome of a CSV import run
type ImportSummary struct {
	Imported int
	Skipped  int
	Errors   []string
}

// ImportCustomers imports customers from a CSV file with a header row.
// Expected columns: name, email, phone, location, tags (tags separated by
// semicolons). Malformed rows are skipped and reported, not fatal.
func (i *CSVImporter) ImportCustomers(ctx context.Context, filePath string) (*ImportSummary, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	if _, ok := columns["email"]; !ok {
		return nil, fmt.Errorf("csv file has no email column")
	}

	summary := &ImportSummary{}
	var batch []*models.Customer
	line := 1

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := i.customerRepo.CreateMany(ctx, batch); err != nil {
			return fmt.Errorf("failed to insert batch: %w", err)
		}
		summary.Imported += len(batch)
		batch = nil
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		customer := customerFromRecord(record, columns)
		if customer.Email == "" || customer.Name == "" {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: missing name or email", line))
			continue
		}

		batch = append(batch, customer)
		if len(batch) >= importBatchSize {
			if err := flush(); err != nil {
				return summary, err
			}
		}
	}

	if err := flush(); err != nil {
		return summary, err
	}
	return summary, nil
}

func customerFromRecord(record []string, columns map[string]int) *models.Customer {
	get := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	customer := &models.Customer{
		Name:     get("name"),
		Email:    get("email"),
		Phone:    get("phone"),
		Location: get("location"),
	}
	if tags := get("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ";") {
			if tag = strings.TrimSpace(tag); tag != "" {
				customer.Tags = append(customer.Tags, tag)
			}
		}
	}
	return customer
}
