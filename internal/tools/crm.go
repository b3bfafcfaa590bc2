package tools

import (
	"context"
	"strings"
)

// Customer is a CRM record as returned by lookup.
type Customer struct {
	CustomerID        string   `json:"customer_id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Phone             string   `json:"phone"`
	Segment           string   `json:"segment"`
	AccountSince      string   `json:"account_since"`
	PrimaryAccount    string   `json:"primary_account"`
	Balance           float64  `json:"balance"`
	Products          []string `json:"products"`
	LastContact       string   `json:"last_contact"`
	SatisfactionScore float64  `json:"satisfaction_score"`
}

// FirstName returns the customer's given name for greeting composition.
func (c *Customer) FirstName() string {
	parts := strings.Fields(c.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// LookupResult is the outcome of a directory lookup. When Found is false,
// Customer is nil and SuggestedActions carries remediation hints.
type LookupResult struct {
	Found            bool      `json:"found"`
	Customer         *Customer `json:"customer"`
	SuggestedActions []string  `json:"suggested_actions,omitempty"`
}

// CustomerDirectory resolves a customer identifier (id or email) to a record.
type CustomerDirectory interface {
	Lookup(ctx context.Context, identifier string) (*LookupResult, error)
}

// MockCRM is an in-memory directory keyed by customer id and email.
type MockCRM struct {
	customers map[string]*Customer
}

func NewMockCRM() *MockCRM {
	johnDoe := &Customer{
		CustomerID:        "C001",
		Name:              "John Doe",
		Email:             "john.doe@email.com",
		Phone:             "+1-555-0123",
		Segment:           "premium",
		AccountSince:      "2020-03-15",
		PrimaryAccount:    "CHK-001-789",
		Balance:           12500.50,
		Products:          []string{"checking", "savings", "credit_card"},
		LastContact:       "2025-08-10",
		SatisfactionScore: 8.7,
	}
	return &MockCRM{
		customers: map[string]*Customer{
			johnDoe.CustomerID: johnDoe,
			johnDoe.Email:      johnDoe,
		},
	}
}

func (m *MockCRM) Lookup(_ context.Context, identifier string) (*LookupResult, error) {
	if customer, ok := m.customers[identifier]; ok {
		copied := *customer
		return &LookupResult{Found: true, Customer: &copied}, nil
	}
	return &LookupResult{
		Found:            false,
		SuggestedActions: []string{"verify_identifier", "check_spelling", "search_by_phone"},
	}, nil
}
