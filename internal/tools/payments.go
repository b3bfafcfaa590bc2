package tools

import (
	"context"
	"fmt"
	"sort"
)

// Product is one entry in the payments product catalog.
type Product struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	MonthlyFee float64  `json:"monthly_fee,omitempty"`
	Rate       float64  `json:"rate,omitempty"`
	APR        float64  `json:"apr,omitempty"`
	Benefits   []string `json:"benefits,omitempty"`
	Terms      []string `json:"terms,omitempty"`
	Rewards    string   `json:"rewards,omitempty"`
}

// PersonalizedTerms carries the per-user adjustments on an offer preview.
type PersonalizedTerms struct {
	ApprovedAmount   float64 `json:"approved_amount,omitempty"`
	ApprovedRate     float64 `json:"approved_rate,omitempty"`
	SpecialPromotion string  `json:"special_promotion,omitempty"`
	CreditLimit      float64 `json:"credit_limit,omitempty"`
}

// OfferPreview is a personalized product proposal for one user.
type OfferPreview struct {
	UserID            string            `json:"user_id"`
	ProductID         string            `json:"product_id"`
	Product           Product           `json:"product"`
	PersonalizedTerms PersonalizedTerms `json:"personalized_terms"`
	Eligibility       string            `json:"eligibility"`
	Confidence        float64           `json:"confidence"`
	NextSteps         []string          `json:"next_steps"`
}

// PaymentAdvisor previews product offers for a user.
type PaymentAdvisor interface {
	OfferPreview(ctx context.Context, userID, productID string) (*OfferPreview, error)
}

// MockPayments serves previews from a fixed product catalog.
type MockPayments struct {
	products map[string]Product
}

func NewMockPayments() *MockPayments {
	return &MockPayments{
		products: map[string]Product{
			"premium_checking": {
				ID:         "premium_checking",
				Name:       "Premium Checking Account",
				Type:       "checking",
				MonthlyFee: 15.00,
				Benefits:   []string{"No ATM fees", "Priority customer service", "Mobile check deposit"},
			},
			"auto_loan": {
				ID:    "auto_loan",
				Name:  "Auto Loan",
				Type:  "loan",
				Rate:  4.5,
				Terms: []string{"36 months", "48 months", "60 months"},
			},
			"credit_card": {
				ID:      "credit_card",
				Name:    "Rewards Credit Card",
				Type:    "credit",
				APR:     18.9,
				Rewards: "2% cash back on groceries, 1% on everything else",
			},
		},
	}
}

// AvailableProducts lists catalog ids in stable order.
func (m *MockPayments) AvailableProducts() []string {
	ids := make([]string, 0, len(m.products))
	for id := range m.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *MockPayments) OfferPreview(_ context.Context, userID, productID string) (*OfferPreview, error) {
	product, ok := m.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %s not found (available: %v)", productID, m.AvailableProducts())
	}

	preview := &OfferPreview{
		UserID:      userID,
		ProductID:   productID,
		Product:     product,
		Eligibility: "pre_approved",
		Confidence:  0.92,
		NextSteps: []string{
			"Complete online application",
			"Provide income verification",
			"Schedule appointment for final approval",
		},
	}
	switch product.Type {
	case "loan":
		preview.PersonalizedTerms.ApprovedAmount = 45000
		preview.PersonalizedTerms.ApprovedRate = 4.2
	case "checking":
		preview.PersonalizedTerms.SpecialPromotion = "No fees for first 6 months"
	case "credit":
		preview.PersonalizedTerms.CreditLimit = 7500
	}
	return preview, nil
}
