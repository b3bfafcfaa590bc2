package transactions

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Transaction is one ledger entry. Debits carry negative amounts.
type Transaction struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Date           time.Time `json:"date"`
	Description    string    `json:"description"`
	Amount         float64   `json:"amount"`
	Category       string    `json:"category"`
	Merchant       string    `json:"merchant"`
	Method         string    `json:"method"`
	Currency       string    `json:"currency"`
	RunningBalance float64   `json:"running_balance"`
}

type categoryProfile struct {
	merchants []string
	minAmount float64
	maxAmount float64
	frequency int
	credit    bool
}

var categoryProfiles = map[string]categoryProfile{
	"Groceries":     {[]string{"Metro", "Loblaws", "Sobeys", "FreshCo", "Farm Boy"}, 25, 150, 8, false},
	"Gas":           {[]string{"Petro-Canada", "Shell", "Esso", "Ultramar", "Canadian Tire Gas"}, 45, 85, 4, false},
	"Restaurants":   {[]string{"Tim Hortons", "McDonald's", "Subway", "Pizza Pizza", "Local Bistro"}, 8, 65, 6, false},
	"Coffee":        {[]string{"Tim Hortons", "Starbucks", "Second Cup", "Country Style"}, 3, 12, 15, false},
	"Utilities":     {[]string{"Hydro One", "Enbridge Gas", "Bell Canada", "Rogers"}, 75, 200, 1, false},
	"Income":        {[]string{"Payroll Deposit", "Direct Deposit", "Salary"}, 2500, 3500, 2, true},
	"Entertainment": {[]string{"Cineplex", "Netflix", "Spotify", "Steam", "Amazon Prime"}, 10, 45, 3, false},
	"Shopping":      {[]string{"Amazon", "Walmart", "Canadian Tire", "Best Buy", "The Bay"}, 20, 200, 4, false},
	"Healthcare":    {[]string{"Pharmacy", "Dental Clinic", "Medical Clinic", "Physio Clinic"}, 25, 150, 2, false},
	"Transfer":      {[]string{"E-Transfer", "Bill Payment", "Internal Transfer"}, 50, 500, 3, false},
}

var paymentMethods = []string{"card", "debit", "credit", "etransfer", "bill_payment"}

// Generator produces synthetic ledger data for demos and tests. A fixed seed
// makes runs reproducible.
type Generator struct {
	rng     *rand.Rand
	balance float64
}

func NewGenerator(initialBalance float64, seed int64) *Generator {
	return &Generator{
		rng:     rand.New(rand.NewSource(seed)),
		balance: initialBalance,
	}
}

func (g *Generator) pickCategory() string {
	names := make([]string, 0, len(categoryProfiles))
	for name := range categoryProfiles {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0
	for _, name := range names {
		total += categoryProfiles[name].frequency
	}
	pick := g.rng.Intn(total)
	for _, name := range names {
		pick -= categoryProfiles[name].frequency
		if pick < 0 {
			return name
		}
	}
	return names[len(names)-1]
}

func (g *Generator) one(userID string, at time.Time) Transaction {
	category := g.pickCategory()
	profile := categoryProfiles[category]

	amount := profile.minAmount + g.rng.Float64()*(profile.maxAmount-profile.minAmount)
	amount = float64(int(amount*100)) / 100
	if !profile.credit {
		amount = -amount
	}

	merchant := profile.merchants[g.rng.Intn(len(profile.merchants))]
	description := merchant
	if category != "Income" {
		description = merchant + " - " + category
	}

	g.balance += amount
	return Transaction{
		ID:             uuid.NewString(),
		UserID:         userID,
		Date:           at,
		Description:    description,
		Amount:         amount,
		Category:       category,
		Merchant:       merchant,
		Method:         paymentMethods[g.rng.Intn(len(paymentMethods))],
		Currency:       "CAD",
		RunningBalance: float64(int(g.balance*100)) / 100,
	}
}

// Generate produces transactions for the given user starting at start,
// spanning the given number of 30-day months, oldest first.
func (g *Generator) Generate(userID string, start time.Time, months int) []Transaction {
	var all []Transaction
	day := start
	end := start.AddDate(0, 0, 30*months)

	for day.Before(end) {
		count := g.dailyCount()
		for i := 0; i < count; i++ {
			at := day.Add(time.Duration(6+g.rng.Intn(17)) * time.Hour).
				Add(time.Duration(g.rng.Intn(60)) * time.Minute)
			all = append(all, g.one(userID, at))
		}
		day = day.AddDate(0, 0, 1)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	return all
}

// dailyCount picks 0-3 transactions per day, weighted toward 1-2.
func (g *Generator) dailyCount() int {
	switch pick := g.rng.Intn(100); {
	case pick < 20:
		return 0
	case pick < 60:
		return 1
	case pick < 90:
		return 2
	default:
		return 3
	}
}
