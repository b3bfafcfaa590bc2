package onboarding

import "strings"

// Task is one onboarding work item. Completion state lives per employee in
// the tracker, not on the template.
type Task struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	EstimatedTime int      `json:"estimated_time"`
	Priority      string   `json:"priority"`
	Resources     []string `json:"resources"`
	Completed     bool     `json:"completed"`
	CompletedDate string   `json:"completed_date,omitempty"`
}

// Program is a role-specific onboarding track.
type Program struct {
	ID           string `json:"id"`
	Role         string `json:"role"`
	Department   string `json:"department"`
	DurationDays int    `json:"duration_days"`
	Tasks        []Task `json:"tasks"`
}

const (
	ProgramTeller         = "teller-program"
	ProgramPersonalBanker = "personal-banker-program"
	ProgramBusinessBanker = "business-banker-program"
)

var programs = map[string]Program{
	ProgramTeller: {
		ID:           ProgramTeller,
		Role:         "Teller",
		Department:   "Branch Operations",
		DurationDays: 10,
		Tasks: []Task{
			{ID: "teller-systems", Title: "Banking Systems Overview", Description: "Learn core banking systems: customer management, transaction processing, and security protocols", Category: "Systems Training", EstimatedTime: 120, Priority: "high", Resources: []string{"Banking Systems Manual", "Video Tutorial: Core Banking"}},
			{ID: "teller-service", Title: "Customer Service Excellence", Description: "Master customer interaction techniques, complaint handling, and service standards", Category: "Customer Service", EstimatedTime: 90, Priority: "high", Resources: []string{"Customer Service Guide", "Role-play Scenarios"}},
			{ID: "teller-cash", Title: "Cash Handling Procedures", Description: "Learn proper cash handling, balancing procedures, and security protocols", Category: "Operations", EstimatedTime: 150, Priority: "high", Resources: []string{"Cash Handling Manual", "Balancing Worksheets"}},
			{ID: "teller-products", Title: "Product Knowledge: Basic Banking", Description: "Understand checking accounts, savings accounts, and basic banking products", Category: "Product Training", EstimatedTime: 120, Priority: "medium", Resources: []string{"Product Catalog", "Pricing Guidelines"}},
			{ID: "teller-fraud", Title: "Fraud Prevention & Detection", Description: "Identify suspicious activities, fraud indicators, and reporting procedures", Category: "Security", EstimatedTime: 90, Priority: "high", Resources: []string{"Fraud Prevention Guide", "Reporting Procedures"}},
			{ID: "teller-compliance", Title: "Regulatory Compliance Basics", Description: "Understand BSA/AML requirements, privacy laws, and compliance procedures", Category: "Compliance", EstimatedTime: 120, Priority: "high", Resources: []string{"Compliance Manual", "BSA/AML Training"}},
		},
	},
	ProgramPersonalBanker: {
		ID:           ProgramPersonalBanker,
		Role:         "Personal Banker",
		Department:   "Retail Banking",
		DurationDays: 15,
		Tasks: []Task{
			{ID: "pb-systems", Title: "Advanced Banking Systems", Description: "Master CRM systems, loan origination platforms, and analytics tools", Category: "Systems Training", EstimatedTime: 180, Priority: "high", Resources: []string{"CRM User Guide", "Loan Systems Training"}},
			{ID: "pb-relationships", Title: "Relationship Building Strategies", Description: "Develop skills for building long-term customer relationships and trust", Category: "Relationship Management", EstimatedTime: 120, Priority: "high", Resources: []string{"Relationship Building Guide"}},
			{ID: "pb-investments", Title: "Investment Products Overview", Description: "Learn about investment options, risk assessment, and portfolio basics", Category: "Investment Training", EstimatedTime: 240, Priority: "medium", Resources: []string{"Investment Product Guide", "Risk Assessment Tools"}},
			{ID: "pb-lending", Title: "Loan Products & Underwriting", Description: "Understand personal loans, lines of credit, and basic underwriting principles", Category: "Lending", EstimatedTime: 180, Priority: "high", Resources: []string{"Lending Guidelines", "Credit Analysis"}},
			{ID: "pb-sales", Title: "Sales Techniques & Goal Setting", Description: "Master consultative selling, needs assessment, and goal achievement strategies", Category: "Sales Training", EstimatedTime: 150, Priority: "medium", Resources: []string{"Sales Methodology", "Goal Setting Framework"}},
		},
	},
	ProgramBusinessBanker: {
		ID:           ProgramBusinessBanker,
		Role:         "Business Banking Specialist",
		Department:   "Commercial Banking",
		DurationDays: 20,
		Tasks: []Task{
			{ID: "bb-systems", Title: "Business Banking Systems", Description: "Learn commercial banking platforms, cash management systems, and business tools", Category: "Systems Training", EstimatedTime: 240, Priority: "high", Resources: []string{"Commercial Banking Systems"}},
			{ID: "bb-lending", Title: "Commercial Lending Fundamentals", Description: "Understand business loans, lines of credit, equipment financing, and credit analysis", Category: "Commercial Lending", EstimatedTime: 300, Priority: "high", Resources: []string{"Commercial Lending Manual", "Financial Analysis"}},
			{ID: "bb-treasury", Title: "Cash Management Solutions", Description: "Master treasury services, merchant services, and payment processing solutions", Category: "Treasury Services", EstimatedTime: 180, Priority: "medium", Resources: []string{"Treasury Services Guide", "Merchant Services Manual"}},
			{ID: "bb-development", Title: "Business Development Skills", Description: "Learn prospecting techniques, proposal writing, and business relationship management", Category: "Business Development", EstimatedTime: 200, Priority: "medium", Resources: []string{"Business Development Guide", "Proposal Templates"}},
		},
	},
}

// ProgramForRole maps a free-form role name to a program id, defaulting to
// the teller track.
func ProgramForRole(role string) string {
	key := strings.ReplaceAll(strings.ToLower(role), " ", "-")
	switch {
	case strings.Contains(key, "personal") && strings.Contains(key, "banker"):
		return ProgramPersonalBanker
	case strings.Contains(key, "business"):
		return ProgramBusinessBanker
	default:
		return ProgramTeller
	}
}

// ProgramByID returns a deep copy of the program template.
func ProgramByID(id string) (Program, bool) {
	template, ok := programs[id]
	if !ok {
		return Program{}, false
	}
	copied := template
	copied.Tasks = append([]Task(nil), template.Tasks...)
	return copied, true
}
