package dto

import "time"

// CreateCompanyRequest is the JSON body for POST /companies.
// Due dates are "YYYY-MM-DD" or empty.
type CreateCompanyRequest struct {
	CompanyName                  string `json:"companyName" binding:"required,min=1,max=200"`
	CompanyNumber                string `json:"companyNumber" binding:"required,min=1,max=20"`
	Status                       string `json:"status" binding:"max=50"`
	AccountsNextDue              string `json:"accountsNextDue" binding:"max=10"`
	ConfirmationStatementNextDue string `json:"confirmationStatementNextDue" binding:"max=10"`
}

// DeadlineView is one filing deadline with its computed urgency.
type DeadlineView struct {
	Date          string `json:"date"`    // YYYY-MM-DD or ""
	Display       string `json:"display"` // DD/MM/YYYY or "N/A"
	DaysRemaining int    `json:"daysRemaining"`
	Bucket        string `json:"bucket"` // critical | warning | safe
}

type CompanyResponse struct {
	ID                    int64        `json:"id"`
	CompanyName           string       `json:"companyName"`
	CompanyNumber         string       `json:"companyNumber"`
	Status                string       `json:"status"`
	Accounts              DeadlineView `json:"accounts"`
	ConfirmationStatement DeadlineView `json:"confirmationStatement"`
	CreatedAt             time.Time    `json:"createdAt"`
}

type ListCompaniesResponse struct {
	Items []CompanyResponse `json:"items"`
}
