package domain

import "time"

// Company is a tracked UK company with its statutory filing deadlines.
// Due dates are calendar-date strings ("YYYY-MM-DD"); empty means unknown.
// Не зависит от Gin, Postgres, Redis.
type Company struct {
	ID                           int64
	UserID                       int64
	CompanyName                  string
	CompanyNumber                string
	Status                       string
	AccountsNextDue              string
	ConfirmationStatementNextDue string

	CreatedAt time.Time
}
