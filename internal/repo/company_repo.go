package repo

import (
	"context"

	dom "github.com/Shuvo-2525/duedateuk/internal/domain"
)

// CompanyRepo provides persistence for tracked companies.
// All queries are scoped to the owning user.
type CompanyRepo interface {
	Create(ctx context.Context, c dom.Company) (dom.Company, error)
	List(ctx context.Context, userID int64) ([]dom.Company, error)
	FindByNumber(ctx context.Context, userID int64, number string) (dom.Company, error)
	Delete(ctx context.Context, userID, id int64) (bool, error)
}

// PGCompanyRepo implements CompanyRepo with Postgres.
type PGCompanyRepo struct {
	db DB
}

// NewPGCompanyRepo returns a new PGCompanyRepo.
func NewPGCompanyRepo(db DB) *PGCompanyRepo {
	return &PGCompanyRepo{db: db}
}

func (r *PGCompanyRepo) Create(ctx context.Context, c dom.Company) (dom.Company, error) {
	query := `
		INSERT INTO companies (user_id, company_name, company_number, status, accounts_next_due, confirmation_statement_next_due)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, company_name, company_number, status, accounts_next_due, confirmation_statement_next_due, created_at`
	var out dom.Company
	err := r.db.QueryRow(ctx, query,
		c.UserID, c.CompanyName, c.CompanyNumber, c.Status, c.AccountsNextDue, c.ConfirmationStatementNextDue,
	).Scan(
		&out.ID, &out.UserID, &out.CompanyName, &out.CompanyNumber, &out.Status,
		&out.AccountsNextDue, &out.ConfirmationStatementNextDue, &out.CreatedAt,
	)
	return out, err
}

func (r *PGCompanyRepo) List(ctx context.Context, userID int64) ([]dom.Company, error) {
	query := `
		SELECT id, user_id, company_name, company_number, status, accounts_next_due, confirmation_statement_next_due, created_at
		FROM companies WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Company
	for rows.Next() {
		var c dom.Company
		if err := rows.Scan(&c.ID, &c.UserID, &c.CompanyName, &c.CompanyNumber, &c.Status,
			&c.AccountsNextDue, &c.ConfirmationStatementNextDue, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *PGCompanyRepo) FindByNumber(ctx context.Context, userID int64, number string) (dom.Company, error) {
	query := `
		SELECT id, user_id, company_name, company_number, status, accounts_next_due, confirmation_statement_next_due, created_at
		FROM companies WHERE user_id = $1 AND company_number = $2 LIMIT 1`
	var c dom.Company
	err := r.db.QueryRow(ctx, query, userID, number).Scan(
		&c.ID, &c.UserID, &c.CompanyName, &c.CompanyNumber, &c.Status,
		&c.AccountsNextDue, &c.ConfirmationStatementNextDue, &c.CreatedAt,
	)
	return c, err
}

// Delete removes a company owned by userID. Returns false if nothing matched.
func (r *PGCompanyRepo) Delete(ctx context.Context, userID, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM companies WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
