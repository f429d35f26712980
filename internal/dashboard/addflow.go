package dashboard

import (
	"context"
	"errors"
	"strings"

	dom "github.com/Shuvo-2525/duedateuk/internal/domain"
	"github.com/Shuvo-2525/duedateuk/internal/registry"
	"github.com/Shuvo-2525/duedateuk/internal/service"
)

// AddState is the add-company dialog state.
type AddState string

const (
	StateIdle           AddState = "idle"
	StateSearching      AddState = "searching"
	StateFound          AddState = "found"
	StateSearchError    AddState = "search-error"
	StateSubmitting     AddState = "submitting"
	StateSaved          AddState = "saved"
	StateDuplicateError AddState = "duplicate-error"
	StateSaveError      AddState = "save-error"
)

var ErrNumberRequired = errors.New("company number is required")

// Form holds the editable dialog fields.
type Form struct {
	CompanyName                  string
	CompanyNumber                string
	Status                       string
	AccountsNextDue              string
	ConfirmationStatementNextDue string
}

// Searcher looks a company up in the registry.
type Searcher interface {
	Lookup(ctx context.Context, number string) (registry.Profile, error)
}

// Creator persists a new tracked company.
type Creator interface {
	Create(ctx context.Context, userID int64, c dom.Company) (dom.Company, error)
}

// AddFlow drives the add-company dialog:
// idle -> searching -> (found | search-error) -> submitting -> (saved | duplicate-error | save-error).
// Every error state keeps the form editable for another attempt.
type AddFlow struct {
	search Searcher
	create Creator

	state   AddState
	form    Form
	lastErr error
}

// NewAddFlow returns a flow in the idle state.
func NewAddFlow(search Searcher, create Creator) *AddFlow {
	return &AddFlow{search: search, create: create, state: StateIdle}
}

func (f *AddFlow) State() AddState { return f.state }
func (f *AddFlow) Form() Form      { return f.form }
func (f *AddFlow) Err() error      { return f.lastErr }

// SetForm applies manual edits. Allowed in any state before saving.
func (f *AddFlow) SetForm(form Form) {
	f.form = form
}

// Search looks the number up and, on success, fills the form with the
// registry's name, due dates and canonical company number.
func (f *AddFlow) Search(ctx context.Context, number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		f.lastErr = ErrNumberRequired
		return ErrNumberRequired
	}
	f.state = StateSearching
	p, err := f.search.Lookup(ctx, number)
	if err != nil {
		f.state = StateSearchError
		f.lastErr = err
		return err
	}
	f.form = Form{
		CompanyName:                  p.CompanyName,
		CompanyNumber:                p.CompanyNumber,
		Status:                       p.Status,
		AccountsNextDue:              p.AccountsNextDue,
		ConfirmationStatementNextDue: p.ConfirmationStatementNextDue,
	}
	f.state = StateFound
	f.lastErr = nil
	return nil
}

// Submit writes the form for the user. The duplicate probe happens inside
// the create call; a hit lands in duplicate-error without writing.
func (f *AddFlow) Submit(ctx context.Context, userID int64) (dom.Company, error) {
	f.state = StateSubmitting
	out, err := f.create.Create(ctx, userID, dom.Company{
		CompanyName:                  f.form.CompanyName,
		CompanyNumber:                f.form.CompanyNumber,
		Status:                       f.form.Status,
		AccountsNextDue:              f.form.AccountsNextDue,
		ConfirmationStatementNextDue: f.form.ConfirmationStatementNextDue,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateCompany) {
			f.state = StateDuplicateError
		} else {
			f.state = StateSaveError
		}
		f.lastErr = err
		return dom.Company{}, err
	}
	f.state = StateSaved
	f.form = Form{}
	f.lastErr = nil
	return out, nil
}
