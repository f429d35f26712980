package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"

	"github.com/Shuvo-2525/duedateuk/internal/cache"
	"github.com/Shuvo-2525/duedateuk/internal/deadline"
	dom "github.com/Shuvo-2525/duedateuk/internal/domain"
	"github.com/Shuvo-2525/duedateuk/internal/repo"
	"github.com/Shuvo-2525/duedateuk/internal/utils"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicateCompany = errors.New("company is already tracked")
	ErrCompanyRequired  = errors.New("company name and number are required")
	ErrInvalidDueDate   = errors.New("due date must be YYYY-MM-DD")
	ErrPermissionDenied = errors.New("permission denied")
)

// SetupError means the store needs a composite index before the list query
// can be served. Recoverable: the user follows Link and retries.
type SetupError struct {
	Link string
}

func (e *SetupError) Error() string {
	return "store requires a composite index before this query can run"
}

// ChangeNotifier is told whenever a user's company set changes.
type ChangeNotifier interface {
	CompaniesChanged(ctx context.Context, userID int64)
}

type CompanyService struct {
	repo     repo.CompanyRepo
	cache    *cache.CompanyCache
	notifier ChangeNotifier
	sf       singleflight.Group
}

// NewCompanyService creates a CompanyService. cache and notifier may be nil.
func NewCompanyService(r repo.CompanyRepo, c *cache.CompanyCache, n ChangeNotifier) *CompanyService {
	return &CompanyService{repo: r, cache: c, notifier: n}
}

// Create tracks a new company for the user. The duplicate probe and the
// insert are two calls; a concurrent double-submit can still slip through,
// which is accepted.
func (s *CompanyService) Create(ctx context.Context, userID int64, c dom.Company) (dom.Company, error) {
	c.UserID = userID
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	c.CompanyNumber = strings.TrimSpace(c.CompanyNumber)
	if c.CompanyName == "" || c.CompanyNumber == "" {
		return dom.Company{}, ErrCompanyRequired
	}
	if c.Status == "" {
		c.Status = "active"
	}
	for _, d := range []string{c.AccountsNextDue, c.ConfirmationStatementNextDue} {
		if d == "" {
			continue
		}
		if _, ok := deadline.ParseLocalDate(d); !ok {
			return dom.Company{}, ErrInvalidDueDate
		}
	}

	_, err := s.repo.FindByNumber(ctx, userID, c.CompanyNumber)
	if err == nil {
		return dom.Company{}, ErrDuplicateCompany
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return dom.Company{}, fmt.Errorf("duplicate check: %w", err)
	}

	out, err := s.repo.Create(ctx, c)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.Company{}, ErrDuplicateCompany
		}
		if utils.IsPGPermissionDenied(err) {
			return dom.Company{}, ErrPermissionDenied
		}
		return dom.Company{}, err
	}
	s.changed(ctx, userID)
	return out, nil
}

// List returns the user's companies, newest first.
func (s *CompanyService) List(ctx context.Context, userID int64) ([]dom.Company, error) {
	if s.cache != nil {
		key := "list:" + strconv.FormatInt(userID, 10)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, userID); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx, userID)
			if err != nil {
				return nil, translateListErr(err)
			}
			_ = s.cache.SetList(ctx, userID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Company), nil
	}
	list, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, translateListErr(err)
	}
	return list, nil
}

// Delete removes a company owned by the user.
func (s *CompanyService) Delete(ctx context.Context, userID, id int64) error {
	ok, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		if utils.IsPGPermissionDenied(err) {
			return ErrPermissionDenied
		}
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.changed(ctx, userID)
	return nil
}

func (s *CompanyService) changed(ctx context.Context, userID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
	if s.notifier != nil {
		s.notifier.CompaniesChanged(ctx, userID)
	}
}

// translateListErr maps the store's "requires an index" condition to a
// SetupError carrying the remediation link.
func translateListErr(err error) error {
	if link, ok := utils.IndexHint(err); ok {
		return &SetupError{Link: link}
	}
	return err
}
