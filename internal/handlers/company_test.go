package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Shuvo-2525/duedateuk/internal/auth"
	"github.com/Shuvo-2525/duedateuk/internal/deadline"
	dom "github.com/Shuvo-2525/duedateuk/internal/domain"
	"github.com/Shuvo-2525/duedateuk/internal/dto"
	"github.com/Shuvo-2525/duedateuk/internal/service"
	"github.com/Shuvo-2525/duedateuk/internal/watch"
)

type memCompanyRepo struct {
	companies []dom.Company
	nextID    int64
	listErr   error
}

func (m *memCompanyRepo) Create(ctx context.Context, c dom.Company) (dom.Company, error) {
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	m.companies = append(m.companies, c)
	return c, nil
}

func (m *memCompanyRepo) List(ctx context.Context, userID int64) ([]dom.Company, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []dom.Company
	for i := len(m.companies) - 1; i >= 0; i-- {
		if m.companies[i].UserID == userID {
			out = append(out, m.companies[i])
		}
	}
	return out, nil
}

func (m *memCompanyRepo) FindByNumber(ctx context.Context, userID int64, number string) (dom.Company, error) {
	for _, c := range m.companies {
		if c.UserID == userID && c.CompanyNumber == number {
			return c, nil
		}
	}
	return dom.Company{}, pgx.ErrNoRows
}

func (m *memCompanyRepo) Delete(ctx context.Context, userID, id int64) (bool, error) {
	for i, c := range m.companies {
		if c.UserID == userID && c.ID == id {
			m.companies = append(m.companies[:i], m.companies[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type companyEnv struct {
	router *gin.Engine
	cookie *http.Cookie
	repo   *memCompanyRepo
}

func newCompanyEnv(t *testing.T) *companyEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo := &memCompanyRepo{}
	svc := service.NewCompanyService(repo, nil, watch.NewNotifier(rdb))
	hub := watch.NewHub(rdb, svc)
	h := NewCompanyHandler(svc, hub)

	sessions := auth.NewStore(rdb, time.Hour)
	sessionID, err := sessions.Create(context.Background(), 7)
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	r := gin.New()
	api := r.Group("/api/v1", auth.RequireSession(sessions))
	api.POST("/companies", h.Create)
	api.GET("/companies", h.List)
	api.GET("/companies/watch", h.Watch)
	api.DELETE("/companies/:id", h.Delete)

	return &companyEnv{
		router: r,
		cookie: &http.Cookie{Name: "session_id", Value: sessionID},
		repo:   repo,
	}
}

func (e *companyEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(e.cookie)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestCompanyRequiresAuth(t *testing.T) {
	env := newCompanyEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCreateListDelete(t *testing.T) {
	env := newCompanyEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/companies", dto.CreateCompanyRequest{
		CompanyName:                  "OLD COMPANY LTD",
		CompanyNumber:                "00000006",
		AccountsNextDue:              "2025-03-01",
		ConfirmationStatementNextDue: "2025-06-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: got %d body %s", w.Code, w.Body.String())
	}
	var created dto.CompanyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	w = env.do(t, http.MethodGet, "/api/v1/companies", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: got %d", w.Code)
	}
	var list dto.ListCompaniesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(list.Items))
	}
	item := list.Items[0]
	if item.Accounts.Display != "01/03/2025" || item.ConfirmationStatement.Display != "01/06/2025" {
		t.Errorf("display dates: %+v", item)
	}
	wantDays := deadline.DaysRemaining("2025-03-01")
	if item.Accounts.DaysRemaining != wantDays {
		t.Errorf("accounts days: got %d, want %d", item.Accounts.DaysRemaining, wantDays)
	}
	if item.Accounts.Bucket != string(deadline.BucketFor(wantDays)) {
		t.Errorf("accounts bucket: got %s", item.Accounts.Bucket)
	}

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/companies/%d", created.ID), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/v1/companies", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Items) != 0 {
		t.Fatalf("list after delete: %+v", list.Items)
	}

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/companies/%d", created.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: got %d", w.Code)
	}
}

func TestCreateDuplicateConflict(t *testing.T) {
	env := newCompanyEnv(t)

	body := dto.CreateCompanyRequest{CompanyName: "TECH SOLUTIONS LTD", CompanyNumber: "08445345"}
	if w := env.do(t, http.MethodPost, "/api/v1/companies", body); w.Code != http.StatusCreated {
		t.Fatalf("first create: got %d", w.Code)
	}
	w := env.do(t, http.MethodPost, "/api/v1/companies", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("second create: got %d body %s", w.Code, w.Body.String())
	}
	if len(env.repo.companies) != 1 {
		t.Fatalf("expected one stored record, got %d", len(env.repo.companies))
	}
}

func TestCreateBadDueDate(t *testing.T) {
	env := newCompanyEnv(t)
	w := env.do(t, http.MethodPost, "/api/v1/companies", dto.CreateCompanyRequest{
		CompanyName:   "X LTD",
		CompanyNumber: "1",
		// DD/MM/YYYY is display-only; the API takes ISO dates.
		AccountsNextDue: "01/03/2025",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d body %s", w.Code, w.Body.String())
	}
}

func TestListSetupCondition(t *testing.T) {
	env := newCompanyEnv(t)
	env.repo.listErr = errors.New("The query requires an index. You can create it here: https://console.example.com/project/duedate/indexes?create=x")

	w := env.do(t, http.MethodGet, "/api/v1/companies", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d body %s", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["indexUrl"] != "https://console.example.com/project/duedate/indexes?create=x" {
		t.Errorf("indexUrl: got %q", body["indexUrl"])
	}
}

func TestWatchStreamsSnapshots(t *testing.T) {
	env := newCompanyEnv(t)
	env.repo.companies = []dom.Company{
		{ID: 1, UserID: 7, CompanyName: "X LTD", CompanyNumber: "08445345", CreatedAt: time.Now()},
	}

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies/watch", nil).WithContext(ctx)
	req.AddCookie(env.cookie)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		env.router.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(300 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("watch handler did not stop after disconnect")
	}

	body := w.Body.String()
	if !strings.HasPrefix(body, "data: ") {
		t.Fatalf("not an SSE stream: %q", body)
	}
	if !strings.Contains(body, `"08445345"`) {
		t.Errorf("initial snapshot missing: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type: %q", ct)
	}
}
