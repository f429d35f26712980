package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Shuvo-2525/duedateuk/internal/auth"
	"github.com/Shuvo-2525/duedateuk/internal/deadline"
	dom "github.com/Shuvo-2525/duedateuk/internal/domain"
	"github.com/Shuvo-2525/duedateuk/internal/dto"
	"github.com/Shuvo-2525/duedateuk/internal/service"
	"github.com/Shuvo-2525/duedateuk/internal/watch"
)

type CompanyHandler struct {
	svc *service.CompanyService
	hub *watch.Hub
}

func NewCompanyHandler(svc *service.CompanyService, hub *watch.Hub) *CompanyHandler {
	return &CompanyHandler{svc: svc, hub: hub}
}

// Create godoc
// @Summary      Track a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateCompanyRequest  true  "Company"
// @Success      201   {object}  dto.CompanyResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), dom.Company{
		CompanyName:                  req.CompanyName,
		CompanyNumber:                req.CompanyNumber,
		Status:                       req.Status,
		AccountsNextDue:              req.AccountsNextDue,
		ConfirmationStatementNextDue: req.ConfirmationStatementNextDue,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateCompany):
			c.JSON(http.StatusConflict, gin.H{"error": "company is already tracked"})
		case errors.Is(err, service.ErrCompanyRequired), errors.Is(err, service.ErrInvalidDueDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrPermissionDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save company"})
		}
		return
	}
	c.JSON(http.StatusCreated, companyToResponse(out))
}

// List godoc
// @Summary      List tracked companies with computed urgency
// @Tags         companies
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListCompaniesResponse
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		writeListErr(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListCompaniesResponse{Items: companiesToResponses(list)})
}

// Delete godoc
// @Summary      Stop tracking a company
// @Tags         companies
// @Security     CookieAuth
// @Param        id   path  int  true  "Company ID"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /companies/{id} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	err := h.svc.Delete(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, service.ErrPermissionDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// Watch godoc
// @Summary      Live company list (server-sent events)
// @Description  Streams the full list on connect and after every change. Disconnect to unsubscribe.
// @Tags         companies
// @Produce      text/event-stream
// @Security     CookieAuth
// @Success      200
// @Router       /companies/watch [get]
func (h *CompanyHandler) Watch(c *gin.Context) {
	userID := auth.UserIDFromContext(c)
	ctx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	for snap := range h.hub.Watch(ctx, userID) {
		var payload []byte
		if snap.Err != nil {
			payload, _ = json.Marshal(listErrBody(snap.Err))
		} else {
			payload, _ = json.Marshal(dto.ListCompaniesResponse{Items: companiesToResponses(snap.Companies)})
		}
		if _, err := c.Writer.Write(append(append([]byte("data: "), payload...), '\n', '\n')); err != nil {
			return
		}
		c.Writer.Flush()
	}
}

func writeListErr(c *gin.Context, err error) {
	var se *service.SetupError
	if errors.As(err, &se) {
		c.JSON(http.StatusServiceUnavailable, listErrBody(err))
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// listErrBody renders a list failure. The missing-index condition is a
// setup instruction with a link, not an application failure.
func listErrBody(err error) gin.H {
	var se *service.SetupError
	if errors.As(err, &se) {
		body := gin.H{"error": "database setup required: the list query needs a composite index"}
		if se.Link != "" {
			body["indexUrl"] = se.Link
		}
		return body
	}
	return gin.H{"error": err.Error()}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func companyToResponse(co dom.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:                    co.ID,
		CompanyName:           co.CompanyName,
		CompanyNumber:         co.CompanyNumber,
		Status:                co.Status,
		Accounts:              deadlineView(co.AccountsNextDue),
		ConfirmationStatement: deadlineView(co.ConfirmationStatementNextDue),
		CreatedAt:             co.CreatedAt,
	}
}

func companiesToResponses(list []dom.Company) []dto.CompanyResponse {
	out := make([]dto.CompanyResponse, len(list))
	for i := range list {
		out[i] = companyToResponse(list[i])
	}
	return out
}

func deadlineView(date string) dto.DeadlineView {
	days := deadline.DaysRemaining(date)
	return dto.DeadlineView{
		Date:          date,
		Display:       deadline.FormatDisplay(date),
		DaysRemaining: days,
		Bucket:        string(deadline.BucketFor(days)),
	}
}
