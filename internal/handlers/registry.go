package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shuvo-2525/duedateuk/internal/registry"
)

// RegistryHandler proxies Companies House lookups.
type RegistryHandler struct {
	client *registry.Client
}

func NewRegistryHandler(client *registry.Client) *RegistryHandler {
	return &RegistryHandler{client: client}
}

// Lookup godoc
// @Summary      Look a company up in Companies House
// @Description  Returns the tracked fields plus the full upstream payload for the details view.
// @Tags         registry
// @Produce      json
// @Param        number  path  string  true  "Company number"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/company/{number} [get]
func (h *RegistryHandler) Lookup(c *gin.Context) {
	number := c.Param("number")

	profile, raw, err := h.client.LookupFull(c.Request.Context(), number)
	if err != nil {
		var se *registry.StatusError
		switch {
		case errors.Is(err, registry.ErrMissingKey):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error: Missing API Key"})
		case errors.Is(err, registry.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		case errors.As(err, &se):
			c.JSON(se.Code, gin.H{"error": "Failed to fetch data from Companies House"})
		default:
			log.Printf("registry lookup %s: %v", number, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
		return
	}

	// Raw payload first, mapped fields merged over it.
	body := make(gin.H, len(raw)+5)
	for k, v := range raw {
		body[k] = v
	}
	body["companyName"] = profile.CompanyName
	body["companyNumber"] = profile.CompanyNumber
	body["status"] = profile.Status
	body["accountsNextDue"] = profile.AccountsNextDue
	body["confirmationStatementNextDue"] = profile.ConfirmationStatementNextDue
	c.JSON(http.StatusOK, body)
}
