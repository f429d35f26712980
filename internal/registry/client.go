package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrMissingKey means no API key is configured. Checked before any outbound call.
	ErrMissingKey = errors.New("companies house api key is not configured")
	// ErrNotFound means the registry has no company under the given number.
	ErrNotFound = errors.New("company not found")
)

// StatusError is returned for upstream responses other than 200 and 404.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("companies house returned status %d", e.Code)
}

// Profile holds the fields we track for a company.
type Profile struct {
	CompanyName                  string `json:"companyName"`
	CompanyNumber                string `json:"companyNumber"`
	Status                       string `json:"status"`
	AccountsNextDue              string `json:"accountsNextDue"`
	ConfirmationStatementNextDue string `json:"confirmationStatementNextDue"`
}

// Client wraps the Companies House public data API.
// Auth is HTTP Basic with the API key as username and an empty password.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a new client. An empty apiKey is allowed; lookups
// will fail with ErrMissingKey without going to the network.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Lookup fetches the tracked fields for a company number.
func (c *Client) Lookup(ctx context.Context, number string) (Profile, error) {
	p, _, err := c.fetch(ctx, number)
	return p, err
}

// LookupFull fetches the tracked fields plus the raw upstream payload
// verbatim, for display-only use in the details view.
func (c *Client) LookupFull(ctx context.Context, number string) (Profile, map[string]any, error) {
	return c.fetch(ctx, number)
}

func (c *Client) fetch(ctx context.Context, number string) (Profile, map[string]any, error) {
	if c.apiKey == "" {
		return Profile{}, nil, ErrMissingKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/company/%s", c.baseURL, number), nil)
	if err != nil {
		return Profile{}, nil, err
	}
	req.SetBasicAuth(c.apiKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Profile{}, nil, fmt.Errorf("companies house request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return Profile{}, nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Profile{}, nil, &StatusError{Code: resp.StatusCode}
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Profile{}, nil, fmt.Errorf("companies house decode: %w", err)
	}

	return mapProfile(raw), raw, nil
}

func mapProfile(raw map[string]any) Profile {
	return Profile{
		CompanyName:                  str(raw["company_name"]),
		CompanyNumber:                str(raw["company_number"]),
		Status:                       str(raw["company_status"]),
		AccountsNextDue:              nextDue(raw["accounts"]),
		ConfirmationStatementNextDue: nextDue(raw["confirmation_statement"]),
	}
}

// nextDue prefers next_made_up_to over next_due, empty string if neither.
func nextDue(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	if s := str(m["next_made_up_to"]); s != "" {
		return s
	}
	return str(m["next_due"])
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
