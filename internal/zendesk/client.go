// Package zendesk is a minimal client for the Zendesk Tickets REST API.
package zendesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Config holds what is needed to reach one Zendesk account.
type Config struct {
	// BaseURL is the account root, e.g. "https://acme.zendesk.com".
	BaseURL string

	// Email and APIToken form the Basic credentials "{Email}/token:{APIToken}".
	Email    string
	APIToken string

	// HTTPClient is used for all requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Client issues authenticated requests to the Zendesk API.
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		email:      cfg.Email,
		apiToken:   cfg.APIToken,
		httpClient: httpClient,
	}
}

// UpdateTicket sends PUT /api/v2/tickets/{ticketID}.json with update as the
// JSON body. A non-2xx response is returned as *APIError; any other error
// means the request never completed.
func (c *Client) UpdateTicket(ctx context.Context, ticketID string, update TicketUpdate) error {
	encoded, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("zendesk: encoding request body: %w", err)
	}

	url := c.baseURL + "/api/v2/tickets/" + escapeComponent(ticketID) + ".json"
	request, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("zendesk: creating request: %w", err)
	}
	request.SetBasicAuth(c.email+"/token", c.apiToken)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("zendesk: PUT %s: %w", url, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		apiError := &APIError{StatusCode: response.StatusCode}
		// A failed read still reports the status, with an empty body.
		if body, err := io.ReadAll(response.Body); err == nil {
			apiError.Body = string(body)
		}
		return apiError
	}

	_, _ = io.Copy(io.Discard, response.Body)
	return nil
}

// escapeComponent percent-encodes s for use as a single path segment,
// leaving only A-Z a-z 0-9 and -_.!~*'() unescaped.
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
