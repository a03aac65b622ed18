// Package identity is the client for the national/tax registry proxy. The
// proxy is an unreliable third party: lookups are single-shot with no retry,
// and failures surface to the caller as errors.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Person is the legal-name record returned for a national ID number.
type Person struct {
	FirstNames      string `json:"firstNames"`
	PaternalSurname string `json:"paternalSurname"`
	MaternalSurname string `json:"maternalSurname"`
}

// FullName joins the name components in legal order.
func (p Person) FullName() string {
	return fmt.Sprintf("%s %s %s", p.FirstNames, p.PaternalSurname, p.MaternalSurname)
}

// TaxRecord is the registry record returned for a tax ID number.
type TaxRecord struct {
	LegalName string `json:"legalName"`
	Address   string `json:"address"`
	IsActive  bool   `json:"isActive"`
}

// Client calls the registry proxy over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a registry client. timeout bounds each lookup.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LookupNationalID resolves a national ID number to legal name components.
func (c *Client) LookupNationalID(ctx context.Context, number string) (*Person, error) {
	var person Person
	if err := c.get(ctx, "/v1/national-id", number, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

// LookupTaxID resolves a tax ID number to its registry record.
func (c *Client) LookupTaxID(ctx context.Context, number string) (*TaxRecord, error) {
	var record TaxRecord
	if err := c.get(ctx, "/v1/tax-id", number, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Client) get(ctx context.Context, path, number string, dest any) error {
	u := fmt.Sprintf("%s%s?number=%s", c.baseURL, path, url.QueryEscape(number))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build registry request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry lookup: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode registry response: %w", err)
	}
	return nil
}
