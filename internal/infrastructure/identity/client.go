// Package identity is the HTTP client of the deanonymization service. It
// maps pseudonymous identifiers back to real ones and vice versa. Results
// are never cached: a stale identity leaking into an export is worse than
// a redundant round trip.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/notifid/logextractor/internal/domain/errors"
	"github.com/notifid/logextractor/internal/domain/extraction"
)

// Config carries the four lookup endpoints. Person (uid) and organization
// (cx_id) resolution are configured independently even when they point at
// the same upstream.
type Config struct {
	EnsureRecipientURL string
	TaxIDLookupURL     string
	OrgLookupURL       string
	EncodedIpaURL      string
	Timeout            time.Duration
}

// Client talks to the identity service.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *slog.Logger
}

// NewClient creates an identity service client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "identity")),
	}
}

type ensureRecipientRequest struct {
	TaxID string `json:"taxId"`
}

type ensureRecipientResponse struct {
	InternalID string `json:"internalId"`
}

type denominationEntry struct {
	InternalID   string `json:"internalId"`
	TaxID        string `json:"taxId"`
	Denomination string `json:"denomination"`
}

// PersonID resolves a recipient type and tax id to the pseudonymous
// internal identifier used in logs.
func (c *Client) PersonID(ctx context.Context, recipientType extraction.RecipientType, taxID string) (string, error) {
	body, err := json.Marshal(ensureRecipientRequest{TaxID: taxID})
	if err != nil {
		return "", errors.Wrap(err, "marshaling ensure-recipient request")
	}

	reqURL := fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.EnsureRecipientURL, "/"), recipientType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "creating ensure-recipient request")
	}
	req.Header.Set("Content-Type", "application/json")

	var parsed ensureRecipientResponse
	if err := c.do(req, "person id", taxID, &parsed); err != nil {
		return "", err
	}
	if parsed.InternalID == "" {
		return "", errors.NewIdentityNotFoundError("person", taxID)
	}
	return parsed.InternalID, nil
}

// TaxID resolves a pseudonymous person identifier (uid) back to the tax id.
func (c *Client) TaxID(ctx context.Context, personID string) (string, error) {
	entry, err := c.lookupDenomination(ctx, c.cfg.TaxIDLookupURL, "tax id", personID)
	if err != nil {
		return "", err
	}
	if entry.TaxID == "" {
		return "", errors.NewIdentityNotFoundError("tax id", personID)
	}
	return entry.TaxID, nil
}

// OrganizationName resolves a pseudonymous organization identifier (cx_id)
// to the organization denomination.
func (c *Client) OrganizationName(ctx context.Context, orgID string) (string, error) {
	entry, err := c.lookupDenomination(ctx, c.cfg.OrgLookupURL, "organization", orgID)
	if err != nil {
		return "", err
	}
	if entry.Denomination == "" {
		return "", errors.NewIdentityNotFoundError("organization", orgID)
	}
	return entry.Denomination, nil
}

// EncodedOrganizationID resolves a public authority IPA code to the encoded
// sender id used by the notification search API.
func (c *Client) EncodedOrganizationID(ctx context.Context, ipaCode string) (string, error) {
	reqURL := fmt.Sprintf("%s?ipaCode=%s", strings.TrimRight(c.cfg.EncodedIpaURL, "/"), url.QueryEscape(ipaCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", errors.Wrap(err, "creating encoded-ipa request")
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := c.do(req, "encoded organization id", ipaCode, &parsed); err != nil {
		return "", err
	}
	if parsed.ID == "" {
		return "", errors.NewIdentityNotFoundError("encoded organization id", ipaCode)
	}
	return parsed.ID, nil
}

func (c *Client) lookupDenomination(ctx context.Context, baseURL, kind, internalID string) (*denominationEntry, error) {
	reqURL := fmt.Sprintf("%s?internalId=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(internalID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "creating denomination request")
	}

	var entries []denominationEntry
	if err := c.do(req, kind, internalID, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.NewIdentityNotFoundError(kind, internalID)
	}
	return &entries[0], nil
}

// do executes the request and decodes the response. A 404 becomes an
// IdentityNotFoundError naming the looked-up identifier; transport
// failures and 5xx become IdentityServiceError. No mapping failure is
// ever silently defaulted.
func (c *Client) do(req *http.Request, kind, id string, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewIdentityServiceError("identity service request failed").WithCause(err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(req.Context(), "identity lookup",
		slog.String("kind", kind),
		slog.Int("status", resp.StatusCode),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.NewIdentityNotFoundError(kind, id)
	case resp.StatusCode != http.StatusOK:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.NewIdentityServiceError(
			fmt.Sprintf("identity service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewIdentityServiceError("malformed identity service response").WithCause(err)
	}
	return nil
}
