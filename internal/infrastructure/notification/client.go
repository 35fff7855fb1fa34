// Package notification is the HTTP client of the notification platform:
// notification details, paged sent-notification search, download metadata
// for legal facts, documents and payment attachments, and raw file bytes.
package notification

import (
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

// senderIDHeader carries the encoded organization id on search requests.
const senderIDHeader = "x-pagopa-pn-cx-id"

// Config carries the notification API settings.
type Config struct {
	BaseURL        string
	SearchPageSize int
	Timeout        time.Duration
}

// Client talks to the notification platform API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	pageSize   int
	logger     *slog.Logger
}

// NewClient creates a notification API client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	pageSize := cfg.SearchPageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		pageSize:   pageSize,
		logger:     logger.With(slog.String("component", "notification")),
	}
}

// GetNotification fetches the detail view of a sent notification.
func (c *Client) GetNotification(ctx context.Context, iun string) (*Notification, error) {
	reqURL := fmt.Sprintf("%s/delivery/notifications/sent/%s", c.baseURL, url.PathEscape(iun))

	var parsed Notification
	if err := c.getJSON(ctx, reqURL, nil, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// SearchSent returns every notification the sender sent inside the window,
// following nextPagesKey continuations until the result set is complete.
func (c *Client) SearchSent(ctx context.Context, senderID, startDate, endDate string) ([]Summary, error) {
	var (
		results  []Summary
		pageKeys []string
		page     int
	)

	for {
		params := url.Values{}
		params.Set("startDate", startDate)
		params.Set("endDate", endDate)
		params.Set("size", fmt.Sprintf("%d", c.pageSize))
		if page > 0 {
			if page-1 >= len(pageKeys) {
				break
			}
			params.Set("nextPagesKey", pageKeys[page-1])
		}

		reqURL := fmt.Sprintf("%s/delivery/notifications/sent?%s", c.baseURL, params.Encode())

		var parsed searchResponse
		if err := c.getJSON(ctx, reqURL, map[string]string{senderIDHeader: senderID}, &parsed); err != nil {
			return nil, err
		}

		results = append(results, parsed.ResultsPage...)
		pageKeys = parsed.NextPagesKey
		if !parsed.MoreResult {
			break
		}
		page++
	}

	return results, nil
}

// LegalFactMetadata asks for the download descriptor of a legal fact,
// identified by its category (e.g. SENDER_ACK) and key.
func (c *Client) LegalFactMetadata(ctx context.Context, iun, factCategory, factKey string) (extraction.DownloadDescriptor, error) {
	reqURL := fmt.Sprintf("%s/delivery-push/%s/legal-facts/%s/%s",
		c.baseURL, url.PathEscape(iun), url.PathEscape(factCategory), url.PathEscape(factKey))
	return c.getMetadata(ctx, reqURL, factKey, extraction.CategoryLegalFact)
}

// DocumentMetadata asks for the download descriptor of an attached document.
func (c *Client) DocumentMetadata(ctx context.Context, iun, docIdx string) (extraction.DownloadDescriptor, error) {
	reqURL := fmt.Sprintf("%s/delivery/notifications/sent/%s/attachments/documents/%s",
		c.baseURL, url.PathEscape(iun), url.PathEscape(docIdx))
	return c.getMetadata(ctx, reqURL, docIdx, extraction.CategoryNotificationDocument)
}

// PaymentMetadata asks for the download descriptor of a payment attachment.
func (c *Client) PaymentMetadata(ctx context.Context, iun string, recipientIdx int, attachmentName string) (extraction.DownloadDescriptor, error) {
	reqURL := fmt.Sprintf("%s/delivery/notifications/sent/%s/attachments/payment/%d/%s",
		c.baseURL, url.PathEscape(iun), recipientIdx, url.PathEscape(attachmentName))
	return c.getMetadata(ctx, reqURL, attachmentName, extraction.CategoryPaymentDocument)
}

// DownloadFile fetches the raw bytes behind a ready download URL.
func (c *Client) DownloadFile(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "creating download request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamUnavailableError("notification service", "file download failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewUpstreamUnavailableError("notification service",
			fmt.Sprintf("file download returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewUpstreamUnavailableError("notification service", "reading file body").WithCause(err)
	}
	return data, nil
}

func (c *Client) getMetadata(ctx context.Context, reqURL, key string, category extraction.DownloadCategory) (extraction.DownloadDescriptor, error) {
	var parsed downloadMetadata
	if err := c.getJSON(ctx, reqURL, nil, &parsed); err != nil {
		return extraction.DownloadDescriptor{}, err
	}

	return extraction.DownloadDescriptor{
		Key:         key,
		Category:    category,
		Filename:    parsed.Filename,
		DownloadURL: parsed.URL,
		RetryAfter:  time.Duration(parsed.RetryAfter) * time.Second,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, headers map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return errors.Wrap(err, "creating notification request")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewUpstreamUnavailableError("notification service", "request failed").WithCause(err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "notification api call",
		slog.String("url", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.NewNotFoundError("notification")
	case resp.StatusCode != http.StatusOK:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.NewUpstreamUnavailableError("notification service",
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewUpstreamUnavailableError("notification service", "malformed response").WithCause(err)
	}
	return nil
}
