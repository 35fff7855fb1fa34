package notification

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifid/logextractor/internal/domain/errors"
	"github.com/notifid/logextractor/internal/domain/extraction"
)

func newTestClient(srv *httptest.Server, pageSize int) *Client {
	return NewClient(Config{
		BaseURL:        srv.URL,
		SearchPageSize: pageSize,
		Timeout:        time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_GetNotification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/delivery/notifications/sent/IUN-1", r.URL.Path)
		w.Write([]byte(`{
			"iun":"IUN-1","sentAt":"2024-03-01T10:00:00Z","subject":"hearing",
			"recipients":[{"taxId":"RSSMRA80A01H501U","payment":{"pagoPaFormKey":"pay-key"}}],
			"documents":[{"docIdx":"0","title":"act"}],
			"timeline":[
				{"category":"REQUEST_ACCEPTED","timestamp":"2024-03-01T10:05:00Z",
				 "legalFactsIds":[{"key":"lf-1","category":"SENDER_ACK"}]}
			]
		}`))
	}))
	defer srv.Close()

	n, err := newTestClient(srv, 0).GetNotification(context.Background(), "IUN-1")
	require.NoError(t, err)

	assert.Equal(t, "IUN-1", n.IUN)
	assert.Equal(t, "2024-03-01T10:05:00Z", n.LegalStartDate())
	require.Len(t, n.LegalFacts(), 1)
	assert.Equal(t, "lf-1", n.LegalFacts()[0].Key)
	require.Len(t, n.Recipients, 1)
	assert.Equal(t, map[string]string{"PAGOPA": "pay-key"}, n.Recipients[0].Payment.Keys())
}

func TestNotification_LegalStartDateFallsBackToSentAt(t *testing.T) {
	n := &Notification{SentAt: "2024-03-01T10:00:00Z"}
	assert.Equal(t, "2024-03-01T10:00:00Z", n.LegalStartDate())
}

func TestClient_SearchSent_FollowsPages(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "enc-42", r.Header.Get("x-pagopa-pn-cx-id"))
		key := r.URL.Query().Get("nextPagesKey")
		calls = append(calls, key)
		switch key {
		case "":
			w.Write([]byte(`{"resultsPage":[{"iun":"IUN-1","sentAt":"2024-03-02T00:00:00Z","subject":"a","recipients":["R1"]}],
				"moreResult":true,"nextPagesKey":["k1"]}`))
		case "k1":
			w.Write([]byte(`{"resultsPage":[{"iun":"IUN-2","sentAt":"2024-03-03T00:00:00Z","subject":"b","recipients":["R2","R3"]}],
				"moreResult":false,"nextPagesKey":[]}`))
		default:
			t.Fatalf("unexpected page key %q", key)
		}
	}))
	defer srv.Close()

	results, err := newTestClient(srv, 100).SearchSent(context.Background(), "enc-42",
		"2024-03-01T00:00:00.000Z", "2024-04-01T00:00:00.000Z")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "IUN-1", results[0].IUN)
	assert.Equal(t, "IUN-2", results[1].IUN)
	assert.Equal(t, []string{"", "k1"}, calls)
}

func TestClient_Metadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/delivery-push/IUN-1/legal-facts/SENDER_ACK/lf-1":
			w.Write([]byte(`{"filename":"ack.pdf","url":"http://files/ack.pdf"}`))
		case "/delivery/notifications/sent/IUN-1/attachments/documents/0":
			w.Write([]byte(`{"filename":"act.pdf","retryAfter":120}`))
		case "/delivery/notifications/sent/IUN-1/attachments/payment/0/PAGOPA":
			w.Write([]byte(`{"filename":"pay.pdf","url":"http://files/pay.pdf"}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv, 0)
	ctx := context.Background()

	legal, err := c.LegalFactMetadata(ctx, "IUN-1", "SENDER_ACK", "lf-1")
	require.NoError(t, err)
	assert.True(t, legal.Ready())
	assert.Equal(t, extraction.CategoryLegalFact, legal.Category)
	assert.Equal(t, "ack.pdf", legal.Filename)

	doc, err := c.DocumentMetadata(ctx, "IUN-1", "0")
	require.NoError(t, err)
	assert.False(t, doc.Ready())
	assert.Equal(t, 2*time.Minute, doc.RetryAfter)
	assert.Equal(t, extraction.CategoryNotificationDocument, doc.Category)

	pay, err := c.PaymentMetadata(ctx, "IUN-1", 0, "PAGOPA")
	require.NoError(t, err)
	assert.True(t, pay.Ready())
	assert.Equal(t, extraction.CategoryPaymentDocument, pay.Category)
}

func TestClient_DownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "%PDF-1.7 fake")
	}))
	defer srv.Close()

	data, err := newTestClient(srv, 0).DownloadFile(context.Background(), srv.URL+"/f")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(data))
}

func TestClient_ErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/delivery/notifications/sent/GONE":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv, 0)

	_, err := c.GetNotification(context.Background(), "GONE")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, err = c.GetNotification(context.Background(), "IUN-1")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
}
