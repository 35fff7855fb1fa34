package logstore

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notifid/logextractor/internal/domain/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Search(t *testing.T) {
	var gotPath, gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		user, pass, _ := r.BasicAuth()
		gotAuth = user + ":" + pass
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`{"responses":[
			{"status":200,"hits":{"hits":[{"_source":{"uid":"u1","msg":"a"}},{"_source":{"uid":"u2","msg":"b"}}]}},
			{"status":200,"hits":{"hits":[]}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Username: "extractor", Password: "pw", Timeout: time.Second}, discardLogger())

	results, err := c.Search(context.Background(), []QuerySpec{
		{Index: "pn-logs", Equality: map[string]string{"uid.keyword": "u1"}},
		{Index: "pn-logs", Equality: map[string]string{"iun.keyword": "IUN-1"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/_msearch", gotPath)
	assert.Equal(t, "extractor:pw", gotAuth)
	assert.Contains(t, gotBody, "uid.keyword")

	require.Len(t, results, 2)
	require.Len(t, results[0], 2)
	assert.Empty(t, results[1])

	uid, ok := results[0][0].Field("uid")
	require.True(t, ok)
	assert.Equal(t, "u1", uid)
}

func TestClient_Search_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Timeout: time.Second}, discardLogger())

	_, err := c.Search(context.Background(), []QuerySpec{
		{Index: "pn-logs", Equality: map[string]string{"uid.keyword": "u1"}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
}

func TestClient_Search_ResponseCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Timeout: time.Second}, discardLogger())

	_, err := c.Search(context.Background(), []QuerySpec{
		{Index: "pn-logs", Equality: map[string]string{"uid.keyword": "u1"}},
	})
	require.Error(t, err)
}

func TestClient_Search_InvalidSpecNotSent(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Timeout: time.Second}, discardLogger())

	_, err := c.Search(context.Background(), []QuerySpec{{Index: "pn-logs"}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.False(t, called)
}
