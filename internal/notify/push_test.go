package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExpoClient(url string) *ExpoClient {
	c := NewExpoClient(url)
	c.backoff = time.Millisecond
	return c
}

func TestExpoClient_Send(t *testing.T) {
	var got expoMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":{"status":"ok","id":"abc"}}`))
	}))
	defer srv.Close()

	err := newTestExpoClient(srv.URL).Send(context.Background(), PushMessage{
		To:    "ExponentPushToken[x]",
		Title: "hello",
		Body:  "world",
		Data:  map[string]interface{}{"reportId": "r1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ExponentPushToken[x]", got.To)
	assert.Equal(t, "high", got.Priority)
	assert.Equal(t, "default", got.Sound)
	assert.Equal(t, "r1", got.Data["reportId"])
}

func TestExpoClient_RetriesServerErrors(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"status":"ok"}}`))
	}))
	defer srv.Close()

	err := newTestExpoClient(srv.URL).Send(context.Background(), PushMessage{To: "t"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), atomic.LoadInt64(&calls))
}

func TestExpoClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestExpoClient(srv.URL).Send(context.Background(), PushMessage{To: "t"})
	assert.ErrorContains(t, err, "status 400")
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestExpoClient_TicketError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"status":"error","message":"DeviceNotRegistered"}}`))
	}))
	defer srv.Close()

	err := newTestExpoClient(srv.URL).Send(context.Background(), PushMessage{To: "t"})
	assert.ErrorContains(t, err, "DeviceNotRegistered")
}
