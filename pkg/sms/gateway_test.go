package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientSendTextMessageSuccess(t *testing.T) {
	var got sendRequest
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotKey = r.Header.Get("X-API-KEY")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","error":false}`))
	}))
	defer srv.Close()

	client := NewClient(Config{URL: srv.URL, APIKey: "secret"}, zap.NewNop())
	ok := client.SendTextMessage(context.Background(), "919000000001", "hello")

	assert.True(t, ok)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "919000000001", got.Mobile)
	assert.Equal(t, "hello", got.Msg)
}

func TestClientSendTextMessageCustomHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Authorization-Key")
		_, _ = w.Write([]byte(`{"status":"queued"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{URL: srv.URL, APIKey: "k", APIKeyHeader: "Authorization-Key"}, nil)
	assert.True(t, client.SendTextMessage(context.Background(), "1", "m"))
	assert.Equal(t, "k", gotKey)
}

func TestClientSendTextMessageFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "non success status", status: http.StatusBadGateway, body: `{"status":"success"}`},
		{name: "malformed body", status: http.StatusOK, body: `not-json`, wantErr: ErrMalformedResponse},
		{name: "error flag", status: http.StatusOK, body: `{"error":true,"message":"invalid number"}`, wantErr: ErrRejected},
		{name: "error status", status: http.StatusOK, body: `{"status":"failed"}`, wantErr: ErrRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(Config{URL: srv.URL, APIKey: "secret"}, zap.NewNop())
			assert.False(t, client.SendTextMessage(context.Background(), "919000000001", "hello"))

			err := client.send(context.Background(), "919000000001", "hello")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.status, statusErr.StatusCode)
			}
		})
	}
}

func TestClientSendTextMessageNotConfigured(t *testing.T) {
	client := NewClient(Config{}, zap.NewNop())
	assert.False(t, client.SendTextMessage(context.Background(), "919000000001", "hello"))
	assert.ErrorIs(t, client.send(context.Background(), "919000000001", "hello"), ErrNotConfigured)
}

func TestClientSendTextMessageTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(Config{URL: srv.URL, APIKey: "secret"}, zap.NewNop(),
		WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	assert.False(t, client.SendTextMessage(context.Background(), "919000000001", "hello"))
}
