package notifier

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNtfyNotify(t *testing.T) {
	var (
		gotTitle, gotBody, gotMethod string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotMethod, gotTitle, gotBody = r.Method, r.Header.Get("Title"), string(b)
	}))
	defer ts.Close()

	err := NewNtfy(ts.URL).Notify(context.Background(), "Sensor Error", "data file not found")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Sensor Error", gotTitle)
	assert.Equal(t, "data file not found", gotBody)
}

func TestNtfyNotifyBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	err := NewNtfy(ts.URL).Notify(context.Background(), "t", "m")
	assert.EqualError(t, err, "ntfy request failed with status: 429")
}

func TestNoop(t *testing.T) {
	assert.NoError(t, NewNoop().Notify(context.Background(), "t", "m"))
}
