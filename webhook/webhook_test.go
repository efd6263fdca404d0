package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastSender() *Sender {
	s := NewSender()
	s.delays = []time.Duration{0, time.Millisecond, time.Millisecond}
	return s
}

func TestDeliverSignsBody(t *testing.T) {
	var (
		gotBody []byte
		gotSig  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get(SignatureHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	event := &Event{Type: EventBatchCompleted, JobID: "job-1", Timestamp: 1700000000, Data: map[string]int{"total": 2}}
	require.NoError(t, fastSender().Deliver(context.Background(), srv.URL, "s3cret", event))

	assert.True(t, Verify("s3cret", gotBody, gotSig))
	assert.False(t, Verify("other", gotBody, gotSig))

	var decoded Event
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, EventBatchCompleted, decoded.Type)
	assert.Equal(t, "job-1", decoded.JobID)
}

func TestDeliverUnsignedWithoutSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(SignatureHeader))
	}))
	defer srv.Close()

	assert.NoError(t, fastSender().Deliver(context.Background(), srv.URL, "", &Event{Type: EventBatchFailed}))
}

func TestDeliverWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	require.NoError(t, fastSender().DeliverWithRetry(context.Background(), srv.URL, "", &Event{Type: EventBatchCompleted}))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliverWithRetryGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := fastSender().DeliverWithRetry(context.Background(), srv.URL, "", &Event{Type: EventBatchCompleted})
	assert.ErrorContains(t, err, "status 500")
	assert.Equal(t, int32(3), calls.Load())
}

func TestSign(t *testing.T) {
	assert.Equal(t, "sha256=a777724d943eb48dc69bca8a4a6d57a04db3f9ec7e1de4e581e860265bdf3032", Sign("key", []byte("{}")))
}
