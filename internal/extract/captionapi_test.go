package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptionAPIParsesChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		w.Write([]byte(`{
			"title": "Deep Dive",
			"content": [
				{"text": "hello there", "offset": 0, "duration": 2500},
				{"text": "", "offset": 2500, "duration": 1000},
				{"text": "general remarks", "offset": 3500, "duration": 4000}
			]
		}`))
	}))
	defer server.Close()

	strategy := NewCaptionAPI(server.URL, "test-key", server.Client())
	result, err := strategy.Extract(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "Deep Dive", result.Title)
	require.Len(t, result.Segments, 2)
	assert.Equal(t, "hello there", result.Segments[0].Text)
	assert.Equal(t, 0.0, result.Segments[0].StartTime)
	assert.Equal(t, 2.5, result.Segments[0].EndTime)
	assert.Equal(t, 3.5, result.Segments[1].StartTime)
	assert.Equal(t, 7.5, result.Segments[1].EndTime)
}

func TestCaptionAPIStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   Outcome
	}{
		{http.StatusTooManyRequests, OutcomeTransient},
		{http.StatusBadGateway, OutcomeTransient},
		{http.StatusForbidden, OutcomePermanent},
		{http.StatusNotFound, OutcomeNotFound},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		strategy := NewCaptionAPI(server.URL, "test-key", server.Client())
		_, err := strategy.Extract(context.Background(), "dQw4w9WgXcQ")
		require.Error(t, err)
		assert.Equal(t, tt.want, ClassifyError(err), "status %d", tt.status)
		server.Close()
	}
}

func TestCaptionAPIWithoutKey(t *testing.T) {
	strategy := NewCaptionAPI("", "", nil)
	_, err := strategy.Extract(context.Background(), "dQw4w9WgXcQ")
	assert.Equal(t, OutcomePermanent, ClassifyError(err))
}

func TestCaptionAPINonVideoRef(t *testing.T) {
	strategy := NewCaptionAPI("http://unused", "key", nil)
	_, err := strategy.Extract(context.Background(), "https://example.com/article")
	assert.ErrorIs(t, err, ErrNotFound)
}
