package mappiness

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mrwolf/daybook/internal/mood"
	"github.com/mrwolf/daybook/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentSamples(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"start_time_epoch": 1792310400, "awake": 0.8, "happy": 0.6, "relaxed": 0.4, "in_out": "in", "home_work": "home"},
			{"start_time_epoch": 1792296000, "awake": 0.2, "happy": 1, "relaxed": 1}
		]`))
	}))
	defer srv.Close()

	samples, err := NewClient(srv.URL, transport.Options{RequestsPerSecond: 100}).RecentSamples(context.Background())
	require.NoError(t, err)

	require.Len(t, samples, 2)
	assert.Equal(t, mood.Sample{StartTimeEpoch: 1792310400, Awake: 0.8, Happy: 0.6, Relaxed: 0.4}, samples[0])
	assert.Equal(t, 1.0, samples[1].Relaxed)
}

func TestRecentSamplesMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "not a list"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, transport.Options{RequestsPerSecond: 100}).RecentSamples(context.Background())
	assert.Error(t, err)
}
