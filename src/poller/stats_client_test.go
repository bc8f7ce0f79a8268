package poller

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"sensor-dashboard/src/helpers"
	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/models"
	"sensor-dashboard/src/network"
)

func newTestClient(t *testing.T, body string) (*StatsClient, *string) {
	t.Helper()
	var gotInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotInterval = r.URL.Query().Get("interval")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	log := logger.NewLogger(nil, "poller")
	log.SetOutput(io.Discard)
	cfg := &models.MConfig{}
	cfg.Network.RequestTimeout = 2
	return NewStatsClient(srv.URL+"/stats", network.NewAsyncNetworkManager(cfg, log), log), &gotInterval
}

func TestFetchStatsParsesResponse(t *testing.T) {
	client, interval := newTestClient(t, `{
		"temperature": {"timestamps": ["10:00"], "stats": [{"minimum": 10, "maximum": 20, "first": 12, "last": 18, "average": 15, "count": 6}], "interval": "10min"},
		"co2": {"timestamps": [], "stats": []}
	}`)

	resp, err := client.FetchStats(context.Background(), "10min")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if *interval != "10min" {
		t.Fatalf("interval param = %q", *interval)
	}
	if resp.Temperature.Len() != 1 || *resp.Temperature.Stats[0].Count != 6 {
		t.Fatalf("unexpected temperature %+v", resp.Temperature)
	}
	if resp.CO2.Len() != 0 {
		t.Fatalf("expected empty co2")
	}
}

func TestFetchStatsRejectsBadPayloads(t *testing.T) {
	for name, body := range map[string]string{
		"json":     `{"temperature": [`,
		"mismatch": `{"temperature": {"timestamps": ["a", "b"], "stats": [{"minimum": 1, "maximum": 2, "first": 1, "last": 2, "average": 1.5}]}}`,
	} {
		client, _ := newTestClient(t, body)
		_, err := client.FetchStats(context.Background(), "1min")
		if !helpers.IsDecodeError(err) {
			t.Fatalf("%s: expected decode error, got %v", name, err)
		}
	}
}
