package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sensor-dashboard/src/config"
	"sensor-dashboard/src/metrics"
	"sensor-dashboard/src/models"
)

func TestSetupChartsCountsRedraws(t *testing.T) {
	conf, err := config.Parse([]byte("name: setup-test\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m := metrics.New()
	charts := setupCharts(conf.MConfig, m)
	if len(charts) != len(conf.Channels) {
		t.Fatalf("got %d charts for %d channels", len(charts), len(conf.Channels))
	}

	series := &models.MChannelSeries{
		Timestamps: []string{"10:00"},
		Stats:      []models.MStatBucket{{Minimum: 400, Maximum: 800, First: 500, Last: 450, Average: 600}},
	}
	co2 := charts[models.ChannelCO2]
	co2.Render(series)
	co2.Render(series)
	co2.Render(nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if want := `sensorboard_chart_redraws_total{channel="co2"} 2`; !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("metrics output missing %q", want)
	}
}
