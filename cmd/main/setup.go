package main

import (
	"fmt"

	"sensor-dashboard/src/ingest"
	"sensor-dashboard/src/interfaces"
	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/metrics"
	"sensor-dashboard/src/models"
	"sensor-dashboard/src/network"
	"sensor-dashboard/src/poller"
	"sensor-dashboard/src/render"
	"sensor-dashboard/src/stats"
	"sensor-dashboard/src/storage"
)

// -----------------------------------------------------------------------------

// setupStore initializes the bucket store based on config
func setupStore(config *models.MConfig) (interfaces.IBucketStore, error) {
	var store interfaces.IBucketStore

	switch config.Storage.DBType {
	case "sqlite":
		store = storage.NewSQLiteStore(config, logger.NewLogger(config, "SQLiteStore"))
	default:
		store = storage.NewMemoryStore(config, logger.NewLogger(config, "MemoryStore"))
	}

	if err := store.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s store: %w", config.Storage.DBType, err)
	}
	return store, nil
}

// -----------------------------------------------------------------------------

// setupReadingSource returns the configured broker source, nil for "none".
func setupReadingSource(config *models.MConfig) interfaces.IReadingSource {
	switch config.Ingest.Type {
	case "mqtt":
		return ingest.NewMQTTSource(config.Ingest.MQTT, logger.NewLogger(config, "MQTTSource"))
	case "kafka":
		return ingest.NewKafkaSource(config.Ingest.Kafka, logger.NewLogger(config, "KafkaSource"))
	}
	return nil
}

// -----------------------------------------------------------------------------

// setupAggregator wires the minute aggregator to the store and latest queue.
func setupAggregator(config *models.MConfig, store interfaces.IBucketStore, latest *stats.LatestQueue, m *metrics.Metrics) *stats.MinuteAggregator {
	agg := stats.NewMinuteAggregator(store, latest, logger.NewLogger(config, "Aggregator"))
	agg.Metrics = m
	return agg
}

// -----------------------------------------------------------------------------

// setupCharts creates one candlestick surface per configured channel and
// counts every redraw.
func setupCharts(config *models.MConfig, m *metrics.Metrics) map[string]*render.Chart {
	charts := make(map[string]*render.Chart, len(config.Channels))
	for _, ch := range config.Channels {
		chartLogger := logger.NewLogger(config, "Chart:"+ch.Name)
		chart := render.NewChart(ch, config.Dashboard.ChartWidth, config.Dashboard.ChartHeight, chartLogger)
		chart.OnRedraw(func(f models.MChartFrame) { m.Redraw(f.Channel) })
		charts[ch.Name] = chart
	}
	return charts
}

// -----------------------------------------------------------------------------

// setupPoller builds the stats client and the interval controller.
func setupPoller(config *models.MConfig, charts map[string]*render.Chart, m *metrics.Metrics) (*poller.Controller, error) {
	networkManager := network.NewAsyncNetworkManager(config, logger.NewLogger(config, "NetworkManager"))
	client := poller.NewStatsClient(config.Dashboard.StatsURL, networkManager, logger.NewLogger(config, "StatsClient"))

	controller, err := poller.NewController(config.Intervals, config.Dashboard.DefaultInterval, client, charts,
		logger.NewLogger(config, "Poller"))
	if err != nil {
		return nil, err
	}
	controller.Metrics = m
	return controller, nil
}
