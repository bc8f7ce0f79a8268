package models

import "time"

// MConfig Structure
type MConfig struct {
	Name        string           `yaml:"name"`
	Host        string           `yaml:"host"`
	Port        int              `yaml:"port"`
	LogLevel    string           `yaml:"log_level"`
	GrpcHost    string           `yaml:"grpc_host"`
	GrpcPort    int              `yaml:"grpc_port"`
	OpenBrowser bool             `yaml:"open_browser"`
	Dashboard   MDashboardConfig `yaml:"dashboard"`
	Network     MNetworkConfig   `yaml:"network"`
	Intervals   []MInterval      `yaml:"intervals"`
	Stats       MStatsConfig     `yaml:"stats"`
	Storage     MStorageConfig   `yaml:"storage"`
	Ingest      MIngestConfig    `yaml:"ingest"`
	Channels    []MChannelConfig `yaml:"channels"`
}

type MDashboardConfig struct {
	StatsURL        string `yaml:"stats_url"`
	DefaultInterval string `yaml:"default_interval"`
	ChartWidth      int    `yaml:"chart_width"`
	ChartHeight     int    `yaml:"chart_height"`
}

type MNetworkConfig struct {
	Proxy          string `yaml:"proxy"`
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

type MStatsConfig struct {
	Enabled    bool `yaml:"enabled"`
	Limit      int  `yaml:"limit"`
	LatestSize int  `yaml:"latest_size"`
}

type MStorageConfig struct {
	DBType     string `yaml:"db_type"`
	DBPath     string `yaml:"db_path"`
	MaxBuckets int    `yaml:"max_buckets"`
}

type MIngestConfig struct {
	Type  string       `yaml:"type"` // mqtt, kafka or none
	MQTT  MMQTTConfig  `yaml:"mqtt"`
	Kafka MKafkaConfig `yaml:"kafka"`
}

type MMQTTConfig struct {
	Broker    string `yaml:"broker"`
	Topic     string `yaml:"topic"`
	ClientID  string `yaml:"client_id"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	KeepAlive int    `yaml:"keepalive"`
	QoS       byte   `yaml:"qos"`
}

type MKafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// MChannelConfig describes how a channel is labelled on the dashboard.
type MChannelConfig struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	Unit  string `yaml:"unit"`
}

// -----------------------------------------------------------------------------

// MInterval is a selectable aggregation interval.
// BucketSeconds drives the backend resampling, RefreshSeconds the poll cadence.
type MInterval struct {
	Name           string `yaml:"name" json:"name"`
	Label          string `yaml:"label" json:"label"`
	BucketSeconds  int64  `yaml:"bucket_seconds" json:"bucket_seconds"`
	RefreshSeconds int    `yaml:"refresh_seconds" json:"refresh_seconds"`
}

// Refresh returns the poll period for the interval.
func (i MInterval) Refresh() time.Duration {
	return time.Duration(i.RefreshSeconds) * time.Second
}
