package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"sensor-dashboard/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// DefaultIntervals mirrors the dashboard's interval selector.
func DefaultIntervals() []models.MInterval {
	return []models.MInterval{
		{Name: "1min", Label: "1 Minute", BucketSeconds: 60, RefreshSeconds: 10},
		{Name: "10min", Label: "10 Minutes", BucketSeconds: 600, RefreshSeconds: 30},
		{Name: "1hour", Label: "1 Hour", BucketSeconds: 3600, RefreshSeconds: 60},
		{Name: "1day", Label: "1 Day", BucketSeconds: 86400, RefreshSeconds: 300},
	}
}

// DefaultChannels lists the two charted channels.
func DefaultChannels() []models.MChannelConfig {
	return []models.MChannelConfig{
		{Name: models.ChannelTemperature, Label: "Temperature", Unit: "°C"},
		{Name: models.ChannelCO2, Label: "CO2", Unit: "ppm"},
	}
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a Config from YAML bytes, fills defaults, applies the
// environment overlay and validates the result.
func Parse(data []byte) (*Config, error) {
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()
	config.ApplyEnv(os.LookupEnv)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// LoadDotEnv loads a .env file into the process environment when present.
// A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file '%s': %w", p, err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "sensor-dashboard"
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if len(c.Intervals) == 0 {
		c.Intervals = DefaultIntervals()
	}
	if len(c.Channels) == 0 {
		c.Channels = DefaultChannels()
	}
	if c.Dashboard.StatsURL == "" {
		c.Dashboard.StatsURL = fmt.Sprintf("http://%s:%d/stats", c.Host, c.Port)
	}
	if c.Dashboard.DefaultInterval == "" {
		c.Dashboard.DefaultInterval = c.Intervals[0].Name
	}
	if c.Dashboard.ChartWidth == 0 {
		c.Dashboard.ChartWidth = 900
	}
	if c.Dashboard.ChartHeight == 0 {
		c.Dashboard.ChartHeight = 400
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}
	if c.Network.UserAgent == "" {
		c.Network.UserAgent = c.Name
	}
	if c.Stats.Limit == 0 {
		c.Stats.Limit = 60
	}
	if c.Stats.LatestSize == 0 {
		c.Stats.LatestSize = 100
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "memory"
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		c.Storage.DBPath = "file::memory:?cache=shared"
	}
	if c.Storage.MaxBuckets == 0 {
		c.Storage.MaxBuckets = 7 * 24 * 60
	}
	if c.Ingest.Type == "" {
		c.Ingest.Type = "none"
	}
	if c.Ingest.MQTT.Topic == "" {
		c.Ingest.MQTT.Topic = "sensors/readings"
	}
	if c.Ingest.MQTT.KeepAlive == 0 {
		c.Ingest.MQTT.KeepAlive = 60
	}
	if c.Ingest.MQTT.ClientID == "" {
		c.Ingest.MQTT.ClientID = c.Name
	}
	if c.Ingest.Kafka.GroupID == "" {
		c.Ingest.Kafka.GroupID = c.Name
	}
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides selected fields from SENSORBOARD_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("SENSORBOARD_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("SENSORBOARD_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v, ok := lookup("SENSORBOARD_STATS_URL"); ok && v != "" {
		c.Dashboard.StatsURL = v
	}
	if v, ok := lookup("SENSORBOARD_MQTT_BROKER"); ok && v != "" {
		c.Ingest.MQTT.Broker = v
	}
	if v, ok := lookup("SENSORBOARD_MQTT_USERNAME"); ok {
		c.Ingest.MQTT.Username = v
	}
	if v, ok := lookup("SENSORBOARD_MQTT_PASSWORD"); ok {
		c.Ingest.MQTT.Password = v
	}
	if v, ok := lookup("SENSORBOARD_KAFKA_BROKERS"); ok && v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		c.Ingest.Kafka.Brokers = brokers
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}

	// Validate intervals
	seen := make(map[string]bool)
	for i, in := range c.Intervals {
		if in.Name == "" {
			return fmt.Errorf("interval %d must have a name", i)
		}
		if seen[in.Name] {
			return fmt.Errorf("duplicate interval '%s'", in.Name)
		}
		seen[in.Name] = true
		if in.BucketSeconds <= 0 {
			return fmt.Errorf("interval '%s' bucket_seconds must be greater than 0", in.Name)
		}
		if in.RefreshSeconds <= 0 {
			return fmt.Errorf("interval '%s' refresh_seconds must be greater than 0", in.Name)
		}
	}
	if !seen[c.Dashboard.DefaultInterval] {
		return fmt.Errorf("default interval '%s' is not a configured interval", c.Dashboard.DefaultInterval)
	}

	// Validate channels
	for i, ch := range c.Channels {
		if ch.Name != models.ChannelTemperature && ch.Name != models.ChannelCO2 {
			return fmt.Errorf("channel %d has unsupported name '%s'", i, ch.Name)
		}
	}

	// Validate Dashboard configuration
	if c.Dashboard.ChartWidth < 100 || c.Dashboard.ChartHeight < 100 {
		return fmt.Errorf("chart size %dx%d is too small", c.Dashboard.ChartWidth, c.Dashboard.ChartHeight)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate Stats backend
	if c.Stats.Enabled {
		if c.Stats.Limit <= 0 {
			return fmt.Errorf("stats limit must be greater than 0")
		}
		switch c.Storage.DBType {
		case "memory", "sqlite":
		default:
			return fmt.Errorf("unsupported storage type '%s'", c.Storage.DBType)
		}
		if c.Storage.MaxBuckets <= 0 {
			return fmt.Errorf("storage max_buckets must be greater than 0")
		}
	}

	// Validate ingest
	switch c.Ingest.Type {
	case "none":
	case "mqtt":
		if c.Ingest.MQTT.Broker == "" {
			return fmt.Errorf("mqtt broker cannot be empty")
		}
		if c.Ingest.MQTT.QoS > 2 {
			return fmt.Errorf("invalid mqtt qos %d", c.Ingest.MQTT.QoS)
		}
	case "kafka":
		if len(c.Ingest.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers cannot be empty")
		}
		if c.Ingest.Kafka.Topic == "" {
			return fmt.Errorf("kafka topic cannot be empty")
		}
	default:
		return fmt.Errorf("unsupported ingest type '%s'", c.Ingest.Type)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Interval looks up a configured interval by name.
func (c *Config) Interval(name string) (models.MInterval, bool) {
	for _, in := range c.Intervals {
		if in.Name == name {
			return in, true
		}
	}
	return models.MInterval{}, false
}

// Channel looks up a configured channel by name.
func (c *Config) Channel(name string) (models.MChannelConfig, bool) {
	for _, ch := range c.Channels {
		if ch.Name == name {
			return ch, true
		}
	}
	return models.MChannelConfig{}, false
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

// SetDefaultInterval rewrites only dashboard.default_interval in the file at
// configPath, creating it if needed. Other keys and comments are kept, and
// environment overrides never reach the file.
func SetDefaultInterval(configPath, name string) error {
	var doc yaml.Node
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode}
	}
	if len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("config file '%s' is not a YAML mapping", configPath)
	}

	dashboard := mappingValue(root, "dashboard", yaml.MappingNode)
	if dashboard.Kind != yaml.MappingNode {
		return fmt.Errorf("config key 'dashboard' in '%s' is not a mapping", configPath)
	}
	interval := mappingValue(dashboard, "default_interval", yaml.ScalarNode)
	interval.Kind, interval.Tag, interval.Value, interval.Style = yaml.ScalarNode, "!!str", name, 0
	interval.Content = nil

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	if err := os.WriteFile(configPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}
	return nil
}

// mappingValue returns the value node for key, appending an empty one of the
// given kind when the key is missing.
func mappingValue(m *yaml.Node, key string, kind yaml.Kind) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	value := &yaml.Node{Kind: kind}
	if kind == yaml.MappingNode {
		value.Tag = "!!map"
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
	return value
}
